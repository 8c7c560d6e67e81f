package nlp

import "regexp"

const monthNames = `(?:January|February|March|April|May|June|July|August|September|October|November|December|Jan\.|Feb\.|Mar\.|Apr\.|Aug\.|Sept?\.|Oct\.|Nov\.|Dec\.)`

type pattern struct {
	re  *regexp.Regexp
	typ EntityType
}

// numericPatterns recognize the entity types a statistical NER model
// handles poorly. Order is priority: earlier patterns claim spans first.
var numericPatterns = []pattern{
	{regexp.MustCompile(`(?:[$€£¥]\s?\d[\d,]*(?:\.\d+)?(?:\s(?:thousand|million|billion|trillion))?|\b\d[\d,]*(?:\.\d+)?\s(?:dollars|euros|pounds|yen|rupees)\b)`), Money},
	{regexp.MustCompile(`\b\d+(?:\.\d+)?\s?(?:%|percent\b|per cent\b)`), Percent},
	{regexp.MustCompile(`\b(?:` + monthNames + `\s\d{1,2}(?:st|nd|rd|th)?(?:,?\s\d{4})?|\d{1,2}\s` + monthNames + `(?:,?\s\d{4})?|` + monthNames + `\s\d{4})`), Date},
	{regexp.MustCompile(`\b(?:\d{1,2}(?:st|nd|rd|th)|` + `(?i:first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth|eleventh|twelfth|thirteenth|fourteenth|fifteenth|sixteenth|seventeenth|eighteenth|nineteenth|twentieth|twenty-first))\s(?:century|centuries|millennium)\b`), Date},
	{regexp.MustCompile(`\b(?:1[0-9]{3}|20[0-9]{2})s?\b`), Date},
	{regexp.MustCompile(`\b\d{1,2}:\d{2}(?:\s?(?:a\.m\.|p\.m\.|am|pm|AM|PM))?`), Time},
	{regexp.MustCompile(`\b(?:\d+(?:st|nd|rd|th)|(?i:first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth))\b`), Ordinal},
	{regexp.MustCompile(`\b\d[\d,]*(?:\.\d+)?\b`), Cardinal},
}

// matchPatterns returns numeric entity candidates in priority order.
func matchPatterns(sentence string) []span {
	var spans []span
	for _, p := range numericPatterns {
		for _, loc := range p.re.FindAllStringIndex(sentence, -1) {
			spans = append(spans, span{
				start:  loc[0],
				end:    loc[1],
				entity: Entity{Text: sentence[loc[0]:loc[1]], Type: p.typ},
			})
		}
	}
	return spans
}
