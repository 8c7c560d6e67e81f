package nlp

import (
	"regexp"
	"strings"

	"github.com/kljensen/snowball"
)

var termRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Terms extracts weighting terms: lower-cased runs of two or more word
// characters. With stem set, each term is reduced by the English snowball
// stemmer so inflected forms share a weight.
func Terms(text string, stem bool) []string {
	words := termRe.FindAllString(strings.ToLower(text), -1)
	if !stem {
		return words
	}
	for i, w := range words {
		stemmed, err := snowball.Stem(w, "english", true)
		if err == nil && stemmed != "" {
			words[i] = stemmed
		}
	}
	return words
}
