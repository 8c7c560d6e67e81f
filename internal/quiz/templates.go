package quiz

import (
	"fmt"
	"strings"

	"github.com/dgallion1/quizgest/internal/nlp"
)

// entityTemplates maps an entity type to its question. {ent} is the
// entity text; {sentence} is the sentence with the entity blanked.
var entityTemplates = map[nlp.EntityType]string{
	nlp.Person:    "Who is {ent}?",
	nlp.Org:       "What is {ent}?",
	nlp.Product:   "What is {ent}?",
	nlp.Event:     "What is {ent}?",
	nlp.WorkOfArt: "What is {ent}?",
	nlp.GPE:       "Where is {ent}?",
	nlp.Location:  "Where is {ent}?",
	nlp.Date:      "When did {sentence}?",
	nlp.Time:      "When did {sentence}?",
	nlp.Money:     "How much is {ent}?",
	nlp.Quantity:  "How much is {ent}?",
	nlp.Percent:   "How much is {ent}?",
	nlp.Ordinal:   "What is the order of {ent}?",
	nlp.Cardinal:  "What is the number of {ent}?",
	nlp.Law:       "What is the law regarding {ent}?",
	nlp.Language:  "What is the language of {ent}?",
	nlp.Norm:      "What is the norm regarding {ent}?",
	nlp.Facility:  "What is the facility of {ent}?",
	nlp.Misc:      "What is the miscellaneous information about {ent}?",
}

// EntityQuestions fills the template of each entity in order, skipping
// repeated questions. With no templated entity it returns the single
// GenericQuestion.
func EntityQuestions(sentence string, entities []nlp.Entity, blank string) []string {
	if blank == "" {
		blank = DefaultBlank
	}
	var out []string
	seen := make(map[string]bool)
	for _, e := range entities {
		tmpl, ok := entityTemplates[e.Type]
		if !ok {
			continue
		}
		var q string
		if strings.Contains(tmpl, "{sentence}") {
			blanked := strings.Replace(sentence, e.Text, blank, 1)
			blanked = strings.TrimRight(strings.TrimSpace(blanked), ".!?")
			q = strings.ReplaceAll(tmpl, "{sentence}", blanked)
		} else {
			q = strings.ReplaceAll(tmpl, "{ent}", e.Text)
		}
		if !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		out = append(out, GenericQuestion(sentence))
	}
	return out
}

// GenericQuestion asks about the complement of an "is the" or "are the"
// sentence, or else what the whole sentence means.
func GenericQuestion(sentence string) string {
	lowered := strings.ToLower(sentence)
	switch {
	case strings.Contains(lowered, " is the "):
		if parts := strings.Split(sentence, " is the "); len(parts) == 2 {
			return fmt.Sprintf("What is the %s?", strings.TrimRight(strings.TrimSpace(parts[1]), "."))
		}
	case strings.Contains(lowered, " are the "):
		if parts := strings.Split(sentence, " are the "); len(parts) == 2 {
			return fmt.Sprintf("What are the %s?", strings.TrimRight(strings.TrimSpace(parts[1]), "."))
		}
	}
	return fmt.Sprintf("What is meant by: '%s'?", strings.TrimSpace(sentence))
}

// NewTrueFalse appends the true/false marker to the trimmed sentence.
func NewTrueFalse(sentence string) Question {
	s := strings.TrimSpace(sentence)
	return Question{
		Kind:     KindTrueFalse,
		Prompt:   s + " " + TrueFalseMarker,
		Sentence: s,
	}
}

// NewAssertionReason splits sentence on " because " into an assertion and
// its reason. Without exactly one split point the whole sentence is the
// assertion and the reason is UnknownReason. Trailing periods are trimmed
// from both parts.
func NewAssertionReason(sentence string) Question {
	q := Question{Kind: KindAssertionReason, Sentence: strings.TrimSpace(sentence)}
	if parts := strings.Split(sentence, " because "); len(parts) == 2 {
		q.Assertion = strings.TrimRight(strings.TrimSpace(parts[0]), ".")
		q.Reason = strings.TrimRight(strings.TrimSpace(parts[1]), ".")
	} else {
		q.Assertion = strings.TrimRight(q.Sentence, ".")
		q.Reason = UnknownReason
	}
	q.Prompt = fmt.Sprintf("Assertion: %s. Reason: %s.", q.Assertion, q.Reason)
	return q
}

// NewOpen wraps a templated question.
func NewOpen(sentence, text string) Question {
	return Question{Kind: KindOpen, Prompt: text, Sentence: strings.TrimSpace(sentence)}
}
