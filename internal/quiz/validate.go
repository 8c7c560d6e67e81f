package quiz

import (
	"strings"
	"unicode/utf8"
)

const (
	minPromptLen = 3
	maxPromptLen = 2000
)

var validKinds = map[Kind]bool{
	KindMCQ:             true,
	KindTrueFalse:       true,
	KindAssertionReason: true,
	KindOpen:            true,
}

// Validate checks a question before it is stored. Returns true if valid.
func Validate(q *Question) bool {
	if q == nil || !validKinds[q.Kind] {
		return false
	}
	n := utf8.RuneCountInString(strings.TrimSpace(q.Prompt))
	if n < minPromptLen || n > maxPromptLen {
		return false
	}

	switch q.Kind {
	case KindMCQ:
		if len(q.Options) < 1 || len(q.Options) > MaxDistractors+1 {
			return false
		}
		if strings.TrimSpace(q.Answer) == "" {
			return false
		}
		hits := 0
		for _, o := range q.Options {
			if strings.TrimSpace(o) == "" {
				return false
			}
			if o == q.Answer {
				hits++
			}
		}
		return hits == 1
	case KindTrueFalse:
		return strings.HasSuffix(q.Prompt, TrueFalseMarker)
	case KindAssertionReason:
		return strings.TrimSpace(q.Assertion) != "" && strings.TrimSpace(q.Reason) != ""
	}
	return len(q.Options) == 0
}
