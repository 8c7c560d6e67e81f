package nlp

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyInput is returned when there is no text to analyze.
var ErrEmptyInput = errors.New("empty input")

// Token is one word or punctuation mark with its part-of-speech tag.
// Tag is empty when the analyzer does not tag.
type Token struct {
	Text string
	Tag  string
}

// Analysis is the result of analyzing one sentence.
type Analysis struct {
	Tokens   []Token
	Entities []Entity // left-to-right, duplicates kept
}

// Analyzer tags tokens and recognizes entities in a sentence.
// Implementations are built once, shared read-only, and closed by their owner.
type Analyzer interface {
	Analyze(sentence string) (Analysis, error)
	Close() error
}

var simpleTokenRe = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’.-][\p{L}\p{N}]+)*|[^\s\p{L}\p{N}]`)

// SimpleTokens splits text into word and punctuation tokens without tags.
func SimpleTokens(text string) []Token {
	words := simpleTokenRe.FindAllString(text, -1)
	tokens := make([]Token, len(words))
	for i, w := range words {
		tokens[i] = Token{Text: w}
	}
	return tokens
}

// StaticAnalyzer recognizes a fixed table of entity strings. It is the
// analyzer for callers that already know their entities, and for tests.
type StaticAnalyzer struct {
	Known []Entity
}

func (a *StaticAnalyzer) Analyze(sentence string) (Analysis, error) {
	if strings.TrimSpace(sentence) == "" {
		return Analysis{}, ErrEmptyInput
	}
	var spans []span
	for _, e := range a.Known {
		if e.Text == "" {
			continue
		}
		for from := 0; ; {
			idx := strings.Index(sentence[from:], e.Text)
			if idx < 0 {
				break
			}
			start := from + idx
			spans = append(spans, span{start: start, end: start + len(e.Text), entity: e})
			from = start + len(e.Text)
		}
	}
	return Analysis{
		Tokens:   SimpleTokens(sentence),
		Entities: resolveSpans(spans),
	}, nil
}

func (a *StaticAnalyzer) Close() error { return nil }
