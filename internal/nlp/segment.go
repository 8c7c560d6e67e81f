package nlp

import (
	"fmt"
	"strings"
	"unicode"
)

// Segmenter splits cleaned text into trimmed, non-empty sentences.
type Segmenter interface {
	Segment(text string) ([]string, error)
}

// Segmenter names accepted by NewSegmenter.
const (
	SegmenterProse  = "prose"
	SegmenterSimple = "simple"
)

// NewSegmenter returns the segmenter registered under name.
func NewSegmenter(name string) (Segmenter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SegmenterProse:
		return ProseSegmenter{}, nil
	case SegmenterSimple:
		return SimpleSegmenter{}, nil
	default:
		return nil, fmt.Errorf("unknown segmenter %q", name)
	}
}

// abbreviations never end a sentence. Stored lower-case without the dot.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true, "sr": true,
	"jr": true, "st": true, "vs": true, "etc": true, "inc": true, "ltd": true,
	"co": true, "corp": true, "no": true, "fig": true, "eg": true, "ie": true,
	"e.g": true, "i.e": true, "u.s": true, "u.k": true, "approx": true,
	"dept": true, "gen": true, "gov": true, "mt": true, "vol": true, "pp": true,
}

// SimpleSegmenter breaks on '.', '!' or '?' followed by whitespace, unless
// the word before the dot is a known abbreviation or a single initial.
type SimpleSegmenter struct{}

func (SimpleSegmenter) Segment(text string) ([]string, error) {
	runes := []rune(text)
	var sentences []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, strings.Join(strings.Fields(s), " "))
		}
		current.Reset()
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)
		if !isTerminator(r) {
			continue
		}
		// Keep runs like "?!" and closing quotes with the sentence.
		j := i + 1
		for j < len(runes) && (isTerminator(runes[j]) || strings.ContainsRune(closers, runes[j])) {
			current.WriteRune(runes[j])
			j++
		}
		i = j - 1
		if j < len(runes) && !unicode.IsSpace(runes[j]) {
			continue
		}
		if s := current.String(); strings.HasSuffix(s, ".") && endsWithAbbreviation(s) {
			continue
		}
		flush()
	}
	flush()

	return sentences, nil
}

const closers = `"'”’)]`

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// endsWithAbbreviation reports whether s, which ends in '.', ends with an
// abbreviation or an initial such as "J.".
func endsWithAbbreviation(s string) bool {
	s = strings.TrimSuffix(s, ".")
	idx := strings.LastIndexFunc(s, unicode.IsSpace)
	word := strings.TrimLeft(s[idx+1:], `"'“‘([`)
	if word == "" {
		return false
	}
	if r := []rune(word); len(r) == 1 && unicode.IsUpper(r[0]) {
		return true
	}
	return abbreviations[strings.ToLower(word)]
}
