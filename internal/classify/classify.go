// Package classify assigns a question archetype to a sentence.
package classify

import (
	"regexp"
	"strings"

	"github.com/dgallion1/quizgest/internal/nlp"
)

// Type is a question archetype.
type Type string

const (
	MCQ             Type = "MCQ"
	TrueFalse       Type = "TF"
	AssertionReason Type = "AR"
)

// ParseType accepts the short and long spellings of each type.
func ParseType(s string) (Type, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MCQ":
		return MCQ, true
	case "TF", "TRUE_FALSE", "TRUEFALSE":
		return TrueFalse, true
	case "AR", "ASSERTION_REASON", "ASSERTIONREASON":
		return AssertionReason, true
	}
	return "", false
}

// CausalKeywords trigger AssertionReason wherever they occur as whole words.
var CausalKeywords = []string{"because", "due to", "as a result", "therefore", "since", "so", "hence", "thus"}

// DefinitionPhrases mark a sentence as defining something.
var DefinitionPhrases = []string{
	" is the ", " are the ", " refers to ", " is defined as ", " can be defined as ",
	" known as ", " means ", " is called ", " is known as ",
}

// clauseMarkers open a subordinate clause when tagged as a preposition or
// subordinating conjunction.
var clauseMarkers = map[string]bool{
	"because": true, "since": true, "as": true, "although": true, "though": true,
}

// Hyphens and apostrophes count as word characters so "so-called" and
// "so's" do not match "so".
var causalRe = func() *regexp.Regexp {
	alts := make([]string, len(CausalKeywords))
	for i, kw := range CausalKeywords {
		alts[i] = strings.ReplaceAll(regexp.QuoteMeta(kw), " ", `\s+`)
	}
	return regexp.MustCompile(`(?:^|[^\p{L}\p{N}'’-])(?:` + strings.Join(alts, "|") + `)(?:$|[^\p{L}\p{N}'’-])`)
}()

// Classify applies, in order: AssertionReason for a causal clause or
// keyword, MCQ for a definition phrase, TrueFalse for a sentence of seven
// or more words ending in a period, else MCQ. tokens may be untagged.
func Classify(sentence string, tokens []nlp.Token) Type {
	text := strings.ToLower(strings.TrimSpace(sentence))
	switch {
	case HasCausalClause(tokens) || HasCausalKeyword(text):
		return AssertionReason
	case HasDefinition(text):
		return MCQ
	case strings.HasSuffix(text, ".") && len(strings.Fields(text)) >= 7:
		return TrueFalse
	default:
		return MCQ
	}
}

// HasCausalKeyword reports whether text contains a causal keyword as a
// whole word or phrase, ignoring case.
func HasCausalKeyword(text string) bool {
	return causalRe.MatchString(strings.ToLower(text))
}

// HasDefinition reports whether text contains a definition phrase,
// ignoring case.
func HasDefinition(text string) bool {
	text = strings.ToLower(text)
	for _, p := range DefinitionPhrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// HasCausalClause reports whether a clause marker introduces a clause with
// its own subject and verb: the marker is tagged IN, the next content word
// is a pronoun or noun, and a verb follows the noun phrase. "as" after a
// participle, adjective, "such" or "well" is a preposition, not a marker.
func HasCausalClause(tokens []nlp.Token) bool {
	for i, tok := range tokens {
		word := strings.ToLower(tok.Text)
		if tok.Tag != "IN" || !clauseMarkers[word] {
			continue
		}
		if word == "as" && i > 0 && prepositionalAs(tokens[i-1]) {
			continue
		}
		if opensClause(tokens[i+1:]) {
			return true
		}
	}
	return false
}

func prepositionalAs(prev nlp.Token) bool {
	switch strings.ToLower(prev.Text) {
	case "such", "well", "as", "same":
		return true
	}
	return prev.Tag == "VBN" || strings.HasPrefix(prev.Tag, "JJ")
}

// opensClause matches a subject noun phrase followed by a verb.
func opensClause(rest []nlp.Token) bool {
	j := 0
	for j < len(rest) && isModifier(rest[j].Tag) {
		j++
	}
	if j == len(rest) || !isSubject(rest[j].Tag) {
		return false
	}
	j++
	for j < len(rest) && isNoun(rest[j].Tag) {
		j++
	}
	return j < len(rest) && isVerb(rest[j].Tag)
}

func isModifier(tag string) bool {
	return tag == "DT" || tag == "PRP$" || tag == "CD" || tag == "POS" || strings.HasPrefix(tag, "JJ")
}

func isSubject(tag string) bool {
	return tag == "PRP" || tag == "EX" || isNoun(tag)
}

func isNoun(tag string) bool {
	return strings.HasPrefix(tag, "NN")
}

func isVerb(tag string) bool {
	return strings.HasPrefix(tag, "VB") || tag == "MD"
}
