package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dgallion1/quizgest/internal/nlp"
)

// tagged builds tokens from "word/TAG" pairs.
func tagged(s string) []nlp.Token {
	var out []nlp.Token
	for _, f := range strings.Fields(s) {
		i := strings.LastIndex(f, "/")
		out = append(out, nlp.Token{Text: f[:i], Tag: f[i+1:]})
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		sentence string
		want     Type
	}{
		{"short entity sentence", "Marie Curie discovered radium in 1898.", MCQ},
		{"because", "The treaty was signed because both nations wanted peace.", AssertionReason},
		{"because beats definition", "Paris is the capital because the king lived there.", AssertionReason},
		{"phrase keyword", "Prices rose sharply as a result of the drought.", AssertionReason},
		{"keyword case", "Therefore the experiment was repeated twice.", AssertionReason},
		{"since", "The city has grown since the railway arrived in town.", AssertionReason},
		{"definition", "The mitochondrion is the powerhouse of the cell.", MCQ},
		{"known as", "The period known as the Renaissance began in Italy.", MCQ},
		{"true false", "Water boils at one hundred degrees at sea level.", TrueFalse},
		{"so inside a word", "He also visited Rome in the summer of 1950.", TrueFalse},
		{"so-called", "The so-called iron curtain divided the continent for decades.", TrueFalse},
		{"no final period", "Water boils at one hundred degrees at sea level!", MCQ},
		{"six words", "The bridge collapsed in heavy winds.", MCQ},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.sentence, nil))
		})
	}
}

func TestClassify_BecauseAlwaysWins(t *testing.T) {
	for _, phrase := range DefinitionPhrases {
		s := "Gravity" + phrase + "a force because mass bends space and time."
		assert.Equal(t, AssertionReason, Classify(s, nil), s)
	}
}

func TestHasCausalClause(t *testing.T) {
	tests := []struct {
		name   string
		tokens string
		want   bool
	}{
		{"as opens clause", "He/PRP left/VBD early/RB as/IN the/DT sun/NN rose/VBD ./.", true},
		{"although", "Although/IN it/PRP rained/VBD ,/, the/DT match/NN continued/VBD ./.", true},
		{"though with modal", "They/PRP stayed/VBD though/IN the/DT old/JJ roof/NN might/MD fail/VB", true},
		{"known as", "The/DT city/NN known/VBN as/IN Paris/NNP was/VBD founded/VBN", false},
		{"such as", "Metals/NNS such/JJ as/IN iron/NN rust/VBP", false},
		{"prepositional since", "It/PRP has/VBZ rained/VBN since/IN Monday/NNP ./.", false},
		{"marker not tagged IN", "He/PRP worked/VBD as/RB a/DT clerk/NN", false},
		{"untagged", "because it rained", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tagged(tt.tokens)
			if tt.name == "untagged" {
				tokens = nlp.SimpleTokens(tt.tokens)
			}
			assert.Equal(t, tt.want, HasCausalClause(tokens))
		})
	}
}

func TestClassify_ClauseMarkerWithoutKeyword(t *testing.T) {
	s := "He left early as the sun rose."
	assert.Equal(t, MCQ, Classify(s, nil))
	assert.Equal(t, AssertionReason, Classify(s, tagged("He/PRP left/VBD early/RB as/IN the/DT sun/NN rose/VBD ./.")))
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]Type{"mcq": MCQ, "TF": TrueFalse, "assertion_reason": AssertionReason} {
		got, ok := ParseType(in)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := ParseType("essay")
	assert.False(t, ok)
}
