// Package quiz builds questions from classified sentences and their
// entities, and renders them for output.
package quiz

import "github.com/dgallion1/quizgest/internal/nlp"

// Kind is the variant of a Question.
type Kind string

const (
	KindMCQ             Kind = "mcq"
	KindTrueFalse       Kind = "true_false"
	KindAssertionReason Kind = "assertion_reason"
	KindOpen            Kind = "open"
)

const (
	// DefaultBlank replaces the answer in an MCQ prompt.
	DefaultBlank = "_____"
	// TrueFalseMarker is appended to true/false statements.
	TrueFalseMarker = "(True/False)"
	// UnknownReason stands in when no reason can be split off.
	UnknownReason = "[Unknown]"
)

// Question is one generated question. Kind selects which fields are set:
// MCQ uses Options, Answer and EntityType; AssertionReason uses Assertion
// and Reason. Prompt is always the rendered question text.
type Question struct {
	Kind       Kind           `json:"kind" yaml:"kind"`
	Prompt     string         `json:"prompt" yaml:"prompt"`
	Options    []string       `json:"options,omitempty" yaml:"options,omitempty"`
	Answer     string         `json:"answer,omitempty" yaml:"answer,omitempty"`
	EntityType nlp.EntityType `json:"entity_type,omitempty" yaml:"entity_type,omitempty"`
	Assertion  string         `json:"assertion,omitempty" yaml:"assertion,omitempty"`
	Reason     string         `json:"reason,omitempty" yaml:"reason,omitempty"`
	Sentence   string         `json:"sentence" yaml:"sentence"`
}
