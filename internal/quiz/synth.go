package quiz

import (
	"math/rand/v2"

	"github.com/dgallion1/quizgest/internal/classify"
	"github.com/dgallion1/quizgest/internal/nlp"
)

// Item is a classified sentence and the entities found in it.
type Item struct {
	Sentence string        `json:"sentence" yaml:"sentence"`
	Type     classify.Type `json:"type" yaml:"type"`
	Entities []nlp.Entity  `json:"entities" yaml:"entities"`
}

// Pool concatenates the entities of every item, duplicates kept.
func Pool(items []Item) []nlp.Entity {
	var pool []nlp.Entity
	for _, it := range items {
		pool = append(pool, it.Entities...)
	}
	return pool
}

// Synthesizer turns items into questions. It owns its random source; use
// one Synthesizer per run.
type Synthesizer struct {
	blank string
	rng   *rand.Rand
}

// NewSynthesizer returns a Synthesizer drawing from rng. An empty blank
// uses DefaultBlank.
func NewSynthesizer(blank string, rng *rand.Rand) *Synthesizer {
	if blank == "" {
		blank = DefaultBlank
	}
	return &Synthesizer{blank: blank, rng: rng}
}

// Synthesize builds questions for every item, drawing distractors from
// the pooled entities of all items.
func (s *Synthesizer) Synthesize(items []Item) []Question {
	pool := Pool(items)
	var out []Question
	for _, it := range items {
		out = append(out, s.Questions(it, pool)...)
	}
	return out
}

// Questions builds the questions for one item. AssertionReason and
// TrueFalse items yield one question each. MCQ items yield one MCQ per
// distinct entity that has a distractor; an MCQ item yielding none falls
// back to its templated open questions.
func (s *Synthesizer) Questions(it Item, pool []nlp.Entity) []Question {
	switch it.Type {
	case classify.AssertionReason:
		return []Question{NewAssertionReason(it.Sentence)}
	case classify.TrueFalse:
		return []Question{NewTrueFalse(it.Sentence)}
	}

	var out []Question
	done := make(map[nlp.Entity]bool)
	for _, e := range it.Entities {
		if done[e] {
			continue
		}
		done[e] = true
		if d := Distractors(e, pool, s.rng); len(d) > 0 {
			out = append(out, NewMCQ(it.Sentence, e, d, s.blank, s.rng))
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, text := range EntityQuestions(it.Sentence, it.Entities, s.blank) {
		out = append(out, NewOpen(it.Sentence, text))
	}
	return out
}
