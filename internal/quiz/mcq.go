package quiz

import (
	"math/rand/v2"
	"strings"

	"github.com/dgallion1/quizgest/internal/nlp"
)

// MaxDistractors is the most wrong options an MCQ carries.
const MaxDistractors = 3

// Distractors samples up to three wrong answers for correct from pool.
// Candidates are the distinct texts of same-type entities other than the
// correct text; min(3, k) of them are drawn without replacement. An empty
// result means no MCQ can be built for correct.
func Distractors(correct nlp.Entity, pool []nlp.Entity, rng *rand.Rand) []string {
	seen := make(map[string]bool)
	var candidates []string
	for _, e := range pool {
		if e.Type != correct.Type || e.Text == correct.Text || seen[e.Text] {
			continue
		}
		seen[e.Text] = true
		candidates = append(candidates, e.Text)
	}

	n := min(MaxDistractors, len(candidates))
	if n == 0 {
		return nil
	}
	out := make([]string, n)
	for i, p := range rng.Perm(len(candidates))[:n] {
		out[i] = candidates[p]
	}
	return out
}

// NewMCQ blanks the first occurrence of answer in sentence and shuffles
// the answer in among the distractors. An empty blank uses DefaultBlank.
func NewMCQ(sentence string, answer nlp.Entity, distractors []string, blank string, rng *rand.Rand) Question {
	if blank == "" {
		blank = DefaultBlank
	}
	options := make([]string, 0, len(distractors)+1)
	options = append(options, distractors...)
	options = append(options, answer.Text)
	rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

	return Question{
		Kind:       KindMCQ,
		Prompt:     strings.Replace(sentence, answer.Text, blank, 1),
		Options:    options,
		Answer:     answer.Text,
		EntityType: answer.Type,
		Sentence:   sentence,
	}
}
