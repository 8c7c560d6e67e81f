package quiz

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/quizgest/internal/classify"
	"github.com/dgallion1/quizgest/internal/nlp"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

var (
	curie    = nlp.Entity{Text: "Marie Curie", Type: nlp.Person}
	einstein = nlp.Entity{Text: "Albert Einstein", Type: nlp.Person}
	y1898    = nlp.Entity{Text: "1898", Type: nlp.Date}
	y1905    = nlp.Entity{Text: "1905", Type: nlp.Date}
)

func TestDistractors_Example(t *testing.T) {
	pool := []nlp.Entity{curie, y1898, einstein}
	got := Distractors(curie, pool, seeded(1))
	assert.Equal(t, []string{"Albert Einstein"}, got)
}

func TestDistractors_None(t *testing.T) {
	pool := []nlp.Entity{curie, curie, y1898}
	assert.Empty(t, Distractors(curie, pool, seeded(1)))
	assert.Empty(t, Distractors(curie, nil, seeded(1)))
}

func TestDistractors_SizeAndExclusion(t *testing.T) {
	rng := seeded(42)
	names := []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Donald"}

	for iter := 0; iter < 300; iter++ {
		var pool []nlp.Entity
		for i := rng.IntN(10); i > 0; i-- {
			pool = append(pool, nlp.Entity{Text: names[rng.IntN(len(names))], Type: nlp.Person})
			if rng.IntN(3) == 0 {
				pool = append(pool, nlp.Entity{Text: names[rng.IntN(len(names))], Type: nlp.Org})
			}
		}
		correct := nlp.Entity{Text: names[rng.IntN(len(names))], Type: nlp.Person}

		distinct := make(map[string]bool)
		for _, e := range pool {
			if e.Type == correct.Type && e.Text != correct.Text {
				distinct[e.Text] = true
			}
		}

		got := Distractors(correct, pool, rng)
		require.Len(t, got, min(3, len(distinct)), "iteration %d", iter)
		seen := make(map[string]bool)
		for _, d := range got {
			assert.NotEqual(t, correct.Text, d)
			assert.True(t, distinct[d], "distractor %q not a same-type candidate", d)
			assert.False(t, seen[d], "distractor %q repeated", d)
			seen[d] = true
		}
	}
}

func TestNewMCQ_Example(t *testing.T) {
	q := NewMCQ("Marie Curie discovered radium in 1898.", curie, []string{"Albert Einstein"}, "", seeded(3))

	assert.Equal(t, KindMCQ, q.Kind)
	assert.Equal(t, "_____ discovered radium in 1898.", q.Prompt)
	assert.ElementsMatch(t, []string{"Albert Einstein", "Marie Curie"}, q.Options)
	assert.Equal(t, "Marie Curie", q.Answer)
	assert.Equal(t, nlp.Person, q.EntityType)
	assert.True(t, Validate(&q))
}

func TestNewMCQ_BlanksFirstOccurrenceOnly(t *testing.T) {
	paris := nlp.Entity{Text: "Paris", Type: nlp.GPE}
	q := NewMCQ("Paris is large and Paris is old.", paris, []string{"Rome"}, "[?]", seeded(3))
	assert.Equal(t, "[?] is large and Paris is old.", q.Prompt)
}

func TestNewMCQ_AnswerExactlyOnce(t *testing.T) {
	rng := seeded(9)
	for n := 1; n <= 3; n++ {
		d := []string{"Ada", "Grace", "Alan"}[:n]
		q := NewMCQ("Marie Curie discovered radium in 1898.", curie, d, "", rng)
		require.Len(t, q.Options, n+1)
		hits := 0
		for _, o := range q.Options {
			if o == q.Answer {
				hits++
			}
		}
		assert.Equal(t, 1, hits)
		assert.Subset(t, q.Options, d)
	}
}

func TestNewMCQ_Deterministic(t *testing.T) {
	d := []string{"Ada", "Grace", "Alan"}
	a := NewMCQ("Marie Curie discovered radium.", curie, d, "", seeded(5))
	b := NewMCQ("Marie Curie discovered radium.", curie, d, "", seeded(5))
	assert.Equal(t, a.Options, b.Options)
}

func TestEntityQuestions(t *testing.T) {
	s := "Marie Curie discovered radium in 1898."
	got := EntityQuestions(s, []nlp.Entity{curie, y1898, curie}, "")
	assert.Equal(t, []string{
		"Who is Marie Curie?",
		"When did Marie Curie discovered radium in _____?",
	}, got)

	got = EntityQuestions("The Dutch traded spices across the ocean.", []nlp.Entity{{Text: "Dutch", Type: nlp.NORP}}, "")
	assert.Equal(t, []string{"What is meant by: 'The Dutch traded spices across the ocean.'?"}, got)
}

func TestGenericQuestion(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"The mitochondrion is the powerhouse of the cell.", "What is the powerhouse of the cell?"},
		{"Whales are the largest mammals.", "What are the largest mammals?"},
		{"This is the start and that is the end.", "What is meant by: 'This is the start and that is the end.'?"},
		{"  Light bends near massive objects.  ", "What is meant by: 'Light bends near massive objects.'?"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GenericQuestion(tt.in), tt.in)
	}
}

func TestNewTrueFalse(t *testing.T) {
	q := NewTrueFalse("  Water boils at one hundred degrees at sea level. ")
	assert.Equal(t, "Water boils at one hundred degrees at sea level. (True/False)", q.Prompt)
	assert.True(t, Validate(&q))
}

func TestNewAssertionReason(t *testing.T) {
	q := NewAssertionReason("The treaty was signed because both nations wanted peace.")
	assert.Equal(t, "Assertion: The treaty was signed. Reason: both nations wanted peace.", q.Prompt)
	assert.Equal(t, "The treaty was signed", q.Assertion)
	assert.Equal(t, "both nations wanted peace", q.Reason)

	q = NewAssertionReason("Therefore the empire fell.")
	assert.Equal(t, "Assertion: Therefore the empire fell. Reason: [Unknown].", q.Prompt)

	q = NewAssertionReason("It rained because of clouds because of wind.")
	assert.Equal(t, UnknownReason, q.Reason)
	assert.True(t, Validate(&q))
}

func TestSynthesize(t *testing.T) {
	items := []Item{
		{Sentence: "Marie Curie discovered radium in 1898.", Type: classify.MCQ, Entities: []nlp.Entity{curie, y1898}},
		{Sentence: "Albert Einstein published relativity in 1905.", Type: classify.MCQ, Entities: []nlp.Entity{einstein, y1905}},
		{Sentence: "The treaty was signed because both nations wanted peace.", Type: classify.AssertionReason},
		{Sentence: "Water boils at one hundred degrees at sea level.", Type: classify.TrueFalse},
		{Sentence: "Ibn Battuta crossed the Sahara twice.", Type: classify.MCQ, Entities: []nlp.Entity{{Text: "Sahara", Type: nlp.Location}}},
	}

	qs := NewSynthesizer("", seeded(11)).Synthesize(items)

	kinds := make(map[Kind]int)
	for _, q := range qs {
		kinds[q.Kind]++
		assert.True(t, Validate(&q), "invalid question %+v", q)
	}
	assert.Equal(t, 4, kinds[KindMCQ])
	assert.Equal(t, 1, kinds[KindAssertionReason])
	assert.Equal(t, 1, kinds[KindTrueFalse])
	assert.Equal(t, 1, kinds[KindOpen])

	assert.Equal(t, "_____ discovered radium in 1898.", qs[0].Prompt)
	assert.ElementsMatch(t, []string{"Marie Curie", "Albert Einstein"}, qs[0].Options)
	assert.Equal(t, "Marie Curie discovered radium in _____.", qs[1].Prompt)
	assert.ElementsMatch(t, []string{"1898", "1905"}, qs[1].Options)
	assert.Equal(t, "Where is Sahara?", qs[len(qs)-1].Prompt)
}

func TestSynthesize_RepeatedEntityYieldsOneMCQ(t *testing.T) {
	items := []Item{
		{Sentence: "Rome and Rome again.", Type: classify.MCQ, Entities: []nlp.Entity{{Text: "Rome", Type: nlp.GPE}, {Text: "Rome", Type: nlp.GPE}}},
		{Sentence: "Athens was older.", Type: classify.MCQ, Entities: []nlp.Entity{{Text: "Athens", Type: nlp.GPE}}},
	}
	qs := NewSynthesizer("", seeded(2)).Questions(items[0], Pool(items))
	require.Len(t, qs, 1)
	assert.Equal(t, "_____ and Rome again.", qs[0].Prompt)
}

func TestSynthesize_Deterministic(t *testing.T) {
	var items []Item
	for i := 0; i < 6; i++ {
		items = append(items, Item{
			Sentence: fmt.Sprintf("Person%d met Person%d in city%d.", i, i+1, i),
			Type:     classify.MCQ,
			Entities: []nlp.Entity{
				{Text: fmt.Sprintf("Person%d", i), Type: nlp.Person},
				{Text: fmt.Sprintf("city%d", i), Type: nlp.GPE},
			},
		})
	}
	a := NewSynthesizer("", seeded(77)).Synthesize(items)
	b := NewSynthesizer("", seeded(77)).Synthesize(items)
	assert.Equal(t, a, b)
}

func TestValidate(t *testing.T) {
	good := NewMCQ("Marie Curie discovered radium.", curie, []string{"Ada"}, "", seeded(1))

	tests := []struct {
		name string
		edit func(q *Question)
		want bool
	}{
		{"valid", func(q *Question) {}, true},
		{"unknown kind", func(q *Question) { q.Kind = "essay" }, false},
		{"empty prompt", func(q *Question) { q.Prompt = "  " }, false},
		{"no options", func(q *Question) { q.Options = nil }, false},
		{"too many options", func(q *Question) { q.Options = []string{"a", "b", "c", "d", "Marie Curie"} }, false},
		{"answer missing", func(q *Question) { q.Options = []string{"Ada", "Grace"} }, false},
		{"answer twice", func(q *Question) { q.Options = []string{"Marie Curie", "Marie Curie"} }, false},
		{"blank option", func(q *Question) { q.Options = []string{"", "Marie Curie"} }, false},
		{"only the answer", func(q *Question) { q.Options = []string{"Marie Curie"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := good
			q.Options = append([]string(nil), good.Options...)
			tt.edit(&q)
			assert.Equal(t, tt.want, Validate(&q))
		})
	}

	assert.False(t, Validate(nil))
	open := NewOpen("s", "Who is Marie Curie?")
	assert.True(t, Validate(&open))
	tf := Question{Kind: KindTrueFalse, Prompt: "Missing the marker."}
	assert.False(t, Validate(&tf))
}
