package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProseSegmenter(t *testing.T) {
	got, err := ProseSegmenter{}.Segment("The cat sat on the mat. The dog barked at the mailman.")
	require.NoError(t, err)
	assert.Equal(t, []string{"The cat sat on the mat.", "The dog barked at the mailman."}, got)

	got, err = ProseSegmenter{}.Segment("  ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProseAnalyzer_PatternsAndTags(t *testing.T) {
	a, err := NewProseAnalyzer(true)
	require.NoError(t, err)
	defer a.Close()

	res, err := a.Analyze("Marie Curie discovered radium in 1898.")
	require.NoError(t, err)

	assert.Contains(t, res.Entities, Entity{Text: "1898", Type: Date})
	require.NotEmpty(t, res.Tokens)
	for _, tok := range res.Tokens {
		assert.NotEmpty(t, tok.Tag, "token %q should be tagged", tok.Text)
	}
}

func TestProseAnalyzer_EmptyInput(t *testing.T) {
	a, err := NewProseAnalyzer(false)
	require.NoError(t, err)
	_, err = a.Analyze("")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestProseAnalyzer_ModelLoadedOnce(t *testing.T) {
	a, err := NewProseAnalyzer(false)
	require.NoError(t, err)
	model := a.model
	require.NotNil(t, model)

	for _, s := range []string{
		"Marie Curie discovered radium in 1898.",
		"Albert Einstein published relativity theory in 1905.",
		"The treaty was signed in Paris.",
	} {
		res, err := a.Analyze(s)
		require.NoError(t, err)
		assert.NotEmpty(t, res.Tokens)
		assert.Same(t, model, a.model, "analyzer should keep its model across calls")
	}
}

func TestProseAnalyzer_Close(t *testing.T) {
	a, err := NewProseAnalyzer(true)
	require.NoError(t, err)
	require.NoError(t, a.Close())
	assert.Nil(t, a.model)
	require.NoError(t, a.Close())

	_, err = a.Analyze("Marie Curie discovered radium in 1898.")
	assert.ErrorIs(t, err, ErrClosed)
}
