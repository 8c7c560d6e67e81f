// Package selector ranks the sentences of cleaned text by TF-IDF weight
// and keeps the highest scoring ones.
package selector

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/quizgest/internal/nlp"
)

// DefaultMinLength is the shortest sentence, in characters, that is scored.
const DefaultMinLength = 30

// ErrInsufficientSentences is returned when fewer than two sentences
// survive segmentation and the length floor.
var ErrInsufficientSentences = errors.New("insufficient sentences")

// ScoredSentence is a sentence with its TF-IDF score and its position
// among the scored sentences.
type ScoredSentence struct {
	Text  string  `json:"text" yaml:"text"`
	Score float64 `json:"score" yaml:"score"`
	Index int     `json:"index" yaml:"index"`
}

// Selector segments text and picks the top sentences.
type Selector struct {
	Segmenter nlp.Segmenter
	MinLength int  // 0 disables the floor
	Stem      bool // snowball-stem terms before weighting
}

// New returns a Selector with the baseline 30 character floor.
func New(seg nlp.Segmenter) *Selector {
	return &Selector{Segmenter: seg, MinLength: DefaultMinLength}
}

// Sentences segments text and applies the length floor.
func (s *Selector) Sentences(text string) ([]string, error) {
	seg := s.Segmenter
	if seg == nil {
		seg = nlp.SimpleSegmenter{}
	}
	raw, err := seg.Segment(text)
	if err != nil {
		return nil, fmt.Errorf("segment text: %w", err)
	}
	var out []string
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" || utf8.RuneCountInString(r) < s.MinLength {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Select returns the n highest scoring sentences of text, best first.
// Equal scores keep document order. n <= 0 or n beyond the sentence
// count returns every sentence.
func (s *Selector) Select(text string, n int) ([]ScoredSentence, error) {
	sentences, err := s.Sentences(text)
	if err != nil {
		return nil, err
	}
	if len(sentences) < 2 {
		return nil, fmt.Errorf("%w: %d found, need at least 2", ErrInsufficientSentences, len(sentences))
	}

	scores := Score(sentences, s.Stem)
	ranked := make([]ScoredSentence, len(sentences))
	for i, text := range sentences {
		ranked[i] = ScoredSentence{Text: text, Score: scores[i], Index: i}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// Score computes each sentence's summed, L2-normalised TF-IDF weights,
// treating every sentence as a document. tf is the raw term count and
// idf = ln((1+N)/(1+df)) + 1. A sentence with no terms scores 0.
func Score(sentences []string, stem bool) []float64 {
	counts := make([]map[string]int, len(sentences))
	df := make(map[string]int)
	for i, s := range sentences {
		tf := make(map[string]int)
		for _, term := range nlp.Terms(s, stem) {
			tf[term]++
		}
		for term := range tf {
			df[term]++
		}
		counts[i] = tf
	}

	n := float64(len(sentences))
	scores := make([]float64, len(sentences))
	for i, tf := range counts {
		var sum, sumSq float64
		for term, c := range tf {
			w := float64(c) * (math.Log((1+n)/(1+float64(df[term]))) + 1)
			sum += w
			sumSq += w * w
		}
		if sumSq > 0 {
			scores[i] = sum / math.Sqrt(sumSq)
		}
	}
	return scores
}
