package quiz

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/quizgest/internal/classify"
	"github.com/dgallion1/quizgest/internal/nlp"
)

// Pair is one row of the input/output table: a context sentence, the
// question text generated for it, and its archetype.
type Pair struct {
	Input  string        `json:"input" yaml:"input"`
	Output string        `json:"output" yaml:"output"`
	Type   classify.Type `json:"type" yaml:"type"`
}

// Pairs classifies each sentence and renders its question text. MCQ rows
// carry the templated entity questions, joined with "; ". Blank sentences
// are skipped.
func Pairs(an nlp.Analyzer, sentences []string, blank string) ([]Pair, error) {
	var out []Pair
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		res, err := an.Analyze(s)
		if errors.Is(err, nlp.ErrEmptyInput) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("analyze sentence: %w", err)
		}

		typ := classify.Classify(s, res.Tokens)
		var output string
		switch typ {
		case classify.AssertionReason:
			output = NewAssertionReason(s).Prompt
		case classify.TrueFalse:
			output = NewTrueFalse(s).Prompt
		default:
			output = strings.Join(EntityQuestions(s, res.Entities, blank), "; ")
		}
		out = append(out, Pair{Input: s, Output: output, Type: typ})
	}
	return out, nil
}

// WriteTable prints pairs as a fixed-width table. limit <= 0 prints all.
func WriteTable(w io.Writer, pairs []Pair, limit int) error {
	if limit > 0 && limit < len(pairs) {
		pairs = pairs[:limit]
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%-60s | %-60s | Type\n", "Input (Context)", "Output (Question)")
	bw.WriteString(strings.Repeat("-", 150) + "\n")
	for _, p := range pairs {
		fmt.Fprintf(bw, "%-60s | %-60s | %s\n", p.Input, p.Output, p.Type)
	}
	return bw.Flush()
}

// ReadSentences reads one sentence per line, skipping blank lines.
func ReadSentences(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read sentences: %w", err)
	}
	return out, nil
}

// WriteSentences writes one sentence per line.
func WriteSentences(w io.Writer, sentences []string) error {
	bw := bufio.NewWriter(w)
	for _, s := range sentences {
		bw.WriteString(strings.TrimSpace(s))
		bw.WriteString("\n")
	}
	return bw.Flush()
}
