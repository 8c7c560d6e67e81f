package nlp

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"
)

// ErrClosed is returned by Analyze after Close.
var ErrClosed = errors.New("analyzer closed")

// ProseAnalyzer tags and extracts entities with prose's pretrained English
// models, topped up with pattern-based DATE, TIME, MONEY, PERCENT, ORDINAL
// and CARDINAL spans.
// The tagger and NER model are loaded once and shared read-only by every
// call.
type ProseAnalyzer struct {
	patterns bool

	mu    sync.RWMutex
	model *prose.Model
}

// NewProseAnalyzer loads prose's embedded model. withPatterns enables the
// numeric pattern recognizer alongside the statistical model.
func NewProseAnalyzer(withPatterns bool) (*ProseAnalyzer, error) {
	warm, err := prose.NewDocument("Load the model.", prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("load prose model: %w", err)
	}
	return &ProseAnalyzer{patterns: withPatterns, model: warm.Model}, nil
}

func (a *ProseAnalyzer) Analyze(sentence string) (Analysis, error) {
	if strings.TrimSpace(sentence) == "" {
		return Analysis{}, ErrEmptyInput
	}
	a.mu.RLock()
	model := a.model
	a.mu.RUnlock()
	if model == nil {
		return Analysis{}, ErrClosed
	}

	doc, err := prose.NewDocument(sentence, prose.WithSegmentation(false), prose.UsingModel(model))
	if err != nil {
		return Analysis{}, fmt.Errorf("prose document: %w", err)
	}

	tokens := make([]Token, 0, len(doc.Tokens()))
	for _, tok := range doc.Tokens() {
		tokens = append(tokens, Token{Text: tok.Text, Tag: tok.Tag})
	}

	var spans []span
	cursor := 0
	for _, ent := range doc.Entities() {
		s := locate(sentence, ent.Text, cursor)
		s.entity = Entity{Text: sentence[s.start:s.end], Type: ParseEntityType(ent.Label)}
		if s.end > s.start {
			cursor = s.end
			spans = append(spans, s)
		}
	}
	if a.patterns {
		spans = append(spans, matchPatterns(sentence)...)
	}

	return Analysis{Tokens: tokens, Entities: resolveSpans(spans)}, nil
}

// Close releases the model. Later calls to Analyze fail with ErrClosed.
func (a *ProseAnalyzer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.model = nil
	return nil
}

// locate finds text in sentence at or after from. prose re-joins entity
// tokens with single spaces, so a miss retries with flexible whitespace.
func locate(sentence, text string, from int) span {
	if idx := strings.Index(sentence[from:], text); idx >= 0 {
		return span{start: from + idx, end: from + idx + len(text)}
	}
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return span{start: from, end: from}
	}
	idx := strings.Index(sentence[from:], parts[0])
	if idx < 0 {
		return span{start: from, end: from}
	}
	start := from + idx
	end := start + len(parts[0])
	for _, p := range parts[1:] {
		next := strings.Index(sentence[end:], p)
		if next < 0 || strings.TrimSpace(sentence[end:end+next]) != "" {
			return span{start: start, end: end}
		}
		end += next + len(p)
	}
	return span{start: start, end: end}
}

// ProseSegmenter splits text into sentences with prose's punkt-based
// segmenter, which knows common abbreviations.
type ProseSegmenter struct{}

func (ProseSegmenter) Segment(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	doc, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("prose segment: %w", err)
	}
	var out []string
	for _, s := range doc.Sentences() {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}
