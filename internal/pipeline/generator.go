package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/quizgest/internal/classify"
	"github.com/dgallion1/quizgest/internal/config"
	"github.com/dgallion1/quizgest/internal/document"
	"github.com/dgallion1/quizgest/internal/nlp"
	"github.com/dgallion1/quizgest/internal/normalize"
	"github.com/dgallion1/quizgest/internal/quiz"
	"github.com/dgallion1/quizgest/internal/selector"
)

// Result is everything one generation run produced.
type Result struct {
	Title       string                    `json:"title" yaml:"title"`
	CleanedText string                    `json:"-" yaml:"-"`
	ContentHash string                    `json:"content_hash" yaml:"content_hash"`
	Seed        uint64                    `json:"seed" yaml:"seed"`
	Sentences   []selector.ScoredSentence `json:"sentences" yaml:"sentences"`
	Items       []quiz.Item               `json:"items" yaml:"items"`
	Questions   []quiz.Question           `json:"questions" yaml:"questions"`
	Dropped     int                       `json:"dropped,omitempty" yaml:"dropped,omitempty"`
	Duration    time.Duration             `json:"duration" yaml:"duration"`
}

// Pool returns the distractor pool the run drew from.
func (r *Result) Pool() []nlp.Entity {
	return quiz.Pool(r.Items)
}

// Request overrides generator defaults for one run. Zero fields keep the
// defaults.
type Request struct {
	TopN int
	Seed uint64

	// OnStage, if set, is called as each stage starts.
	OnStage func(status JobStatus)
}

// Generator runs documents through cleaning, sentence selection,
// classification and question synthesis. It is safe for concurrent use
// when its analyzer is; every run draws from its own random source.
type Generator struct {
	analyzer  nlp.Analyzer
	selector  *selector.Selector
	normalize normalize.Options
	topN      int
	seed      uint64
	blank     string
	log       *slog.Logger
}

// NewGenerator builds a generator from cfg. The analyzer stays owned by
// the caller.
func NewGenerator(cfg config.Config, an nlp.Analyzer, log *slog.Logger) (*Generator, error) {
	seg, err := nlp.NewSegmenter(cfg.Segmenter)
	if err != nil {
		return nil, err
	}
	return &Generator{
		analyzer: an,
		selector: &selector.Selector{
			Segmenter: seg,
			MinLength: cfg.MinSentenceLength,
			Stem:      cfg.Stem,
		},
		normalize: normalize.Options{MinLineLength: cfg.MinLineLength},
		topN:      cfg.TopN,
		seed:      cfg.Seed,
		blank:     cfg.BlankMarker,
		log:       log,
	}, nil
}

// Run generates questions for a parsed document with the defaults.
func (g *Generator) Run(ctx context.Context, doc *document.Document) (*Result, error) {
	if doc == nil {
		doc = &document.Document{}
	}
	return g.FromCleaned(ctx, doc.Title, g.Clean(doc), Request{})
}

// RunText generates questions for unpaginated text.
func (g *Generator) RunText(ctx context.Context, title, text string, req Request) (*Result, error) {
	return g.FromCleaned(ctx, title, normalize.CleanText(text, g.normalize), req)
}

// Clean normalizes a document into the text later stages read. Header and
// footer detection only runs on paginated documents.
func (g *Generator) Clean(doc *document.Document) string {
	if doc != nil && doc.Paginated {
		if dropped := normalize.Boilerplate(doc); len(dropped) > 0 {
			g.log.Debug("removing repeated headers", "lines", len(dropped))
		}
	}
	return normalize.Clean(doc, g.normalize)
}

// FromCleaned runs selection, classification and synthesis over cleaned
// text.
func (g *Generator) FromCleaned(ctx context.Context, title, cleaned string, req Request) (*Result, error) {
	start := time.Now()
	stage := func(s JobStatus) {
		if req.OnStage != nil {
			req.OnStage(s)
		}
	}

	res := &Result{
		Title:       title,
		CleanedText: cleaned,
		ContentHash: ContentHashHex([]byte(cleaned)),
		Seed:        req.Seed,
	}
	if res.Seed == 0 {
		res.Seed = g.seed
	}
	if res.Seed == 0 {
		res.Seed = rand.Uint64()
	}

	stage(StatusSelecting)
	sentences, err := g.Select(cleaned, req.TopN)
	if err != nil {
		return nil, err
	}
	res.Sentences = sentences
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stage(StatusGenerating)
	items, err := g.Analyze(ctx, sentences)
	if err != nil {
		return nil, err
	}
	res.Items = items

	rng := rand.New(rand.NewPCG(res.Seed, res.Seed^0x9e3779b97f4a7c15))
	for _, q := range quiz.NewSynthesizer(g.blank, rng).Synthesize(items) {
		if !quiz.Validate(&q) {
			res.Dropped++
			continue
		}
		res.Questions = append(res.Questions, q)
	}

	res.Duration = time.Since(start)
	g.log.Debug("generation complete",
		"sentences", len(sentences),
		"questions", len(res.Questions),
		"dropped", res.Dropped,
		"seed", res.Seed,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// Select picks the top scoring sentences of cleaned text. topN <= 0 uses
// the configured count.
func (g *Generator) Select(cleaned string, topN int) ([]selector.ScoredSentence, error) {
	if topN <= 0 {
		topN = g.topN
	}
	sentences, err := g.selector.Select(cleaned, topN)
	if err != nil {
		return nil, fmt.Errorf("select sentences: %w", err)
	}
	return sentences, nil
}

// Analyze finds entities in and classifies each selected sentence.
func (g *Generator) Analyze(ctx context.Context, sentences []selector.ScoredSentence) ([]quiz.Item, error) {
	items := make([]quiz.Item, 0, len(sentences))
	for _, s := range sentences {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		an, err := g.analyzer.Analyze(s.Text)
		if errors.Is(err, nlp.ErrEmptyInput) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("analyze sentence %d: %w", s.Index, err)
		}
		items = append(items, quiz.Item{
			Sentence: s.Text,
			Type:     classify.Classify(s.Text, an.Tokens),
			Entities: an.Entities,
		})
	}
	return items, nil
}
