package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/quizgest/internal/parser"
	"github.com/dgallion1/quizgest/internal/store"
)

// Worker processes a single document job.
type Worker struct {
	gen       *Generator
	store     QuizStore
	stats     *RunStats
	parseOpts parser.Options
	log       *slog.Logger
}

func NewWorker(gen *Generator, st QuizStore, stats *RunStats, parseOpts parser.Options, log *slog.Logger) *Worker {
	return &Worker{
		gen:       gen,
		store:     st,
		stats:     stats,
		parseOpts: parseOpts,
		log:       log,
	}
}

// Process runs the full pipeline for a job: parse, clean, dedup, select,
// generate and store.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	start := time.Now()
	fail := func(phase string, err error) {
		log.Error(phase+" failed", "error", err)
		job.AddError(fmt.Sprintf("%s: %s", phase, err))
		job.SetStatus(StatusFailed, phase)
		w.stats.RecordFailure(time.Since(start))
	}

	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename, w.parseOpts)
	if err != nil {
		fail("parsing", err)
		return
	}
	doc, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	job.releaseFileData()
	if err != nil {
		fail("parsing", err)
		return
	}
	if job.Title != "" {
		doc.Title = job.Title
	}
	job.SetPages(len(doc.Pages))
	log.Info("parsed document", "pages", len(doc.Pages))

	// Phase 2: Clean and dedup on the cleaned text.
	job.SetStatus(StatusCleaning, "cleaning")
	cleaned := w.gen.Clean(doc)
	hash := ContentHashHex([]byte(cleaned))
	job.SetQuiz("", hash)

	if !job.Force {
		existing, err := w.store.FindByContentHash(ctx, hash)
		switch {
		case err == nil:
			log.Info("duplicate document, skipping", "existing_quiz_id", existing.ID)
			job.SetQuiz(existing.ID, hash)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		case !errors.Is(err, store.ErrNotFound):
			log.Warn("dedup check failed, proceeding", "error", err)
		}
	}

	// Phase 3: Select sentences and generate questions.
	res, err := w.gen.FromCleaned(ctx, doc.Title, cleaned, Request{
		TopN: job.TopN,
		Seed: job.Seed,
		OnStage: func(s JobStatus) {
			job.SetStatus(s, string(s))
		},
	})
	if err != nil {
		fail("generating", err)
		return
	}
	job.SetGenerated(len(res.Sentences), len(res.Questions), res.Dropped)
	log.Info("generation complete", "sentences", len(res.Sentences), "questions", len(res.Questions))

	// Phase 4: Store.
	job.SetStatus(StatusStoring, "storing")
	q := &store.Quiz{
		Title:       doc.Title,
		Filename:    job.Filename,
		ContentHash: hash,
		Seed:        res.Seed,
	}
	if err := w.store.SaveQuiz(ctx, q, res.Questions); err != nil {
		fail("storing", err)
		return
	}
	job.SetQuiz(q.ID, hash)

	w.stats.Record(time.Since(start), len(res.Questions))
	log.Info("quiz stored", "quiz_id", q.ID, "duration_ms", time.Since(start).Milliseconds())
	job.SetStatus(StatusCompleted, "done")
}
