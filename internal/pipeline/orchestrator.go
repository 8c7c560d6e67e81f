package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/quizgest/internal/config"
	"github.com/dgallion1/quizgest/internal/parser"
	"github.com/dgallion1/quizgest/internal/quiz"
	"github.com/dgallion1/quizgest/internal/store"
)

// QuizStore is the persistence the workers need.
type QuizStore interface {
	SaveQuiz(ctx context.Context, q *store.Quiz, questions []quiz.Question) error
	FindByContentHash(ctx context.Context, hash string) (*store.Quiz, error)
}

// Orchestrator manages the quiz generation pipeline.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	gen   *Generator
	store QuizStore
	stats *RunStats
	log   *slog.Logger
	cfg   config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, gen *Generator, st QuizStore, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		gen:   gen,
		store: st,
		stats: NewRunStats(cfg.StatsWindow),
		log:   log,
		cfg:   cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	parseOpts := parser.Options{PDFFallbackPdftotext: o.cfg.PDFFallbackPdftotext}
	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.gen, o.store, o.stats, parseOpts, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns run statistics for the window.
func (o *Orchestrator) Stats() StatsSnapshot {
	return o.stats.Snapshot()
}

// GenerateText runs the generator synchronously on pasted text and
// records the run.
func (o *Orchestrator) GenerateText(ctx context.Context, title, text string, req Request) (*Result, error) {
	start := time.Now()
	res, err := o.gen.RunText(ctx, title, text, req)
	if err != nil {
		o.stats.RecordFailure(time.Since(start))
		return nil, err
	}
	o.stats.Record(time.Since(start), len(res.Questions))
	return res, nil
}
