package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/quizgest/internal/parser"
	"github.com/dgallion1/quizgest/internal/pipeline"
	"github.com/dgallion1/quizgest/internal/store"
	"github.com/dgallion1/quizgest/internal/watch"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		debounce time.Duration
		existing bool
	)
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Generate a stored quiz for every document saved into a directory",
		Long: `Watch turns each supported document created or rewritten in a directory
into a stored quiz. Unchanged content is skipped by its hash.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			log := opts.logger(cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			an, err := newAnalyzer(cfg)
			if err != nil {
				return err
			}
			defer an.Close()
			gen, err := newGenerator(cfg, an, log)
			if err != nil {
				return err
			}
			stats := pipeline.NewRunStats(cfg.StatsWindow)
			worker := pipeline.NewWorker(gen, st, stats, parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}, log)

			dir := args[0]
			w := watch.New(dir, log)
			w.Debounce = debounce
			defer w.Close()
			events, err := w.Watch(ctx)
			if err != nil {
				return err
			}

			if existing {
				paths, err := watch.Existing(dir)
				if err != nil {
					return err
				}
				for _, path := range paths {
					processFile(ctx, worker, path, log)
				}
			}

			log.Info("watching", "dir", dir)
			for ev := range events {
				log.Debug("file changed", "path", ev.Path, "op", ev.Op)
				processFile(ctx, worker, ev.Path, log)
			}

			s := stats.Snapshot()
			log.Info("stopped watching", "runs", s.Runs, "failures", s.Failures, "questions", s.Questions)
			return nil
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Wait this long after the last write before processing a file")
	cmd.Flags().BoolVar(&existing, "existing", true, "Process the documents already in the directory first")
	return cmd
}

// processFile runs one file through a worker as a job and logs the
// outcome.
func processFile(ctx context.Context, worker *pipeline.Worker, path string, log *slog.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn("read failed", "path", path, "error", err)
		return
	}
	job := pipeline.NewJob(filepath.Base(path), "", data)
	worker.Process(ctx, job)

	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted:
		log.Info("quiz generated", "path", path, "quiz_id", snap.QuizID, "questions", snap.Progress.Questions)
	case pipeline.StatusDupSkipped:
		log.Info("unchanged, skipped", "path", path, "quiz_id", snap.QuizID)
	default:
		log.Warn("generation failed", "path", path, "status", snap.Status, "errors", fmt.Sprint(snap.Progress.Errors))
	}
}
