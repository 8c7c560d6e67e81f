package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/quizgest/internal/config"
	"github.com/dgallion1/quizgest/internal/pipeline"
	"github.com/dgallion1/quizgest/internal/quiz"
	"github.com/dgallion1/quizgest/internal/store"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		outDir string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "generate <file>...",
		Short: "Generate questions from documents",
		Long: `Generate runs each document through cleaning, sentence selection,
classification and question synthesis. Files are processed concurrently.
Use "-" to read plain text from stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := quiz.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			log := opts.logger(cmd.ErrOrStderr())

			an, err := newAnalyzer(cfg)
			if err != nil {
				return err
			}
			defer an.Close()
			gen, err := newGenerator(cfg, an, log)
			if err != nil {
				return err
			}

			results := make([]*pipeline.Result, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(cfg.WorkerCount)
			for i, path := range args {
				g.Go(func() error {
					res, err := generateOne(ctx, gen, cmd.InOrStdin(), path, cfg)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					log.Debug("generated", "file", path, "questions", len(res.Questions), "seed", res.Seed)
					results[i] = res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if save {
				if err := saveResults(cmd.Context(), cfg.DBPath, args, results, cmd.ErrOrStderr()); err != nil {
					return err
				}
			}

			if outDir != "" {
				return writeResultFiles(outDir, args, results, f)
			}
			return writeResults(cmd.OutOrStdout(), args, results, f)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")
	cmd.Flags().StringVarP(&outDir, "output-dir", "o", "", "Write one <name>.quiz.<ext> file per input into this directory")
	cmd.Flags().BoolVar(&save, "save", false, "Also store each quiz in the database")
	return cmd
}

func generateOne(ctx context.Context, gen *pipeline.Generator, stdin io.Reader, path string, cfg config.Config) (*pipeline.Result, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return gen.RunText(ctx, "stdin", string(data), pipeline.Request{})
	}
	doc, err := parseFile(path, cfg)
	if err != nil {
		return nil, err
	}
	return gen.Run(ctx, doc)
}

func saveResults(ctx context.Context, dbPath string, paths []string, results []*pipeline.Result, w io.Writer) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	for i, res := range results {
		q := &store.Quiz{
			Title:       res.Title,
			Filename:    filepath.Base(paths[i]),
			ContentHash: res.ContentHash,
			Seed:        res.Seed,
		}
		if err := st.SaveQuiz(ctx, q, res.Questions); err != nil {
			return fmt.Errorf("save %s: %w", paths[i], err)
		}
		fmt.Fprintf(w, "saved %s as quiz %s\n", paths[i], q.ID)
	}
	return nil
}

func writeResults(w io.Writer, paths []string, results []*pipeline.Result, f quiz.Format) error {
	// A single document keeps the plain question list; several are
	// grouped by file.
	if len(results) == 1 {
		return quiz.Write(w, results[0].Questions, f)
	}
	switch f {
	case quiz.FormatText:
		for i, res := range results {
			fmt.Fprintf(w, "== %s (seed %d) ==\n\n", paths[i], res.Seed)
			if err := quiz.WriteText(w, res.Questions); err != nil {
				return err
			}
		}
		return nil
	default:
		var all []quiz.Question
		for _, res := range results {
			all = append(all, res.Questions...)
		}
		return quiz.Write(w, all, f)
	}
}

func writeResultFiles(dir string, paths []string, results []*pipeline.Result, f quiz.Format) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, res := range results {
		name := "stdin"
		if paths[i] != "-" {
			name = strings.TrimSuffix(filepath.Base(paths[i]), filepath.Ext(paths[i]))
		}
		out, err := os.Create(filepath.Join(dir, name+".quiz."+extension(f)))
		if err != nil {
			return err
		}
		if err := quiz.Write(out, res.Questions, f); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
	}
	return nil
}

func extension(f quiz.Format) string {
	switch f {
	case quiz.FormatJSON:
		return "json"
	case quiz.FormatYAML:
		return "yaml"
	}
	return "txt"
}
