package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/quizgest/internal/config"
	"github.com/dgallion1/quizgest/internal/document"
	"github.com/dgallion1/quizgest/internal/nlp"
	"github.com/dgallion1/quizgest/internal/parser"
	"github.com/dgallion1/quizgest/internal/pipeline"
)

// rootOptions holds the persistent flags every command shares.
type rootOptions struct {
	configPath string
	dbPath     string
	seed       uint64
	top        int
	segmenter  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "quizgest",
		Short:        "Generate quizzes from documents",
		Long:         "quizgest turns PDF, DOCX, Markdown, HTML and text documents into multiple-choice, true/false and assertion-reason questions.",
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to a TOML config file (overrides QUIZGEST_CONFIG)")
	pf.StringVar(&opts.dbPath, "db", "", "Path to the SQLite database (overrides QUIZGEST_DB)")
	pf.Uint64Var(&opts.seed, "seed", 0, "Random seed for distractors and option order (0 picks one)")
	pf.IntVar(&opts.top, "top", 0, "Number of sentences to select (0 keeps the configured value)")
	pf.StringVar(&opts.segmenter, "segmenter", "", "Sentence segmenter: prose or simple")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newServeCmd(opts),
		newGenerateCmd(opts),
		newCleanCmd(opts),
		newSentencesCmd(opts),
		newPairsCmd(opts),
		newWatchCmd(opts),
		newQuizzesCmd(opts),
	)
	return cmd
}

// load reads the config file and environment, then applies flags that
// were set explicitly.
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv("QUIZGEST_CONFIG")
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = o.dbPath
	}
	if flags.Changed("seed") {
		cfg.Seed = o.seed
	}
	if flags.Changed("top") {
		if o.top < 0 {
			return config.Config{}, fmt.Errorf("--top must not be negative")
		}
		cfg.TopN = o.top
	}
	if flags.Changed("segmenter") {
		cfg.Segmenter = o.segmenter
	}
	return cfg, nil
}

// logger returns a text logger on w for CLI use.
func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newAnalyzer loads the statistical analyzer the generators share.
func newAnalyzer(cfg config.Config) (nlp.Analyzer, error) {
	an, err := nlp.NewProseAnalyzer(cfg.EntityPatterns)
	if err != nil {
		return nil, err
	}
	return an, nil
}

func newGenerator(cfg config.Config, an nlp.Analyzer, log *slog.Logger) (*pipeline.Generator, error) {
	gen, err := pipeline.NewGenerator(cfg, an, log)
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}
	return gen, nil
}

// parseFile parses a document from disk with the parser its extension
// selects.
func parseFile(path string, cfg config.Config) (*document.Document, error) {
	p, err := parser.ForFile(path, parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext})
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// openOutput returns the writer for an --output flag. Empty or "-" is
// the command's stdout.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// openInput opens path for reading. "-" is the command's stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}
