package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dgallion1/quizgest/internal/normalize"
	"github.com/dgallion1/quizgest/internal/quiz"
)

func newCleanCmd(opts *rootOptions) *cobra.Command {
	var (
		output       string
		showRepeated bool
	)
	cmd := &cobra.Command{
		Use:   "clean <file>",
		Short: "Print a document's cleaned text",
		Long: `Clean removes running headers and footers from paginated files
(PDFs and form-feed separated text), drops short lines and joins the rest
into one paragraph per page or section.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			doc, err := parseFile(args[0], cfg)
			if err != nil {
				return err
			}

			if showRepeated && doc.Paginated {
				for _, line := range normalize.Boilerplate(doc) {
					fmt.Fprintf(cmd.ErrOrStderr(), "removed: %s\n", line)
				}
			}

			w, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			cleaned := normalize.Clean(doc, normalize.Options{MinLineLength: cfg.MinLineLength})
			if _, err := io.WriteString(w, cleaned+"\n"); err != nil {
				closeOut()
				return err
			}
			return closeOut()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&showRepeated, "show-removed", false, "List removed header and footer lines on stderr")
	return cmd
}

func newSentencesCmd(opts *rootOptions) *cobra.Command {
	var (
		output string
		scores bool
	)
	cmd := &cobra.Command{
		Use:   "sentences <file>",
		Short: "Print the highest scoring sentences of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			// Selection needs no entity model.
			gen, err := newGenerator(cfg, nil, opts.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			doc, err := parseFile(args[0], cfg)
			if err != nil {
				return err
			}
			selected, err := gen.Select(gen.Clean(doc), 0)
			if err != nil {
				return err
			}

			w, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if scores {
				for _, s := range selected {
					fmt.Fprintf(w, "%.4f\t%s\n", s.Score, s.Text)
				}
				return closeOut()
			}
			texts := make([]string, len(selected))
			for i, s := range selected {
				texts[i] = s.Text
			}
			if err := quiz.WriteSentences(w, texts); err != nil {
				closeOut()
				return err
			}
			return closeOut()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&scores, "scores", false, "Prefix each sentence with its score")
	return cmd
}

func newPairsCmd(opts *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "pairs <sentences-file>",
		Short: "Print the question generated for each sentence of a file",
		Long: `Pairs reads one sentence per line, as written by "sentences", and prints
an input | output | type table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			f, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			sentences, err := quiz.ReadSentences(f)
			if err != nil {
				return err
			}

			an, err := newAnalyzer(cfg)
			if err != nil {
				return err
			}
			defer an.Close()
			pairs, err := quiz.Pairs(an, sentences, cfg.BlankMarker)
			if err != nil {
				return err
			}
			return quiz.WriteTable(cmd.OutOrStdout(), pairs, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Print at most this many rows (0 prints all)")
	return cmd
}
