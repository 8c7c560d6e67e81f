package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgallion1/quizgest/internal/quiz"
	"github.com/dgallion1/quizgest/internal/store"
)

func newQuizzesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quizzes",
		Short: "List, show and delete stored quizzes",
	}
	cmd.AddCommand(newQuizzesListCmd(opts), newQuizzesShowCmd(opts), newQuizzesDeleteCmd(opts))
	return cmd
}

func openStore(opts *rootOptions, cmd *cobra.Command) (*store.Store, error) {
	cfg, err := opts.load(cmd)
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.DBPath)
}

func newQuizzesListCmd(opts *rootOptions) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored quizzes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(opts, cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			quizzes, err := st.ListQuizzes(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tQUESTIONS\tCREATED")
			for _, q := range quizzes {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", q.ID, q.Title, q.QuestionCount, q.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum quizzes to list (0 lists all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many quizzes")
	return cmd
}

func newQuizzesShowCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <quiz-id>",
		Short: "Print a stored quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := quiz.ParseFormat(format)
			if err != nil {
				return err
			}
			st, err := openStore(opts, cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			q, err := st.GetQuiz(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("quiz %s: %w", args[0], err)
			}
			return quiz.Write(cmd.OutOrStdout(), q.Questions, f)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json or yaml")
	return cmd
}

func newQuizzesDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <quiz-id>",
		Short: "Delete a stored quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(opts, cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteQuiz(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("quiz %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
