// questions.go implements "intentional questions", a report on the question
// banks and how well each question engages.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/intentional-app/intentional/internal/model"
	"github.com/intentional-app/intentional/internal/questions"
)

func newQuestionsCmd(root *rootOptions) *cobra.Command {
	var (
		limit  int
		sample string
	)
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Report question bank sizes and effectiveness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(root)
			if err != nil {
				return err
			}
			defer rt.Close()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			sel := rt.questions()

			if sample != "" {
				fmt.Fprintln(out, sel.GetSmartQuestion(ctx, model.Category(sample), ""))
				return nil
			}

			sizes := questions.Categories()
			fmt.Fprintln(out, "Banks:")
			for _, c := range model.Categories {
				fmt.Fprintf(out, "  %-13s %d\n", c, sizes[c])
			}

			best, err := sel.MostEffective(ctx, limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\nMost effective:")
			if len(best) == 0 {
				fmt.Fprintln(out, "  not enough history yet")
			}
			for _, e := range best {
				fmt.Fprintf(out, "  %3.0f%%  (%d shown)  %s\n", e.CompletionRate*100, e.TotalShown, e.Question)
			}

			needing, err := sel.NeedingData(ctx, limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\nNeeding data:")
			for _, q := range needing {
				fmt.Fprintf(out, "  %s\n", q)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "Number of questions per list")
	cmd.Flags().StringVar(&sample, "sample", "", "Print one question for a category as it would be picked now")
	return cmd
}
