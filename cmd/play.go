package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizforge/internal/app"
	"github.com/abhisek/quizforge/internal/screens/results"
)

var playCmd = &cobra.Command{
	Use:   "play <quiz-id>",
	Short: "Take a quiz in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		record, questions, err := d.loadQuestions(ctx, args[0])
		if err != nil {
			return err
		}
		svc, err := d.service(ctx)
		if err != nil {
			return err
		}

		user := resolveUser(cmd)
		title := record.Topic
		if title == "" {
			title = "Quiz"
		}

		return app.Run(app.Options{
			Title:     title,
			Questions: questions,
			Submit: func(_ context.Context, answers map[string]string) (results.Outcome, error) {
				return d.submitAttempt(ctx, svc, record.ID, user, questions, answers)
			},
		})
	},
}
