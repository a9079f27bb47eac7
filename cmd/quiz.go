package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/store"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Inspect stored quizzes",
}

var quizListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent quizzes",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		all, _ := cmd.Flags().GetBool("all")

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		owner := resolveUser(cmd)
		if all {
			owner = ""
		}
		quizzes, err := d.store.QuizRepo().List(cmd.Context(), owner, limit)
		if err != nil {
			return err
		}
		if len(quizzes) == 0 {
			fmt.Println("No quizzes found.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-10s  %4s  %s\n", "ID", "Created", "Status", "Qs", "Topic")
		fmt.Println(strings.Repeat("─", 100))
		for _, q := range quizzes {
			fmt.Printf("%-36s  %-19s  %-10s  %4d  %s\n",
				q.ID,
				q.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				q.Status,
				q.NumQuestions,
				truncate(q.Topic, 30),
			)
		}
		return nil
	},
}

var quizShowCmd = &cobra.Command{
	Use:   "show <quiz-id>",
	Short: "Show a quiz and its attempts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reveal, _ := cmd.Flags().GetBool("reveal")

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		q, err := d.store.QuizRepo().Get(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:        %s\n", q.ID)
		fmt.Printf("Owner:     %s\n", q.Owner)
		fmt.Printf("Topic:     %s\n", q.Topic)
		fmt.Printf("Types:     %s\n", strings.Join(q.QuestionTypes, ", "))
		fmt.Printf("Status:    %s\n", q.Status)
		fmt.Printf("Created:   %s\n", q.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		if q.Status == store.QuizErrored {
			fmt.Printf("Error:     %s\n", q.Error)
			return nil
		}
		if q.Status != store.QuizProcessed {
			return nil
		}

		var questions []quiz.Question
		if err := json.Unmarshal(q.Questions, &questions); err != nil {
			return fmt.Errorf("decode questions: %w", err)
		}
		fmt.Println()
		printQuestions(questions, reveal)

		attempts, err := d.store.AttemptRepo().ListByQuiz(ctx, q.ID, "")
		if err != nil {
			return err
		}
		if len(attempts) == 0 {
			return nil
		}
		fmt.Println()
		fmt.Println("Attempts")
		fmt.Println(strings.Repeat("─", 60))
		for _, a := range attempts {
			fmt.Printf("%-19s  %-20s  %d / %d\n",
				a.CreatedAt.Local().Format("2006-01-02 15:04:05"), truncate(a.UserID, 20), a.Score, a.Total)
		}
		return nil
	},
}

func init() {
	quizListCmd.Flags().IntP("limit", "n", 20, "Number of quizzes to show")
	quizListCmd.Flags().Bool("all", false, "Show quizzes of every user")
	quizShowCmd.Flags().Bool("reveal", false, "Show correct answers")

	quizCmd.AddCommand(quizListCmd)
	quizCmd.AddCommand(quizShowCmd)
}
