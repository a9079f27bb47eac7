package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizforge/internal/notify"
	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a quiz from a topic, text or files",
	Example: `  quizforge generate --topic "The French Revolution" -n 6
  quizforge generate --file notes.md --types multi-choice,fill-gaps -n 10`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		num, _ := cmd.Flags().GetInt("num")
		typeNames, _ := cmd.Flags().GetStringSlice("types")
		topic, _ := cmd.Flags().GetString("topic")
		text, _ := cmd.Flags().GetString("text")
		files, _ := cmd.Flags().GetStringSlice("file")
		asJSON, _ := cmd.Flags().GetBool("json")

		categories, err := quiz.ParseCategories(typeNames)
		if err != nil {
			return err
		}
		var contents []string
		for _, f := range files {
			data, err := os.ReadFile(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", f, err)
			}
			contents = append(contents, string(data))
		}

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		svc, err := d.service(ctx)
		if err != nil {
			return err
		}
		notifier := d.notifier(ctx)
		defer notifier.Close()

		user := resolveUser(cmd)
		record := &store.Quiz{
			Owner:         user,
			Topic:         topic,
			QuestionTypes: typeNames,
			NumQuestions:  num,
		}
		quizzes := d.store.QuizRepo()
		if err := quizzes.Create(ctx, record); err != nil {
			return fmt.Errorf("create quiz: %w", err)
		}

		questions, genErr := svc.CreateQuiz(ctx, quiz.GenerateInput{
			Total:        num,
			Categories:   categories,
			Topic:        topic,
			TextContent:  text,
			FileContents: contents,
		})
		event := notify.Event{Type: notify.QuizProcessed, QuizID: record.ID, UserID: user}
		if genErr != nil {
			if err := quizzes.MarkErrored(ctx, record.ID, genErr.Error()); err != nil {
				d.log.Error("mark quiz errored", "quiz_id", record.ID, "error", err)
			}
			event.Type = notify.QuizErrored
			if err := notifier.Notify(ctx, event); err != nil {
				d.log.Warn("notify failed", "quiz_id", record.ID, "error", err)
			}
			return fmt.Errorf("quiz %s: %w", record.ID, genErr)
		}

		body, err := json.Marshal(questions)
		if err != nil {
			return fmt.Errorf("encode questions: %w", err)
		}
		if err := quizzes.SaveQuestions(ctx, record.ID, body); err != nil {
			return fmt.Errorf("save questions: %w", err)
		}
		if err := notifier.Notify(ctx, event); err != nil {
			d.log.Warn("notify failed", "quiz_id", record.ID, "error", err)
		}

		if asJSON {
			return printJSON(map[string]any{"quiz_id": record.ID, "questions": questions})
		}
		fmt.Printf("Quiz %s (%d questions)\n\n", record.ID, len(questions))
		printQuestions(questions, false)
		return nil
	},
}

func init() {
	all := make([]string, len(quiz.Categories))
	for i, c := range quiz.Categories {
		all[i] = string(c)
	}

	generateCmd.Flags().IntP("num", "n", 5, "Number of questions")
	generateCmd.Flags().StringSliceP("types", "t", all, "Question types: "+strings.Join(all, ", "))
	generateCmd.Flags().String("topic", "", "Quiz topic")
	generateCmd.Flags().String("text", "", "Source text")
	generateCmd.Flags().StringSliceP("file", "f", nil, "Plain-text source file (repeatable)")
	generateCmd.Flags().Bool("json", false, "Print the quiz as JSON")
}

// printQuestions writes a numbered question list to stdout.
func printQuestions(questions []quiz.Question, reveal bool) {
	for _, q := range questions {
		fmt.Printf("%2d. [%s] %s\n", q.ID, q.Category, q.Text)
		for i, opt := range q.Options {
			fmt.Printf("      %c) %s\n", 'A'+rune(i), opt)
		}
		if reveal && q.CorrectAnswer != "" {
			fmt.Printf("      answer: %s\n", q.CorrectAnswer)
		}
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
