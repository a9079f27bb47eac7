package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var answerCmd = &cobra.Command{
	Use:   "answer <quiz-id>",
	Short: "Grade answers to a quiz",
	Long: "Grade answers to a quiz. Answers are a JSON object mapping question id " +
		"to answer, given inline with --answers or in a file with --answers-file.",
	Example: `  quizforge answer 3f2c... --answers '{"1":"Paris","2":"1889","3":"Because of Rayleigh scattering"}'`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		inline, _ := cmd.Flags().GetString("answers")
		file, _ := cmd.Flags().GetString("answers-file")
		asJSON, _ := cmd.Flags().GetBool("json")

		raw, err := readAnswers(inline, file)
		if err != nil {
			return err
		}

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

		out, err := d.submitAttempt(ctx, svc, record.ID, resolveUser(cmd), questions, raw)
		if err != nil {
			return err
		}

		if asJSON {
			return printJSON(map[string]any{
				"graded":    out.Graded,
				"score":     out.Score,
				"total":     out.Total,
				"top_score": out.TopScore,
			})
		}

		for _, g := range out.Graded {
			mark := "✓"
			if !g.IsCorrect {
				mark = "✗"
			}
			fmt.Printf("%s %2d. ", mark, g.QuestionID)
			if g.IsCorrect {
				fmt.Println("correct")
			} else {
				fmt.Printf("expected: %s\n", g.CorrectAnswer)
			}
			if g.Feedback != "" {
				fmt.Printf("      %s\n", g.Feedback)
			}
		}
		fmt.Printf("\nScore: %d / %d\n", out.Score, out.Total)
		if out.TopScore {
			fmt.Println("New top score!")
		}
		return nil
	},
}

func init() {
	answerCmd.Flags().String("answers", "", "Answers as a JSON object of question id to answer")
	answerCmd.Flags().String("answers-file", "", "File holding the answers JSON object")
	answerCmd.Flags().Bool("json", false, "Print the graded answers as JSON")
}

// readAnswers decodes the id-to-answer map from a flag value or a file.
func readAnswers(inline, file string) (map[string]string, error) {
	if (inline == "") == (file == "") {
		return nil, errors.New("exactly one of --answers or --answers-file is required")
	}
	data := []byte(inline)
	if file != "" {
		var err error
		if data, err = os.ReadFile(file); err != nil {
			return nil, fmt.Errorf("read answers: %w", err)
		}
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("answers must be a JSON object of strings: %w", err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}
