package quiz

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxAnswerLength is the longest accepted answer, in characters.
const MaxAnswerLength = 200

// JoinAnswers pairs stored questions with raw answers keyed by question id
// as a decimal string. Every question must be answered exactly once.
func JoinAnswers(questions []Question, answers map[string]string) ([]SubmittedAnswer, error) {
	if len(answers) != len(questions) {
		return nil, fmt.Errorf("%w: got %d answers for %d questions", ErrInvalidArgument, len(answers), len(questions))
	}

	out := make([]SubmittedAnswer, 0, len(questions))
	for _, q := range questions {
		raw, ok := answers[strconv.Itoa(q.ID)]
		if !ok {
			return nil, fmt.Errorf("%w: question %d has no answer", ErrInvalidArgument, q.ID)
		}
		answer := strings.TrimSpace(raw)
		if utf8.RuneCountInString(answer) > MaxAnswerLength {
			return nil, fmt.Errorf("%w: answer to question %d is longer than %d characters", ErrInvalidArgument, q.ID, MaxAnswerLength)
		}

		sa := SubmittedAnswer{
			QuestionID:    q.ID,
			QuestionText:  q.Text,
			Category:      q.Category,
			UserAnswer:    answer,
			CorrectAnswer: q.CorrectAnswer,
		}
		if q.Category == MultiChoice {
			sa.Options = q.Options
		}
		out = append(out, sa)
	}
	return out, nil
}

// Score counts correct verdicts.
func Score(graded []GradedAnswer) int {
	n := 0
	for _, g := range graded {
		if g.IsCorrect {
			n++
		}
	}
	return n
}

// IsTopScore reports whether score beats every previous score. The first
// attempt is always a top score.
func IsTopScore(score int, previous []int) bool {
	for _, p := range previous {
		if score <= p {
			return false
		}
	}
	return true
}
