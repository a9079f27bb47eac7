package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/logging"
)

func mixedAnswers() []SubmittedAnswer {
	return []SubmittedAnswer{
		{QuestionID: 6, Category: ShortAnswer, QuestionText: "Why is the sky blue?", UserAnswer: "no idea"},
		{QuestionID: 1, Category: MultiChoice, QuestionText: "2+2?", UserAnswer: "4", CorrectAnswer: "4", Options: []string{"3", "4", "5", "6"}},
		{QuestionID: 4, Category: MultiChoice, QuestionText: "3+3?", UserAnswer: "5", CorrectAnswer: "6", Options: []string{"3", "4", "5", "6"}},
		{QuestionID: 2, Category: FillGaps, QuestionText: "____ is red.", UserAnswer: "Blood", CorrectAnswer: "Blood"},
		{QuestionID: 5, Category: FillGaps, QuestionText: "____ is green.", UserAnswer: "grass", CorrectAnswer: "Grass"},
		{QuestionID: 3, Category: ShortAnswer, QuestionText: "What is rain?", UserAnswer: "right: water falling"},
	}
}

func TestGrade_Mixed(t *testing.T) {
	client := &fakeClient{route: happyRoute}
	got, err := NewGrader(client, logging.Nop()).Grade(context.Background(), mixedAnswers())
	require.NoError(t, err)

	assert.Equal(t, []GradedAnswer{
		{QuestionID: 1, IsCorrect: true, CorrectAnswer: "4"},
		{QuestionID: 2, IsCorrect: true, CorrectAnswer: "Blood"},
		{QuestionID: 3, IsCorrect: true, CorrectAnswer: "right: water falling", Feedback: "noted"},
		{QuestionID: 4, IsCorrect: false, CorrectAnswer: "6", Feedback: "feedback for 4"},
		{QuestionID: 5, IsCorrect: false, CorrectAnswer: "Grass", Feedback: "feedback for 5"},
		{QuestionID: 6, IsCorrect: false, CorrectAnswer: "model answer", Feedback: "noted"},
	}, got)

	// One judge call per category, each carrying only what needs judging.
	calls := client.callsFor(llm.PurposeGrade)
	require.Len(t, calls, 3)
	for _, c := range calls {
		switch promptKind(c.Instruction) {
		case "judge-mc":
			assert.Contains(t, c.Content, `"question_id":4`)
			assert.Contains(t, c.Content, `"options":["3","4","5","6"]`)
			assert.NotContains(t, c.Content, `"question_id":1`)
		case "judge-fill":
			assert.Contains(t, c.Content, `"question_id":5`)
			assert.NotContains(t, c.Content, `"options"`)
		case "judge-open":
			assert.Contains(t, c.Content, `"question_id":3`)
			assert.Contains(t, c.Content, `"question_id":6`)
		default:
			t.Fatalf("unexpected prompt %q", c.Instruction)
		}
	}
}

func TestGrade_Idempotent(t *testing.T) {
	g := NewGrader(&fakeClient{route: happyRoute}, logging.Nop())
	first, err := g.Grade(context.Background(), mixedAnswers())
	require.NoError(t, err)
	second, err := g.Grade(context.Background(), mixedAnswers())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGrade_AllCorrectSkipsJudge(t *testing.T) {
	client := &fakeClient{route: happyRoute}
	got, err := NewGrader(client, logging.Nop()).Grade(context.Background(), []SubmittedAnswer{
		{QuestionID: 2, Category: MultiChoice, UserAnswer: "b", CorrectAnswer: "b"},
		{QuestionID: 1, Category: FillGaps, UserAnswer: "a", CorrectAnswer: "a"},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, []int{got[0].QuestionID, got[1].QuestionID})
	assert.Empty(t, client.calls)
}

func TestGrade_MissingFeedbackIsEmpty(t *testing.T) {
	client := &fakeClient{route: func(string, string) (string, error) {
		return `{"question_id": 9, "feedback": "stray"}`, nil
	}}
	got, err := NewGrader(client, logging.Nop()).Grade(context.Background(), []SubmittedAnswer{
		{QuestionID: 1, Category: MultiChoice, UserAnswer: "a", CorrectAnswer: "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, []GradedAnswer{{QuestionID: 1, IsCorrect: false, CorrectAnswer: "b"}}, got)
}

func TestGrade_JudgeCannotOverturnExactVerdict(t *testing.T) {
	client := &fakeClient{route: func(string, string) (string, error) {
		return `{"question_id": 1, "is_correct": true, "correct_answer": "a", "feedback": "close enough"}`, nil
	}}
	got, err := NewGrader(client, logging.Nop()).Grade(context.Background(), []SubmittedAnswer{
		{QuestionID: 1, Category: FillGaps, UserAnswer: "a", CorrectAnswer: "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, []GradedAnswer{{QuestionID: 1, IsCorrect: false, CorrectAnswer: "b", Feedback: "close enough"}}, got)
}

func TestGrade_ShortAnswerMissingVerdict(t *testing.T) {
	client := &fakeClient{route: func(instruction, content string) (string, error) {
		return `{"question_id": 1, "is_correct": true, "feedback": "good"}
{"question_id": 2, "feedback": "no verdict"}`, nil
	}}
	_, err := NewGrader(client, logging.Nop()).Grade(context.Background(), []SubmittedAnswer{
		{QuestionID: 1, Category: ShortAnswer, UserAnswer: "x"},
		{QuestionID: 2, Category: ShortAnswer, UserAnswer: "y"},
	})
	assert.ErrorIs(t, err, ErrGradingFailed)
	assert.ErrorIs(t, err, ErrMissingVerdict)

	var gradeErr *GradingError
	require.ErrorAs(t, err, &gradeErr)
	assert.Equal(t, ShortAnswer, gradeErr.Category)
}

func TestGrade_JudgeFailure(t *testing.T) {
	client := &fakeClient{route: func(instruction, content string) (string, error) {
		if promptKind(instruction) == "judge-fill" {
			return "", &llm.ErrRateLimit{Err: errors.New("slow down")}
		}
		return happyRoute(instruction, content)
	}}
	_, err := NewGrader(client, logging.Nop()).Grade(context.Background(), mixedAnswers())
	assert.ErrorIs(t, err, ErrGradingFailed)

	var gradeErr *GradingError
	require.ErrorAs(t, err, &gradeErr)
	assert.Equal(t, FillGaps, gradeErr.Category)

	var rl *llm.ErrRateLimit
	assert.ErrorAs(t, err, &rl)
}

func TestGrade_UnreadableJudgeReply(t *testing.T) {
	client := &fakeClient{route: func(string, string) (string, error) {
		return "I'm sorry, I can't help with that.", nil
	}}
	_, err := NewGrader(client, logging.Nop()).Grade(context.Background(), []SubmittedAnswer{
		{QuestionID: 1, Category: MultiChoice, UserAnswer: "a", CorrectAnswer: "b", Options: []string{"a", "b", "c", "d"}},
		{QuestionID: 2, Category: FillGaps, UserAnswer: "x", CorrectAnswer: "y"},
	})
	assert.ErrorIs(t, err, ErrGradingFailed)
	assert.ErrorIs(t, err, ErrNoFragments)

	var gradeErr *GradingError
	require.ErrorAs(t, err, &gradeErr)
	assert.Equal(t, MultiChoice, gradeErr.Category)
}

func TestGrade_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		answers []SubmittedAnswer
	}{
		{"empty", nil},
		{"unknown type", []SubmittedAnswer{{QuestionID: 1, Category: "essay"}}},
		{"duplicate id", []SubmittedAnswer{
			{QuestionID: 1, Category: MultiChoice},
			{QuestionID: 1, Category: ShortAnswer},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{route: happyRoute}
			_, err := NewGrader(client, logging.Nop()).Grade(context.Background(), tt.answers)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Empty(t, client.calls)
		})
	}
}

func TestStitch(t *testing.T) {
	a := GradedAnswer{QuestionID: 1, IsCorrect: true}
	b := GradedAnswer{QuestionID: 2}

	assert.Equal(t, []GradedAnswer{}, stitch(nil, nil))
	assert.Equal(t, []GradedAnswer{a}, stitch([]GradedAnswer{a}, nil))
	assert.Equal(t, []GradedAnswer{b}, stitch(nil, []GradedAnswer{b}))
	assert.Equal(t, []GradedAnswer{a, b}, stitch([]GradedAnswer{a}, []GradedAnswer{b}))
}
