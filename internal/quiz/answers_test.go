package quiz

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizforge/internal/logging"
)

func storedQuestions() []Question {
	return []Question{
		{ID: 1, Text: "2+2?", Category: MultiChoice, Options: []string{"3", "4"}, CorrectAnswer: "4"},
		{ID: 2, Text: "____ is red.", Category: FillGaps, Options: []string{"Blood", "Grass", "Sky", "Snow"}, CorrectAnswer: "Blood"},
		{ID: 3, Text: "Why?", Category: ShortAnswer, Options: []string{}},
	}
}

func TestJoinAnswers(t *testing.T) {
	got, err := JoinAnswers(storedQuestions(), map[string]string{"1": " 4 ", "2": "Blood", "3": "because"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, SubmittedAnswer{
		QuestionID: 1, QuestionText: "2+2?", Category: MultiChoice,
		UserAnswer: "4", CorrectAnswer: "4", Options: []string{"3", "4"},
	}, got[0])
	assert.Nil(t, got[1].Options)
	assert.Equal(t, "because", got[2].UserAnswer)
}

func TestJoinAnswers_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		answers map[string]string
	}{
		{"too few", map[string]string{"1": "4", "2": "Blood"}},
		{"too many", map[string]string{"1": "4", "2": "Blood", "3": "x", "4": "y"}},
		{"wrong id", map[string]string{"1": "4", "2": "Blood", "7": "x"}},
		{"too long", map[string]string{"1": "4", "2": "Blood", "3": strings.Repeat("é", MaxAnswerLength+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JoinAnswers(storedQuestions(), tt.answers)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}

	_, err := JoinAnswers(storedQuestions(), map[string]string{"1": "4", "2": "Blood", "3": strings.Repeat("é", MaxAnswerLength)})
	assert.NoError(t, err)
}

func TestScoreAndTopScore(t *testing.T) {
	graded := []GradedAnswer{{IsCorrect: true}, {IsCorrect: false}, {IsCorrect: true}}
	assert.Equal(t, 2, Score(graded))
	assert.Equal(t, 0, Score(nil))

	assert.True(t, IsTopScore(2, nil))
	assert.True(t, IsTopScore(3, []int{1, 2}))
	assert.False(t, IsTopScore(2, []int{1, 2}))
	assert.False(t, IsTopScore(0, []int{0}))
}

func TestService_RoundTrip(t *testing.T) {
	svc := NewService(&fakeClient{route: happyRoute}, DefaultGeneratorConfig(), logging.Nop())
	ctx := context.Background()

	questions, err := svc.CreateQuiz(ctx, GenerateInput{Total: 5, Categories: Categories, Topic: "gadgets"})
	require.NoError(t, err)
	require.Len(t, questions, 5)

	raw := make(map[string]string, len(questions))
	for _, q := range questions {
		raw[strconv.Itoa(q.ID)] = q.CorrectAnswer
		if q.Category == ShortAnswer {
			raw[strconv.Itoa(q.ID)] = "right, I think"
		}
	}
	submitted, err := JoinAnswers(questions, raw)
	require.NoError(t, err)

	graded, err := svc.AnswerQuiz(ctx, submitted)
	require.NoError(t, err)
	require.Len(t, graded, 5)
	for i, g := range graded {
		assert.Equal(t, i+1, g.QuestionID)
		assert.True(t, g.IsCorrect)
	}
	assert.Equal(t, 5, Score(graded))
}
