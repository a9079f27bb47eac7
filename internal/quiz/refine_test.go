package quiz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/logging"
)

func TestMaskPhrase(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		phrase string
		want   string
		ok     bool
	}{
		{"leading word", "Paris is the capital of France", "Paris", "_____ is the capital of France", true},
		{"trailing word", "Paris is the capital of France", "France", "Paris is the capital of ______", true},
		{"case insensitive", "Paris is the capital of France", "paris", "_____ is the capital of France", true},
		{"multi word", "The Eiffel Tower is in Paris", "eiffel tower", "The ____________ is in Paris", true},
		{"punctuation after", "It was built in 1889.", "1889", "It was built in ____.", true},
		{"non ascii", "Der Zug fährt nach München.", "München", "Der Zug fährt nach _______.", true},
		{"first whole word only", "Parisian cafes are in Paris and Paris", "Paris", "Parisian cafes are in _____ and Paris", true},
		{"symbols quoted", "It costs $5 today", "$5", "It costs __ today", true},
		{"partial word", "Paris is the capital of France", "Par", "Paris is the capital of France", false},
		{"absent", "Paris is the capital of France", "Rome", "Paris is the capital of France", false},
		{"empty phrase", "Paris", "  ", "Paris", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MaskPhrase(tt.text, tt.phrase)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGapRefiner_DropsFailuresKeepsOrder(t *testing.T) {
	client := &fakeClient{route: func(_, content string) (string, error) {
		switch {
		case strings.Contains(content, "Rome"):
			return `{"options":["Rome","Milan","Turin","Naples"],"correct_answer":"ROME"}`, nil
		case strings.Contains(content, "Madrid"):
			// Correct answer never occurs in the fact.
			return `{"options":["Seville","Bilbao","Malaga","Toledo"],"correct_answer":"Seville"}`, nil
		case strings.Contains(content, "Berlin"):
			return `{"options":["Berlin","Bonn"`, nil
		case strings.Contains(content, "Lisbon"):
			return "", &llm.ErrUnavailable{Err: errors.New("down")}
		case strings.Contains(content, "Vienna"):
			return "```json\n{\"options\":[\"Vienna\",\"Graz\",\"Linz\",\"Salzburg\"],\"correct_answer\":\"Vienna\"}\n```", nil
		}
		return "", errors.New("unexpected")
	}}

	facts := []Question{
		{Text: "Rome is the capital of Italy.", Category: FillGaps},
		{Text: "Madrid is the capital of Spain.", Category: FillGaps},
		{Text: "Berlin is the capital of Germany.", Category: FillGaps},
		{Text: "Lisbon is the capital of Portugal.", Category: FillGaps},
		{Text: "Vienna is the capital of Austria.", Category: FillGaps},
	}

	got := NewGapRefiner(client, 2, logging.Nop()).Refine(context.Background(), facts)
	require.Len(t, got, 2)

	assert.Equal(t, Question{
		Text:          "____ is the capital of Italy.",
		Category:      FillGaps,
		Options:       []string{"Rome", "Milan", "Turin", "Naples"},
		CorrectAnswer: "Rome",
	}, got[0])
	assert.Equal(t, "______ is the capital of Austria.", got[1].Text)

	calls := client.callsFor(llm.PurposeRefine)
	assert.Len(t, calls, len(facts))
	for _, c := range calls {
		assert.True(t, strings.HasPrefix(c.Content, "The fact: "))
	}
}

func TestGapRefiner_Empty(t *testing.T) {
	client := &fakeClient{route: happyRoute}
	got := NewGapRefiner(client, 0, logging.Nop()).Refine(context.Background(), nil)
	assert.Empty(t, got)
	assert.Empty(t, client.calls)
}
