package results

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/screen"
	"github.com/abhisek/quizforge/internal/ui/layout"
	"github.com/abhisek/quizforge/internal/ui/theme"
)

// Outcome is a graded attempt.
type Outcome struct {
	Graded   []quiz.GradedAnswer
	Score    int
	Total    int
	TopScore bool
}

// ResultsScreen lists the verdict and feedback for every question.
type ResultsScreen struct {
	questions map[int]quiz.Question
	answers   map[string]string
	outcome   Outcome
	offset    int
}

var _ screen.Screen = (*ResultsScreen)(nil)
var _ screen.KeyHintProvider = (*ResultsScreen)(nil)

// New creates a ResultsScreen. answers holds the raw submitted answers
// keyed by question id.
func New(questions []quiz.Question, answers map[string]string, outcome Outcome) *ResultsScreen {
	byID := make(map[int]quiz.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	return &ResultsScreen{questions: byID, answers: answers, outcome: outcome}
}

func (s *ResultsScreen) Init() tea.Cmd { return nil }

func (s *ResultsScreen) Title() string { return "Results" }

func (s *ResultsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "q", Description: "Quit"},
	}
}

func (s *ResultsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k":
		if s.offset > 0 {
			s.offset--
		}
	case "down", "j":
		if s.offset < len(s.outcome.Graded)-1 {
			s.offset++
		}
	case "q", "enter", "esc":
		return s, tea.Quit
	}
	return s, nil
}

func (s *ResultsScreen) View(width, height int) string {
	var b strings.Builder

	score := fmt.Sprintf("Score: %d / %d", s.outcome.Score, s.outcome.Total)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Title.Render(score)))
	b.WriteString("\n")
	if s.outcome.TopScore {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Badge.Render("New top score!")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	wrap := lipgloss.NewStyle().Width(max(width-6, 20))
	for _, g := range s.outcome.Graded[s.offset:] {
		q := s.questions[g.QuestionID]

		mark := theme.Correct.Render("✓")
		if !g.IsCorrect {
			mark = theme.Incorrect.Render("✗")
		}
		b.WriteString(fmt.Sprintf("  %s %d. %s\n", mark, g.QuestionID, wrap.Render(q.Text)))
		b.WriteString(theme.Body.Render(fmt.Sprintf("      Your answer: %s", s.answers[strconv.Itoa(g.QuestionID)])))
		b.WriteString("\n")
		if !g.IsCorrect && g.CorrectAnswer != "" {
			b.WriteString(theme.Body.Render(fmt.Sprintf("      Correct answer: %s", g.CorrectAnswer)))
			b.WriteString("\n")
		}
		if g.Feedback != "" {
			b.WriteString(theme.Hint.Render("      " + wrap.Render(g.Feedback)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	lines := strings.Split(b.String(), "\n")
	if len(lines) > height && height > 0 {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
