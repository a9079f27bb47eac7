package play

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizforge/internal/quiz"
	"github.com/abhisek/quizforge/internal/router"
	"github.com/abhisek/quizforge/internal/screen"
	"github.com/abhisek/quizforge/internal/screens/results"
	"github.com/abhisek/quizforge/internal/ui/components"
	"github.com/abhisek/quizforge/internal/ui/layout"
	"github.com/abhisek/quizforge/internal/ui/theme"
)

// SubmitFunc grades raw answers keyed by question id.
type SubmitFunc func(ctx context.Context, answers map[string]string) (results.Outcome, error)

type phase int

const (
	phaseAnswering phase = iota
	phaseGrading
	phaseFailed
)

// gradedMsg carries the result of a submission.
type gradedMsg struct {
	Outcome results.Outcome
	Err     error
}

// PlayScreen asks each question in turn and submits the answers.
type PlayScreen struct {
	title     string
	questions []quiz.Question
	submit    SubmitFunc

	index   int
	answers map[string]string
	picker  components.OptionPicker
	input   components.TextInput
	spinner spinner.Model
	phase   phase
	err     error
	notice  string
}

var _ screen.Screen = (*PlayScreen)(nil)
var _ screen.KeyHintProvider = (*PlayScreen)(nil)
var _ screen.ProgressProvider = (*PlayScreen)(nil)

// New creates a PlayScreen for questions, which must not be empty.
func New(title string, questions []quiz.Question, submit SubmitFunc) *PlayScreen {
	s := &PlayScreen{
		title:     title,
		questions: questions,
		submit:    submit,
		answers:   make(map[string]string, len(questions)),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	s.prepare()
	return s
}

func (s *PlayScreen) Init() tea.Cmd { return nil }

func (s *PlayScreen) Title() string { return s.title }

func (s *PlayScreen) Progress() (int, int) { return len(s.answers), len(s.questions) }

func (s *PlayScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseFailed:
		return []layout.KeyHint{{Key: "r", Description: "Retry"}, {Key: "Ctrl+C", Description: "Quit"}}
	case phaseGrading:
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	if s.current().Category == quiz.MultiChoice {
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Enter", Description: "Answer"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{{Key: "Enter", Description: "Answer"}, {Key: "Ctrl+C", Description: "Quit"}}
}

func (s *PlayScreen) current() quiz.Question { return s.questions[s.index] }

// prepare resets the answer widgets for the current question.
func (s *PlayScreen) prepare() {
	q := s.current()
	if q.Category == quiz.MultiChoice {
		s.picker = components.NewOptionPicker(q.Options)
		return
	}
	placeholder := "Type your answer"
	if q.Category == quiz.FillGaps {
		placeholder = "Fill the gap"
	}
	s.input = components.NewTextInput(placeholder, quiz.MaxAnswerLength)
}

func (s *PlayScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case gradedMsg:
		if msg.Err != nil {
			s.phase, s.err = phaseFailed, msg.Err
			return s, nil
		}
		next := results.New(s.questions, s.answers, msg.Outcome)
		return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }

	case spinner.TickMsg:
		if s.phase != phaseGrading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.phase == phaseAnswering && s.current().Category != quiz.MultiChoice {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *PlayScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch s.phase {
	case phaseGrading:
		return s, nil
	case phaseFailed:
		if msg.String() == "r" {
			return s, s.startGrading()
		}
		return s, nil
	}

	q := s.current()
	if msg.String() == "enter" {
		answer := s.input.Value()
		if q.Category == quiz.MultiChoice {
			answer = s.picker.Value()
		}
		if answer == "" {
			s.notice = "Please enter an answer."
			return s, nil
		}
		s.notice = ""
		s.answers[strconv.Itoa(q.ID)] = answer

		if s.index == len(s.questions)-1 {
			return s, s.startGrading()
		}
		s.index++
		s.prepare()
		return s, nil
	}

	var cmd tea.Cmd
	if q.Category == quiz.MultiChoice {
		s.picker, cmd = s.picker.Update(msg)
	} else {
		s.input, cmd = s.input.Update(msg)
	}
	return s, cmd
}

func (s *PlayScreen) startGrading() tea.Cmd {
	s.phase, s.err = phaseGrading, nil

	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	submit := s.submit
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		out, err := submit(context.Background(), answers)
		return gradedMsg{Outcome: out, Err: err}
	})
}

func (s *PlayScreen) View(width, height int) string {
	var b strings.Builder
	bar := components.NewProgressBar("Progress", len(s.answers), len(s.questions), min(width-4, 60))
	b.WriteString("  " + bar.View() + "\n\n")

	switch s.phase {
	case phaseGrading:
		b.WriteString(fmt.Sprintf("  %s Grading your answers…\n", s.spinner.View()))
		return b.String()
	case phaseFailed:
		b.WriteString(theme.Failure.Render(fmt.Sprintf("  Grading failed: %v", s.err)))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("  Press r to try again."))
		return b.String()
	}

	q := s.current()
	wrap := lipgloss.NewStyle().Width(max(width-4, 20))
	b.WriteString(theme.Hint.Render(fmt.Sprintf("  Question %d of %d · %s", s.index+1, len(s.questions), q.Category)))
	b.WriteString("\n\n")
	b.WriteString(theme.Question.Render(wrap.Render("  " + q.Text)))
	b.WriteString("\n\n")

	if q.Category == quiz.MultiChoice {
		b.WriteString(s.picker.View())
	} else {
		if len(q.Options) > 0 {
			b.WriteString(theme.Hint.Render("  Choices: " + strings.Join(q.Options, ", ")))
			b.WriteString("\n\n")
		}
		b.WriteString("  " + s.input.View() + "\n")
	}

	if s.notice != "" {
		b.WriteString("\n" + theme.Failure.Render("  "+s.notice) + "\n")
	}
	return b.String()
}
