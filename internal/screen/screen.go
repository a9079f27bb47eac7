package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizforge/internal/ui/layout"
)

// Screen is one full-page view of the quiz runner.
type Screen interface {
	Init() tea.Cmd

	// Update handles a message and returns the screen to keep on the stack.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area between header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// ProgressProvider lets a screen report quiz progress for the header.
type ProgressProvider interface {
	Progress() (answered, total int)
}
