package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizforge/internal/ui/theme"
)

// OptionPicker lets the learner choose one option with the arrow keys,
// j/k, or the option letter.
type OptionPicker struct {
	Options  []string
	Selected int
}

// NewOptionPicker creates a picker with the first option highlighted.
func NewOptionPicker(options []string) OptionPicker {
	return OptionPicker{Options: options}
}

// Update moves the highlight. Choosing is the caller's job, on Enter.
func (m OptionPicker) Update(msg tea.Msg) (OptionPicker, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || len(m.Options) == 0 {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	default:
		if len(key) == 1 {
			if i := int(strings.ToLower(key)[0] - 'a'); i >= 0 && i < len(m.Options) {
				m.Selected = i
			}
		}
	}
	return m, nil
}

// Value returns the highlighted option.
func (m OptionPicker) Value() string {
	if len(m.Options) == 0 {
		return ""
	}
	return m.Options[m.Selected]
}

// View renders the options, one per line.
func (m OptionPicker) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		style := theme.Unselected
		if i == m.Selected {
			prefix = "▸ "
			style = theme.Selected
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%c)  %s", prefix, 'A'+rune(i), opt)))
		b.WriteString("\n")
	}
	return b.String()
}
