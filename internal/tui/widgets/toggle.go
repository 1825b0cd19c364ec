package widgets

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

var toggleKey = key.NewBinding(key.WithKeys(" ", "space", "enter"), key.WithHelp("space", "toggle"))

// Toggle is a controlled on/off switch.
type Toggle struct {
	Label   string
	checked bool
	focused bool
}

func (t *Toggle) SetChecked(v bool) { t.checked = v }

func (t *Toggle) Checked() bool { return t.checked }

func (t *Toggle) SetFocused(v bool) { t.focused = v }

// HandleKey returns the requested new value and whether the key asked for a
// change. The switch itself does not flip until SetChecked is called.
func (t *Toggle) HandleKey(msg tea.KeyMsg) (bool, bool) {
	if key.Matches(msg, toggleKey) {
		return !t.checked, true
	}
	return t.checked, false
}

func (t *Toggle) View() string {
	knob := mutedStyle.Render("○ нет")
	if t.checked {
		knob = checkedStyle.Render("● да")
	}
	style := boxStyle
	if t.focused {
		style = focusBoxStyle
	}
	return labelStyle.Render(t.Label) + " " + style.Render(knob)
}
