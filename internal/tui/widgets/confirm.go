package widgets

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmType picks the wording and colour of the commit action.
type ConfirmType string

const (
	ConfirmSend   ConfirmType = "send"
	ConfirmDelete ConfirmType = "delete"
)

// Label is the user-facing name of the commit action.
func (t ConfirmType) Label() string {
	switch t {
	case ConfirmDelete:
		return "Удалить"
	default:
		return "Отправить"
	}
}

// ConfirmResult is what a key press asked the owner to do.
type ConfirmResult int

const (
	ConfirmNone ConfirmResult = iota
	ConfirmCommit
	ConfirmCancel
)

type confirmKeyMap struct {
	commit key.Binding
	cancel key.Binding
}

func (k confirmKeyMap) ShortHelp() []key.Binding { return []key.Binding{k.commit, k.cancel} }

func (k confirmKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

// Confirmation is a yes/no prompt shown inside a Modal.
type Confirmation struct {
	Title string
	Type  ConfirmType
	keys  confirmKeyMap
	help  help.Model
}

func NewConfirmation(title string, t ConfirmType) *Confirmation {
	return &Confirmation{
		Title: title,
		Type:  t,
		keys: confirmKeyMap{
			commit: key.NewBinding(key.WithKeys("enter", "y"), key.WithHelp("enter/y", t.Label())),
			cancel: key.NewBinding(key.WithKeys("esc", "n"), key.WithHelp("esc/n", "Отмена")),
		},
		help: help.New(),
	}
}

func (c *Confirmation) HandleKey(msg tea.KeyMsg) ConfirmResult {
	switch {
	case key.Matches(msg, c.keys.commit):
		return ConfirmCommit
	case key.Matches(msg, c.keys.cancel):
		return ConfirmCancel
	}
	return ConfirmNone
}

func (c *Confirmation) View() string {
	action := titleStyle
	if c.Type == ConfirmDelete {
		action = dangerStyle
	}
	return titleStyle.Render(c.Title) + "\n\n" +
		action.Render("["+c.Type.Label()+"]") + "  " + mutedStyle.Render("[Отмена]") + "\n" +
		c.help.View(c.keys)
}
