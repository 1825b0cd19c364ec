// Package statechange lets an operator move one student to another state.
// A pick from the catalog only opens a confirmation; the change is sent to
// the student service after the operator confirms it.
package statechange

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jask/studentadmin/internal/session"
	"github.com/jask/studentadmin/internal/student"
	"github.com/jask/studentadmin/internal/tui/widgets"
)

const (
	confirmTitle  = "Вы точно хотите сменить статус ?"
	msgChanged    = "Успешная смена состояния"
	msgLoadFailed = "Ошибка"
	msgSendFailed = "Ошибка при смене состояния"
)

// Deps are the collaborators injected by the host.
type Deps struct {
	Service  student.Service
	Loading  session.LoadingSetter
	Messages session.MessageSetter
	Auth     session.AuthSetter
	Logger   *zap.Logger
}

// Model is the state changer for a single student.
type Model struct {
	ctx        context.Context
	deps       Deps
	log        *zap.Logger
	studentID  int
	current    int
	selected   int
	states     []student.State
	dropdown   *widgets.Dropdown
	modal      widgets.Modal
	confirm    *widgets.Confirmation
	submitting bool
	width      int
	height     int
}

type statesLoadedMsg struct {
	studentID int
	states    []student.State
	err       error
}

type stateChangedMsg struct {
	studentID int
	stateID   int
	err       error
}

func New(ctx context.Context, deps Deps, studentID, stateID int) *Model {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	dd := widgets.NewDropdown(widgets.DropdownOptions{NoDelete: true, Placeholder: "состояние не выбрано"})
	dd.SetLoading(true)
	dd.SetSelected([]int{stateID})
	dd.SetFocused(true)
	return &Model{
		ctx:       ctx,
		deps:      deps,
		log:       log.Named("statechange").With(zap.Int("student_id", studentID)),
		studentID: studentID,
		current:   stateID,
		selected:  stateID,
		dropdown:  dd,
		confirm:   widgets.NewConfirmation(confirmTitle, widgets.ConfirmSend),
	}
}

func (m *Model) Init() tea.Cmd {
	m.dropdown.SetLoading(true)
	return tea.Batch(m.loadStates(), m.dropdown.Tick())
}

func (m *Model) loadStates() tea.Cmd {
	svc, ctx, id := m.deps.Service, m.ctx, m.studentID
	return func() tea.Msg {
		states, err := svc.GetStates(ctx)
		return statesLoadedMsg{studentID: id, states: states, err: err}
	}
}

func (m *Model) changeState(stateID int) tea.Cmd {
	svc, ctx, id := m.deps.Service, m.ctx, m.studentID
	return func() tea.Msg {
		err := svc.ChangeState(ctx, id, stateID)
		return stateChangedMsg{studentID: id, stateID: stateID, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case statesLoadedMsg:
		if msg.studentID != m.studentID {
			return nil
		}
		m.dropdown.SetLoading(false)
		if msg.err != nil {
			m.log.Warn("load states failed", zap.Error(msg.err))
			session.ReportFailure(msg.err, msgLoadFailed, m.deps.Auth, m.deps.Messages)
			return nil
		}
		m.states = msg.states
		items := make([]widgets.Item, 0, len(msg.states))
		for _, s := range msg.states {
			items = append(items, widgets.Item{ID: s.State, Name: s.Name})
		}
		m.dropdown.SetItems(items)
	case stateChangedMsg:
		if msg.studentID != m.studentID {
			return nil
		}
		m.finishChange(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m.dropdown.UpdateSpinner(msg)
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.modal.IsOpen() {
		if m.submitting {
			return nil
		}
		switch m.confirm.HandleKey(msg) {
		case widgets.ConfirmCommit:
			return m.commit()
		case widgets.ConfirmCancel:
			m.cancel()
		}
		return nil
	}
	if m.submitting {
		return nil
	}
	res := m.dropdown.HandleKey(msg)
	if res.Action == widgets.DropdownSelection {
		m.selectState(res.Item, res.Selected)
	}
	return nil
}

// selectState opens the confirmation when a different catalog entry is
// picked; anything else puts the selection back on the current state.
func (m *Model) selectState(item widgets.Item, selected bool) {
	target, ok := m.stateByID(item.ID)
	if ok && selected && target.State != m.current {
		m.selected = target.State
		m.dropdown.SetSelected([]int{m.selected})
		m.modal.Show()
		return
	}
	m.selected = m.current
	m.dropdown.SetSelected([]int{m.current})
}

func (m *Model) commit() tea.Cmd {
	m.submitting = true
	m.deps.Loading.SetIsLoading(true)
	m.log.Info("changing state", zap.Int("from", m.current), zap.Int("to", m.selected))
	return m.changeState(m.selected)
}

func (m *Model) cancel() {
	m.selected = m.current
	m.dropdown.SetSelected([]int{m.current})
	m.modal.Hide()
}

func (m *Model) finishChange(msg stateChangedMsg) {
	if msg.err != nil {
		m.log.Warn("change state failed", zap.Int("to", msg.stateID), zap.Error(msg.err))
		session.ReportFailure(msg.err, msgSendFailed, m.deps.Auth, m.deps.Messages)
		m.selected = m.current
	} else {
		m.deps.Messages.SetGlobalMessage(session.Message{Text: msgChanged, Kind: session.MessageOK})
		m.current = msg.stateID
		m.selected = msg.stateID
	}
	m.dropdown.SetSelected([]int{m.selected})
	m.submitting = false
	m.deps.Loading.SetIsLoading(false)
	m.modal.Hide()
}

func (m *Model) stateByID(id int) (student.State, bool) {
	for _, s := range m.states {
		if s.State == id {
			return s, true
		}
	}
	return student.State{}, false
}

// SetSize is the area the confirmation dialog is centred in.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
}

// Capturing reports whether keys such as q belong to this component.
func (m *Model) Capturing() bool {
	return m.modal.IsOpen() || m.dropdown.IsOpen()
}

func (m *Model) StudentID() int { return m.studentID }

func (m *Model) Current() int { return m.current }

func (m *Model) Selected() int { return m.selected }

func (m *Model) DialogOpen() bool { return m.modal.IsOpen() }

func (m *Model) Submitting() bool { return m.submitting }

func (m *Model) States() []student.State { return append([]student.State(nil), m.states...) }

func (m *Model) CatalogLoading() bool { return m.dropdown.Loading() }

var headingStyle = lipgloss.NewStyle().Bold(true)

func (m *Model) View() string {
	body := headingStyle.Render(fmt.Sprintf("Состояние студента #%d", m.studentID)) + "\n" +
		m.dropdown.View() + "\n" +
		lipgloss.NewStyle().Faint(true).Render("[enter] выбрать  [j/k] перемещение  [esc] закрыть")
	return m.modal.Render(body, m.confirm.View(), m.width, m.height)
}
