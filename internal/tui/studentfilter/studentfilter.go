// Package studentfilter is the filter bar above the student list: admins,
// states and the debtor switch. Every change of the combined selection is
// reported to the owner through a callback.
package studentfilter

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jask/studentadmin/internal/session"
	"github.com/jask/studentadmin/internal/student"
	"github.com/jask/studentadmin/internal/tui/widgets"
)

const (
	msgAdminsFailed = "Ошибка при получении списка админов"
	msgStatesFailed = "Ошибка при получении списка статусов"
	debtorLabel     = "Должники:"
)

// OnFilters receives the selected admin names, state ids and the debtor flag.
type OnFilters func(tgAdmins []string, states []int, isLost bool)

// Deps are the collaborators injected by the host.
type Deps struct {
	Service  student.Service
	Messages session.MessageSetter
	Auth     session.AuthSetter
	Logger   *zap.Logger
}

type focusTarget int

const (
	focusAdmins focusTarget = iota
	focusStates
	focusDebtor
	focusCount
)

type filterKeyMap struct {
	next key.Binding
	prev key.Binding
}

// Model is the filter panel.
type Model struct {
	ctx       context.Context
	deps      Deps
	log       *zap.Logger
	onFilters OnFilters

	adminItems     []widgets.Item
	states         []student.State
	isLost         bool
	selectedAdmins []int
	selectedStates []int
	inFlight       int

	admins   *widgets.Dropdown
	statesDD *widgets.Dropdown
	debtor   *widgets.Toggle
	focus    focusTarget
	keys     filterKeyMap

	emitted bool
	last    payload
}

type payload struct {
	admins []string
	states []int
	isLost bool
}

func (p payload) equal(o payload) bool {
	return p.isLost == o.isLost && slices.Equal(p.admins, o.admins) && slices.Equal(p.states, o.states)
}

type adminsLoadedMsg struct {
	admins []string
	err    error
}

type statesLoadedMsg struct {
	states []student.State
	err    error
}

func New(ctx context.Context, deps Deps, onFilters OnFilters) *Model {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	m := &Model{
		ctx:       ctx,
		deps:      deps,
		log:       log.Named("studentfilter"),
		onFilters: onFilters,
		admins:    widgets.NewDropdown(widgets.DropdownOptions{Multi: true, SelectedCount: true, Placeholder: "Админы"}),
		statesDD:  widgets.NewDropdown(widgets.DropdownOptions{Multi: true, SelectedCount: true, Placeholder: "Статусы"}),
		debtor:    &widgets.Toggle{Label: debtorLabel},
		keys: filterKeyMap{
			next: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
			prev: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
		},
	}
	m.applyFocus()
	return m
}

// Init starts both catalog fetches and reports the empty selection right
// away, before either response arrives.
func (m *Model) Init() tea.Cmd {
	m.inFlight = 2
	m.syncLoading()
	m.emit()
	return tea.Batch(m.loadAdmins(), m.loadStates(), m.admins.Tick(), m.statesDD.Tick())
}

func (m *Model) loadAdmins() tea.Cmd {
	svc, ctx := m.deps.Service, m.ctx
	return func() tea.Msg {
		admins, err := svc.GetTgAdmins(ctx)
		return adminsLoadedMsg{admins: admins, err: err}
	}
}

func (m *Model) loadStates() tea.Cmd {
	svc, ctx := m.deps.Service, m.ctx
	return func() tea.Msg {
		states, err := svc.GetStates(ctx)
		return statesLoadedMsg{states: states, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case adminsLoadedMsg:
		m.finishLoad()
		if msg.err != nil {
			m.log.Warn("load admins failed", zap.Error(msg.err))
			session.ReportFailure(msg.err, msgAdminsFailed, m.deps.Auth, m.deps.Messages)
			return nil
		}
		// admin names come without ids; number them so the dropdown can
		// address them
		items := make([]widgets.Item, 0, len(msg.admins))
		for i, name := range msg.admins {
			items = append(items, widgets.Item{ID: i + 1, Name: name})
		}
		m.adminItems = items
		m.admins.SetItems(items)
	case statesLoadedMsg:
		m.finishLoad()
		if msg.err != nil {
			m.log.Warn("load states failed", zap.Error(msg.err))
			session.ReportFailure(msg.err, msgStatesFailed, m.deps.Auth, m.deps.Messages)
			return nil
		}
		m.states = msg.states
		items := make([]widgets.Item, 0, len(msg.states))
		for _, s := range msg.states {
			items = append(items, widgets.Item{ID: s.State, Name: s.Name})
		}
		m.statesDD.SetItems(items)
	case tea.KeyMsg:
		m.handleKey(msg)
	default:
		return tea.Batch(m.admins.UpdateSpinner(msg), m.statesDD.UpdateSpinner(msg))
	}
	return nil
}

func (m *Model) finishLoad() {
	if m.inFlight > 0 {
		m.inFlight--
	}
	m.syncLoading()
}

// syncLoading keeps both dropdowns loading until every fetch has returned.
func (m *Model) syncLoading() {
	loading := m.inFlight > 0
	m.admins.SetLoading(loading)
	m.statesDD.SetLoading(loading)
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	dd := m.focusedDropdown()
	if dd == nil || !dd.IsOpen() {
		switch {
		case key.Matches(msg, m.keys.next):
			m.focus = (m.focus + 1) % focusCount
			m.applyFocus()
			return
		case key.Matches(msg, m.keys.prev):
			m.focus = (m.focus + focusCount - 1) % focusCount
			m.applyFocus()
			return
		}
	}

	if m.focus == focusDebtor {
		if next, ok := m.debtor.HandleKey(msg); ok {
			m.setIsLost(next)
		}
		return
	}
	res := dd.HandleKey(msg)
	if res.Action != widgets.DropdownSelection {
		return
	}
	if m.focus == focusAdmins {
		m.toggleAdmin(res.Item, res.Selected)
	} else {
		m.toggleState(res.Item, res.Selected)
	}
}

func (m *Model) toggleAdmin(item widgets.Item, selected bool) {
	m.selectedAdmins = toggle(m.selectedAdmins, item.ID, selected)
	m.admins.SetSelected(m.selectedAdmins)
	m.emit()
}

func (m *Model) toggleState(item widgets.Item, selected bool) {
	m.selectedStates = toggle(m.selectedStates, item.ID, selected)
	m.statesDD.SetSelected(m.selectedStates)
	m.emit()
}

func (m *Model) setIsLost(v bool) {
	m.isLost = v
	m.debtor.SetChecked(v)
	m.emit()
}

// toggle appends or removes id without reordering the other entries.
func toggle(ids []int, id int, selected bool) []int {
	idx := slices.Index(ids, id)
	if selected {
		if idx >= 0 {
			return ids
		}
		return append(slices.Clone(ids), id)
	}
	if idx < 0 {
		return ids
	}
	return slices.Delete(slices.Clone(ids), idx, idx+1)
}

// emit calls the owner's callback when the combined selection differs from
// the one reported last.
func (m *Model) emit() {
	p := m.current()
	if m.emitted && p.equal(m.last) {
		return
	}
	m.emitted = true
	m.last = p
	m.log.Debug("filters changed",
		zap.Strings("admins", p.admins), zap.Ints("states", p.states), zap.Bool("is_lost", p.isLost))
	if m.onFilters != nil {
		m.onFilters(slices.Clone(p.admins), slices.Clone(p.states), p.isLost)
	}
}

func (m *Model) current() payload {
	admins := []string{}
	for _, it := range m.adminItems {
		if slices.Contains(m.selectedAdmins, it.ID) {
			admins = append(admins, it.Name)
		}
	}
	states := []int{}
	for _, s := range m.states {
		if slices.Contains(m.selectedStates, s.State) {
			states = append(states, s.State)
		}
	}
	return payload{admins: admins, states: states, isLost: m.isLost}
}

func (m *Model) focusedDropdown() *widgets.Dropdown {
	switch m.focus {
	case focusAdmins:
		return m.admins
	case focusStates:
		return m.statesDD
	}
	return nil
}

func (m *Model) applyFocus() {
	m.admins.SetFocused(m.focus == focusAdmins)
	m.statesDD.SetFocused(m.focus == focusStates)
	m.debtor.SetFocused(m.focus == focusDebtor)
}

// Capturing reports whether an open dropdown owns the keyboard.
func (m *Model) Capturing() bool {
	return m.admins.IsOpen() || m.statesDD.IsOpen()
}

func (m *Model) Loading() bool { return m.inFlight > 0 }

func (m *Model) SelectedAdmins() []int { return slices.Clone(m.selectedAdmins) }

func (m *Model) SelectedStates() []int { return slices.Clone(m.selectedStates) }

func (m *Model) IsLost() bool { return m.isLost }

func (m *Model) AdminItems() []widgets.Item { return slices.Clone(m.adminItems) }

var captionStyle = lipgloss.NewStyle().Faint(true)

func (m *Model) View() string {
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		m.admins.View(), "  ",
		m.statesDD.View(), "  ",
		m.debtor.View(),
	)
	hints := []string{"[tab] следующий", "[enter] открыть", "[space] отметить", "[esc] закрыть"}
	return row + "\n" + captionStyle.Render(strings.Join(hints, "  "))
}
