package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jask/studentadmin/internal/session"
	"github.com/jask/studentadmin/internal/student"
	"github.com/jask/studentadmin/internal/tui/statechange"
	"github.com/jask/studentadmin/internal/tui/studentfilter"
)

// Options configure the panel.
type Options struct {
	ToastTTL time.Duration
	// StudentID and StateID open the state tab for one student when StudentID
	// is positive.
	StudentID int
	StateID   int
}

// Filters is the last selection reported by the filter panel.
type Filters struct {
	TgAdmins []string
	States   []int
	IsLost   bool
}

// App ties together views.
type App struct {
	ctx     context.Context
	store   *session.Store
	log     *zap.Logger
	opts    Options
	state   appState
	filters *studentfilter.Model
	changer *statechange.Model
	spinner spinner.Model
	width   int
	height  int

	current     Filters
	filterCount int
	toastRev    int
}

type appState string

const (
	viewFilters appState = "filters"
	viewState   appState = "state"
)

type toastExpiredMsg struct{ rev int }

func New(ctx context.Context, svc student.Service, store *session.Store, log *zap.Logger, opts Options) *App {
	if log == nil {
		log = zap.NewNop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle
	a := &App{
		ctx:     ctx,
		store:   store,
		log:     log,
		opts:    opts,
		state:   viewFilters,
		spinner: sp,
	}
	a.filters = studentfilter.New(ctx, studentfilter.Deps{
		Service:  svc,
		Messages: store,
		Auth:     store,
		Logger:   log,
	}, a.onFilters)
	if opts.StudentID > 0 {
		a.changer = statechange.New(ctx, statechange.Deps{
			Service:  svc,
			Loading:  store,
			Messages: store,
			Auth:     store,
			Logger:   log,
		}, opts.StudentID, opts.StateID)
		a.state = viewState
	}
	return a
}

func (a *App) onFilters(tgAdmins []string, states []int, isLost bool) {
	a.current = Filters{TgAdmins: tgAdmins, States: states, IsLost: isLost}
	a.filterCount++
	a.log.Info("student filters",
		zap.Strings("tg_admins", tgAdmins), zap.Ints("states", states), zap.Bool("is_lost", isLost))
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.filters.Init(), a.spinner.Tick}
	if a.changer != nil {
		cmds = append(cmds, a.changer.Init())
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		if a.changer != nil {
			a.changer.SetSize(m.Width, max(m.Height-4, 0))
		}
	case tea.KeyMsg:
		cmds = append(cmds, a.handleKey(m))
	case toastExpiredMsg:
		a.store.ClearMessage(m.rev)
	case spinner.TickMsg:
		if m.ID == a.spinner.ID() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(m)
			cmds = append(cmds, cmd)
			break
		}
		cmds = append(cmds, a.broadcast(msg))
	default:
		cmds = append(cmds, a.broadcast(msg))
	}
	cmds = append(cmds, a.scheduleToast())
	return a, tea.Batch(cmds...)
}

// broadcast hands non-key messages to every feature; each ignores what it
// does not own.
func (a *App) broadcast(msg tea.Msg) tea.Cmd {
	cmds := []tea.Cmd{a.filters.Update(msg)}
	if a.changer != nil {
		cmds = append(cmds, a.changer.Update(msg))
	}
	return tea.Batch(cmds...)
}

func (a *App) handleKey(m tea.KeyMsg) tea.Cmd {
	if m.String() == "ctrl+c" {
		return tea.Quit
	}
	if !a.capturing() {
		switch m.String() {
		case "q":
			return tea.Quit
		case "1":
			a.state = viewFilters
			return nil
		case "2":
			if a.changer != nil {
				a.state = viewState
			}
			return nil
		}
	}
	// logged out: only navigation and quit
	if !a.store.IsAuth() {
		return nil
	}
	if a.state == viewState && a.changer != nil {
		return a.changer.Update(m)
	}
	return a.filters.Update(m)
}

func (a *App) capturing() bool {
	switch a.state {
	case viewState:
		return a.changer != nil && a.changer.Capturing()
	default:
		return a.filters.Capturing()
	}
}

// scheduleToast arms an expiry timer the first time a message revision is
// seen.
func (a *App) scheduleToast() tea.Cmd {
	rev := a.store.Revision()
	if rev == a.toastRev || a.opts.ToastTTL <= 0 {
		return nil
	}
	a.toastRev = rev
	return tea.Tick(a.opts.ToastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{rev: rev} })
}

// Current returns the last filter selection and how many times it was
// reported.
func (a *App) Current() (Filters, int) { return a.current, a.filterCount }

// styles
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa")).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c")).Padding(0, 1)
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	bannerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1e1e2e")).Background(lipgloss.Color("#f38ba8")).Padding(0, 1)
	spinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa"))
	faintStyle     = lipgloss.NewStyle().Faint(true)
)

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Студенты: панель администратора") + "\n")
	b.WriteString(a.renderTabs() + "\n\n")

	if !a.store.IsAuth() {
		b.WriteString(bannerStyle.Render("Сессия завершена. Войдите снова и перезапустите панель.") + "\n\n")
	}

	switch a.state {
	case viewState:
		b.WriteString(a.changer.View())
	default:
		b.WriteString(a.filters.View())
		b.WriteString("\n\n" + a.renderFilters())
	}

	b.WriteString("\n\n" + a.renderStatus())
	return b.String()
}

func (a *App) renderTabs() string {
	tabs := []struct {
		state appState
		label string
	}{
		{viewFilters, "[1] Фильтры"},
	}
	if a.changer != nil {
		tabs = append(tabs, struct {
			state appState
			label string
		}{viewState, fmt.Sprintf("[2] Студент #%d", a.changer.StudentID())})
	}
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		if t.state == a.state {
			parts = append(parts, activeTabStyle.Render(t.label))
		} else {
			parts = append(parts, tabStyle.Render(t.label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) renderFilters() string {
	admins := "все"
	if len(a.current.TgAdmins) > 0 {
		admins = strings.Join(a.current.TgAdmins, ", ")
	}
	states := "все"
	if len(a.current.States) > 0 {
		ids := make([]string, 0, len(a.current.States))
		for _, id := range a.current.States {
			ids = append(ids, fmt.Sprint(id))
		}
		states = strings.Join(ids, ", ")
	}
	debtors := "нет"
	if a.current.IsLost {
		debtors = "да"
	}
	return faintStyle.Render(fmt.Sprintf("Админы: %s  Статусы: %s  Только должники: %s", admins, states, debtors))
}

func (a *App) renderStatus() string {
	var parts []string
	if a.store.IsLoading() {
		parts = append(parts, a.spinner.View()+" выполняется…")
	}
	if msg, ok := a.store.Message(); ok {
		style := okStyle
		if msg.Kind == session.MessageError {
			style = errStyle
		}
		parts = append(parts, style.Render(msg.Text))
	}
	parts = append(parts, faintStyle.Render("[1/2] вкладки  [q] выход"))
	return strings.Join(parts, "  ")
}
