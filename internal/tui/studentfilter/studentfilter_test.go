package studentfilter

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/studentadmin/internal/session"
	"github.com/jask/studentadmin/internal/student"
)

type fakeService struct {
	admins    []string
	adminsErr error
	states    []student.State
	statesErr error
}

func (f *fakeService) GetStates(context.Context) ([]student.State, error) {
	return f.states, f.statesErr
}

func (f *fakeService) GetTgAdmins(context.Context) ([]string, error) {
	return f.admins, f.adminsErr
}

func (f *fakeService) ChangeState(context.Context, int, int) error {
	return errors.New("not used")
}

type call struct {
	admins []string
	states []int
	isLost bool
}

type recorder struct{ calls []call }

func (r *recorder) record(admins []string, states []int, isLost bool) {
	r.calls = append(r.calls, call{admins, states, isLost})
}

func (r *recorder) last() call { return r.calls[len(r.calls)-1] }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyDown  = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}
	keyUp    = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}
)

func defaultService() *fakeService {
	return &fakeService{
		admins: []string{"anna", "boris", "vera"},
		states: []student.State{{State: 10, Name: "Учится"}, {State: 20, Name: "Пауза"}, {State: 30, Name: "Отчислен"}},
	}
}

func newPanel(t *testing.T, svc *fakeService) (*Model, *recorder, *session.Store) {
	t.Helper()
	store := session.NewStore()
	rec := &recorder{}
	m := New(context.Background(), Deps{Service: svc, Messages: store, Auth: store}, rec.record)
	require.NotNil(t, m.Init())
	return m, rec, store
}

func loadAll(m *Model) {
	m.Update(m.loadAdmins()())
	m.Update(m.loadStates()())
}

// toggleAt toggles the entry at idx of the focused, open dropdown.
func toggleAt(m *Model, idx int) {
	for i := 0; i < 5; i++ {
		m.Update(keyUp)
	}
	for i := 0; i < idx; i++ {
		m.Update(keyDown)
	}
	m.Update(keySpace)
}

func TestInitReportsEmptySelectionBeforeResponses(t *testing.T) {
	m, rec, _ := newPanel(t, defaultService())

	require.Len(t, rec.calls, 1)
	require.Equal(t, call{admins: []string{}, states: []int{}, isLost: false}, rec.calls[0])
	require.True(t, m.Loading())

	loadAll(m)
	require.Len(t, rec.calls, 1, "loading catalogs must not re-fire the callback")
}

func TestLoadingUntilBothFetchesFinish(t *testing.T) {
	m, _, _ := newPanel(t, defaultService())

	m.Update(m.loadStates()())
	require.True(t, m.Loading(), "admins still in flight")
	require.True(t, m.admins.Loading())
	require.True(t, m.statesDD.Loading())

	m.Update(m.loadAdmins()())
	require.False(t, m.Loading())
	require.False(t, m.admins.Loading())
}

func TestAdminNamesGetSequentialIDs(t *testing.T) {
	m, _, _ := newPanel(t, defaultService())
	loadAll(m)

	items := m.AdminItems()
	require.Len(t, items, 3)
	for i, it := range items {
		assert.Equal(t, i+1, it.ID)
	}
	assert.Equal(t, "boris", items[1].Name)
}

func TestToggleAdminOnThenOffRestoresSelection(t *testing.T) {
	m, rec, _ := newPanel(t, defaultService())
	loadAll(m)

	m.Update(keyEnter)
	toggleAt(m, 2)
	before := m.SelectedAdmins()
	require.Equal(t, []string{"vera"}, rec.last().admins)

	toggleAt(m, 0)
	require.Equal(t, []string{"anna", "vera"}, rec.last().admins)

	toggleAt(m, 0)
	require.ElementsMatch(t, before, m.SelectedAdmins())
	require.Equal(t, []string{"vera"}, rec.last().admins)
	require.Len(t, rec.calls, 4)
}

func TestToggleKeepsOrderOfOtherEntries(t *testing.T) {
	ids := toggle(nil, 3, true)
	ids = toggle(ids, 1, true)
	ids = toggle(ids, 2, true)
	require.Equal(t, []int{3, 1, 2}, ids)

	ids = toggle(ids, 1, false)
	require.Equal(t, []int{3, 2}, ids)

	require.Equal(t, []int{3, 2}, toggle(ids, 3, true), "duplicate add is ignored")
	require.Equal(t, []int{3, 2}, toggle(ids, 9, false), "removing a missing id is ignored")
}

func TestStatesAndDebtorPayload(t *testing.T) {
	m, rec, _ := newPanel(t, defaultService())
	loadAll(m)

	m.Update(keyTab)
	m.Update(keyEnter)
	toggleAt(m, 2)
	toggleAt(m, 0)
	require.Equal(t, []int{30, 10}, m.SelectedStates())
	require.Equal(t, []int{10, 30}, rec.last().states, "payload follows catalog order")

	m.Update(keyEsc)
	m.Update(keyTab)
	m.Update(keySpace)
	require.True(t, m.IsLost())
	require.Equal(t, call{admins: []string{}, states: []int{10, 30}, isLost: true}, rec.last())

	m.Update(keyEnter)
	require.False(t, m.IsLost())
	require.False(t, rec.last().isLost)
	require.Len(t, rec.calls, 5)
}

func TestTabCyclesFocus(t *testing.T) {
	m, _, _ := newPanel(t, defaultService())
	loadAll(m)

	require.Equal(t, focusAdmins, m.focus)
	m.Update(keyTab)
	require.Equal(t, focusStates, m.focus)
	m.Update(keyTab)
	require.Equal(t, focusDebtor, m.focus)
	m.Update(keyTab)
	require.Equal(t, focusAdmins, m.focus)
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, focusDebtor, m.focus)

	// tab is swallowed while a dropdown is open
	m.Update(keyTab)
	m.Update(keyEnter)
	require.True(t, m.Capturing())
	m.Update(keyTab)
	require.Equal(t, focusAdmins, m.focus)
}

func TestFetchFailuresAreIndependent(t *testing.T) {
	t.Run("admins generic", func(t *testing.T) {
		svc := defaultService()
		svc.adminsErr = errors.New("502")
		m, _, store := newPanel(t, svc)
		loadAll(m)

		require.Empty(t, m.AdminItems())
		require.Len(t, m.statesDD.Items(), 3)
		require.True(t, store.IsAuth())
		msg, ok := store.Message()
		require.True(t, ok)
		require.Equal(t, "Ошибка при получении списка админов", msg.Text)
		require.False(t, m.Loading())
	})
	t.Run("states generic", func(t *testing.T) {
		svc := defaultService()
		svc.statesErr = errors.New("502")
		m, _, store := newPanel(t, svc)
		loadAll(m)

		require.Len(t, m.AdminItems(), 3)
		msg, _ := store.Message()
		require.Equal(t, "Ошибка при получении списка статусов", msg.Text)
	})
	t.Run("authorization", func(t *testing.T) {
		svc := defaultService()
		svc.statesErr = student.AuthError("Войдите снова")
		m, _, store := newPanel(t, svc)
		loadAll(m)

		require.False(t, store.IsAuth())
		msg, _ := store.Message()
		require.Equal(t, "Войдите снова", msg.Text)
	})
}

func TestViewRendersControls(t *testing.T) {
	m, _, _ := newPanel(t, defaultService())
	loadAll(m)
	view := m.View()
	for _, want := range []string{"Админы", "Статусы", "Должники:"} {
		require.Contains(t, view, want)
	}
}
