package widgets

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Item is the uniform shape every selectable list is adapted to.
type Item struct {
	ID   int
	Name string
}

// DropdownOptions configures a Dropdown.
type DropdownOptions struct {
	Placeholder string
	// Multi lets several items be selected at once; single-select closes the
	// list after a pick.
	Multi bool
	// NoDelete hides the way to deselect an already selected item.
	NoDelete bool
	// SelectedCount shows how many items are selected instead of their names.
	SelectedCount bool
}

// DropdownAction is what a key press did to the dropdown.
type DropdownAction int

const (
	DropdownNone DropdownAction = iota
	DropdownMoved
	DropdownOpened
	DropdownClosed
	DropdownSelection
)

// DropdownResult reports a key press. For DropdownSelection, Item is the
// entry acted on and Selected its requested new state.
type DropdownResult struct {
	Action   DropdownAction
	Item     Item
	Selected bool
}

type dropdownKeyMap struct {
	up     key.Binding
	down   key.Binding
	toggle key.Binding
	enter  key.Binding
	close  key.Binding
	erase  key.Binding
}

func newDropdownKeyMap() dropdownKeyMap {
	return dropdownKeyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		toggle: key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "toggle")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open/select")),
		close:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		erase:  key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "erase")),
	}
}

// Dropdown is a loading-aware single or multi select list. Selection is
// controlled by the owner: the dropdown only reports requested changes and
// renders whatever SetSelected last received.
type Dropdown struct {
	opts     DropdownOptions
	items    []Item
	filtered []Item
	selected []int
	loading  bool
	open     bool
	focused  bool
	cursor   int
	query    string
	spinner  spinner.Model
	keys     dropdownKeyMap
}

func NewDropdown(opts DropdownOptions) *Dropdown {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return &Dropdown{opts: opts, spinner: sp, keys: newDropdownKeyMap()}
}

func (d *Dropdown) SetLoading(v bool) { d.loading = v }

func (d *Dropdown) Loading() bool { return d.loading }

func (d *Dropdown) SetFocused(v bool) {
	d.focused = v
	if !v {
		d.close()
	}
}

func (d *Dropdown) Focused() bool { return d.focused }

func (d *Dropdown) IsOpen() bool { return d.open }

func (d *Dropdown) SetItems(items []Item) {
	d.items = append([]Item(nil), items...)
	d.rebuildFiltered()
}

func (d *Dropdown) Items() []Item { return append([]Item(nil), d.items...) }

// Visible returns the items matching the current query.
func (d *Dropdown) Visible() []Item { return append([]Item(nil), d.filtered...) }

func (d *Dropdown) SetSelected(ids []int) { d.selected = append([]int(nil), ids...) }

func (d *Dropdown) Cursor() int { return d.cursor }

func (d *Dropdown) Query() string { return d.query }

// Tick keeps the loading spinner animated.
func (d *Dropdown) Tick() tea.Cmd { return d.spinner.Tick }

// UpdateSpinner forwards spinner ticks; other messages are ignored.
func (d *Dropdown) UpdateSpinner(msg tea.Msg) tea.Cmd {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || !d.loading {
		return nil
	}
	var cmd tea.Cmd
	d.spinner, cmd = d.spinner.Update(tick)
	return cmd
}

func (d *Dropdown) isSelected(id int) bool {
	for _, s := range d.selected {
		if s == id {
			return true
		}
	}
	return false
}

// HandleKey applies a key press. Keys are ignored while loading.
func (d *Dropdown) HandleKey(msg tea.KeyMsg) DropdownResult {
	if d.loading {
		return DropdownResult{Action: DropdownNone}
	}
	if !d.open {
		if key.Matches(msg, d.keys.enter, d.keys.toggle) {
			d.open = true
			return DropdownResult{Action: DropdownOpened}
		}
		return DropdownResult{Action: DropdownNone}
	}

	switch {
	case key.Matches(msg, d.keys.close):
		d.close()
		return DropdownResult{Action: DropdownClosed}
	case key.Matches(msg, d.keys.up):
		if d.cursor > 0 {
			d.cursor--
			return DropdownResult{Action: DropdownMoved}
		}
		return DropdownResult{Action: DropdownNone}
	case key.Matches(msg, d.keys.down):
		if d.cursor < len(d.filtered)-1 {
			d.cursor++
			return DropdownResult{Action: DropdownMoved}
		}
		return DropdownResult{Action: DropdownNone}
	case key.Matches(msg, d.keys.toggle), key.Matches(msg, d.keys.enter):
		item, ok := d.current()
		if !ok {
			return DropdownResult{Action: DropdownNone}
		}
		want := !d.isSelected(item.ID)
		if !d.opts.Multi && key.Matches(msg, d.keys.enter) {
			d.close()
		}
		if !want && d.opts.NoDelete {
			return DropdownResult{Action: DropdownNone}
		}
		return DropdownResult{Action: DropdownSelection, Item: item, Selected: want}
	case key.Matches(msg, d.keys.erase):
		if r := []rune(d.query); len(r) > 0 {
			d.query = string(r[:len(r)-1])
			d.rebuildFiltered()
		}
		return DropdownResult{Action: DropdownNone}
	}

	if msg.Type == tea.KeyRunes && !msg.Alt {
		d.query += string(msg.Runes)
		d.rebuildFiltered()
	}
	return DropdownResult{Action: DropdownNone}
}

func (d *Dropdown) current() (Item, bool) {
	if len(d.filtered) == 0 {
		return Item{}, false
	}
	idx := min(max(d.cursor, 0), len(d.filtered)-1)
	return d.filtered[idx], true
}

func (d *Dropdown) close() {
	d.open = false
	d.query = ""
	d.rebuildFiltered()
}

func (d *Dropdown) rebuildFiltered() {
	q := strings.ToLower(strings.TrimSpace(d.query))
	out := make([]Item, 0, len(d.items))
	for _, it := range d.items {
		if matchesQuery(it.Name, q) {
			out = append(out, it)
		}
	}
	d.filtered = out
	if d.cursor > len(out)-1 {
		d.cursor = len(out) - 1
	}
	if d.cursor < 0 {
		d.cursor = 0
	}
}

// matchesQuery is a case-insensitive substring match that tolerates a single
// typo once the query is at least three runes long.
func matchesQuery(name, q string) bool {
	if q == "" {
		return true
	}
	name = strings.ToLower(name)
	if strings.Contains(name, q) {
		return true
	}
	qr := []rune(q)
	if len(qr) < 3 {
		return false
	}
	for _, word := range strings.Fields(name) {
		wr := []rune(word)
		if len(wr) > len(qr) {
			wr = wr[:len(qr)]
		}
		if levenshtein.ComputeDistance(string(wr), q) <= 1 {
			return true
		}
	}
	return false
}

// Summary is the collapsed, one-line rendering.
func (d *Dropdown) Summary() string {
	if d.loading {
		return d.spinner.View() + " " + mutedStyle.Render("загрузка…")
	}
	if d.opts.SelectedCount {
		n := 0
		for _, it := range d.items {
			if d.isSelected(it.ID) {
				n++
			}
		}
		if n == 0 {
			return mutedStyle.Render(d.placeholder())
		}
		return labelStyle.Render(fmt.Sprintf("выбрано: %d", n))
	}
	var names []string
	for _, it := range d.items {
		if d.isSelected(it.ID) {
			names = append(names, it.Name)
		}
	}
	if len(names) == 0 {
		return mutedStyle.Render(d.placeholder())
	}
	return labelStyle.Render(strings.Join(names, ", "))
}

func (d *Dropdown) placeholder() string {
	if d.opts.Placeholder != "" {
		return d.opts.Placeholder
	}
	return "не выбрано"
}

func (d *Dropdown) View() string {
	var b strings.Builder
	arrow := "▾"
	if d.open {
		arrow = "▴"
	}
	b.WriteString(d.Summary() + " " + mutedStyle.Render(arrow))
	if d.open {
		if d.query != "" {
			b.WriteString("\n" + mutedStyle.Render("поиск: ") + d.query)
		}
		if len(d.filtered) == 0 {
			b.WriteString("\n" + mutedStyle.Render("  ничего не найдено"))
		}
		for i, it := range d.filtered {
			marker := " "
			if i == d.cursor {
				marker = cursorStyle.Render("▶")
			}
			b.WriteString("\n" + marker + " " + d.mark(it.ID) + " " + labelStyle.Render(it.Name))
		}
	}
	style := boxStyle
	if d.focused {
		style = focusBoxStyle
	}
	return style.Render(b.String())
}

func (d *Dropdown) mark(id int) string {
	on := d.isSelected(id)
	switch {
	case d.opts.Multi && on:
		return checkedStyle.Render("[x]")
	case d.opts.Multi:
		return "[ ]"
	case on:
		return checkedStyle.Render("(•)")
	default:
		return "( )"
	}
}
