package widgets

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyBack  = tea.KeyMsg{Type: tea.KeyBackspace}
)

func adminItems() []Item {
	return []Item{{ID: 1, Name: "Алексей"}, {ID: 2, Name: "Мария"}, {ID: 3, Name: "Станислав"}}
}

func TestDropdownOpensAndMoves(t *testing.T) {
	d := NewDropdown(DropdownOptions{Multi: true})
	d.SetItems(adminItems())

	if res := d.HandleKey(runes("j")); res.Action != DropdownNone {
		t.Fatalf("closed dropdown moved: %v", res.Action)
	}
	if res := d.HandleKey(keyEnter); res.Action != DropdownOpened || !d.IsOpen() {
		t.Fatalf("expected dropdown to open, got %v", res.Action)
	}
	if res := d.HandleKey(runes("k")); res.Action != DropdownNone {
		t.Fatalf("cursor at top should not move, got %v", res.Action)
	}
	d.HandleKey(runes("j"))
	d.HandleKey(runes("j"))
	if res := d.HandleKey(runes("j")); res.Action != DropdownNone || d.Cursor() != 2 {
		t.Fatalf("cursor = %d, want clamped at 2", d.Cursor())
	}
	if res := d.HandleKey(keyEsc); res.Action != DropdownClosed || d.IsOpen() {
		t.Fatalf("esc should close")
	}
}

func TestDropdownMultiToggleReportsRequestedState(t *testing.T) {
	d := NewDropdown(DropdownOptions{Multi: true})
	d.SetItems(adminItems())
	d.HandleKey(keyEnter)
	d.HandleKey(runes("j"))

	res := d.HandleKey(keySpace)
	if res.Action != DropdownSelection || res.Item.ID != 2 || !res.Selected {
		t.Fatalf("unexpected result %+v", res)
	}
	// Controlled: nothing is selected until the owner says so.
	if strings.Contains(d.View(), "[x]") {
		t.Fatalf("dropdown selected an item on its own")
	}

	d.SetSelected([]int{2})
	res = d.HandleKey(keySpace)
	if res.Action != DropdownSelection || res.Item.ID != 2 || res.Selected {
		t.Fatalf("expected deselect request, got %+v", res)
	}
	if !d.IsOpen() {
		t.Fatalf("multi select should stay open")
	}
}

func TestDropdownSingleNoDelete(t *testing.T) {
	d := NewDropdown(DropdownOptions{NoDelete: true})
	d.SetItems([]Item{{ID: 1, Name: "Active"}, {ID: 2, Name: "Suspended"}})
	d.SetSelected([]int{1})

	d.HandleKey(keyEnter)
	if res := d.HandleKey(keyEnter); res.Action != DropdownNone {
		t.Fatalf("selected entry must not be removable, got %+v", res)
	}
	if d.IsOpen() {
		t.Fatalf("single select closes after enter")
	}

	d.HandleKey(keyEnter)
	d.HandleKey(runes("j"))
	res := d.HandleKey(keyEnter)
	if res.Action != DropdownSelection || res.Item.ID != 2 || !res.Selected {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestDropdownIgnoresKeysWhileLoading(t *testing.T) {
	d := NewDropdown(DropdownOptions{})
	d.SetLoading(true)
	if res := d.HandleKey(keyEnter); res.Action != DropdownNone || d.IsOpen() {
		t.Fatalf("loading dropdown opened")
	}
	if !strings.Contains(d.Summary(), "загрузка") {
		t.Fatalf("summary missing loading text: %q", d.Summary())
	}
}

func TestDropdownQueryFiltering(t *testing.T) {
	d := NewDropdown(DropdownOptions{Multi: true})
	d.SetItems(adminItems())
	d.HandleKey(keyEnter)

	for _, r := range "мар" {
		d.HandleKey(runes(string(r)))
	}
	if got := d.Visible(); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("visible = %+v, want only Мария", got)
	}

	d.HandleKey(keyBack)
	d.HandleKey(keyBack)
	d.HandleKey(keyBack)
	if len(d.Visible()) != 3 {
		t.Fatalf("erasing the query should show everything")
	}

	// one typo in the first three letters still matches
	for _, r := range "Стпн" {
		d.HandleKey(runes(string(r)))
	}
	if got := d.Visible(); len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("visible = %+v, want only Станислав", got)
	}

	d.HandleKey(keyEsc)
	if d.Query() != "" || len(d.Visible()) != 3 {
		t.Fatalf("closing should reset the query")
	}
}

func TestMatchesQuery(t *testing.T) {
	cases := []struct {
		name, q string
		want    bool
	}{
		{"Alice Cooper", "", true},
		{"Alice Cooper", "coop", true},
		{"Alice Cooper", "cpoper", true},
		{"Alice Cooper", "zz", false},
		{"Bob", "bx", false},
		{"Bob", "bod", true},
	}
	for _, c := range cases {
		if got := matchesQuery(c.name, c.q); got != c.want {
			t.Errorf("matchesQuery(%q, %q) = %v, want %v", c.name, c.q, got, c.want)
		}
	}
}

func TestDropdownSummaryModes(t *testing.T) {
	d := NewDropdown(DropdownOptions{Multi: true, SelectedCount: true, Placeholder: "Админы"})
	d.SetItems(adminItems())
	if !strings.Contains(d.Summary(), "Админы") {
		t.Fatalf("empty selection should show placeholder, got %q", d.Summary())
	}
	d.SetSelected([]int{1, 3})
	if !strings.Contains(d.Summary(), "выбрано: 2") {
		t.Fatalf("summary = %q", d.Summary())
	}

	n := NewDropdown(DropdownOptions{Multi: true})
	n.SetItems(adminItems())
	n.SetSelected([]int{3, 1})
	if got := n.Summary(); !strings.Contains(got, "Алексей, Станислав") {
		t.Fatalf("names should follow item order, got %q", got)
	}
}
