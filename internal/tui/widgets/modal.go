package widgets

// Modal is a dialog frame whose visibility is controlled by its owner.
type Modal struct {
	open bool
}

func (m *Modal) Show() { m.open = true }

func (m *Modal) Hide() { m.open = false }

func (m *Modal) IsOpen() bool { return m != nil && m.open }

// Render draws content in a bordered card over base when open.
func (m *Modal) Render(base, content string, width, height int) string {
	if !m.IsOpen() {
		return base
	}
	return Overlay(base, modalStyle.Render(content), width, height)
}
