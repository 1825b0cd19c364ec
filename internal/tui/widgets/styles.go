package widgets

import "github.com/charmbracelet/lipgloss"

var (
	colorText    lipgloss.Color = "#cdd6f4"
	colorMuted   lipgloss.Color = "#a6adc8"
	colorBorder  lipgloss.Color = "#585b70"
	colorAccent  lipgloss.Color = "#89b4fa"
	colorSuccess lipgloss.Color = "#a6e3a1"
	colorError   lipgloss.Color = "#f38ba8"
	colorFocus   lipgloss.Color = "#b4befe"
)

var (
	labelStyle    = lipgloss.NewStyle().Foreground(colorText)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	cursorStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	checkedStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	titleStyle    = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	dangerStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	spinnerStyle  = lipgloss.NewStyle().Foreground(colorAccent)
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1)
	focusBoxStyle = boxStyle.BorderForeground(colorFocus)
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent).Padding(1, 2)
)
