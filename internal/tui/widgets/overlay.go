package widgets

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Overlay centres card over base on a width x height canvas. Base rows the
// card does not cover are kept.
func Overlay(base, card string, width, height int) string {
	if width <= 0 || height <= 0 {
		return base + "\n\n" + card
	}
	canvas := padLines(splitLines(base, height), width)
	cardLines := splitLines(card, 0)
	cardWidth := widest(cardLines)
	if cardWidth == 0 {
		return strings.Join(canvas, "\n")
	}
	x := max((width-cardWidth)/2, 0)
	y := max((height-len(cardLines))/2, 0)

	for i, line := range cardLines {
		row := y + i
		if row >= len(canvas) {
			break
		}
		target := canvas[row]
		left := ansi.Truncate(target, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		line = padRight(line, cardWidth)
		right := cutLeft(target, x+cardWidth)
		canvas[row] = padRight(left+line+right, width)
	}
	return strings.Join(canvas, "\n")
}

func splitLines(s string, height int) []string {
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	return lines
}

func padLines(lines []string, width int) []string {
	for i := range lines {
		lines[i] = padRight(lines[i], width)
	}
	return lines
}

func widest(lines []string) int {
	w := 0
	for _, l := range lines {
		w = max(w, ansi.StringWidth(l))
	}
	return w
}

// cutLeft drops the first cols cells of s.
func cutLeft(s string, cols int) string {
	if cols <= 0 {
		return s
	}
	return strings.TrimPrefix(s, ansi.Truncate(s, cols, ""))
}

func padRight(s string, width int) string {
	s = ansi.Truncate(s, width, "")
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
