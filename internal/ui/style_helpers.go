package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// band renders bar segments on a solid background. lipgloss resets the
// background after each styled run, so every word and gap is painted
// separately.
type band struct {
	bg lipgloss.Color
}

func newBand(color string) band {
	return band{bg: lipgloss.Color(color)}
}

func (b band) plain() lipgloss.Style {
	return lipgloss.NewStyle().Background(b.bg)
}

// text paints s word by word so inner spaces keep the background.
func (b band) text(s string, style lipgloss.Style) string {
	if s == "" {
		return ""
	}
	style = style.Background(b.bg)
	words := strings.Split(s, " ")
	for i, w := range words {
		if w != "" {
			words[i] = style.Render(w)
		}
	}
	return strings.Join(words, b.gap(1))
}

// pair renders "value label", e.g. a counter and its caption.
func (b band) pair(value string, vs lipgloss.Style, label string, ls lipgloss.Style) string {
	return b.text(value, vs) + b.gap(1) + b.text(label, ls)
}

func (b band) gap(n int) string {
	return b.plain().Render(strings.Repeat(" ", n))
}

func (b band) join(parts []string, sep string) string {
	return strings.Join(parts, b.plain().Render(sep))
}

// fill pads content to width.
func (b band) fill(content string, width int) string {
	return b.plain().Width(width).Render(content)
}
