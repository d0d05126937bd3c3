package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is a named palette. StatusColors is derived from the tones so every
// appointment status, invoice status and role gets a badge color.
type Theme struct {
	Name string

	Background    string
	Surface       string
	Border        string
	BorderFocus   string
	SelectionBg   string
	SelectionText string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string
	Violet  string
	Orange  string

	// StatusColors is keyed by status code or role.
	StatusColors map[string]string
}

func (t Theme) withStatusColors() Theme {
	t.StatusColors = map[string]string{
		"pending":   t.Warning,
		"confirmed": t.Accent,
		"completed": t.Success,
		"cancelled": t.Faint,
		"unpaid":    t.Warning,
		"paid":      t.Success,
		"overdue":   t.Danger,
		"admin":     t.Violet,
		"staff":     t.Info,
		"doctor":    t.Accent,
		"patient":   t.Orange,
	}
	return t
}

// Styles holds the lipgloss styles rendered from a Theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Footer   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style

	statusColors map[string]string
	background   string
	muted        string
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// Styles builds the style set for t.
func (t Theme) Styles() Styles {
	bar := lipgloss.NewStyle().Background(lipgloss.Color(t.Surface)).Padding(0, 1)
	return Styles{
		Text:        fg(t.Text),
		MutedText:   fg(t.Muted),
		FaintText:   fg(t.Faint),
		AccentText:  fg(t.Accent),
		SuccessText: fg(t.Success).Bold(true),
		WarningText: fg(t.Warning),
		DangerText:  fg(t.Danger).Bold(true),
		InfoText:    fg(t.Info),

		Header:   bar.Foreground(lipgloss.Color(t.Text)),
		Footer:   bar.Foreground(lipgloss.Color(t.Muted)),
		Logo:     fg(t.Warning).Bold(true),
		Selected: fg(t.SelectionText).Background(lipgloss.Color(t.SelectionBg)),

		statusColors: t.StatusColors,
		background:   t.Background,
		muted:        t.Muted,
	}
}

// StatusStyle returns the badge style for a status code or role. Unknown
// values use the muted tone.
func (s Styles) StatusStyle(status string) lipgloss.Style {
	color, ok := s.statusColors[status]
	if !ok || color == "" {
		color = s.muted
	}
	return fg(s.background).Background(lipgloss.Color(color)).Padding(0, 1)
}

// WithBackground paints every text and bar style onto color, so segments
// joined on a bar do not fall back to the terminal background.
func (s Styles) WithBackground(color string) Styles {
	bg := lipgloss.Color(color)
	out := s
	for _, st := range []*lipgloss.Style{
		&out.Text, &out.MutedText, &out.FaintText, &out.AccentText,
		&out.SuccessText, &out.WarningText, &out.DangerText, &out.InfoText,
		&out.Header, &out.Footer, &out.Logo, &out.Selected,
	} {
		*st = st.Background(bg)
	}
	return out
}

var themeList = []Theme{
	// https://github.com/EdenEast/nightfox.nvim
	{
		Name:          "Nightfox",
		Background:    "#131a24",
		Surface:       "#192330",
		Border:        "#39506d",
		BorderFocus:   "#719cd6",
		SelectionBg:   "#2b3b51",
		SelectionText: "#cdcecf",
		Text:          "#cdcecf",
		Muted:         "#738091",
		Faint:         "#71839b",
		Accent:        "#719cd6",
		Success:       "#81b29a",
		Warning:       "#dbc074",
		Danger:        "#c94f6d",
		Info:          "#63cdcf",
		Violet:        "#9d79d6",
		Orange:        "#f4a261",
	},
	// https://github.com/rebelot/kanagawa.nvim
	{
		Name:          "Kanagawa",
		Background:    "#16161D",
		Surface:       "#1F1F28",
		Border:        "#54546D",
		BorderFocus:   "#7E9CD8",
		SelectionBg:   "#2D4F67",
		SelectionText: "#DCD7BA",
		Text:          "#DCD7BA",
		Muted:         "#C8C093",
		Faint:         "#727169",
		Accent:        "#7E9CD8",
		Success:       "#98BB6C",
		Warning:       "#E6C384",
		Danger:        "#E46876",
		Info:          "#7FB4CA",
		Violet:        "#957FB8",
		Orange:        "#FFA066",
	},
	// Tailwind slate and sky.
	{
		Name:          "Slate",
		Background:    "#020617",
		Surface:       "#0f172a",
		Border:        "#334155",
		BorderFocus:   "#38bdf8",
		SelectionBg:   "#0284c7",
		SelectionText: "#f8fafc",
		Text:          "#f1f5f9",
		Muted:         "#94a3b8",
		Faint:         "#64748b",
		Accent:        "#38bdf8",
		Success:       "#22c55e",
		Warning:       "#f59e0b",
		Danger:        "#ef4444",
		Info:          "#06b6d4",
		Violet:        "#a855f7",
		Orange:        "#fb923c",
	},
}

// GetTheme returns the named theme, or the first one when name is unknown.
func GetTheme(name string) Theme {
	for _, t := range themeList {
		if t.Name == name {
			return t.withStatusColors()
		}
	}
	return themeList[0].withStatusColors()
}

// NextTheme returns the theme after current, wrapping around.
func NextTheme(current string) string {
	for i, t := range themeList {
		if t.Name == current {
			return themeList[(i+1)%len(themeList)].Name
		}
	}
	return themeList[0].Name
}

// ThemeNames lists the themes in cycle order.
func ThemeNames() []string {
	names := make([]string, len(themeList))
	for i, t := range themeList {
		names[i] = t.Name
	}
	return names
}
