package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/prms/console/internal/logtail"
)

const activityLines = 500

type activityMsg struct {
	entries []logtail.Entry
	err     error
}

// activityView shows the tail of the console's own log file.
type activityView struct {
	viewport viewport.Model
	entries  []logtail.Entry
	err      error
	loaded   bool
}

func newActivityView() activityView {
	return activityView{viewport: viewport.New(80, 20)}
}

func (a *activityView) resize(width, height int) {
	a.viewport.Width = width
	a.viewport.Height = max(height-1, 1)
}

func (a *activityView) set(entries []logtail.Entry, err error) {
	a.entries, a.err, a.loaded = entries, err, true
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Format())
	}
	a.viewport.SetContent(strings.Join(lines, "\n"))
	a.viewport.GotoBottom()
}

func (a activityView) view(theme Theme) string {
	styles := theme.Styles()
	title := styles.AccentText.Bold(true).Render("Activity") + " " +
		styles.MutedText.Render("esc back · r reload")
	switch {
	case !a.loaded:
		return title + "\n" + styles.MutedText.Render("Loading...")
	case a.err != nil:
		return title + "\n" + styles.DangerText.Render(a.err.Error())
	case len(a.entries) == 0:
		return title + "\n" + styles.MutedText.Render("No activity yet")
	}
	return title + "\n" + a.viewport.View()
}

// loadActivity reads the log file off the UI goroutine.
func (m Model) loadActivity() tea.Cmd {
	if m.cfg == nil {
		return func() tea.Msg { return activityMsg{} }
	}
	path := m.cfg.LogPath()
	return func() tea.Msg {
		entries, err := logtail.Tail(path, activityLines, zerolog.InfoLevel)
		return activityMsg{entries: entries, err: err}
	}
}
