package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prms/console/internal/prms"
)

// loginForm collects credentials. Nothing typed here is persisted.
type loginForm struct {
	email    textinput.Model
	password textinput.Model
	busy     bool
	err      string
	errors   map[string]string
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Prompt = ""
	email.Placeholder = "you@clinic.example"
	email.CharLimit = 120
	email.Focus()

	password := textinput.New()
	password.Prompt = ""
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 120

	return loginForm{email: email, password: password}
}

func (f loginForm) onPassword() bool { return f.password.Focused() }

func (f *loginForm) toggle() tea.Cmd {
	if f.email.Focused() {
		f.email.Blur()
		return f.password.Focus()
	}
	f.password.Blur()
	return f.email.Focus()
}

func (f loginForm) credentials() prms.Credentials {
	return prms.Credentials{
		Email:    strings.TrimSpace(f.email.Value()),
		Password: f.password.Value(),
	}
}

func (f *loginForm) setErrors(ve *prms.ValidationError) {
	f.errors = map[string]string{}
	for _, p := range ve.Problems {
		f.errors[p.Field] = p.Message
	}
}

func (f loginForm) update(msg tea.Msg) (loginForm, tea.Cmd) {
	var cmds [2]tea.Cmd
	f.email, cmds[0] = f.email.Update(msg)
	f.password, cmds[1] = f.password.Update(msg)
	return f, tea.Batch(cmds[:]...)
}

func (m Model) renderLogin() string {
	styles := m.theme.Styles()
	f := m.login

	label := func(text string, focused bool) string {
		if focused {
			return styles.AccentText.Bold(true).Render(text)
		}
		return styles.MutedText.Render(text)
	}
	fieldErr := func(name string) string {
		if msg := f.errors[name]; msg != "" {
			return "\n" + styles.DangerText.Render(msg)
		}
		return ""
	}

	lines := []string{
		styles.Logo.Render("PRMS") + " " + styles.MutedText.Render("Patient Records"),
		"",
		label("Email", f.email.Focused()),
		f.email.View() + fieldErr("email"),
		"",
		label("Password", f.password.Focused()),
		f.password.View() + fieldErr("password"),
		"",
	}
	switch {
	case f.busy:
		lines = append(lines, styles.InfoText.Render("Signing in..."))
	case f.err != "":
		lines = append(lines, styles.DangerText.Render(f.err))
	default:
		lines = append(lines, styles.FaintText.Render("enter to sign in · tab to switch field · esc to quit"))
	}
	if t := m.activeToast(); t != "" {
		lines = append(lines, "", t)
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 3).
		Width(min(56, max(m.width-4, 30))).
		Render(strings.Join(lines, "\n"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
