package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/prms/console/internal/prms"
)

type formField struct {
	name  string // wire name, matches ValidationError fields
	label string
	input textinput.Model
}

// patientForm is the new-patient dialog.
type patientForm struct {
	fields []formField
	focus  int
	errors map[string]string
}

func newPatientForm() patientForm {
	spec := []struct{ name, label, placeholder string }{
		{"firstName", "First name", ""},
		{"lastName", "Last name", ""},
		{"email", "Email", "name@example.com"},
		{"phone", "Phone", "+1 555 0100"},
		{"dateOfBirth", "Date of birth", prms.DateLayout},
		{"gender", "Gender", "male, female or other"},
		{"address", "Address", ""},
		{"bloodGroup", "Blood group", "O+"},
	}
	f := patientForm{}
	for _, s := range spec {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = s.placeholder
		in.CharLimit = 120
		f.fields = append(f.fields, formField{name: s.name, label: s.label, input: in})
	}
	return f
}

func (f *patientForm) focusCmd() tea.Cmd {
	for i := range f.fields {
		f.fields[i].input.Blur()
	}
	return f.fields[f.focus].input.Focus()
}

func (f *patientForm) start() tea.Cmd {
	f.focus = 0
	return f.focusCmd()
}

func (f *patientForm) move(step int) tea.Cmd {
	f.focus = (f.focus + step + len(f.fields)) % len(f.fields)
	return f.focusCmd()
}

func (f patientForm) onLast() bool { return f.focus == len(f.fields)-1 }

func (f patientForm) value(name string) string {
	for _, fld := range f.fields {
		if fld.name == name {
			return strings.TrimSpace(fld.input.Value())
		}
	}
	return ""
}

func (f patientForm) input() prms.PatientInput {
	return prms.PatientInput{
		FirstName:   f.value("firstName"),
		LastName:    f.value("lastName"),
		Email:       f.value("email"),
		Phone:       f.value("phone"),
		DateOfBirth: f.value("dateOfBirth"),
		Gender:      strings.ToLower(f.value("gender")),
		Address:     f.value("address"),
		BloodGroup:  f.value("bloodGroup"),
	}
}

func (f *patientForm) setErrors(ve *prms.ValidationError) {
	f.errors = map[string]string{}
	for _, fld := range f.fields {
		if msg, ok := ve.For(fld.name); ok {
			f.errors[fld.name] = msg
		}
	}
	if len(f.errors) == 0 && len(ve.Problems) > 0 {
		f.errors[""] = ve.Problems[0].Message
	}
}

func (f patientForm) update(msg tea.Msg) (patientForm, tea.Cmd) {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return f, cmd
}

func (f patientForm) view(theme Theme, width int) string {
	styles := theme.Styles()
	lines := []string{styles.AccentText.Bold(true).Render("New patient"), ""}
	for i, fld := range f.fields {
		label := styles.MutedText.Render(padRight(fld.label, 15))
		if i == f.focus {
			label = styles.AccentText.Render(padRight(fld.label, 15))
		}
		lines = append(lines, label+" "+fld.input.View())
		if msg := f.errors[fld.name]; msg != "" {
			lines = append(lines, strings.Repeat(" ", 16)+styles.DangerText.Render(msg))
		}
	}
	if msg := f.errors[""]; msg != "" {
		lines = append(lines, "", styles.DangerText.Render(msg))
	}
	lines = append(lines, "", styles.FaintText.Render("tab/enter next · enter on last field saves · esc cancel"))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.BorderFocus)).
		Padding(1, 2).
		Width(min(72, max(width-4, 30))).
		Render(strings.Join(lines, "\n"))
}
