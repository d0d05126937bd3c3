package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/prms/console/internal/prms"
	"github.com/prms/console/internal/state"
	"github.com/prms/console/internal/view"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.screen == screenLogin {
		return m.handleLoginKey(msg)
	}

	switch m.overlay {
	case overlaySearch:
		return m.handleSearchKey(msg)
	case overlayConfirm:
		return m.handleConfirmKey(msg)
	case overlayForm:
		return m.handleFormKey(msg)
	case overlayHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Escape, m.keys.Quit) {
			m.overlay = overlayNone
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.overlay = overlayHelp
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil
	case key.Matches(msg, m.keys.Logout):
		return m.signOut("Signed out", false)
	case key.Matches(msg, m.keys.Activity):
		if m.screen == screenActivity {
			m.screen = screenList
			return m, nil
		}
		m.screen = screenActivity
		return m, m.loadActivity()
	case key.Matches(msg, m.keys.Tab):
		return m.switchTab(1)
	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchTab(-1)
	}

	switch m.screen {
	case screenActivity:
		if key.Matches(msg, m.keys.Escape) {
			m.screen = screenList
			return m, nil
		}
		if key.Matches(msg, m.keys.Refresh) {
			return m, m.loadActivity()
		}
		var cmd tea.Cmd
		m.activity.viewport, cmd = m.activity.viewport.Update(msg)
		return m, cmd
	case screenDetail:
		if key.Matches(msg, m.keys.Escape) {
			m.screen = screenList
			m.detailID = ""
			return m, nil
		}
		return m.handleAction(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) switchTab(step int) (tea.Model, tea.Cmd) {
	if len(m.tabs) == 0 {
		return m, nil
	}
	m.active = (m.active + step + len(m.tabs)) % len(m.tabs)
	m.screen = screenList
	m.detailID = ""
	kind := m.kind()
	if m.slice(kind).Len() == 0 && !m.listState(kind).Loading() {
		return m, m.loadCmd(kind)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kind := m.kind()
	lv := m.list(kind)
	rows, _ := m.rows(kind)
	page := max(m.bodyHeight()-3, 1)

	switch {
	case key.Matches(msg, m.keys.Up):
		lv.cursor--
	case key.Matches(msg, m.keys.Down):
		lv.cursor++
	case key.Matches(msg, m.keys.Top):
		lv.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		lv.cursor = len(rows) - 1
	case key.Matches(msg, m.keys.PageUp):
		lv.cursor -= page
	case key.Matches(msg, m.keys.PageDown):
		lv.cursor += page
	case key.Matches(msg, m.keys.PrevPage):
		lv.cursor = (pageOf(lv.cursor, len(rows), m.pageSize()).index - 1) * m.pageSize()
	case key.Matches(msg, m.keys.NextPage):
		lv.cursor = (pageOf(lv.cursor, len(rows), m.pageSize()).index + 1) * m.pageSize()
	case key.Matches(msg, m.keys.Refresh):
		if kind == "" {
			return m, nil
		}
		return m, m.loadCmd(kind)
	case key.Matches(msg, m.keys.Search):
		m.overlay = overlaySearch
		m.search.SetValue(lv.criteria.Text)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.CycleStatus):
		choices := statusChoices(kind)
		if choices == nil {
			return m, nil
		}
		lv.criteria.Status = view.NextChoice(choices, lv.criteria.Status)
		lv.cursor = 0
	case key.Matches(msg, m.keys.ToggleDate):
		if !hasDates(kind) {
			return m, nil
		}
		if lv.criteria.Date.Mode == view.AllDates {
			lv.criteria.Date = view.DateFilter{Mode: view.Today}
		} else {
			lv.criteria.Date = view.DateFilter{}
		}
		lv.cursor = 0
	case key.Matches(msg, m.keys.Escape):
		lv.criteria = view.Criteria{}
		lv.cursor = 0
	case key.Matches(msg, m.keys.Open):
		return m.openSelected()
	default:
		return m.handleAction(msg)
	}
	lv.cursor = clamp(lv.cursor, 0, len(rows)-1)
	return m, nil
}

// handleAction runs the record actions shared by list and detail screens.
func (m Model) handleAction(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kind := m.kind()
	switch {
	case key.Matches(msg, m.keys.NewPatient):
		if kind != state.KindPatients {
			return m, nil
		}
		m.form = newPatientForm()
		m.overlay = overlayForm
		return m, m.form.start()
	case key.Matches(msg, m.keys.Delete):
		r, ok := m.target()
		if !ok {
			return m, nil
		}
		m.confirm = confirmDialog{
			kind:   kind,
			id:     r.id,
			prompt: "Delete " + strings.ToLower(singular(kind)) + " " + r.title + "?",
		}
		m.overlay = overlayConfirm
		return m, nil
	case key.Matches(msg, m.keys.NextStatus):
		if kind != state.KindAppointments {
			return m, nil
		}
		r, ok := m.target()
		if !ok {
			return m, nil
		}
		appt, ok := m.store.Appointments.Get(r.id)
		if !ok {
			return m, nil
		}
		next := appt.Status.Next()
		if next == appt.Status {
			m.fail("Appointment is already " + strings.ToLower(appt.Status.Label()))
			return m, nil
		}
		store := m.store
		return m, m.run(kind, "Appointment "+strings.ToLower(next.Label()), func(ctx context.Context) error {
			return store.SetAppointmentStatus(ctx, appt.ID, next)
		})
	case key.Matches(msg, m.keys.MarkPaid):
		if kind != state.KindInvoices {
			return m, nil
		}
		r, ok := m.target()
		if !ok {
			return m, nil
		}
		store := m.store
		return m, m.run(kind, "Invoice marked paid", func(ctx context.Context) error {
			return store.MarkInvoicePaid(ctx, r.id)
		})
	}
	return m, nil
}

func (m Model) openSelected() (tea.Model, tea.Cmd) {
	r, ok := m.selected()
	if !ok {
		return m, nil
	}
	kind := m.kind()
	m.screen = screenDetail
	m.detailID = r.id

	store, id := m.store, r.id
	switch kind {
	case state.KindPatients:
		return m, m.run(kind, "", func(ctx context.Context) error { return store.OpenPatient(ctx, id) })
	case state.KindAppointments:
		return m, m.run(kind, "", func(ctx context.Context) error { return store.OpenAppointment(ctx, id) })
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	lv := m.list(m.kind())
	switch msg.Type {
	case tea.KeyEsc:
		m.search.Blur()
		m.overlay = overlayNone
		lv.criteria.Text = ""
		return m, nil
	case tea.KeyEnter:
		m.search.Blur()
		m.overlay = overlayNone
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	lv.criteria.Text = m.search.Value()
	lv.cursor = 0
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes), key.Matches(msg, m.keys.Confirm):
		m.overlay = overlayNone
		c, store := m.confirm, m.store
		if m.screen == screenDetail {
			m.screen = screenList
			m.detailID = ""
		}
		return m, m.run(c.kind, singular(c.kind)+" deleted", func(ctx context.Context) error {
			return store.Delete(ctx, c.kind, c.id)
		})
	case key.Matches(msg, m.keys.Escape), msg.String() == "n":
		m.overlay = overlayNone
	}
	return m, nil
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.overlay = overlayNone
		return m, nil
	case tea.KeyEnter:
		if !m.form.onLast() {
			return m, m.form.move(1)
		}
		in := m.form.input()
		var ve *prms.ValidationError
		if err := in.Validate(false); errors.As(err, &ve) {
			m.form.setErrors(ve)
			return m, nil
		}
		m.form.errors = nil
		store := m.store
		return m, m.run(state.KindPatients, "Patient created", func(ctx context.Context) error {
			return store.CreatePatient(ctx, in)
		})
	case tea.KeyTab, tea.KeyDown:
		return m, m.form.move(1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.form.move(-1)
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		return m, m.login.toggle()
	case tea.KeyEnter:
		if m.login.busy {
			return m, nil
		}
		if !m.login.onPassword() {
			return m, m.login.toggle()
		}
		creds := m.login.credentials()
		m.login.busy = true
		m.login.err = ""
		m.login.errors = nil
		store := m.store
		ctx := m.ctx
		return m, func() tea.Msg {
			sess, err := store.Login(ctx, creds)
			return loginDoneMsg{sess: sess, err: err}
		}
	}
	var cmd tea.Cmd
	m.login, cmd = m.login.update(msg)
	return m, cmd
}

func singular(kind state.Kind) string {
	switch kind {
	case state.KindPatients:
		return "Patient"
	case state.KindAppointments:
		return "Appointment"
	case state.KindUsers:
		return "User"
	case state.KindInvoices:
		return "Invoice"
	case state.KindHistory:
		return "Medical record"
	default:
		return "Record"
	}
}
