package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/prms/console/internal/config"
	"github.com/prms/console/internal/prefs"
	"github.com/prms/console/internal/prms"
	"github.com/prms/console/internal/resource"
	"github.com/prms/console/internal/session"
	"github.com/prms/console/internal/state"
	"github.com/prms/console/internal/view"
)

// Options configure the TUI.
type Options struct {
	Context     context.Context
	Store       *state.Store
	Config      *config.Config
	Prefs       prefs.Prefs
	PrefsPath   string
	SessionPath string
	Log         zerolog.Logger
	Now         func() time.Time // nil uses time.Now
}

type screen int

const (
	screenLogin screen = iota
	screenList
	screenDetail
	screenActivity
)

type overlay int

const (
	overlayNone overlay = iota
	overlaySearch
	overlayConfirm
	overlayForm
	overlayHelp
)

const toastTTL = 4 * time.Second

// listView is the per-collection filter and cursor.
type listView struct {
	criteria view.Criteria
	cursor   int
}

type toast struct {
	text   string
	danger bool
	at     time.Time
}

type tickMsg time.Time

// opDoneMsg reports a finished store call.
type opDoneMsg struct {
	kind   state.Kind
	action string // toast on success; empty for background loads
	err    error
}

type loginDoneMsg struct {
	sess state.Session
	err  error
}

// Model is the bubbletea model of the console.
type Model struct {
	ctx         context.Context
	store       *state.Store
	cfg         *config.Config
	prefs       prefs.Prefs
	prefsPath   string
	sessionPath string
	log         zerolog.Logger
	clock       func() time.Time

	theme  Theme
	keys   keyMap
	width  int
	height int

	screen   screen
	overlay  overlay
	tabs     []state.Kind
	active   int
	lists    map[state.Kind]*listView
	detailID string

	login    loginForm
	search   textinput.Model
	confirm  confirmDialog
	form     patientForm
	activity activityView
	toast    toast
}

// New builds the model. A store that is already signed in starts on the
// dashboard, otherwise on the login screen.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	clock := opts.Now
	if clock == nil {
		clock = time.Now
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "name, email, reason..."
	search.CharLimit = 80

	m := Model{
		ctx:         ctx,
		store:       opts.Store,
		cfg:         opts.Config,
		prefs:       opts.Prefs,
		prefsPath:   opts.PrefsPath,
		sessionPath: opts.SessionPath,
		log:         opts.Log,
		clock:       clock,
		theme:       GetTheme(opts.Prefs.Theme),
		keys:        DefaultKeyMap(),
		width:       100,
		height:      30,
		lists:       map[state.Kind]*listView{},
		login:       newLoginForm(),
		search:      search,
		activity:    newActivityView(),
	}
	if m.store.Session().SignedIn() {
		m.enterDashboard()
	}
	return m
}

// Run starts the TUI and blocks until the user quits or the context ends.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(opts.Context))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func (m Model) now() time.Time { return m.clock() }

// Init starts the clock and, when signed in, the first dashboard load.
func (m Model) Init() tea.Cmd {
	if m.screen == screenLogin {
		return tea.Batch(tick(), textinput.Blink)
	}
	return tea.Batch(tick(), m.refreshCmd())
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// enterDashboard lays out the tabs for the signed-in role.
func (m *Model) enterDashboard() {
	role := m.store.Session().Role()
	m.tabs = state.Dashboard(role)
	m.lists = map[state.Kind]*listView{}
	for _, k := range m.tabs {
		lv := &listView{}
		if k == state.KindAppointments && role == prms.RoleDoctor {
			lv.criteria.Date = view.DateFilter{Mode: view.Today}
		}
		m.lists[k] = lv
	}
	m.active = 0
	if k, ok := state.ParseKind(m.prefs.DefaultView); ok {
		for i, t := range m.tabs {
			if t == k {
				m.active = i
			}
		}
	}
	m.screen = screenList
	m.overlay = overlayNone
	m.detailID = ""
}

// kind is the collection on the active tab.
func (m Model) kind() state.Kind {
	if len(m.tabs) == 0 {
		return ""
	}
	return m.tabs[m.active]
}

func (m Model) list(kind state.Kind) *listView {
	if lv, ok := m.lists[kind]; ok {
		return lv
	}
	lv := &listView{}
	m.lists[kind] = lv
	return lv
}

func (m Model) criteria(kind state.Kind) view.Criteria {
	return m.list(kind).criteria
}

// selected returns the row under the cursor of the active list.
func (m Model) selected() (row, bool) {
	rows, _ := m.rows(m.kind())
	if len(rows) == 0 {
		return row{}, false
	}
	lv := m.list(m.kind())
	lv.cursor = clamp(lv.cursor, 0, len(rows)-1)
	return rows[lv.cursor], true
}

// target is the row the action keys apply to: the open record on the
// detail screen, the cursor row otherwise.
func (m Model) target() (row, bool) {
	if m.screen == screenDetail {
		return m.detailRow()
	}
	return m.selected()
}

// Commands

// run performs fn off the UI goroutine and reports back with opDoneMsg.
func (m Model) run(kind state.Kind, action string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{kind: kind, action: action, err: fn(ctx)}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	store, kinds := m.store, append([]state.Kind(nil), m.tabs...)
	return m.run("", "", func(ctx context.Context) error {
		return store.Refresh(ctx, kinds...)
	})
}

func (m Model) loadCmd(kind state.Kind) tea.Cmd {
	store := m.store
	return m.run(kind, "", func(ctx context.Context) error {
		return store.Load(ctx, kind)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.activity.resize(msg.Width, m.bodyHeight())
		return m, nil
	case tickMsg:
		return m, tick()
	case loginDoneMsg:
		return m.handleLogin(msg)
	case opDoneMsg:
		return m.handleOpDone(msg)
	case activityMsg:
		m.activity.set(msg.entries, msg.err)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	if m.screen == screenLogin {
		var cmd tea.Cmd
		m.login, cmd = m.login.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		if msg.action == "" {
			return m, nil
		}
		if m.overlay == overlayForm && msg.kind == state.KindPatients {
			m.overlay = overlayNone
		}
		m.notify(msg.action)
		return m, nil
	}

	if prms.IsUnauthorized(msg.err) {
		return m.signOut(prms.UserMessage(msg.err), true)
	}
	if errors.Is(msg.err, context.Canceled) || errors.Is(msg.err, resource.ErrReset) {
		return m, nil
	}
	var ve *prms.ValidationError
	if m.overlay == overlayForm && errors.As(msg.err, &ve) {
		m.form.setErrors(ve)
		return m, nil
	}
	m.log.Warn().Err(msg.err).Str("collection", string(msg.kind)).Str("action", msg.action).Msg("request failed")
	if msg.action != "" {
		m.fail(prms.UserMessage(msg.err))
	}
	return m, nil
}

func (m Model) handleLogin(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if msg.err != nil {
		m.login.err = prms.UserMessage(msg.err)
		var ve *prms.ValidationError
		if errors.As(msg.err, &ve) {
			m.login.setErrors(ve)
		}
		return m, nil
	}
	if err := session.Save(m.sessionPath, msg.sess.Token, msg.sess.User, m.now()); err != nil {
		m.log.Warn().Err(err).Msg("session not saved")
	}
	m.login = newLoginForm()
	m.enterDashboard()
	m.notify("Welcome, " + msg.sess.User.Name)
	return m, m.refreshCmd()
}

// signOut drops the session. expired forgets the saved token too.
func (m Model) signOut(reason string, expired bool) (tea.Model, tea.Cmd) {
	m.store.Logout()
	if err := session.Clear(m.sessionPath); err != nil {
		m.log.Warn().Err(err).Msg("clear saved session")
	}
	m.screen = screenLogin
	m.overlay = overlayNone
	m.tabs = nil
	m.lists = map[state.Kind]*listView{}
	m.login = newLoginForm()
	if expired {
		m.login.err = reason
	} else {
		m.notify(reason)
	}
	return m, textinput.Blink
}

func (m *Model) notify(text string) {
	m.toast = toast{text: text, at: m.now()}
}

func (m *Model) fail(text string) {
	m.toast = toast{text: text, danger: true, at: m.now()}
}

func (m *Model) cycleTheme() {
	m.prefs.Theme = NextTheme(m.theme.Name)
	m.theme = GetTheme(m.prefs.Theme)
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.Warn().Err(err).Msg("save preferences")
		m.fail("Theme not saved: " + err.Error())
		return
	}
	m.notify("Theme: " + m.theme.Name)
}

// View renders the screen.
func (m Model) View() string {
	if m.screen == screenLogin {
		return m.renderLogin()
	}
	var body string
	switch {
	case m.overlay == overlayHelp:
		body = m.renderHelp()
	case m.overlay == overlayForm:
		body = m.form.view(m.theme, m.width)
	case m.screen == screenActivity:
		body = m.activity.view(m.theme)
	case m.screen == screenDetail:
		body = m.renderDetail()
	case m.kind() == state.KindReports:
		body = m.renderReport()
	default:
		body = m.renderList()
	}
	if m.overlay == overlayConfirm {
		body = m.confirm.view(m.theme, m.width)
	}

	body = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTabs(),
		body,
		m.renderFooter(),
	)
}

// bodyHeight is what is left after header, tabs and footer.
func (m Model) bodyHeight() int {
	return max(m.height-4, 3)
}
