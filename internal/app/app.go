package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/prms/console/internal/config"
	"github.com/prms/console/internal/logging"
	"github.com/prms/console/internal/prefs"
	"github.com/prms/console/internal/prms"
	"github.com/prms/console/internal/session"
	"github.com/prms/console/internal/state"
	"github.com/prms/console/internal/ui"
)

// Options configure the console.
type Options struct {
	ConfigPath  string
	PrefsPath   string // empty uses default ~/.config/prms/prefs.toml
	SessionPath string // empty uses default ~/.config/prms/session.toml
	EnvFile     string // empty uses ./.env when present
	PollEvery   time.Duration
}

// Env is everything a console command needs: settings, a logger, and a
// store over a configured client.
type Env struct {
	Config config.Config
	Prefs  prefs.Prefs
	Log    zerolog.Logger
	Store  *state.Store
	close  func() error
}

// Close flushes the log file.
func (e *Env) Close() error { return e.close() }

// Setup loads configuration and builds the client and store. console, when
// non-nil, receives a human-readable copy of the log.
func Setup(opts Options, console io.Writer) (*Env, error) {
	if err := config.LoadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	userPrefs, _ := prefs.Load(opts.PrefsPath)

	logOpts := logging.Options{Path: cfg.LogPath(), Level: cfg.Level()}
	if console != nil {
		logOpts.Console = console
	}
	log, closeLog, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	client, err := prms.NewClient(cfg.APIURL, prms.WithTimeout(cfg.Timeout), prms.WithLogger(log))
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	return &Env{
		Config: cfg,
		Prefs:  userPrefs,
		Log:    log,
		Store:  state.New(client, state.WithLogger(log)),
		close:  closeLog,
	}, nil
}

// ResumeSession signs the store in with PRMS_TOKEN or the saved session. A
// token the server rejects is forgotten.
func ResumeSession(ctx context.Context, env *Env, sessionPath string) (state.Session, error) {
	token := env.Config.Token
	if token == "" {
		saved, err := session.Load(sessionPath)
		if err != nil {
			return state.Session{}, err
		}
		if saved.Expired(time.Now()) {
			_ = session.Clear(sessionPath)
			return state.Session{}, session.ErrNoSession
		}
		token = saved.Token
	}

	sess, err := env.Store.Resume(ctx, token)
	if err != nil {
		env.Log.Warn().Err(err).Msg("saved session rejected")
		if prms.IsUnauthorized(err) {
			_ = session.Clear(sessionPath)
			return state.Session{}, session.ErrNoSession
		}
		return state.Session{}, err
	}
	return sess, nil
}

// Run boots the console TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	env, err := Setup(opts, nil)
	if err != nil {
		return err
	}
	defer env.Close()

	if _, err := ResumeSession(ctx, env, opts.SessionPath); err != nil && !errors.Is(err, session.ErrNoSession) {
		env.Log.Info().Err(err).Msg("starting signed out")
	}

	interval := env.Config.PollInterval
	if opts.PollEvery > 0 {
		interval = opts.PollEvery
	}

	store := env.Store
	StartPoller(ctx, store, func() []state.Kind { return state.Dashboard(store.Session().Role()) }, interval, env.Log)

	env.Log.Info().Str("api", store.Client().BaseURL()).Msg("console started")
	return ui.Run(ui.Options{
		Context:     ctx,
		Store:       store,
		Config:      &env.Config,
		Prefs:       env.Prefs,
		PrefsPath:   opts.PrefsPath,
		SessionPath: opts.SessionPath,
		Log:         env.Log,
	})
}
