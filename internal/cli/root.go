package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/prms/console/internal/app"
	"github.com/prms/console/internal/prms"
	"github.com/prms/console/internal/session"
)

var errNotSignedIn = errors.New("not signed in; run `prms login` first")

type rootOptions struct {
	configPath  string
	prefsPath   string
	sessionPath string
	envFile     string
	verbose     bool
}

// NewRootCmd builds the prms command tree. Without a subcommand it starts
// the TUI.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:           "prms",
		Short:         "Patient Records Management System console",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), o.appOptions(0))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "config file (default ~/.config/prms/config.toml)")
	pf.StringVar(&o.prefsPath, "prefs", "", "preferences file (default ~/.config/prms/prefs.toml)")
	pf.StringVar(&o.sessionPath, "session", "", "saved session file (default ~/.config/prms/session.toml)")
	pf.StringVar(&o.envFile, "env-file", "", "dotenv file to load (default ./.env when present)")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "also write the log to stderr")

	root.AddCommand(
		tuiCmd(o),
		loginCmd(o),
		logoutCmd(o),
		whoamiCmd(o),
		listCmd(o),
		getCmd(o),
		deleteCmd(o),
		appointmentsCmd(o),
		invoicesCmd(o),
		reportCmd(o),
	)
	return root
}

func (o *rootOptions) appOptions(poll time.Duration) app.Options {
	return app.Options{
		ConfigPath:  o.configPath,
		PrefsPath:   o.prefsPath,
		SessionPath: o.sessionPath,
		EnvFile:     o.envFile,
		PollEvery:   poll,
	}
}

func (o *rootOptions) setup(cmd *cobra.Command) (*app.Env, error) {
	var console io.Writer
	if o.verbose {
		console = cmd.ErrOrStderr()
	}
	return app.Setup(o.appOptions(0), console)
}

// signedIn is setup plus a resumed session.
func (o *rootOptions) signedIn(cmd *cobra.Command) (*app.Env, error) {
	env, err := o.setup(cmd)
	if err != nil {
		return nil, err
	}
	if _, err := app.ResumeSession(cmd.Context(), env, o.sessionPath); err != nil {
		_ = env.Close()
		if errors.Is(err, session.ErrNoSession) {
			return nil, errNotSignedIn
		}
		return nil, apiError("resume session", err)
	}
	return env, nil
}

// apiError turns a client error into the message users see.
func apiError(action string, err error) error {
	if prms.IsUnauthorized(err) {
		return fmt.Errorf("%s: %s", action, "session expired; run `prms login`")
	}
	return fmt.Errorf("%s: %s", action, prms.UserMessage(err))
}

func tuiCmd(o *rootOptions) *cobra.Command {
	var poll time.Duration
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), o.appOptions(poll))
		},
	}
	cmd.Flags().DurationVar(&poll, "poll", 0, "refresh interval (default from config, 15s)")
	return cmd
}
