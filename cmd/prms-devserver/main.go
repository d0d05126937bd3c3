package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/prms/console/internal/fakeapi"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "prms-devserver: %v\n", err)
		return 1
	}
	return 0
}

func newCmd() *cobra.Command {
	var (
		addr   string
		secret string
		empty  bool
		quiet  bool
	)
	cmd := &cobra.Command{
		Use:           "prms-devserver",
		Short:         "Serve an in-memory PRMS API with demo accounts",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
				With().Timestamp().Logger()
			if quiet {
				log = log.Level(zerolog.WarnLevel)
			}

			opts := []fakeapi.Option{fakeapi.WithLogger(log)}
			if secret != "" {
				opts = append(opts, fakeapi.WithSecret(secret))
			}
			if empty {
				opts = append(opts, fakeapi.Empty())
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           fakeapi.New(opts...).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "API at http://%s/api\n", addr)
			fmt.Fprintf(out, "Demo accounts (password %q):\n", fakeapi.DemoPassword)
			for _, email := range []string{fakeapi.AdminEmail, fakeapi.StaffEmail, fakeapi.DoctorEmail, fakeapi.PatientEmail} {
				fmt.Fprintf(out, "  %s\n", email)
			}

			errCh := make(chan error, 1)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			log.Info().Msg("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5000", "listen address")
	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret (default built in)")
	cmd.Flags().BoolVar(&empty, "empty", false, "start with no clinical records, only the demo accounts")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "log warnings only")
	return cmd
}
