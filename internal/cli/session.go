package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/prms/console/internal/prms"
	"github.com/prms/console/internal/session"
	"github.com/prms/console/internal/view"
)

// EnvPassword supplies the login password non-interactively.
const EnvPassword = "PRMS_PASSWORD"

func loginCmd(o *rootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if strings.TrimSpace(email) == "" {
				v, err := prompt(cmd, in, "Email: ")
				if err != nil {
					return err
				}
				email = v
			}
			if password == "" {
				password = os.Getenv(EnvPassword)
			}
			if password == "" {
				v, err := prompt(cmd, in, "Password: ")
				if err != nil {
					return err
				}
				password = v
			}

			env, err := o.setup(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			sess, err := env.Store.Login(cmd.Context(), prms.Credentials{Email: strings.TrimSpace(email), Password: password})
			if err != nil {
				return fmt.Errorf("login: %s", prms.UserMessage(err))
			}
			if err := session.Save(o.sessionPath, sess.Token, sess.User, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", sess.User.Name, view.RoleLabels[sess.Role()])
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (or "+EnvPassword+")")
	return cmd
}

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := in.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if err != nil && line == "" {
		return "", errors.New("no input")
	}
	return line, nil
}

func logoutCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := session.Clear(o.sessionPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func whoamiCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := o.signedIn(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			sess := env.Store.Session()
			w := newTable(cmd.OutOrStdout())
			row(w, "Name", sess.User.Name)
			row(w, "Email", sess.User.Email)
			row(w, "Role", view.RoleLabels[sess.Role()])
			if id := sess.PatientID(); id != "" {
				row(w, "Patient", id)
			}
			if exp := sess.Claims.ExpiresAt; exp != nil {
				row(w, "Expires", exp.Local().Format("2006-01-02 15:04"))
			}
			row(w, "Server", env.Store.Client().BaseURL())
			return w.Flush()
		},
	}
}
