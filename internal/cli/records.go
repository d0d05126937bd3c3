package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/prms/console/internal/prms"
	"github.com/prms/console/internal/state"
	"github.com/prms/console/internal/view"
)

func parseKind(arg string) (state.Kind, error) {
	kind, ok := state.ParseKind(strings.ToLower(strings.TrimSpace(arg)))
	if !ok {
		return "", fmt.Errorf("unknown resource %q (want patients, appointments, users, invoices, history or audit)", arg)
	}
	return kind, nil
}

type listFlags struct {
	search string
	status string
	date   string
	today  bool
}

func (f listFlags) criteria() (view.Criteria, error) {
	c := view.Criteria{Text: f.search, Status: f.status}
	switch {
	case f.today && f.date != "":
		return c, errors.New("--today and --date cannot be combined")
	case f.today:
		c.Date = view.DateFilter{Mode: view.Today}
	case f.date != "":
		if _, err := time.Parse(prms.DateLayout, f.date); err != nil {
			return c, fmt.Errorf("--date must be YYYY-MM-DD: %q", f.date)
		}
		c.Date = view.On(f.date)
	}
	return c, nil
}

func listCmd(o *rootOptions) *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "List patients, appointments, users, invoices, history or audit entries",
		Example: "  prms list appointments --today --status scheduled\n" +
			"  prms list patients --search doe",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			if kind == state.KindReports {
				return errors.New("use `prms report` for reports")
			}
			c, err := f.criteria()
			if err != nil {
				return err
			}

			env, err := o.signedIn(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.Store.Load(cmd.Context(), kind); err != nil {
				return apiError("list "+string(kind), err)
			}
			_, err = printList(cmd.OutOrStdout(), env.Store, kind, c, time.Now())
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&f.search, "search", "s", "", "case-insensitive text match")
	flags.StringVar(&f.status, "status", "", "status or role, by code or label (e.g. scheduled, paid, doctor)")
	flags.StringVar(&f.date, "date", "", "only records on this day (YYYY-MM-DD)")
	flags.BoolVar(&f.today, "today", false, "only records dated today")
	return cmd
}

func getCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <resource> <id>",
		Short: "Show one record as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			env, err := o.signedIn(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			item, err := fetchOne(cmd.Context(), env.Store, kind, args[1])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(item)
		},
	}
}

// fetchOne loads a single record through the store: by id where the API
// has a detail endpoint, otherwise from the freshly loaded list.
func fetchOne(ctx context.Context, store *state.Store, kind state.Kind, id string) (any, error) {
	action := "get " + string(kind)
	switch kind {
	case state.KindPatients:
		if err := store.OpenPatient(ctx, id); err != nil {
			return nil, apiError(action, err)
		}
		p, _ := store.Patients.Current()
		return p, nil
	case state.KindAppointments:
		if err := store.OpenAppointment(ctx, id); err != nil {
			return nil, apiError(action, err)
		}
		a, _ := store.Appointments.Current()
		return a, nil
	case state.KindReports:
		return nil, errors.New("use `prms report` for reports")
	}

	if err := store.Load(ctx, kind); err != nil {
		return nil, apiError(action, err)
	}
	var (
		item any
		ok   bool
	)
	switch kind {
	case state.KindUsers:
		item, ok = store.Users.Get(id)
	case state.KindInvoices:
		item, ok = store.Invoices.Get(id)
	case state.KindHistory:
		item, ok = store.History.Get(id)
	case state.KindAudit:
		item, ok = store.AuditLogs.Get(id)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %s %s not found", action, strings.ToLower(kind.Title()), id)
	}
	return item, nil
}

func deleteCmd(o *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Delete a patient, appointment, user, invoice or medical record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			id := args[1]
			if !yes {
				ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Delete %s %s? [y/N] ", strings.ToLower(kind.Title()), id))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}

			env, err := o.signedIn(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.Store.Delete(cmd.Context(), kind, id); err != nil {
				return apiError("delete", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprint(out, question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func appointmentsCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appts"},
		Short:   "Appointment actions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Set an appointment's status (scheduled, confirmed, completed, cancelled)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, ok := view.AppointmentStatuses.Canonical(args[1])
			if !ok {
				return fmt.Errorf("unknown status %q (want one of %s)", args[1],
					strings.Join(view.StatusChoices(prms.AppointmentStatuses, prms.AppointmentStatusLabels)[1:], ", "))
			}
			env, err := o.signedIn(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			status := prms.AppointmentStatus(code)
			if err := env.Store.SetAppointmentStatus(cmd.Context(), args[0], status); err != nil {
				return apiError("set status", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Appointment %s is now %s\n", args[0], status.Label())
			return nil
		},
	})
	return cmd
}

func invoicesCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "invoices",
		Aliases: []string{"billing"},
		Short:   "Invoice actions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "pay <id>",
		Short: "Mark an invoice as paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := o.signedIn(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.Store.MarkInvoicePaid(cmd.Context(), args[0]); err != nil {
				return apiError("pay invoice", err)
			}
			inv, _ := env.Store.Invoices.Get(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s paid (%s)\n", args[0], money(inv.Amount))
			return nil
		},
	})
	return cmd
}

func reportCmd(o *rootOptions) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the activity summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for name, v := range map[string]string{"from": from, "to": to} {
				if v == "" {
					continue
				}
				if _, err := time.Parse(prms.DateLayout, v); err != nil {
					return fmt.Errorf("--%s must be YYYY-MM-DD: %q", name, v)
				}
			}
			env, err := o.signedIn(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			if err := env.Store.LoadReport(cmd.Context(), from, to); err != nil {
				return apiError("report", err)
			}
			summary, _ := env.Store.Reports.Current()
			return printReport(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD, default six months back)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD, default today)")
	return cmd
}
