package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/models"
	"github.com/janis-commerce/app-tracking-shift-sub000/internal/service"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newOpenCmd(app *App) *cobra.Command {
	var startDate string

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a new shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseOptionalTime(startDate)
			if err != nil {
				return err
			}
			var params *models.ShiftParams
			if start != nil {
				params = &models.ShiftParams{StartDate: start}
			}

			id, err := app.shifts.Open(cmd.Context(), params)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]string{"id": id})
		},
	}
	cmd.Flags().StringVar(&startDate, "start-date", "", "Shift start (RFC3339, default now)")
	return cmd
}

func newFinishCmd(app *App) *cobra.Command {
	var endDate string

	cmd := &cobra.Command{
		Use:   "finish",
		Short: "Close the current shift, sending pending worklogs first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			end, err := parseOptionalTime(endDate)
			if err != nil {
				return err
			}
			var params *models.ShiftParams
			if end != nil {
				params = &models.ShiftParams{EndDate: end}
			}

			id, err := app.shifts.Finish(cmd.Context(), params)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]string{"id": id})
		},
	}
	cmd.Flags().StringVar(&endDate, "end-date", "", "Shift end (RFC3339, default now)")
	return cmd
}

func newReopenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen",
		Short: "Reopen the current shift and extend its close dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.shifts.ReOpen(cmd.Context()); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]string{"status": "reopened"})
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the locally stored shift state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := app.shifts.Current()
			if err != nil {
				return err
			}
			if asJSON {
				return writeOut(cmd, app, snapshot)
			}
			printStatus(cmd.OutOrStdout(), snapshot, time.Now())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw snapshot as JSON")
	return cmd
}

func newResetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete every local shift register, including unsent worklogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.shifts.DeleteShiftRegisters(cmd.Context()); err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]string{"status": "reset"})
		},
	}
}

func printStatus(w io.Writer, s *service.Snapshot, now time.Time) {
	if s.Shift.IsEmpty() {
		fmt.Fprintln(w, "No shift")
		return
	}

	fmt.Fprintf(w, "Shift %s (%s)\n", s.Shift.ID, s.Status)
	if s.Shift.StartDate != nil {
		fmt.Fprintf(w, "  started       %s\n", humanize.RelTime(*s.Shift.StartDate, now, "ago", "from now"))
	}
	if s.Shift.EndDate != nil && s.Status == models.ShiftStatusClosed {
		fmt.Fprintf(w, "  closed        %s\n", humanize.RelTime(*s.Shift.EndDate, now, "ago", "from now"))
	}
	if s.Shift.DateToClose != nil {
		fmt.Fprintf(w, "  close by      %s\n", humanize.RelTime(*s.Shift.DateToClose, now, "ago", "from now"))
	}
	if s.Shift.DateMaxToClose != nil {
		fmt.Fprintf(w, "  hard close    %s\n", humanize.RelTime(*s.Shift.DateMaxToClose, now, "ago", "from now"))
	}
	if wl := s.CurrentWorkLog; wl != nil {
		name := wl.Name
		if name == "" {
			name = wl.ReferenceID
		}
		since := ""
		if wl.StartDate != nil {
			since = ", started " + humanize.RelTime(*wl.StartDate, now, "ago", "from now")
		}
		fmt.Fprintf(w, "  worklog       %s%s\n", name, since)
	}
	fmt.Fprintf(w, "  pending sync  %s worklog(s)\n", humanize.Comma(int64(s.PendingWorkLogs)))
}

func parseOptionalTime(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q, expected RFC3339: %w", v, err)
	}
	return &t, nil
}
