package cli

import (
	"errors"

	"github.com/janis-commerce/app-tracking-shift-sub000/internal/models"

	"github.com/spf13/cobra"
)

func newWorklogCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worklog",
		Short: "Open and finish worklogs of the current shift",
	}
	cmd.AddCommand(newWorklogOpenCmd(app))
	cmd.AddCommand(newWorklogFinishCmd(app))
	return cmd
}

func newWorklogOpenCmd(app *App) *cobra.Command {
	var params models.WorkLogParams

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Start an activity; non internal activities pause the shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if params.ReferenceID == "" {
				return errors.New("--reference-id is required")
			}
			id, err := app.shifts.OpenWorkLog(cmd.Context(), &params)
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]string{"id": id})
		},
	}
	cmd.Flags().StringVar(&params.ReferenceID, "reference-id", "", "Worklog type reference id")
	cmd.Flags().StringVar(&params.Name, "name", "", "Worklog name")
	cmd.Flags().StringVar(&params.Type, "type", "", "Worklog type (work, pause, problem)")
	return cmd
}

func newWorklogFinishCmd(app *App) *cobra.Command {
	var referenceID string

	cmd := &cobra.Command{
		Use:   "finish",
		Short: "Finish the current activity and resume the shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				id  string
				err error
			)
			if referenceID == "" {
				id, err = app.shifts.FinishCurrentWorkLog(cmd.Context())
			} else {
				id, err = app.shifts.FinishWorkLog(cmd.Context(), &models.WorkLogParams{ReferenceID: referenceID})
			}
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]string{"id": id})
		},
	}
	cmd.Flags().StringVar(&referenceID, "reference-id", "", "Worklog type reference id (default: the current worklog)")
	return cmd
}

func newTypesCmd(app *App) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the selectable worklog types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				types []models.WorkLogType
				err   error
			)
			if refresh {
				types, err = app.shifts.FetchWorklogTypes(cmd.Context())
			} else {
				types, err = app.shifts.GetWorkLogTypes(cmd.Context())
			}
			if err != nil {
				return err
			}
			return writeOut(cmd, app, types)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the local cache")
	return cmd
}

func newReportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Elapsed, work and pause time of the current shift (milliseconds)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := app.reports.GetReport(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, report)
		},
	}
}

func newSyncCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Send the offline worklog queue now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sent, err := app.worker.Flush(cmd.Context())
			if err != nil {
				return err
			}
			return writeOut(cmd, app, map[string]int{"sent": sent})
		},
	}
}
