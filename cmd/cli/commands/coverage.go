package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/branch-cover/pkg/core/model"
)

// DashboardCmd creates the dashboard command
func DashboardCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard [date]",
		Short: "Show leaves, uncovered branches and available staff (defaults to today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ref model.Date
			if len(args) > 0 {
				d, err := model.ParseDate(args[0])
				if err != nil {
					return fmt.Errorf("date: %w", err)
				}
				ref = d
			}

			dash, err := app.Service.Dashboard(app.Ctx, ref)
			if err != nil {
				return err
			}

			app.Logger.Debug("dashboard command",
				zap.String("date", dash.ReferenceDate.String()),
				zap.Int("leaves", len(dash.LeavesToday)),
				zap.Int("branches_needing_coverage", len(dash.BranchesNeedingCoverage)))

			printDashboard(cmd.OutOrStdout(), dash)
			return nil
		},
	}
}

// OutlookCmd creates the outlook command
func OutlookCmd(app *AppContext) *cobra.Command {
	var rule string

	cmd := &cobra.Command{
		Use:   "outlook [from_date]",
		Short: "Summarise coverage on each date of a recurrence rule",
		Long: `Summarise coverage on each date of an RRULE, starting from from_date (defaults to today).
The rule defaults to outlookRule from the config file, e.g. "FREQ=WEEKLY;BYDAY=MO;COUNT=8".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var from model.Date
			if len(args) > 0 {
				d, err := model.ParseDate(args[0])
				if err != nil {
					return fmt.Errorf("from_date: %w", err)
				}
				from = d
			}
			if rule == "" && app.Cfg != nil {
				rule = app.Cfg.OutlookRule
			}

			entries, err := app.Service.Outlook(app.Ctx, from, rule)
			if err != nil {
				return err
			}

			printOutlook(cmd.OutOrStdout(), rule, entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&rule, "rule", "", "RRULE to expand (overrides outlookRule)")

	return cmd
}
