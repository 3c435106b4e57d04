package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/branch-cover/pkg/core/model"
	"github.com/jakechorley/branch-cover/pkg/core/services"
)

// CreateAssignmentCmd creates the createAssignment command
func CreateAssignmentCmd(app *AppContext) *cobra.Command {
	var coveringFor, notes string

	cmd := &cobra.Command{
		Use:   "createAssignment <staff_id> <temp_branch_id> <start_date> <end_date> <reason>",
		Short: "Temporarily assign a staff member to another branch",
		Long: `Temporarily assign a staff member to another branch for an inclusive date range.
Dates use YYYY-MM-DD. Reason is one of leave_coverage, training, support, event, other.`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := model.ParseDate(args[2])
			if err != nil {
				return fmt.Errorf("start_date: %w", err)
			}
			end, err := model.ParseDate(args[3])
			if err != nil {
				return fmt.Errorf("end_date: %w", err)
			}

			app.Logger.Debug("createAssignment command",
				zap.String("staff_id", args[0]),
				zap.String("temp_branch_id", args[1]))

			a, err := app.Service.Create(app.Ctx, services.CreateRequest{
				StaffID:            args[0],
				TempBranchID:       args[1],
				StartDate:          start,
				EndDate:            end,
				Reason:             model.Reason(args[4]),
				CoveringForStaffID: coveringFor,
				Notes:              notes,
			})
			if err != nil {
				return describeError(err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✓ Assignment created!\n\n")
			printAssignment(out, a)
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&coveringFor, "covering-for", "", "Staff id whose leave this assignment covers (reason leave_coverage only)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-text notes")

	return cmd
}

// CancelAssignmentCmd creates the cancelAssignment command
func CancelAssignmentCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancelAssignment <assignment_id>",
		Short: "Cancel an active assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("cancelAssignment command", zap.String("assignment_id", args[0]))

			if err := app.Service.Cancel(app.Ctx, args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Assignment %s cancelled\n\n", args[0])
			return nil
		},
	}
}

// GetAssignmentCmd creates the getAssignment command
func GetAssignmentCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "getAssignment <assignment_id>",
		Short: "Show one assignment with its effective status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Service.Get(app.Ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			printAssignment(out, a)
			fmt.Fprintln(out)
			return nil
		},
	}
}

// ListAssignmentsCmd creates the listAssignments command
func ListAssignmentsCmd(app *AppContext) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "listAssignments [temp_branch_id]",
		Short: "List assignments, optionally for one temp branch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var branchID string
			if len(args) > 0 {
				branchID = args[0]
			}

			list, err := app.Service.List(app.Ctx, branchID, model.Status(status))
			if err != nil {
				return err
			}

			app.Logger.Debug("listAssignments command",
				zap.String("branch_id", branchID),
				zap.String("status", status),
				zap.Int("count", len(list)))

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			printAssignmentTable(out, list)
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by effective status: active, cancelled or expired")

	return cmd
}
