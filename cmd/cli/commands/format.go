package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jakechorley/branch-cover/pkg/core/coverage"
	"github.com/jakechorley/branch-cover/pkg/core/model"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
)

func statusColor(s model.Status) string {
	switch s {
	case model.StatusActive:
		return colorGreen
	case model.StatusCancelled:
		return colorRed
	default:
		return colorDim
	}
}

func printAssignment(w io.Writer, a model.Assignment) {
	fmt.Fprintf(w, "Assignment ID: %s\n", a.ID)
	fmt.Fprintf(w, "Staff:         %s (home %s)\n", a.StaffID, a.HomeBranchID)
	fmt.Fprintf(w, "Temp branch:   %s\n", a.TempBranchID)
	fmt.Fprintf(w, "Dates:         %s to %s\n", a.StartDate, a.EndDate)
	fmt.Fprintf(w, "Reason:        %s\n", a.Reason)
	if a.CoveringForStaffID != "" {
		fmt.Fprintf(w, "Covering for:  %s\n", a.CoveringForStaffID)
	}
	if a.Notes != "" {
		fmt.Fprintf(w, "Notes:         %s\n", a.Notes)
	}
	fmt.Fprintf(w, "Status:        %s%s%s\n", statusColor(a.Status), a.Status, colorReset)
}

func printAssignmentTable(w io.Writer, list []model.Assignment) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No assignments found.")
		return
	}

	fmt.Fprintf(w, "%-38s %-10s %-8s %-8s %-23s %-15s %s\n", "ID", "Staff", "Home", "Temp", "Dates", "Reason", "Status")
	fmt.Fprintln(w, strings.Repeat("-", 112))
	for _, a := range list {
		fmt.Fprintf(w, "%-38s %-10s %-8s %-8s %-23s %-15s %s%s%s\n",
			a.ID, a.StaffID, a.HomeBranchID, a.TempBranchID,
			a.StartDate.String()+".."+a.EndDate.String(), a.Reason,
			statusColor(a.Status), a.Status, colorReset)
	}
}

func printDashboard(w io.Writer, d *model.Dashboard) {
	fmt.Fprintf(w, "\nCoverage dashboard for %s\n\n", d.ReferenceDate)

	fmt.Fprintf(w, "Leaves today (%d, %d uncovered):\n", len(d.LeavesToday), d.UncoveredLeaves())
	if len(d.LeavesToday) == 0 {
		fmt.Fprintf(w, "  %snone%s\n", colorDim, colorReset)
	}
	for _, l := range d.LeavesToday {
		state := colorRed + "UNCOVERED" + colorReset
		if l.EffectivelyCovered {
			state = colorGreen + "covered" + colorReset
			if l.CoveredByAssignmentID != "" {
				state += fmt.Sprintf(" by %s", l.CoveredByAssignmentID)
			}
		}
		fmt.Fprintf(w, "  %-8s %-10s branch %-8s %s..%s %-10s %s\n",
			l.Leave.ID, l.Leave.StaffID, l.Leave.BranchID, l.Leave.StartDate, l.Leave.EndDate, l.Leave.LeaveType, state)
	}

	fmt.Fprintf(w, "\nBranches needing coverage:\n")
	if len(d.BranchesNeedingCoverage) == 0 {
		fmt.Fprintf(w, "  %snone%s\n", colorGreen, colorReset)
	}
	for _, n := range d.BranchesNeedingCoverage {
		fmt.Fprintf(w, "  %s%-20s%s %d uncovered (%s)\n",
			colorYellow, branchLabel(n.Branch), colorReset, n.UncoveredCount, strings.Join(n.LeaveIDs, ", "))
	}

	fmt.Fprintf(w, "\nAvailable staff by branch:\n")
	for _, b := range d.AvailableStaffByBranch {
		names := make([]string, 0, len(b.Staff))
		for _, s := range b.Staff {
			names = append(names, fmt.Sprintf("%s (%s)", s.FullName(), s.ID))
		}
		list := strings.Join(names, ", ")
		if list == "" {
			list = colorDim + "none" + colorReset
		}
		fmt.Fprintf(w, "  %-20s %s\n", branchLabel(b.Branch), list)
	}
	fmt.Fprintln(w)
}

func printOutlook(w io.Writer, rule string, entries []coverage.OutlookEntry) {
	fmt.Fprintf(w, "\nCoverage outlook (%s)\n\n", rule)
	fmt.Fprintf(w, "%-12s %8s %10s %10s %10s\n", "Date", "Leaves", "Uncovered", "Branches", "Available")
	fmt.Fprintln(w, strings.Repeat("-", 54))
	for _, e := range entries {
		color := colorGreen
		if e.UncoveredLeaves > 0 {
			color = colorRed
		}
		fmt.Fprintf(w, "%-12s %8d %s%10d%s %10d %10d\n",
			e.Date, e.LeavesToday, color, e.UncoveredLeaves, colorReset, len(e.BranchesNeedingCoverage), e.AvailableStaff)
	}
	fmt.Fprintln(w)
}

func branchLabel(b model.BranchRecord) string {
	if b.Name == "" {
		return b.ID
	}
	return b.Name
}

// describeError adds the conflicting records to a conflict error message
func describeError(err error) error {
	var cErr *model.ConflictError
	if !errors.As(err, &cErr) || len(cErr.Conflicting) == 0 {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "staff %s already has an active assignment overlapping %s:", cErr.StaffID, cErr.Candidate)
	for _, c := range cErr.Conflicting {
		fmt.Fprintf(&b, "\n  %s at %s (%s)", c.ID, c.TempBranchID, c.Range())
	}
	return errors.New(b.String())
}
