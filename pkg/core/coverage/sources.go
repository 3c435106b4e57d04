package coverage

import (
	"context"

	"github.com/jakechorley/branch-cover/pkg/core/model"
)

// StaffDirectory is the read-only source of staff records.
// GetStaff returns *model.NotFoundError for an unknown id.
type StaffDirectory interface {
	GetStaffByBranch(ctx context.Context, branchID string) ([]model.StaffRecord, error)
	GetStaff(ctx context.Context, id string) (model.StaffRecord, error)
}

// BranchDirectory is the read-only source of branch records
type BranchDirectory interface {
	ListBranches(ctx context.Context) ([]model.BranchRecord, error)
}

// LeaveRegistry is the read-only source of leave records
type LeaveRegistry interface {
	GetLeavesOverlapping(ctx context.Context, date model.Date) ([]model.LeaveRecord, error)
}

// AssignmentLister is the slice of the assignment store the dashboard reads from.
// An empty branchID or status matches everything.
type AssignmentLister interface {
	ListByBranch(ctx context.Context, branchID string, status model.Status) ([]model.Assignment, error)
}
