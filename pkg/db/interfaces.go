package db

import (
	"context"

	"github.com/jakechorley/branch-cover/pkg/core/model"
)

// AssignmentStore defines persistence for temporary assignments.
// Both the in-memory MemoryStore and postgres.DB implement this interface.
type AssignmentStore interface {
	// Insert persists a new assignment, generating its id and timestamps.
	// The returned record is visible to every subsequent read.
	Insert(ctx context.Context, a model.Assignment) (model.Assignment, error)

	// Get returns *model.NotFoundError for an unknown id
	Get(ctx context.Context, id string) (model.Assignment, error)

	// UpdateStatus applies a lifecycle transition to the stored status.
	// It returns *model.NotFoundError for an unknown id and
	// *model.InvalidTransitionError for a transition the lifecycle does not define.
	UpdateStatus(ctx context.Context, id string, status model.Status) error

	// ListByBranch filters on tempBranchId and stored status; empty values match everything
	ListByBranch(ctx context.Context, branchID string, status model.Status) ([]model.Assignment, error)

	// ListActiveForStaff returns assignments of the staff member whose stored status is active
	ListActiveForStaff(ctx context.Context, staffID string) ([]model.Assignment, error)

	// WithStaffLock runs fn while holding an exclusive lock on the staff member,
	// so that validate-then-insert sequences for the same staff never interleave.
	// fn must use the store it is given.
	WithStaffLock(ctx context.Context, staffID string, fn func(ctx context.Context, store AssignmentStore) error) error
}
