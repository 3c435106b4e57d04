package directory

import (
	"context"
	"slices"

	"github.com/jakechorley/branch-cover/pkg/core/coverage"
	"github.com/jakechorley/branch-cover/pkg/core/model"
)

var (
	_ coverage.StaffDirectory  = (*Snapshot)(nil)
	_ coverage.BranchDirectory = (*Snapshot)(nil)
	_ coverage.LeaveRegistry   = (*Snapshot)(nil)
)

// Snapshot is an immutable set of staff, branch and leave records.
// It answers directory queries from memory for any source that can load the full set.
type Snapshot struct {
	staff    []model.StaffRecord
	branches []model.BranchRecord
	leaves   []model.LeaveRecord

	staffByID map[string]int
}

// NewSnapshot copies the given records. Staff ids must be unique.
func NewSnapshot(staff []model.StaffRecord, branches []model.BranchRecord, leaves []model.LeaveRecord) *Snapshot {
	s := &Snapshot{
		staff:     slices.Clone(staff),
		branches:  slices.Clone(branches),
		leaves:    slices.Clone(leaves),
		staffByID: make(map[string]int, len(staff)),
	}
	for i, st := range s.staff {
		s.staffByID[st.ID] = i
	}
	return s
}

// GetStaffByBranch returns staff whose home branch is branchID
func (s *Snapshot) GetStaffByBranch(ctx context.Context, branchID string) ([]model.StaffRecord, error) {
	var out []model.StaffRecord
	for _, st := range s.staff {
		if st.HomeBranchID == branchID {
			out = append(out, st)
		}
	}
	return out, nil
}

// GetStaff returns *model.NotFoundError for an unknown id
func (s *Snapshot) GetStaff(ctx context.Context, id string) (model.StaffRecord, error) {
	i, ok := s.staffByID[id]
	if !ok {
		return model.StaffRecord{}, &model.NotFoundError{Kind: "staff", ID: id}
	}
	return s.staff[i], nil
}

// ListBranches returns a copy of every branch
func (s *Snapshot) ListBranches(ctx context.Context) ([]model.BranchRecord, error) {
	return slices.Clone(s.branches), nil
}

// GetLeavesOverlapping returns leaves whose inclusive range contains date
func (s *Snapshot) GetLeavesOverlapping(ctx context.Context, date model.Date) ([]model.LeaveRecord, error) {
	var out []model.LeaveRecord
	for _, l := range s.leaves {
		if l.Range().Contains(date) {
			out = append(out, l)
		}
	}
	return out, nil
}

// Counts reports the number of staff, branch and leave records
func (s *Snapshot) Counts() (staff, branches, leaves int) {
	return len(s.staff), len(s.branches), len(s.leaves)
}
