package coverage

import (
	"context"

	"github.com/jakechorley/branch-cover/pkg/core/model"
)

type mockStaffDirectory struct {
	staff []model.StaffRecord
	err   error
}

func (m *mockStaffDirectory) GetStaffByBranch(ctx context.Context, branchID string) ([]model.StaffRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.StaffRecord
	for _, s := range m.staff {
		if s.HomeBranchID == branchID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStaffDirectory) GetStaff(ctx context.Context, id string) (model.StaffRecord, error) {
	for _, s := range m.staff {
		if s.ID == id {
			return s, nil
		}
	}
	return model.StaffRecord{}, &model.NotFoundError{Kind: "staff", ID: id}
}

type mockBranchDirectory struct {
	branches []model.BranchRecord
	err      error
}

func (m *mockBranchDirectory) ListBranches(ctx context.Context) ([]model.BranchRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.BranchRecord, len(m.branches))
	copy(out, m.branches)
	return out, nil
}

// mockLeaveRegistry returns every leave it holds regardless of date so the
// computer's own filtering is exercised
type mockLeaveRegistry struct {
	leaves []model.LeaveRecord
	err    error
}

func (m *mockLeaveRegistry) GetLeavesOverlapping(ctx context.Context, date model.Date) ([]model.LeaveRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.leaves, nil
}

type mockAssignmentLister struct {
	assignments []model.Assignment
	err         error
}

func (m *mockAssignmentLister) ListByBranch(ctx context.Context, branchID string, status model.Status) ([]model.Assignment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Assignment
	for _, a := range m.assignments {
		if branchID != "" && a.TempBranchID != branchID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func date(s string) model.Date {
	return model.MustParseDate(s)
}
