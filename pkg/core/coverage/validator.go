package coverage

import (
	"github.com/jakechorley/branch-cover/pkg/core/model"
)

// Validate checks a candidate assignment against its own constraints and against
// the existing active assignments of the same staff member.
// It returns a *model.ValidationError for malformed input, a *model.ConflictError
// when the candidate's date range overlaps an existing active assignment, or nil.
// Validate has no side effects.
func Validate(candidate model.Assignment, existingActiveForStaff []model.Assignment) error {
	if err := validateShape(candidate); err != nil {
		return err
	}

	conflicting := findConflicts(candidate, existingActiveForStaff)
	if len(conflicting) > 0 {
		return &model.ConflictError{
			StaffID:     candidate.StaffID,
			Candidate:   candidate.Range(),
			Conflicting: conflicting,
		}
	}

	return nil
}

func validateShape(a model.Assignment) error {
	switch {
	case a.StaffID == "":
		return &model.ValidationError{Field: "staffId", Message: "is required"}
	case a.HomeBranchID == "":
		return &model.ValidationError{Field: "homeBranchId", Message: "staff member has no home branch"}
	case a.TempBranchID == "":
		return &model.ValidationError{Field: "tempBranchId", Message: "is required"}
	case a.TempBranchID == a.HomeBranchID:
		return &model.ValidationError{Field: "tempBranchId", Message: "must differ from the staff member's home branch"}
	case a.StartDate.IsZero():
		return &model.ValidationError{Field: "startDate", Message: "is required"}
	case a.EndDate.IsZero():
		return &model.ValidationError{Field: "endDate", Message: "is required"}
	case !a.Range().Valid():
		return &model.ValidationError{Field: "endDate", Message: "must not be before startDate"}
	case !a.Reason.IsValid():
		return &model.ValidationError{Field: "reason", Message: "must be one of leave_coverage, training, support, event, other"}
	}

	if a.CoveringForStaffID != "" {
		if a.Reason != model.ReasonLeaveCoverage {
			return &model.ValidationError{Field: "coveringForStaffId", Message: "only allowed with reason leave_coverage"}
		}
		if a.CoveringForStaffID == a.StaffID {
			return &model.ValidationError{Field: "coveringForStaffId", Message: "staff member cannot cover their own leave"}
		}
	}

	return nil
}

// findConflicts returns existing active assignments of the candidate's staff member
// whose inclusive date range overlaps the candidate's
func findConflicts(candidate model.Assignment, existing []model.Assignment) []model.Assignment {
	var out []model.Assignment
	for _, e := range existing {
		if e.StaffID != candidate.StaffID || e.Status != model.StatusActive {
			continue
		}
		if candidate.ID != "" && e.ID == candidate.ID {
			continue
		}
		if e.Range().Overlaps(candidate.Range()) {
			out = append(out, e)
		}
	}
	return out
}
