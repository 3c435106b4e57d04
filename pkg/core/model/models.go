package model

import "time"

// Reason explains why a staff member is temporarily reassigned
type Reason string

const (
	ReasonLeaveCoverage Reason = "leave_coverage"
	ReasonTraining      Reason = "training"
	ReasonSupport       Reason = "support"
	ReasonEvent         Reason = "event"
	ReasonOther         Reason = "other"
)

func (r Reason) IsValid() bool {
	switch r {
	case ReasonLeaveCoverage, ReasonTraining, ReasonSupport, ReasonEvent, ReasonOther:
		return true
	}
	return false
}

// Status is the lifecycle state of an assignment
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusCancelled || s == StatusExpired
}

// IsTerminal reports whether no transition leaves this status
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

// CanTransitionTo reports whether from -> to is a defined lifecycle transition.
// Only active may move, to cancelled or expired.
func (s Status) CanTransitionTo(to Status) bool {
	return s == StatusActive && (to == StatusCancelled || to == StatusExpired)
}

// Assignment is a temporary cross-branch reassignment of a staff member
type Assignment struct {
	ID                 string    `json:"id"`
	StaffID            string    `json:"staffId"`
	HomeBranchID       string    `json:"homeBranchId"`
	TempBranchID       string    `json:"tempBranchId"`
	StartDate          Date      `json:"startDate"`
	EndDate            Date      `json:"endDate"`
	Reason             Reason    `json:"reason"`
	CoveringForStaffID string    `json:"coveringForStaffId,omitempty"` // Empty when not covering a leave
	Notes              string    `json:"notes,omitempty"`
	Status             Status    `json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Range returns the assignment's inclusive date range
func (a Assignment) Range() DateRange {
	return DateRange{Start: a.StartDate, End: a.EndDate}
}

// StaffRecord is a staff member as supplied by the staff directory
type StaffRecord struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Mobile       string `json:"mobile,omitempty"`
	HomeBranchID string `json:"homeBranchId"` // Empty if the staff member has no home branch
	IsTemp       bool   `json:"isTemp"`
}

// FullName returns "First Last", trimmed when either part is missing
func (s StaffRecord) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// BranchRecord is a branch as supplied by the branch directory
type BranchRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}

// LeaveRecord is a planned absence as supplied by the leave registry.
// Covered is read-only input; it is never written back.
type LeaveRecord struct {
	ID        string `json:"id"`
	StaffID   string `json:"staffId"`
	BranchID  string `json:"branchId"`
	StartDate Date   `json:"startDate"`
	EndDate   Date   `json:"endDate"`
	LeaveType string `json:"leaveType"`
	Covered   bool   `json:"covered"`
}

// Range returns the leave's inclusive date range
func (l LeaveRecord) Range() DateRange {
	return DateRange{Start: l.StartDate, End: l.EndDate}
}

// LeaveCoverage is a leave in force on the reference date together with its
// effective coverage
type LeaveCoverage struct {
	Leave                 LeaveRecord `json:"leave"`
	EffectivelyCovered    bool        `json:"effectivelyCovered"`
	CoveredByAssignmentID string      `json:"coveredByAssignmentId,omitempty"`
}

// BranchNeed is a branch with at least one uncovered leave on the reference date
type BranchNeed struct {
	Branch         BranchRecord `json:"branch"`
	UncoveredCount int          `json:"uncoveredCount"`
	LeaveIDs       []string     `json:"leaveIds"`
}

// BranchAvailability lists the home staff of a branch who are free on the reference date
type BranchAvailability struct {
	Branch BranchRecord  `json:"branch"`
	Staff  []StaffRecord `json:"staff"`
}

// Dashboard is a read-only coverage snapshot for one reference date
type Dashboard struct {
	ReferenceDate           Date                 `json:"referenceDate"`
	LeavesToday             []LeaveCoverage      `json:"leavesToday"`
	BranchesNeedingCoverage []BranchNeed         `json:"branchesNeedingCoverage"`
	AvailableStaffByBranch  []BranchAvailability `json:"availableStaffByBranch"`
}

// UncoveredLeaves counts leaves that are not effectively covered
func (d *Dashboard) UncoveredLeaves() int {
	n := 0
	for _, l := range d.LeavesToday {
		if !l.EffectivelyCovered {
			n++
		}
	}
	return n
}

// AvailableFor returns the available staff of a branch, or nil if the branch is unknown
func (d *Dashboard) AvailableFor(branchID string) []StaffRecord {
	for _, b := range d.AvailableStaffByBranch {
		if b.Branch.ID == branchID {
			return b.Staff
		}
	}
	return nil
}

// NeedFor returns the coverage need of a branch, or nil if it has none
func (d *Dashboard) NeedFor(branchID string) *BranchNeed {
	for i := range d.BranchesNeedingCoverage {
		if d.BranchesNeedingCoverage[i].Branch.ID == branchID {
			return &d.BranchesNeedingCoverage[i]
		}
	}
	return nil
}
