package coverage

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/branch-cover/pkg/core/model"
)

const defaultStaffFetchConcurrency = 8

// Computer aggregates the leave registry, assignment store and directories
// into a coverage dashboard
type Computer struct {
	staff       StaffDirectory
	branches    BranchDirectory
	leaves      LeaveRegistry
	assignments AssignmentLister
	logger      *zap.Logger

	staffFetchConcurrency int
}

// NewComputer creates a dashboard computer over the given sources
func NewComputer(staff StaffDirectory, branches BranchDirectory, leaves LeaveRegistry, assignments AssignmentLister, logger *zap.Logger) *Computer {
	return &Computer{
		staff:                 staff,
		branches:              branches,
		leaves:                leaves,
		assignments:           assignments,
		logger:                logger,
		staffFetchConcurrency: defaultStaffFetchConcurrency,
	}
}

type coverageKey struct {
	staffID  string
	branchID string
}

// ComputeDashboard builds the coverage snapshot for the reference date.
// The result depends only on the reference date and the source data; it is never persisted.
func (c *Computer) ComputeDashboard(ctx context.Context, ref model.Date) (*model.Dashboard, error) {
	c.logger.Debug("Computing coverage dashboard", zap.String("reference_date", ref.String()))

	var (
		leaves      []model.LeaveRecord
		assignments []model.Assignment
		branches    []model.BranchRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leaves, err = c.leaves.GetLeavesOverlapping(gctx, ref)
		if err != nil {
			return fmt.Errorf("failed to fetch leaves: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assignments, err = c.assignments.ListByBranch(gctx, "", model.StatusActive)
		if err != nil {
			return fmt.Errorf("failed to fetch assignments: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		branches, err = c.branches.ListBranches(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch branches: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	leavesToday := leavesInForce(leaves, ref)
	activeAssignments := assignmentsInForce(assignments, ref)

	c.logger.Debug("Fetched coverage sources",
		zap.Int("leaves_today", len(leavesToday)),
		zap.Int("active_assignments", len(activeAssignments)),
		zap.Int("branches", len(branches)))

	slices.SortFunc(branches, func(a, b model.BranchRecord) int {
		return cmpOr(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	branchByID := make(map[string]model.BranchRecord, len(branches))
	for _, b := range branches {
		branchByID[b.ID] = b
	}

	coverage := markCoverage(leavesToday, activeAssignments)
	needs := groupNeeds(coverage, branchByID)

	available, err := c.availableStaff(ctx, branches, leavesToday, activeAssignments)
	if err != nil {
		return nil, err
	}

	dashboard := &model.Dashboard{
		ReferenceDate:           ref,
		LeavesToday:             coverage,
		BranchesNeedingCoverage: needs,
		AvailableStaffByBranch:  available,
	}

	c.logger.Debug("Coverage dashboard computed",
		zap.String("reference_date", ref.String()),
		zap.Int("uncovered_leaves", dashboard.UncoveredLeaves()),
		zap.Int("branches_needing_coverage", len(needs)))

	return dashboard, nil
}

// leavesInForce keeps the leaves whose range includes ref, sorted for stable output.
// The registry is asked for overlapping leaves already; the filter guards against
// sources that return a wider window.
func leavesInForce(leaves []model.LeaveRecord, ref model.Date) []model.LeaveRecord {
	out := make([]model.LeaveRecord, 0, len(leaves))
	for _, l := range leaves {
		if l.Range().Valid() && l.Range().Contains(ref) {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b model.LeaveRecord) int {
		return cmpOr(
			cmp.Compare(a.BranchID, b.BranchID),
			a.StartDate.Compare(b.StartDate),
			cmp.Compare(a.StaffID, b.StaffID),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return out
}

// assignmentsInForce keeps assignments that are effectively active on ref and whose range includes it
func assignmentsInForce(assignments []model.Assignment, ref model.Date) []model.Assignment {
	out := make([]model.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if IsActiveOn(a, ref) {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b model.Assignment) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// markCoverage derives effective coverage per leave: the registry's own flag OR an
// active assignment covering that staff member at that branch
func markCoverage(leaves []model.LeaveRecord, active []model.Assignment) []model.LeaveCoverage {
	coveredBy := make(map[coverageKey]string)
	for _, a := range active {
		if a.CoveringForStaffID == "" {
			continue
		}
		key := coverageKey{staffID: a.CoveringForStaffID, branchID: a.TempBranchID}
		if _, ok := coveredBy[key]; !ok {
			coveredBy[key] = a.ID
		}
	}

	out := make([]model.LeaveCoverage, 0, len(leaves))
	for _, l := range leaves {
		lc := model.LeaveCoverage{Leave: l, EffectivelyCovered: l.Covered}
		if id, ok := coveredBy[coverageKey{staffID: l.StaffID, branchID: l.BranchID}]; ok {
			lc.EffectivelyCovered = true
			lc.CoveredByAssignmentID = id
		}
		out = append(out, lc)
	}
	return out
}

// groupNeeds groups uncovered leaves by branch. Branches missing from the
// directory are still reported, by id only.
func groupNeeds(coverage []model.LeaveCoverage, branchByID map[string]model.BranchRecord) []model.BranchNeed {
	index := make(map[string]int)
	var needs []model.BranchNeed
	for _, lc := range coverage {
		if lc.EffectivelyCovered {
			continue
		}
		i, ok := index[lc.Leave.BranchID]
		if !ok {
			branch, known := branchByID[lc.Leave.BranchID]
			if !known {
				branch = model.BranchRecord{ID: lc.Leave.BranchID}
			}
			needs = append(needs, model.BranchNeed{Branch: branch})
			i = len(needs) - 1
			index[lc.Leave.BranchID] = i
		}
		needs[i].UncoveredCount++
		needs[i].LeaveIDs = append(needs[i].LeaveIDs, lc.Leave.ID)
	}

	slices.SortFunc(needs, func(a, b model.BranchNeed) int {
		return cmpOr(
			cmp.Compare(b.UncoveredCount, a.UncoveredCount),
			cmp.Compare(a.Branch.Name, b.Branch.Name),
			cmp.Compare(a.Branch.ID, b.Branch.ID),
		)
	})
	if needs == nil {
		needs = []model.BranchNeed{}
	}
	return needs
}

// availableStaff computes, per branch, home staff minus staff on leave minus staff
// temporarily assigned anywhere on the reference date
func (c *Computer) availableStaff(ctx context.Context, branches []model.BranchRecord, leaves []model.LeaveRecord, active []model.Assignment) ([]model.BranchAvailability, error) {
	onLeave := make(map[string]bool, len(leaves))
	for _, l := range leaves {
		onLeave[l.StaffID] = true
	}
	assigned := make(map[string]bool, len(active))
	for _, a := range active {
		assigned[a.StaffID] = true
	}

	rosters := make([][]model.StaffRecord, len(branches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.staffFetchConcurrency)
	for i, b := range branches {
		i, b := i, b
		g.Go(func() error {
			staff, err := c.staff.GetStaffByBranch(gctx, b.ID)
			if err != nil {
				return fmt.Errorf("failed to fetch staff for branch %s: %w", b.ID, err)
			}
			rosters[i] = staff
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.BranchAvailability, 0, len(branches))
	for i, b := range branches {
		free := []model.StaffRecord{}
		for _, s := range rosters[i] {
			if s.HomeBranchID == "" || s.HomeBranchID != b.ID {
				continue
			}
			if onLeave[s.ID] || assigned[s.ID] {
				continue
			}
			free = append(free, s)
		}
		slices.SortFunc(free, func(x, y model.StaffRecord) int {
			return cmpOr(
				cmp.Compare(x.LastName, y.LastName),
				cmp.Compare(x.FirstName, y.FirstName),
				cmp.Compare(x.ID, y.ID),
			)
		})
		out = append(out, model.BranchAvailability{Branch: b, Staff: free})
	}
	return out, nil
}
