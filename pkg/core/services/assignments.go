package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/branch-cover/pkg/core/coverage"
	"github.com/jakechorley/branch-cover/pkg/core/model"
	"github.com/jakechorley/branch-cover/pkg/db"
)

// CreateRequest carries the caller-supplied fields of a new assignment
type CreateRequest struct {
	StaffID            string
	TempBranchID       string
	StartDate          model.Date
	EndDate            model.Date
	Reason             model.Reason
	CoveringForStaffID string
	Notes              string
}

// AssignmentService is the single entry point for creating, cancelling and
// listing temporary assignments and for reading coverage dashboards
type AssignmentService struct {
	store    db.AssignmentStore
	staff    coverage.StaffDirectory
	branches coverage.BranchDirectory
	computer *coverage.Computer
	logger   *zap.Logger

	now      func() time.Time
	location *time.Location
}

// Option customises an AssignmentService
type Option func(*AssignmentService)

// WithClock overrides the clock used to derive "today"
func WithClock(now func() time.Time) Option {
	return func(s *AssignmentService) { s.now = now }
}

// WithLocation sets the time zone in which "today" is evaluated
func WithLocation(loc *time.Location) Option {
	return func(s *AssignmentService) { s.location = loc }
}

// NewAssignmentService wires the store and directories into a service
func NewAssignmentService(
	store db.AssignmentStore,
	staff coverage.StaffDirectory,
	branches coverage.BranchDirectory,
	leaves coverage.LeaveRegistry,
	logger *zap.Logger,
	opts ...Option,
) *AssignmentService {
	s := &AssignmentService{
		store:    store,
		staff:    staff,
		branches: branches,
		computer: coverage.NewComputer(staff, branches, leaves, store, logger),
		logger:   logger,
		now:      time.Now,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar date in the service's time zone
func (s *AssignmentService) Today() model.Date {
	return model.DateOf(s.now().In(s.location))
}

// Create validates and persists a new assignment.
// It returns *model.ValidationError for malformed input and *model.ConflictError
// when the staff member already has an overlapping active assignment.
func (s *AssignmentService) Create(ctx context.Context, req CreateRequest) (model.Assignment, error) {
	req.StaffID = strings.TrimSpace(req.StaffID)
	req.TempBranchID = strings.TrimSpace(req.TempBranchID)
	req.CoveringForStaffID = strings.TrimSpace(req.CoveringForStaffID)

	logger := s.logger.With(zap.String("staff_id", req.StaffID), zap.String("temp_branch_id", req.TempBranchID))
	logger.Debug("Creating assignment",
		zap.String("start", req.StartDate.String()),
		zap.String("end", req.EndDate.String()),
		zap.String("reason", string(req.Reason)))

	if req.StaffID == "" {
		return model.Assignment{}, &model.ValidationError{Field: "staffId", Message: "is required"}
	}
	if req.TempBranchID == "" {
		return model.Assignment{}, &model.ValidationError{Field: "tempBranchId", Message: "is required"}
	}

	// Capture the home branch as it is now; it is not re-derived later
	staff, err := s.lookupStaff(ctx, "staffId", req.StaffID)
	if err != nil {
		return model.Assignment{}, err
	}
	if err := s.checkBranchExists(ctx, req.TempBranchID); err != nil {
		return model.Assignment{}, err
	}
	if req.CoveringForStaffID != "" {
		if _, err := s.lookupStaff(ctx, "coveringForStaffId", req.CoveringForStaffID); err != nil {
			return model.Assignment{}, err
		}
	}

	candidate := model.Assignment{
		StaffID:            req.StaffID,
		HomeBranchID:       staff.HomeBranchID,
		TempBranchID:       req.TempBranchID,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		Reason:             req.Reason,
		CoveringForStaffID: req.CoveringForStaffID,
		Notes:              req.Notes,
		Status:             model.StatusActive,
	}

	if err := coverage.Validate(candidate, nil); err != nil {
		logger.Debug("Candidate rejected", zap.Error(err))
		return model.Assignment{}, err
	}

	var saved model.Assignment
	err = s.store.WithStaffLock(ctx, req.StaffID, func(ctx context.Context, store db.AssignmentStore) error {
		existing, err := store.ListActiveForStaff(ctx, req.StaffID)
		if err != nil {
			return fmt.Errorf("failed to load active assignments: %w", err)
		}
		logger.Debug("Loaded active assignments for staff", zap.Int("count", len(existing)))

		if err := coverage.Validate(candidate, existing); err != nil {
			return err
		}

		saved, err = store.Insert(ctx, candidate)
		if err != nil {
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		var conflict *model.ConflictError
		if errors.As(err, &conflict) {
			logger.Info("Assignment conflicts with existing assignment", zap.Error(err))
		}
		return model.Assignment{}, err
	}

	logger.Info("Assignment created",
		zap.String("assignment_id", saved.ID),
		zap.String("range", saved.Range().String()))

	return saved, nil
}

// Cancel cancels an active assignment.
// It returns *model.NotFoundError for an unknown id and *model.AlreadyTerminalError
// if the assignment is already cancelled or expired.
func (s *AssignmentService) Cancel(ctx context.Context, id string) error {
	logger := s.logger.With(zap.String("assignment_id", id))
	logger.Debug("Cancelling assignment")

	a, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := coverage.CheckCancellable(a, s.Today()); err != nil {
		logger.Debug("Assignment already terminal", zap.Error(err))
		return err
	}

	if err := s.store.UpdateStatus(ctx, id, model.StatusCancelled); err != nil {
		var itErr *model.InvalidTransitionError
		if errors.As(err, &itErr) {
			// Lost a race with another cancel
			if itErr.From.IsTerminal() {
				return &model.AlreadyTerminalError{ID: id, Status: itErr.From}
			}
			logger.Error("Store rejected lifecycle transition", zap.Error(err))
		}
		return err
	}

	logger.Info("Assignment cancelled", zap.String("staff_id", a.StaffID))
	return nil
}

// Get returns one assignment with its effective status
func (s *AssignmentService) Get(ctx context.Context, id string) (model.Assignment, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Assignment{}, err
	}
	a.Status = coverage.EffectiveStatus(a, s.Today())
	return a, nil
}

// List returns assignments optionally filtered by temp branch and effective status.
// Every returned record carries its effective status.
func (s *AssignmentService) List(ctx context.Context, branchID string, status model.Status) ([]model.Assignment, error) {
	if status != "" && !status.IsValid() {
		return nil, &model.ValidationError{Field: "status", Message: "must be one of active, cancelled, expired"}
	}

	// Effective active and cancelled map to one stored status; expired may be either
	storedFilter := model.Status("")
	if status == model.StatusActive || status == model.StatusCancelled {
		storedFilter = status
	}

	stored, err := s.store.ListByBranch(ctx, branchID, storedFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	effective := coverage.WithEffectiveStatus(stored, s.Today())
	if status == "" {
		return effective, nil
	}

	out := make([]model.Assignment, 0, len(effective))
	for _, a := range effective {
		if a.Status == status {
			out = append(out, a)
		}
	}

	s.logger.Debug("Listed assignments",
		zap.String("branch_id", branchID),
		zap.String("status", string(status)),
		zap.Int("count", len(out)))

	return out, nil
}

// ListActive returns assignments whose effective status is active, optionally
// filtered by temp branch
func (s *AssignmentService) ListActive(ctx context.Context, branchID string) ([]model.Assignment, error) {
	return s.List(ctx, branchID, model.StatusActive)
}

// Dashboard computes the coverage dashboard; a zero reference date means today
func (s *AssignmentService) Dashboard(ctx context.Context, ref model.Date) (*model.Dashboard, error) {
	if ref.IsZero() {
		ref = s.Today()
	}
	return s.computer.ComputeDashboard(ctx, ref)
}

// Outlook computes dashboard summaries for each occurrence of rule; a zero from date means today
func (s *AssignmentService) Outlook(ctx context.Context, from model.Date, rule string) ([]coverage.OutlookEntry, error) {
	if from.IsZero() {
		from = s.Today()
	}
	if strings.TrimSpace(rule) == "" {
		return nil, &model.ValidationError{Field: "rule", Message: "is required"}
	}
	if _, err := coverage.Occurrences(from, rule, 1); err != nil {
		return nil, &model.ValidationError{Field: "rule", Message: err.Error()}
	}
	return s.computer.Outlook(ctx, from, rule)
}

// lookupStaff resolves a staff reference, turning an unknown id into a validation error on field
func (s *AssignmentService) lookupStaff(ctx context.Context, field, id string) (model.StaffRecord, error) {
	staff, err := s.staff.GetStaff(ctx, id)
	if err != nil {
		var nfErr *model.NotFoundError
		if errors.As(err, &nfErr) {
			return model.StaffRecord{}, &model.ValidationError{Field: field, Message: fmt.Sprintf("unknown staff member %q", id)}
		}
		return model.StaffRecord{}, fmt.Errorf("failed to look up staff %s: %w", id, err)
	}
	return staff, nil
}

func (s *AssignmentService) checkBranchExists(ctx context.Context, branchID string) error {
	branches, err := s.branches.ListBranches(ctx)
	if err != nil {
		return fmt.Errorf("failed to list branches: %w", err)
	}
	for _, b := range branches {
		if b.ID == branchID {
			return nil
		}
	}
	return &model.ValidationError{Field: "tempBranchId", Message: fmt.Sprintf("unknown branch %q", branchID)}
}
