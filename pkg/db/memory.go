package db

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jakechorley/branch-cover/pkg/core/model"
)

// MemoryStore is an in-process AssignmentStore.
// Records never leave the process; it backs the "memory" store backend and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	assignments map[string]model.Assignment

	locksMu    sync.Mutex
	staffLocks map[string]*sync.Mutex

	now func() time.Time
}

var _ AssignmentStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assignments: make(map[string]model.Assignment),
		staffLocks:  make(map[string]*sync.Mutex),
		now:         time.Now,
	}
}

// Insert stores a copy of a with a fresh id and timestamps
func (s *MemoryStore) Insert(ctx context.Context, a model.Assignment) (model.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return model.Assignment{}, err
	}

	now := s.now().UTC()
	a.ID = uuid.New().String()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = model.StatusActive
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.ID] = a
	return a, nil
}

// Get returns the assignment with the given id
func (s *MemoryStore) Get(ctx context.Context, id string) (model.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.assignments[id]
	if !ok {
		return model.Assignment{}, &model.NotFoundError{Kind: "assignment", ID: id}
	}
	return a, nil
}

// UpdateStatus applies a lifecycle transition
func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assignments[id]
	if !ok {
		return &model.NotFoundError{Kind: "assignment", ID: id}
	}
	if !a.Status.CanTransitionTo(status) {
		return &model.InvalidTransitionError{ID: id, From: a.Status, To: status}
	}

	a.Status = status
	a.UpdatedAt = s.now().UTC()
	s.assignments[id] = a
	return nil
}

// ListByBranch returns assignments filtered by temp branch and stored status
func (s *MemoryStore) ListByBranch(ctx context.Context, branchID string, status model.Status) ([]model.Assignment, error) {
	return s.list(func(a model.Assignment) bool {
		return (branchID == "" || a.TempBranchID == branchID) && (status == "" || a.Status == status)
	}), nil
}

// ListActiveForStaff returns the staff member's assignments with stored status active
func (s *MemoryStore) ListActiveForStaff(ctx context.Context, staffID string) ([]model.Assignment, error) {
	return s.list(func(a model.Assignment) bool {
		return a.StaffID == staffID && a.Status == model.StatusActive
	}), nil
}

// WithStaffLock serialises fn with every other WithStaffLock call for the same staff member
func (s *MemoryStore) WithStaffLock(ctx context.Context, staffID string, fn func(ctx context.Context, store AssignmentStore) error) error {
	lock := s.staffLock(staffID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, s)
}

func (s *MemoryStore) staffLock(staffID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.staffLocks[staffID]
	if !ok {
		lock = &sync.Mutex{}
		s.staffLocks[staffID] = lock
	}
	return lock
}

// list returns matching assignments ordered by start date then id
func (s *MemoryStore) list(match func(model.Assignment) bool) []model.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Assignment
	for _, a := range s.assignments {
		if match(a) {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b model.Assignment) int {
		return cmpOr(a.StartDate.Compare(b.StartDate), cmp.Compare(a.ID, b.ID))
	})
	return out
}
