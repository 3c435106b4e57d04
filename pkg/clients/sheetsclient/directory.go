package sheetsclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jakechorley/branch-cover/internal/config"
	"github.com/jakechorley/branch-cover/pkg/core/coverage"
	"github.com/jakechorley/branch-cover/pkg/core/model"
	"github.com/jakechorley/branch-cover/pkg/directory"
)

var (
	_ coverage.StaffDirectory  = (*Directory)(nil)
	_ coverage.BranchDirectory = (*Directory)(nil)
	_ coverage.LeaveRegistry   = (*Directory)(nil)
)

// ValuesReader reads a range of cells; *Client implements it
type ValuesReader interface {
	GetValues(ctx context.Context, spreadsheetID, sheetRange string) ([][]interface{}, error)
}

// Directory serves staff, branch and leave records from one spreadsheet.
// All three tabs are read together and the snapshot is reused for the configured cache TTL.
type Directory struct {
	reader ValuesReader
	cfg    config.DirectoryConfig
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	snapshot  *directory.Snapshot
	fetchedAt time.Time
}

// NewDirectory creates a sheets-backed directory
func NewDirectory(reader ValuesReader, cfg config.DirectoryConfig, logger *zap.Logger) *Directory {
	return &Directory{
		reader: reader,
		cfg:    cfg,
		ttl:    cfg.CacheDuration(),
		logger: logger,
		now:    time.Now,
	}
}

// GetStaffByBranch returns staff whose home branch is branchID
func (d *Directory) GetStaffByBranch(ctx context.Context, branchID string) ([]model.StaffRecord, error) {
	snap, err := d.current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetStaffByBranch(ctx, branchID)
}

// GetStaff returns *model.NotFoundError for an unknown id
func (d *Directory) GetStaff(ctx context.Context, id string) (model.StaffRecord, error) {
	snap, err := d.current(ctx)
	if err != nil {
		return model.StaffRecord{}, err
	}
	return snap.GetStaff(ctx, id)
}

// ListBranches returns every branch in the branches tab
func (d *Directory) ListBranches(ctx context.Context) ([]model.BranchRecord, error) {
	snap, err := d.current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.ListBranches(ctx)
}

// GetLeavesOverlapping returns leaves whose inclusive range contains date
func (d *Directory) GetLeavesOverlapping(ctx context.Context, date model.Date) ([]model.LeaveRecord, error) {
	snap, err := d.current(ctx)
	if err != nil {
		return nil, err
	}
	return snap.GetLeavesOverlapping(ctx, date)
}

// Invalidate drops the cached snapshot so the next read refetches
func (d *Directory) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snapshot = nil
}

// current returns the cached snapshot or loads a fresh one.
// Concurrent callers wait for a single load.
func (d *Directory) current(ctx context.Context) (*directory.Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.snapshot != nil && d.ttl > 0 && d.now().Sub(d.fetchedAt) < d.ttl {
		return d.snapshot, nil
	}

	snap, err := d.load(ctx)
	if err != nil {
		return nil, err
	}

	d.snapshot = snap
	d.fetchedAt = d.now()
	return snap, nil
}

func (d *Directory) load(ctx context.Context) (*directory.Snapshot, error) {
	var (
		staff    []model.StaffRecord
		branches []model.BranchRecord
		leaves   []model.LeaveRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := d.reader.GetValues(gctx, d.cfg.SpreadsheetID, d.cfg.StaffTab)
		if err != nil {
			return fmt.Errorf("failed to get staff data: %w", err)
		}
		staff, err = parseStaff(raw)
		if err != nil {
			return fmt.Errorf("failed to parse staff: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		raw, err := d.reader.GetValues(gctx, d.cfg.SpreadsheetID, d.cfg.BranchTab)
		if err != nil {
			return fmt.Errorf("failed to get branch data: %w", err)
		}
		branches, err = parseBranches(raw)
		if err != nil {
			return fmt.Errorf("failed to parse branches: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		raw, err := d.reader.GetValues(gctx, d.cfg.SpreadsheetID, d.cfg.LeaveTab)
		if err != nil {
			return fmt.Errorf("failed to get leave data: %w", err)
		}
		leaves, err = parseLeaves(raw)
		if err != nil {
			return fmt.Errorf("failed to parse leaves: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.logger.Debug("Loaded directory from sheets",
		zap.String("spreadsheet_id", d.cfg.SpreadsheetID),
		zap.Int("staff", len(staff)),
		zap.Int("branches", len(branches)),
		zap.Int("leaves", len(leaves)))

	return directory.NewSnapshot(staff, branches, leaves), nil
}
