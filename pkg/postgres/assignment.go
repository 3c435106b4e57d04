package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jakechorley/branch-cover/pkg/core/model"
	"github.com/jakechorley/branch-cover/pkg/db"
)

const (
	// SQLSTATE exclusion_violation, raised by temporary_assignment_no_overlap
	exclusionViolation = "23P01"
	// SQLSTATE check_violation
	checkViolation = "23514"
)

var _ db.AssignmentStore = (*DB)(nil)

const assignmentColumns = `id, staff_id, home_branch_id, temp_branch_id, start_date, end_date,
	reason, covering_for_staff_id, notes, status, created_at, updated_at`

// Insert stores a new assignment with a generated id
func (d *DB) Insert(ctx context.Context, a model.Assignment) (model.Assignment, error) {
	if a.Status == "" {
		a.Status = model.StatusActive
	}

	var coveringFor *string
	if a.CoveringForStaffID != "" {
		coveringFor = &a.CoveringForStaffID
	}

	row := d.q.QueryRow(ctx, `
		INSERT INTO temporary_assignment (
			id, staff_id, home_branch_id, temp_branch_id, start_date, end_date,
			reason, covering_for_staff_id, notes, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+assignmentColumns,
		uuid.New().String(), a.StaffID, a.HomeBranchID, a.TempBranchID,
		a.StartDate.Time(), a.EndDate.Time(),
		string(a.Reason), coveringFor, a.Notes, string(a.Status))

	saved, err := scanAssignment(row)
	if err != nil {
		return model.Assignment{}, mapWriteError(a, err)
	}
	return saved, nil
}

// Get returns the assignment with the given id
func (d *DB) Get(ctx context.Context, id string) (model.Assignment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Assignment{}, &model.NotFoundError{Kind: "assignment", ID: id}
	}

	row := d.q.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM temporary_assignment WHERE id = $1`, id)
	a, err := scanAssignment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Assignment{}, &model.NotFoundError{Kind: "assignment", ID: id}
	}
	if err != nil {
		return model.Assignment{}, fmt.Errorf("failed to get assignment %s: %w", id, err)
	}
	return a, nil
}

// UpdateStatus moves an active assignment to status.
// The update is conditional on the stored status so that concurrent cancels cannot both succeed.
func (d *DB) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	if !model.StatusActive.CanTransitionTo(status) {
		current, err := d.Get(ctx, id)
		if err != nil {
			return err
		}
		return &model.InvalidTransitionError{ID: id, From: current.Status, To: status}
	}

	tag, err := d.q.Exec(ctx, `
		UPDATE temporary_assignment
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, id, string(status), string(model.StatusActive))
	if err != nil {
		return fmt.Errorf("failed to update assignment %s: %w", id, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	current, err := d.Get(ctx, id)
	if err != nil {
		return err
	}
	return &model.InvalidTransitionError{ID: id, From: current.Status, To: status}
}

// ListByBranch filters on temp branch and stored status; empty values match everything
func (d *DB) ListByBranch(ctx context.Context, branchID string, status model.Status) ([]model.Assignment, error) {
	var (
		conds []string
		args  []any
	)
	if branchID != "" {
		args = append(args, branchID)
		conds = append(conds, fmt.Sprintf("temp_branch_id = $%d", len(args)))
	}
	if status != "" {
		args = append(args, string(status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + assignmentColumns + ` FROM temporary_assignment`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY start_date, id`

	return d.queryAssignments(ctx, query, args...)
}

// ListActiveForStaff returns the staff member's assignments with stored status active
func (d *DB) ListActiveForStaff(ctx context.Context, staffID string) ([]model.Assignment, error) {
	return d.queryAssignments(ctx, `
		SELECT `+assignmentColumns+`
		FROM temporary_assignment
		WHERE staff_id = $1 AND status = $2
		ORDER BY start_date, id
	`, staffID, string(model.StatusActive))
}

// WithStaffLock runs fn in a transaction holding a per-staff advisory lock.
// The lock is released on commit or rollback.
func (d *DB) WithStaffLock(ctx context.Context, staffID string, fn func(ctx context.Context, store db.AssignmentStore) error) error {
	tx, err := d.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1::text))`, staffID); err != nil {
		return fmt.Errorf("failed to lock staff %s: %w", staffID, err)
	}

	if err := fn(ctx, &DB{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (d *DB) queryAssignments(ctx context.Context, query string, args ...any) ([]model.Assignment, error) {
	rows, err := d.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var out []model.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return out, nil
}

func scanAssignment(row pgx.Row) (model.Assignment, error) {
	var (
		a              model.Assignment
		start, end     time.Time
		reason, status string
		coveringFor    *string
	)
	err := row.Scan(&a.ID, &a.StaffID, &a.HomeBranchID, &a.TempBranchID, &start, &end,
		&reason, &coveringFor, &a.Notes, &status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Assignment{}, err
	}

	a.StartDate = model.DateOf(start)
	a.EndDate = model.DateOf(end)
	a.Reason = model.Reason(reason)
	a.Status = model.Status(status)
	if coveringFor != nil {
		a.CoveringForStaffID = *coveringFor
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	return a, nil
}

// mapWriteError turns constraint violations into domain errors
func mapWriteError(a model.Assignment, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case exclusionViolation:
			return &model.ConflictError{StaffID: a.StaffID, Candidate: a.Range()}
		case checkViolation:
			return &model.ValidationError{Message: fmt.Sprintf("rejected by constraint %s", pgErr.ConstraintName)}
		}
	}
	return fmt.Errorf("failed to insert assignment: %w", err)
}
