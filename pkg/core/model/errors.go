package model

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed input. The caller must correct the input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// ConflictError reports that a candidate overlaps an active assignment of the same staff member
type ConflictError struct {
	StaffID     string
	Candidate   DateRange
	Conflicting []Assignment
}

func (e *ConflictError) Error() string {
	if len(e.Conflicting) == 0 {
		return fmt.Sprintf("staff %s already has an active assignment overlapping %s", e.StaffID, e.Candidate)
	}
	parts := make([]string, 0, len(e.Conflicting))
	for _, c := range e.Conflicting {
		parts = append(parts, fmt.Sprintf("%s (%s)", c.ID, c.Range()))
	}
	return fmt.Sprintf("staff %s already has an active assignment overlapping %s: %s",
		e.StaffID, e.Candidate, strings.Join(parts, ", "))
}

// NotFoundError reports a reference to a record that does not exist
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// AlreadyTerminalError reports a cancel request on an assignment that is already cancelled or expired
type AlreadyTerminalError struct {
	ID     string
	Status Status
}

func (e *AlreadyTerminalError) Error() string {
	return fmt.Sprintf("assignment %s is already %s", e.ID, e.Status)
}

// InvalidTransitionError reports a store-level status change outside the lifecycle.
// Reaching it indicates a bug.
type InvalidTransitionError struct {
	ID   string
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition for assignment %s: %s -> %s", e.ID, e.From, e.To)
}
