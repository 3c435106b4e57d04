package coverage

import (
	"github.com/jakechorley/branch-cover/pkg/core/model"
)

// EffectiveStatus derives the status of a stored assignment on the reference date.
// Cancellation is permanent. A stored active assignment whose end date is before
// the reference date is expired; expiry is never required to have been persisted.
func EffectiveStatus(a model.Assignment, ref model.Date) model.Status {
	if a.Status == model.StatusActive && ref.After(a.EndDate) {
		return model.StatusExpired
	}
	return a.Status
}

// IsActiveOn reports whether the assignment is effectively active and in force on day d
func IsActiveOn(a model.Assignment, d model.Date) bool {
	return EffectiveStatus(a, d) == model.StatusActive && a.Range().Contains(d)
}

// WithEffectiveStatus returns a copy of the assignments with Status replaced by
// the effective status on the reference date
func WithEffectiveStatus(assignments []model.Assignment, ref model.Date) []model.Assignment {
	out := make([]model.Assignment, len(assignments))
	for i, a := range assignments {
		a.Status = EffectiveStatus(a, ref)
		out[i] = a
	}
	return out
}

// CheckCancellable returns *model.AlreadyTerminalError if the assignment's
// effective status on ref is terminal
func CheckCancellable(a model.Assignment, ref model.Date) error {
	if status := EffectiveStatus(a, ref); status.IsTerminal() {
		return &model.AlreadyTerminalError{ID: a.ID, Status: status}
	}
	return nil
}
