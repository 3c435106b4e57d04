package coverage

import (
	"context"
	"fmt"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/branch-cover/pkg/core/model"
)

// MaxOutlookOccurrences bounds the number of dashboards an outlook computes
const MaxOutlookOccurrences = 62

// outlookHorizonDays bounds the search window for rules without COUNT or UNTIL
const outlookHorizonDays = 366

// OutlookEntry summarises the coverage dashboard of one occurrence date
type OutlookEntry struct {
	Date                    model.Date         `json:"date"`
	LeavesToday             int                `json:"leavesToday"`
	UncoveredLeaves         int                `json:"uncoveredLeaves"`
	BranchesNeedingCoverage []model.BranchNeed `json:"branchesNeedingCoverage"`
	AvailableStaff          int                `json:"availableStaff"`
}

// Occurrences expands an RRULE starting on from into calendar dates,
// capped at max and at a one-year horizon
func Occurrences(from model.Date, rule string, max int) ([]model.Date, error) {
	if max <= 0 || max > MaxOutlookOccurrences {
		max = MaxOutlookOccurrences
	}

	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rrule: %w", err)
	}

	start := from.Time()
	r.DTStart(start)
	occurrences := r.Between(start, start.AddDate(0, 0, outlookHorizonDays), true)

	dates := make([]model.Date, 0, min(len(occurrences), max))
	seen := make(map[model.Date]bool)
	for _, o := range occurrences {
		d := model.DateOf(o)
		if seen[d] {
			continue
		}
		seen[d] = true
		dates = append(dates, d)
		if len(dates) == max {
			break
		}
	}
	return dates, nil
}

// Outlook computes a dashboard summary for each occurrence of rule starting on from
func (c *Computer) Outlook(ctx context.Context, from model.Date, rule string) ([]OutlookEntry, error) {
	dates, err := Occurrences(from, rule, MaxOutlookOccurrences)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Computing coverage outlook",
		zap.String("from", from.String()),
		zap.String("rule", rule),
		zap.Int("occurrences", len(dates)))

	entries := make([]OutlookEntry, 0, len(dates))
	for _, d := range dates {
		dashboard, err := c.ComputeDashboard(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("failed to compute dashboard for %s: %w", d, err)
		}

		available := 0
		for _, b := range dashboard.AvailableStaffByBranch {
			available += len(b.Staff)
		}

		entries = append(entries, OutlookEntry{
			Date:                    d,
			LeavesToday:             len(dashboard.LeavesToday),
			UncoveredLeaves:         dashboard.UncoveredLeaves(),
			BranchesNeedingCoverage: dashboard.BranchesNeedingCoverage,
			AvailableStaff:          available,
		})
	}
	return entries, nil
}
