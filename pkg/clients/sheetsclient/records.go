package sheetsclient

import (
	"fmt"
	"strings"

	"github.com/jakechorley/branch-cover/pkg/core/model"
)

// Expected column names in the staff tab
var staffFields = []string{
	"Staff ID",
	"First name",
	"Last name",
	"Mobile",
	"Home branch",
	"Temp",
}

// Expected column names in the branches tab
var branchFields = []string{
	"Branch ID",
	"Name",
	"City",
}

// Expected column names in the leave tab
var leaveFields = []string{
	"Leave ID",
	"Staff ID",
	"Branch ID",
	"Start date",
	"End date",
	"Leave type",
	"Covered",
}

// table indexes a sheet's data rows by header name
type table struct {
	fieldIndexes map[string]int
	rows         [][]interface{}
}

// newTable locates every required field in the header row
func newTable(raw [][]interface{}, fields []string) (*table, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("no header row found")
	}

	fieldIndexes := make(map[string]int, len(fields))
	headerRow := raw[0]

	for _, field := range fields {
		index := -1
		for i, cell := range headerRow {
			if cellStr, ok := cell.(string); ok && strings.TrimSpace(cellStr) == field {
				index = i
				break
			}
		}
		if index == -1 {
			return nil, fmt.Errorf("missing required field in header: %s", field)
		}
		fieldIndexes[field] = index
	}

	return &table{fieldIndexes: fieldIndexes, rows: raw[1:]}, nil
}

// get returns the trimmed string value of field in row, or "" if absent
func (t *table) get(field string, row []interface{}) string {
	index, ok := t.fieldIndexes[field]
	if !ok || index >= len(row) {
		return ""
	}
	if str, ok := row[index].(string); ok {
		return strings.TrimSpace(str)
	}
	return ""
}

// parseBool accepts the checkbox and free-text spellings used in the sheets
func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "x", "1":
		return true
	}
	return false
}

// parseStaff converts raw spreadsheet data into StaffRecords
func parseStaff(raw [][]interface{}) ([]model.StaffRecord, error) {
	t, err := newTable(raw, staffFields)
	if err != nil {
		return nil, err
	}

	staff := make([]model.StaffRecord, 0, len(t.rows))
	seen := make(map[string]int, len(t.rows))
	for i, row := range t.rows {
		id := t.get("Staff ID", row)
		// Skip empty rows
		if id == "" {
			continue
		}
		sheetRow := i + 2
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("duplicate staff id %s in rows %d and %d", id, prev, sheetRow)
		}
		seen[id] = sheetRow

		staff = append(staff, model.StaffRecord{
			ID:           id,
			FirstName:    t.get("First name", row),
			LastName:     t.get("Last name", row),
			Mobile:       t.get("Mobile", row),
			HomeBranchID: t.get("Home branch", row),
			IsTemp:       parseBool(t.get("Temp", row)),
		})
	}

	return staff, nil
}

// parseBranches converts raw spreadsheet data into BranchRecords
func parseBranches(raw [][]interface{}) ([]model.BranchRecord, error) {
	t, err := newTable(raw, branchFields)
	if err != nil {
		return nil, err
	}

	branches := make([]model.BranchRecord, 0, len(t.rows))
	for _, row := range t.rows {
		id := t.get("Branch ID", row)
		if id == "" {
			continue
		}
		branches = append(branches, model.BranchRecord{
			ID:   id,
			Name: t.get("Name", row),
			City: t.get("City", row),
		})
	}

	return branches, nil
}

// parseLeaves converts raw spreadsheet data into LeaveRecords.
// Dates must be formatted YYYY-MM-DD.
func parseLeaves(raw [][]interface{}) ([]model.LeaveRecord, error) {
	t, err := newTable(raw, leaveFields)
	if err != nil {
		return nil, err
	}

	leaves := make([]model.LeaveRecord, 0, len(t.rows))
	for i, row := range t.rows {
		id := t.get("Leave ID", row)
		if id == "" {
			continue
		}
		sheetRow := i + 2

		start, err := model.ParseDate(t.get("Start date", row))
		if err != nil {
			return nil, fmt.Errorf("invalid start date for leave in row %d: %w", sheetRow, err)
		}
		end, err := model.ParseDate(t.get("End date", row))
		if err != nil {
			return nil, fmt.Errorf("invalid end date for leave in row %d: %w", sheetRow, err)
		}

		leave := model.LeaveRecord{
			ID:        id,
			StaffID:   t.get("Staff ID", row),
			BranchID:  t.get("Branch ID", row),
			StartDate: start,
			EndDate:   end,
			LeaveType: t.get("Leave type", row),
			Covered:   parseBool(t.get("Covered", row)),
		}
		if !leave.Range().Valid() {
			return nil, fmt.Errorf("leave in row %d ends before it starts", sheetRow)
		}

		leaves = append(leaves, leave)
	}

	return leaves, nil
}
