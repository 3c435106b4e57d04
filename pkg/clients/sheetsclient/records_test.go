package sheetsclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staffSheet() [][]interface{} {
	return [][]interface{}{
		{"Staff ID", "First name", "Last name", "Mobile", "Home branch", "Temp"},
		{"S1", "Ada", "Lovelace", "07700 900001", "B1", "FALSE"},
		{"", "", "", "", "", ""},
		{"S2", "Grace", "Hopper", "", "B2", "TRUE"},
		// Trailing empty cells are omitted by the API
		{"S3", "Alan"},
	}
}

func TestParseStaff(t *testing.T) {
	staff, err := parseStaff(staffSheet())
	require.NoError(t, err)
	require.Len(t, staff, 3)

	assert.Equal(t, "S1", staff[0].ID)
	assert.Equal(t, "Ada Lovelace", staff[0].FullName())
	assert.Equal(t, "07700 900001", staff[0].Mobile)
	assert.Equal(t, "B1", staff[0].HomeBranchID)
	assert.False(t, staff[0].IsTemp)

	assert.True(t, staff[1].IsTemp)

	assert.Equal(t, "Alan", staff[2].FirstName)
	assert.Empty(t, staff[2].HomeBranchID)
}

func TestParseStaff_ColumnOrderIndependent(t *testing.T) {
	raw := [][]interface{}{
		{"Temp", "Home branch", "Mobile", "Last name", "First name", "Staff ID"},
		{"yes", "B3", "", "Hopper", "Grace", "S2"},
	}

	staff, err := parseStaff(raw)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, "S2", staff[0].ID)
	assert.Equal(t, "B3", staff[0].HomeBranchID)
	assert.True(t, staff[0].IsTemp)
}

func TestParseStaff_Errors(t *testing.T) {
	_, err := parseStaff(nil)
	assert.EqualError(t, err, "no header row found")

	_, err = parseStaff([][]interface{}{{"Staff ID", "First name"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required field in header: Last name")

	raw := staffSheet()
	raw = append(raw, []interface{}{"S1", "Ada", "Again", "", "B2", ""})
	_, err = parseStaff(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate staff id S1 in rows 2 and 6")
}

func TestParseBranches(t *testing.T) {
	raw := [][]interface{}{
		{"Branch ID", "Name", "City"},
		{"B1", "Central", "Leeds"},
		{"", "", ""},
		{"B2", " Northside ", "Bradford"},
	}

	branches, err := parseBranches(raw)
	require.NoError(t, err)
	require.Len(t, branches, 2)
	assert.Equal(t, "Central", branches[0].Name)
	assert.Equal(t, "Northside", branches[1].Name)
}

func TestParseLeaves(t *testing.T) {
	raw := [][]interface{}{
		{"Leave ID", "Staff ID", "Branch ID", "Start date", "End date", "Leave type", "Covered"},
		{"L1", "S1", "B1", "2024-01-10", "2024-01-12", "annual", ""},
		{"L2", "S2", "B2", "2024-01-11", "2024-01-11", "sick", "TRUE"},
	}

	leaves, err := parseLeaves(raw)
	require.NoError(t, err)
	require.Len(t, leaves, 2)

	assert.Equal(t, "2024-01-10", leaves[0].StartDate.String())
	assert.Equal(t, "2024-01-12", leaves[0].EndDate.String())
	assert.False(t, leaves[0].Covered)
	assert.True(t, leaves[1].Covered)
}

func TestParseLeaves_Errors(t *testing.T) {
	header := []interface{}{"Leave ID", "Staff ID", "Branch ID", "Start date", "End date", "Leave type", "Covered"}

	_, err := parseLeaves([][]interface{}{header, {"L1", "S1", "B1", "10/01/2024", "2024-01-12", "", ""}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid start date for leave in row 2")

	_, err = parseLeaves([][]interface{}{header, {"L1", "S1", "B1", "2024-01-12", "2024-01-10", "", ""}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ends before it starts")
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"TRUE", "true", "Yes", "y", "x", "1"} {
		assert.True(t, parseBool(s), s)
	}
	for _, s := range []string{"", "FALSE", "no", "0", "maybe"} {
		assert.False(t, parseBool(s), s)
	}
}
