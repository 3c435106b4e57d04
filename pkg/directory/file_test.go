package directory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/branch-cover/pkg/core/model"
)

const sampleDirectory = `
staff:
  - id: S1
    firstName: Ada
    lastName: Lovelace
    homeBranchId: B1
  - id: S2
    firstName: Grace
    lastName: Hopper
    homeBranchId: B1
    mobile: "07700 900001"
  - id: S3
    firstName: Alan
    lastName: Turing
    homeBranchId: B2
    isTemp: true
branches:
  - id: B1
    name: Central
    city: Leeds
  - id: B2
    name: Northside
leaves:
  - id: L1
    staffId: S2
    branchId: B1
    startDate: "2024-01-10"
    endDate: "2024-01-12"
    leaveType: annual
  - id: L2
    staffId: S3
    branchId: B2
    startDate: "2024-01-12"
    endDate: "2024-01-12"
    leaveType: sick
    covered: true
`

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDirectory), 0644))

	snap, err := LoadFile(path)
	require.NoError(t, err)

	staff, branches, leaves := snap.Counts()
	assert.Equal(t, 3, staff)
	assert.Equal(t, 2, branches)
	assert.Equal(t, 2, leaves)

	s2, err := snap.GetStaff(context.Background(), "S2")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", s2.FullName())
	assert.Equal(t, "07700 900001", s2.Mobile)

	s3, err := snap.GetStaff(context.Background(), "S3")
	require.NoError(t, err)
	assert.True(t, s3.IsTemp)
}

func TestSnapshot_Queries(t *testing.T) {
	ctx := context.Background()
	snap, err := Parse([]byte(sampleDirectory))
	require.NoError(t, err)

	b1, err := snap.GetStaffByBranch(ctx, "B1")
	require.NoError(t, err)
	assert.Len(t, b1, 2)

	none, err := snap.GetStaffByBranch(ctx, "B9")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = snap.GetStaff(ctx, "S9")
	var nfErr *model.NotFoundError
	assert.True(t, errors.As(err, &nfErr))

	onEleventh, err := snap.GetLeavesOverlapping(ctx, model.MustParseDate("2024-01-11"))
	require.NoError(t, err)
	require.Len(t, onEleventh, 1)
	assert.Equal(t, "L1", onEleventh[0].ID)

	// Both endpoints are inclusive
	onTwelfth, err := snap.GetLeavesOverlapping(ctx, model.MustParseDate("2024-01-12"))
	require.NoError(t, err)
	assert.Len(t, onTwelfth, 2)

	after, err := snap.GetLeavesOverlapping(ctx, model.MustParseDate("2024-01-13"))
	require.NoError(t, err)
	assert.Empty(t, after)
}

func TestSnapshot_ListBranchesReturnsCopy(t *testing.T) {
	snap, err := Parse([]byte(sampleDirectory))
	require.NoError(t, err)

	branches, err := snap.ListBranches(context.Background())
	require.NoError(t, err)
	branches[0].Name = "Changed"

	again, err := snap.ListBranches(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Central", again[0].Name)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			content: "staff: [",
			wantErr: "failed to parse directory file",
		},
		{
			name:    "missing staff id",
			content: "staff:\n  - firstName: Ada\n",
			wantErr: "staff[0]: id is required",
		},
		{
			name:    "duplicate staff id",
			content: "staff:\n  - id: S1\n  - id: S1\n",
			wantErr: "duplicate id S1",
		},
		{
			name:    "bad leave date",
			content: "leaves:\n  - id: L1\n    startDate: 10/01/2024\n    endDate: \"2024-01-12\"\n",
			wantErr: "invalid startDate",
		},
		{
			name:    "leave ends before it starts",
			content: "leaves:\n  - id: L1\n    startDate: \"2024-01-12\"\n    endDate: \"2024-01-10\"\n",
			wantErr: "is before startDate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile("/nonexistent/directory.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read directory file")
}
