package directory

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jakechorley/branch-cover/pkg/core/model"
)

type fileStaff struct {
	ID           string `yaml:"id"`
	FirstName    string `yaml:"firstName"`
	LastName     string `yaml:"lastName"`
	Mobile       string `yaml:"mobile,omitempty"`
	HomeBranchID string `yaml:"homeBranchId,omitempty"`
	IsTemp       bool   `yaml:"isTemp,omitempty"`
}

type fileBranch struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	City string `yaml:"city,omitempty"`
}

type fileLeave struct {
	ID        string `yaml:"id"`
	StaffID   string `yaml:"staffId"`
	BranchID  string `yaml:"branchId"`
	StartDate string `yaml:"startDate"`
	EndDate   string `yaml:"endDate"`
	LeaveType string `yaml:"leaveType,omitempty"`
	Covered   bool   `yaml:"covered,omitempty"`
}

type fileContents struct {
	Staff    []fileStaff  `yaml:"staff"`
	Branches []fileBranch `yaml:"branches"`
	Leaves   []fileLeave  `yaml:"leaves"`
}

// LoadFile reads a YAML directory file with top-level staff, branches and leaves lists
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Snapshot from YAML directory contents
func Parse(data []byte) (*Snapshot, error) {
	var contents fileContents
	if err := yaml.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("failed to parse directory file: %w", err)
	}

	seen := make(map[string]bool, len(contents.Staff))
	staff := make([]model.StaffRecord, 0, len(contents.Staff))
	for i, s := range contents.Staff {
		id := strings.TrimSpace(s.ID)
		if id == "" {
			return nil, fmt.Errorf("staff[%d]: id is required", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("staff[%d]: duplicate id %s", i, id)
		}
		seen[id] = true

		staff = append(staff, model.StaffRecord{
			ID:           id,
			FirstName:    s.FirstName,
			LastName:     s.LastName,
			Mobile:       s.Mobile,
			HomeBranchID: strings.TrimSpace(s.HomeBranchID),
			IsTemp:       s.IsTemp,
		})
	}

	branches := make([]model.BranchRecord, 0, len(contents.Branches))
	for i, b := range contents.Branches {
		id := strings.TrimSpace(b.ID)
		if id == "" {
			return nil, fmt.Errorf("branches[%d]: id is required", i)
		}
		branches = append(branches, model.BranchRecord{ID: id, Name: b.Name, City: b.City})
	}

	leaves := make([]model.LeaveRecord, 0, len(contents.Leaves))
	for i, l := range contents.Leaves {
		start, err := model.ParseDate(l.StartDate)
		if err != nil {
			return nil, fmt.Errorf("leaves[%d]: invalid startDate: %w", i, err)
		}
		end, err := model.ParseDate(l.EndDate)
		if err != nil {
			return nil, fmt.Errorf("leaves[%d]: invalid endDate: %w", i, err)
		}
		leave := model.LeaveRecord{
			ID:        strings.TrimSpace(l.ID),
			StaffID:   strings.TrimSpace(l.StaffID),
			BranchID:  strings.TrimSpace(l.BranchID),
			StartDate: start,
			EndDate:   end,
			LeaveType: l.LeaveType,
			Covered:   l.Covered,
		}
		if !leave.Range().Valid() {
			return nil, fmt.Errorf("leaves[%d]: endDate %s is before startDate %s", i, end, start)
		}
		leaves = append(leaves, leave)
	}

	return NewSnapshot(staff, branches, leaves), nil
}
