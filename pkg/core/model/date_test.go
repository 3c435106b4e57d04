package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.January, 10), d)
	assert.Equal(t, "2024-01-10", d.String())

	_, err = ParseDate("10/01/2024")
	assert.Error(t, err)
}

func TestDateOf_DropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	ts := time.Date(2024, time.March, 5, 23, 30, 0, 0, loc)
	assert.True(t, DateOf(ts).Equal(MustParseDate("2024-03-05")))
}

func TestDateRange_Overlaps(t *testing.T) {
	r := func(a, b string) DateRange {
		return DateRange{Start: MustParseDate(a), End: MustParseDate(b)}
	}

	tests := []struct {
		name string
		a, b DateRange
		want bool
	}{
		{"contained", r("2024-01-10", "2024-01-15"), r("2024-01-12", "2024-01-13"), true},
		{"touching end to start", r("2024-01-10", "2024-01-15"), r("2024-01-15", "2024-01-20"), true},
		{"touching start to end", r("2024-01-15", "2024-01-20"), r("2024-01-10", "2024-01-15"), true},
		{"adjacent days", r("2024-01-10", "2024-01-14"), r("2024-01-15", "2024-01-20"), false},
		{"disjoint", r("2024-01-01", "2024-01-02"), r("2024-02-01", "2024-02-02"), false},
		{"single day same", r("2024-01-10", "2024-01-10"), r("2024-01-10", "2024-01-10"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestDateRange_Contains(t *testing.T) {
	rng := DateRange{Start: MustParseDate("2024-01-10"), End: MustParseDate("2024-01-12")}
	assert.True(t, rng.Contains(MustParseDate("2024-01-10")))
	assert.True(t, rng.Contains(MustParseDate("2024-01-12")))
	assert.False(t, rng.Contains(MustParseDate("2024-01-09")))
	assert.False(t, rng.Contains(MustParseDate("2024-01-13")))
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		D Date `json:"d"`
	}

	b, err := json.Marshal(wrapper{D: MustParseDate("2024-01-11")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-01-11"}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-02-29"}`), &w))
	assert.Equal(t, "2024-02-29", w.D.String())

	assert.Error(t, json.Unmarshal([]byte(`{"d":"2024-02-30"}`), &w))

	require.NoError(t, json.Unmarshal([]byte(`{"d":null}`), &w))
	assert.True(t, w.D.IsZero())
}

func TestStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, StatusActive.CanTransitionTo(StatusCancelled))
	assert.True(t, StatusActive.CanTransitionTo(StatusExpired))
	assert.False(t, StatusActive.CanTransitionTo(StatusActive))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusActive))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusExpired))
	assert.False(t, StatusExpired.CanTransitionTo(StatusCancelled))
}
