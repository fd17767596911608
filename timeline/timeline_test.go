package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awtools/aw-analyzer/errors"
)

func TestParseUTCOffset(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"+09:00", 9 * time.Hour, false},
		{"-05:30", -(5*time.Hour + 30*time.Minute), false},
		{"+00:00", 0, false},
		{"Z", 0, false},
		{"+0900", 0, true},
		{"UTC+9", 0, true},
		{"09:00", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseUTCOffset(tt.in)
		if tt.wantErr {
			require.Error(t, err, "ParseUTCOffset(%q)", tt.in)
			assert.True(t, errors.IsConfigError(err))
			continue
		}
		require.NoError(t, err, "ParseUTCOffset(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseUTCOffset(%q)", tt.in)
	}
}

func TestOffsetString(t *testing.T) {
	assert.Equal(t, "+09:00", OffsetString(9*time.Hour))
	assert.Equal(t, "-05:30", OffsetString(-(5*time.Hour+30*time.Minute)))
	assert.Equal(t, "+00:00", OffsetString(0))
}

func TestDateKeys(t *testing.T) {
	offset := 9 * time.Hour
	// 2026-01-15 19:00 JST
	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	keys := DateKeys(now, 7, offset)
	assert.Equal(t, []string{
		"2026-01-08", "2026-01-09", "2026-01-10", "2026-01-11",
		"2026-01-12", "2026-01-13", "2026-01-14",
	}, keys)
}

func TestDateKeys_OffsetRollsDate(t *testing.T) {
	offset := 9 * time.Hour
	// 16:00 UTC is already 01:00 on the 16th in JST, so yesterday is the 15th
	now := time.Date(2026, 1, 15, 16, 0, 0, 0, time.UTC)

	keys := DateKeys(now, 1, offset)
	assert.Equal(t, []string{"2026-01-15"}, keys)
}

func TestDateKeys_Clamping(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	assert.Len(t, DateKeys(now, 0, 0), 1)
	assert.Len(t, DateKeys(now, -3, 0), 1)
	assert.Len(t, DateKeys(now, 40, 0), 31)

	// Always ends yesterday
	keys := DateKeys(now, 3, 0)
	assert.Equal(t, "2026-01-14", keys[len(keys)-1])
}

func TestLocalDate(t *testing.T) {
	ts := time.Date(2026, 1, 15, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-01-16", LocalDate(ts, 9*time.Hour))
	assert.Equal(t, "2026-01-15", LocalDate(ts, 0))
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2026, 1, 15, 23, 30, 0, 0, time.UTC)

	start := StartOfDay(ts, 9*time.Hour)
	assert.Equal(t, "2026-01-16", start.Format("2006-01-02"))
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 0, start.Minute())

	// Midnight JST is 15:00 UTC the previous day
	assert.Equal(t, time.Date(2026, 1, 15, 15, 0, 0, 0, time.UTC).Unix(), start.Unix())
}

func TestWeekSummary(t *testing.T) {
	s := WeekSummary([]float64{7200, 0, 5400, 900}, 3600)

	assert.Equal(t, 4, s.Days)
	assert.Equal(t, 2, s.DaysWithData)
	assert.InDelta(t, 13500.0, s.TotalNotAfkSeconds, 0.001)
	// Average over qualifying days only: (7200+5400)/2
	assert.InDelta(t, 6300.0, s.AvgNotAfkSecondsPerDay, 0.001)
}

func TestWeekSummary_NoQualifyingDays(t *testing.T) {
	s := WeekSummary([]float64{100, 200}, 3600)

	assert.Equal(t, 2, s.Days)
	assert.Equal(t, 0, s.DaysWithData)
	assert.InDelta(t, 300.0, s.TotalNotAfkSeconds, 0.001)
	assert.Zero(t, s.AvgNotAfkSecondsPerDay)
}

func TestWeekSummary_Empty(t *testing.T) {
	s := WeekSummary(nil, 3600)
	assert.Zero(t, s.Days)
	assert.Zero(t, s.DaysWithData)
	assert.Zero(t, s.AvgNotAfkSecondsPerDay)
}
