// Package timeline holds the pure time arithmetic behind reports: fixed
// UTC-offset day boundaries, hourly binning of afk spans, sleep/wake
// inference from long afk runs, and the week roll-up.
//
// Nothing here does I/O and nothing reads the process timezone. Every
// function takes the offset as a parameter so day boundaries are
// reproducible no matter where the binary runs.
package timeline

import (
	"fmt"
	"time"

	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/internal/util"
)

const dateLayout = "2006-01-02"

// DefaultSleepMin is the smallest afk run treated as sleep
const DefaultSleepMin = 3 * time.Hour

// DefaultMinActiveSeconds is the threshold for a day to count as having data
const DefaultMinActiveSeconds = 3600.0

// ParseUTCOffset parses the ±HH:MM offset form, e.g. "+09:00" or
// "-05:30". The literal "Z" reads as UTC.
func ParseUTCOffset(s string) (time.Duration, error) {
	t, err := time.Parse("Z07:00", s)
	if err != nil {
		return 0, errors.NewConfigError("utc offset must look like \"+09:00\", got %q", s)
	}
	_, secs := t.Zone()
	return time.Duration(secs) * time.Second, nil
}

// OffsetString renders an offset back in ±HH:MM form
func OffsetString(offset time.Duration) string {
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	h := offset / time.Hour
	m := offset % time.Hour / time.Minute
	return fmt.Sprintf("%s%02d:%02d", sign, h, m)
}

// Location returns a fixed time.Location for the offset
func Location(offset time.Duration) *time.Location {
	return time.FixedZone("UTC"+OffsetString(offset), int(offset/time.Second))
}

// DateKeys returns the `days` calendar dates ending YESTERDAY in the
// offset timezone, oldest first; today is never included. days is
// clamped to 1..31.
func DateKeys(now time.Time, days int, offset time.Duration) []string {
	days = util.ClampInt(days, 1, 31)

	local := now.In(Location(offset))
	yesterday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location()).
		AddDate(0, 0, -1)

	keys := make([]string, days)
	for i := range keys {
		keys[i] = yesterday.AddDate(0, 0, i+1-days).Format(dateLayout)
	}
	return keys
}

// LocalDate returns t's calendar date in the offset timezone
func LocalDate(t time.Time, offset time.Duration) string {
	return t.In(Location(offset)).Format(dateLayout)
}

// StartOfDay returns midnight of t's calendar date in the offset timezone
func StartOfDay(t time.Time, offset time.Duration) time.Time {
	local := t.In(Location(offset))
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}
