package aw

import (
	"time"
)

const dateLayout = "2006-01-02"

// Status values reported by the afk watcher. Anything else is ignored.
const (
	StatusAfk    = "afk"
	StatusNotAfk = "not-afk"
)

// Bucket describes one event bucket on the ActivityWatch server.
type Bucket struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Client   string `json:"client"`
	Hostname string `json:"hostname"`
}

// Event is a raw server event: a timestamped span with free-form data.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Duration  float64        `json:"duration"` // seconds
	Data      map[string]any `json:"data"`
}

// AfkEvent is an Event narrowed to the afk watcher's schema. Events with
// a status other than "afk" or "not-afk" are carried through here and
// ignored downstream.
type AfkEvent struct {
	Timestamp time.Time
	Duration  float64 // seconds
	Status    string
}

// AppTotal is one row of the per-application ranking.
type AppTotal struct {
	App     string
	Seconds float64
}

// DailyMetrics summarizes window activity over a query range.
//
// AfkSeconds and NightWorkSeconds are not produced by the work-metrics
// query and are always 0 here; callers needing them query AfkMetrics or
// compute from hourly bins.
type DailyMetrics struct {
	WorkSeconds          float64
	AfkSeconds           float64
	NightWorkSeconds     float64
	MaxContinuousSeconds float64
	TopApps              []AppTotal
}

// AfkMetrics totals afk and not-afk time over a query range.
type AfkMetrics struct {
	AfkSeconds    float64
	NotAfkSeconds float64
}

// ProjectTotal is one row of the per-project editor ranking.
type ProjectTotal struct {
	Project string
	Seconds float64
}

// TimeRange is a day-granular query window. Start and End are instants
// whose calendar dates (in their own locations) bound the window; the
// End date is included. All provider queries derive their period from
// one of these.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Day returns the range covering the single calendar day of t.
func Day(t time.Time) TimeRange {
	return TimeRange{Start: t, End: t}
}

// Period renders the range in the server's period syntax,
// "YYYY-MM-DD/YYYY-MM-DD". The server treats the second date as
// exclusive, so one day is added to End's calendar date.
func (r TimeRange) Period() string {
	return r.Start.Format(dateLayout) + "/" + r.End.AddDate(0, 0, 1).Format(dateLayout)
}
