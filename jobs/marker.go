package jobs

import (
	"fmt"
	"time"

	"github.com/awtools/aw-analyzer/tick"
	"github.com/awtools/aw-analyzer/timeline"
)

// markerKey is the state key recording that a daily job emitted on date
func markerKey(jobID, date string) string {
	return fmt.Sprintf("daily:%s:%s", jobID, date)
}

// markerSet reports whether jobID already emitted on date. Only a value
// equal to the date itself counts; anything else reads as unset.
func markerSet(st tick.StateStore, jobID, date string) (bool, error) {
	v, ok, err := st.Get(markerKey(jobID, date))
	if err != nil || !ok {
		return false, err
	}
	s, isString := v.(string)
	return isString && s == date, nil
}

// writeMarker records that jobID emitted on date
func writeMarker(st tick.StateStore, jobID, date string) error {
	return st.Set(markerKey(jobID, date), date)
}

// pastTarget reports whether now, seen in the offset timezone, has
// reached hour:minute of its own calendar day
func pastTarget(now time.Time, offset time.Duration, hour, minute int) bool {
	local := now.In(timeline.Location(offset))
	target := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, local.Location())
	return !local.Before(target)
}
