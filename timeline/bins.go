package timeline

import (
	"time"

	"github.com/awtools/aw-analyzer/aw"
)

// HourBin accumulates one local hour of one local date
type HourBin struct {
	ActiveSeconds float64
	AfkSeconds    float64
}

// DayBins is the 24-hour activity profile of one local date
type DayBins struct {
	Date  string
	Hours [24]HourBin
}

// BinEvents projects each afk span onto the offset timezone and clips it
// into (date, hour) cells. Spans are half-open [start, start+duration),
// so a span ending exactly on an hour boundary contributes nothing to
// that hour. Spans crossing midnight feed both dates.
//
// Output rows follow the dates order; dates outside the list absorb
// nothing; listed dates without events keep 24 zero bins. Events whose
// status is neither afk nor not-afk are dropped.
func BinEvents(events []aw.AfkEvent, dates []string, offset time.Duration) []DayBins {
	out := make([]DayBins, len(dates))
	index := make(map[string]int, len(dates))
	for i, d := range dates {
		out[i].Date = d
		index[d] = i
	}

	loc := Location(offset)

	for _, ev := range events {
		if ev.Status != aw.StatusAfk && ev.Status != aw.StatusNotAfk {
			continue
		}

		start := ev.Timestamp.In(loc)
		end := start.Add(time.Duration(ev.Duration * float64(time.Second)))

		for cur := start; cur.Before(end); {
			// Local hour boundaries are computed from wall-clock fields:
			// Truncate would misalign for offsets like +05:30.
			hourStart := time.Date(cur.Year(), cur.Month(), cur.Day(), cur.Hour(), 0, 0, 0, loc)
			hourEnd := hourStart.Add(time.Hour)

			sliceEnd := end
			if hourEnd.Before(sliceEnd) {
				sliceEnd = hourEnd
			}
			overlap := sliceEnd.Sub(cur).Seconds()

			if i, ok := index[cur.Format(dateLayout)]; ok {
				bin := &out[i].Hours[cur.Hour()]
				if ev.Status == aw.StatusNotAfk {
					bin.ActiveSeconds += overlap
				} else {
					bin.AfkSeconds += overlap
				}
			}

			cur = sliceEnd
		}
	}

	return out
}

// TotalSeconds sums a day's active and afk seconds across all hours
func (d DayBins) TotalSeconds() (active, afk float64) {
	for _, h := range d.Hours {
		active += h.ActiveSeconds
		afk += h.AfkSeconds
	}
	return active, afk
}
