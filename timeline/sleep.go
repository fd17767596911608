package timeline

import (
	"time"

	"github.com/awtools/aw-analyzer/aw"
	"github.com/awtools/aw-analyzer/internal/util"
)

// DaySleepWake is one date's inferred minutes-of-day, nil when the date
// saw no qualifying afk run.
type DaySleepWake struct {
	Date        string
	WakeMinute  *int
	SleepMinute *int
}

// SleepWakeResult aggregates sleep/wake inference over a report window
type SleepWakeResult struct {
	AvgWakeMinutes  *float64
	AvgSleepMinutes *float64
	Records         []DaySleepWake
}

// SleepWake infers bed and wake times from long afk runs. An afk span of
// at least minSleep starts sleep on the local date of its start and ends
// it on the local date of its end; when one date sees several runs the
// EARLIEST minute-of-day wins. Records keep one row per input date, in
// input order. Averages are means over dates that have a value; nil when
// none does.
func SleepWake(events []aw.AfkEvent, dates []string, offset time.Duration, minSleep time.Duration) SleepWakeResult {
	if minSleep <= 0 {
		minSleep = DefaultSleepMin
	}
	loc := Location(offset)

	sleepByDate := make(map[string]int)
	wakeByDate := make(map[string]int)

	for _, ev := range events {
		if ev.Status != aw.StatusAfk {
			continue
		}
		d := time.Duration(ev.Duration * float64(time.Second))
		if d < minSleep {
			continue
		}

		start := ev.Timestamp.In(loc)
		end := start.Add(d)

		recordEarliest(sleepByDate, start.Format(dateLayout), start.Hour()*60+start.Minute())
		recordEarliest(wakeByDate, end.Format(dateLayout), end.Hour()*60+end.Minute())
	}

	res := SleepWakeResult{Records: make([]DaySleepWake, 0, len(dates))}
	var wakeSum, sleepSum float64
	var wakeN, sleepN int

	for _, date := range dates {
		rec := DaySleepWake{Date: date}
		if m, ok := wakeByDate[date]; ok {
			rec.WakeMinute = util.Ptr(m)
			wakeSum += float64(m)
			wakeN++
		}
		if m, ok := sleepByDate[date]; ok {
			rec.SleepMinute = util.Ptr(m)
			sleepSum += float64(m)
			sleepN++
		}
		res.Records = append(res.Records, rec)
	}

	if wakeN > 0 {
		res.AvgWakeMinutes = util.Ptr(wakeSum / float64(wakeN))
	}
	if sleepN > 0 {
		res.AvgSleepMinutes = util.Ptr(sleepSum / float64(sleepN))
	}
	return res
}

func recordEarliest(m map[string]int, date string, minute int) {
	if prev, ok := m[date]; !ok || minute < prev {
		m[date] = minute
	}
}
