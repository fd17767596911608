package ai

import (
	"context"
	"fmt"

	"github.com/awtools/aw-analyzer/internal/util"
)

const (
	// breakStretchSeconds is the continuous-work length past which the
	// daily tip suggests taking breaks (2 hours).
	breakStretchSeconds = 2 * 60 * 60

	// restWorkSeconds is the daily total past which the tip suggests
	// resting (10 hours).
	restWorkSeconds = 10 * 60 * 60

	// heavyWeekSecondsPerDay marks a week as heavy when the average
	// active day runs past 8 hours.
	heavyWeekSecondsPerDay = 8 * 60 * 60
)

// Fallback is a deterministic analyzer that needs no network or API key.
// The same input always produces the same output, which also makes it
// the reference shape for tests.
type Fallback struct{}

// NewFallback creates the deterministic analyzer
func NewFallback() *Fallback {
	return &Fallback{}
}

// AnalyzeDaily composes a daily reading from the metrics alone
func (f *Fallback) AnalyzeDaily(_ context.Context, in DailyInput) (*DailyAnalysis, error) {
	work := util.FormatSeconds(in.Metrics.WorkSeconds)
	stretch := util.FormatSeconds(in.Metrics.MaxContinuousSeconds)

	topApp := ""
	if len(in.Metrics.TopApps) > 0 {
		topApp = in.Metrics.TopApps[0].App
	}

	summary := fmt.Sprintf("You were active for %s on %s.", work, in.Date)
	if topApp != "" {
		summary = fmt.Sprintf("You were active for %s on %s, mostly in %s.", work, in.Date, topApp)
	}

	insights := []string{
		fmt.Sprintf("Your longest continuous stretch was %s.", stretch),
	}
	if topApp != "" && in.Metrics.WorkSeconds > 0 {
		share := in.Metrics.TopApps[0].Seconds / in.Metrics.WorkSeconds * 100
		insights = append(insights, fmt.Sprintf("%s took %.0f%% of your active time.", topApp, share))
	}

	var tip string
	switch {
	case in.Metrics.MaxContinuousSeconds >= breakStretchSeconds:
		tip = fmt.Sprintf("Your longest stretch ran %s without a pause. Try stepping away for a few minutes every hour.", stretch)
	case in.Metrics.WorkSeconds >= restWorkSeconds:
		tip = fmt.Sprintf("%s of activity makes a long day. Plan something restful for tomorrow evening.", work)
	default:
		tip = "Solid, balanced day. Keep the rhythm going tomorrow."
	}

	return &DailyAnalysis{Summary: summary, Insights: insights, Tip: tip}, nil
}

// AnalyzeWeekly composes a weekly reading from the aggregates alone
func (f *Fallback) AnalyzeWeekly(_ context.Context, in WeeklyInput) (*WeeklyAnalysis, error) {
	title := "Weekly Activity Report"
	if len(in.Dates) > 0 {
		title = fmt.Sprintf("Week of %s to %s", in.Dates[0], in.Dates[len(in.Dates)-1])
	}

	avg := util.FormatSeconds(in.Summary.AvgNotAfkSecondsPerDay)
	total := util.FormatSeconds(in.Summary.TotalNotAfkSeconds)
	summary := fmt.Sprintf("You were active on %d of %d days, averaging %s per active day (%s total).",
		in.Summary.DaysWithData, in.Summary.Days, avg, total)

	insights := []string{
		fmt.Sprintf("Total active time this week: %s.", total),
	}
	if len(in.Projects) > 0 {
		insights = append(insights, fmt.Sprintf("Most editor time went to %s (%s).",
			in.Projects[0].Project, util.FormatSeconds(in.Projects[0].Seconds)))
	}
	if in.Sleep.AvgWakeMinutes != nil && in.Sleep.AvgSleepMinutes != nil {
		insights = append(insights, fmt.Sprintf("You woke around %s and went quiet around %s on average.",
			util.FormatClockMinute(int(*in.Sleep.AvgWakeMinutes)),
			util.FormatClockMinute(int(*in.Sleep.AvgSleepMinutes))))
	}

	var next string
	switch {
	case in.Summary.DaysWithData == 0:
		next = "No tracked activity this week. Check that ActivityWatch is running."
	case in.Summary.AvgNotAfkSecondsPerDay >= heavyWeekSecondsPerDay:
		next = "That was a heavy week. Block out one lighter day next week."
	default:
		next = "Pick one project to push forward next week."
	}

	return &WeeklyAnalysis{Title: title, Summary: summary, Insights: insights, NextAction: next}, nil
}

var _ Analyzer = (*Fallback)(nil)
