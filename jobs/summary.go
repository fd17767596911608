package jobs

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/awtools/aw-analyzer/aw"
	"github.com/awtools/aw-analyzer/config"
	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/internal/util"
	"github.com/awtools/aw-analyzer/tick"
	"github.com/awtools/aw-analyzer/timeline"
)

// DailySummary toasts a recap of yesterday's activity once per morning
type DailySummary struct {
	provider MetricsProvider
	offset   time.Duration
	cfg      config.DailySummaryConfig
	logger   *zap.SugaredLogger
}

// NewDailySummary builds the morning summary job from deps
func NewDailySummary(deps Deps) *DailySummary {
	return &DailySummary{
		provider: deps.Provider,
		offset:   deps.Offset,
		cfg:      deps.Jobs.DailySummary,
		logger:   deps.logger(),
	}
}

var _ tick.Job = (*DailySummary)(nil)

func (j *DailySummary) ID() string { return "daily-summary" }

// ShouldRun gates on the target time and today's daily marker
func (j *DailySummary) ShouldRun(tc *tick.Context) (bool, error) {
	if !pastTarget(tc.Now, j.offset, j.cfg.TargetHour, j.cfg.TargetMinute) {
		return false, nil
	}
	set, err := markerSet(tc.State, j.ID(), timeline.LocalDate(tc.Now, j.offset))
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Run fetches yesterday's metrics, writes the daily marker and returns
// the toast. A provider failure leaves the marker unwritten, so the
// next tick retries.
func (j *DailySummary) Run(tc *tick.Context) (tick.Result, error) {
	date := timeline.DateKeys(tc.Now, 1, j.offset)[0]
	day, err := time.ParseInLocation(dateLayout, date, timeline.Location(j.offset))
	if err != nil {
		return tick.Result{}, errors.Wrapf(err, "bad date key %q", date)
	}

	metrics, err := j.provider.DailyMetrics(tc.Ctx, aw.Day(day))
	if err != nil {
		return tick.Result{}, errors.Wrapf(err, "daily metrics for %s", date)
	}

	if err := writeMarker(tc.State, j.ID(), timeline.LocalDate(tc.Now, j.offset)); err != nil {
		return tick.Result{}, errors.WrapState(err, "daily marker write failed")
	}

	j.logger.Debugw("Daily summary composed", "date", date, "work_seconds", metrics.WorkSeconds)
	return tick.Notify("Daily Summary", summaryBody(date, *metrics)), nil
}

// summaryBody renders the one-line toast body: work total, top app and
// the longest unbroken stretch
func summaryBody(date string, m aw.DailyMetrics) string {
	parts := []string{fmt.Sprintf("%s work on %s", util.FormatSeconds(m.WorkSeconds), date)}
	if len(m.TopApps) > 0 {
		parts = append(parts, "top "+m.TopApps[0].App)
	}
	parts = append(parts, "longest stretch "+util.FormatSeconds(m.MaxContinuousSeconds))
	return strings.Join(parts, " · ")
}
