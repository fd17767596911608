package jobs

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/awtools/aw-analyzer/aw"
	"github.com/awtools/aw-analyzer/config"
	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/internal/util"
	"github.com/awtools/aw-analyzer/tick"
	"github.com/awtools/aw-analyzer/timeline"
)

// cooldownKey guards the break reminder between ticks
const cooldownKey = "cooldown:continuous-work-alert"

// ContinuousWork reminds the user to break after a long unbroken stretch
type ContinuousWork struct {
	provider MetricsProvider
	offset   time.Duration
	cfg      config.ContinuousWorkConfig
	logger   *zap.SugaredLogger
}

// NewContinuousWork builds the break reminder. Threshold and cooldown
// fall back to an hour when unset.
func NewContinuousWork(deps Deps) *ContinuousWork {
	cfg := deps.Jobs.ContinuousWork
	if cfg.ThresholdMinutes <= 0 {
		cfg.ThresholdMinutes = 60
	}
	if cfg.CooldownMinutes <= 0 {
		cfg.CooldownMinutes = 60
	}
	return &ContinuousWork{
		provider: deps.Provider,
		offset:   deps.Offset,
		cfg:      cfg,
		logger:   deps.logger(),
	}
}

var _ tick.Job = (*ContinuousWork)(nil)

func (j *ContinuousWork) ID() string { return "continuous-work-alert" }

// ShouldRun always consents; the threshold check needs fresh metrics
func (j *ContinuousWork) ShouldRun(*tick.Context) (bool, error) { return true, nil }

// Run measures today's longest unbroken stretch and notifies once it
// passes the threshold. The engine's cooldown gate spaces out repeats.
func (j *ContinuousWork) Run(tc *tick.Context) (tick.Result, error) {
	r := aw.TimeRange{
		Start: timeline.StartOfDay(tc.Now, j.offset),
		End:   tc.Now.In(timeline.Location(j.offset)),
	}
	metrics, err := j.provider.DailyMetrics(tc.Ctx, r)
	if err != nil {
		return tick.Result{}, errors.Wrap(err, "daily metrics for today")
	}

	thresholdSeconds := float64(j.cfg.ThresholdMinutes) * 60
	if metrics.MaxContinuousSeconds < thresholdSeconds {
		return tick.NoNotify(fmt.Sprintf("longest stretch %s below %s",
			util.FormatSeconds(metrics.MaxContinuousSeconds), util.FormatSeconds(thresholdSeconds))), nil
	}

	j.logger.Debugw("Continuous work past threshold",
		"stretch_seconds", metrics.MaxContinuousSeconds, "threshold_minutes", j.cfg.ThresholdMinutes)

	body := fmt.Sprintf("You have been working for %s", util.FormatSeconds(metrics.MaxContinuousSeconds))
	cooldown := time.Duration(j.cfg.CooldownMinutes) * time.Minute
	return tick.NotifyWithCooldown("Time for a break", body, cooldownKey, cooldown), nil
}
