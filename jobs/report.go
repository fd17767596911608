package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/awtools/aw-analyzer/ai"
	"github.com/awtools/aw-analyzer/aw"
	"github.com/awtools/aw-analyzer/config"
	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/internal/util"
	"github.com/awtools/aw-analyzer/report"
	"github.com/awtools/aw-analyzer/slack"
	"github.com/awtools/aw-analyzer/tick"
	"github.com/awtools/aw-analyzer/timeline"
)

// DailyReport posts yesterday's rich report to Slack once per evening
type DailyReport struct {
	provider     MetricsProvider
	analyzer     ai.Analyzer
	webhook      report.Sender
	offset       time.Duration
	cfg          config.DailyReportConfig
	dashboardURL string
	hostname     string
	logger       *zap.SugaredLogger
}

// NewDailyReport builds the evening report job from deps
func NewDailyReport(deps Deps) *DailyReport {
	return &DailyReport{
		provider:     deps.Provider,
		analyzer:     deps.Analyzer,
		webhook:      deps.Webhook,
		offset:       deps.Offset,
		cfg:          deps.Jobs.DailyReport,
		dashboardURL: deps.DashboardURL,
		hostname:     deps.Hostname,
		logger:       deps.logger(),
	}
}

var _ tick.Job = (*DailyReport)(nil)

func (j *DailyReport) ID() string { return "daily-report" }

// ShouldRun gates on the target time and today's daily marker
func (j *DailyReport) ShouldRun(tc *tick.Context) (bool, error) {
	if !pastTarget(tc.Now, j.offset, j.cfg.TargetHour, j.cfg.TargetMinute) {
		return false, nil
	}
	set, err := markerSet(tc.State, j.ID(), timeline.LocalDate(tc.Now, j.offset))
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Run composes yesterday's report, attempts Slack delivery and writes
// the daily marker regardless of the delivery outcome. Only provider
// and state failures abort; a chat failure is logged and the toast
// still confirms generation.
func (j *DailyReport) Run(tc *tick.Context) (tick.Result, error) {
	date := timeline.DateKeys(tc.Now, 1, j.offset)[0]
	day, err := time.ParseInLocation(dateLayout, date, timeline.Location(j.offset))
	if err != nil {
		return tick.Result{}, errors.Wrapf(err, "bad date key %q", date)
	}

	metrics, err := j.provider.DailyMetrics(tc.Ctx, aw.Day(day))
	if err != nil {
		return tick.Result{}, errors.Wrapf(err, "daily metrics for %s", date)
	}

	msg := report.Daily(report.DailyData{
		Date:         date,
		Metrics:      *metrics,
		Analysis:     j.analyze(tc.Ctx, ai.DailyInput{Date: date, Metrics: *metrics}),
		DashboardURL: j.dashboardURL,
		Hostname:     j.hostname,
	})
	delivered := j.deliver(tc.Ctx, date, msg)

	if err := writeMarker(tc.State, j.ID(), timeline.LocalDate(tc.Now, j.offset)); err != nil {
		return tick.Result{}, errors.WrapState(err, "daily marker write failed")
	}

	body := fmt.Sprintf("%s: %s active", date, util.FormatSeconds(metrics.WorkSeconds))
	if !delivered && j.webhook != nil {
		body += " (Slack delivery failed)"
	}
	return tick.Notify("Daily Report", body), nil
}

// analyze tries the configured analyzer and falls back to the
// deterministic one on any error
func (j *DailyReport) analyze(ctx context.Context, in ai.DailyInput) *ai.DailyAnalysis {
	if j.analyzer != nil {
		analysis, err := j.analyzer.AnalyzeDaily(ctx, in)
		if err == nil {
			return analysis
		}
		j.logger.Warnw("Daily analyzer failed, using fallback analysis", "error", err)
	}
	analysis, err := ai.NewFallback().AnalyzeDaily(ctx, in)
	if err != nil {
		j.logger.Errorw("Fallback analysis failed", "error", err)
		return nil
	}
	return analysis
}

// deliver validates and posts the message, reporting whether it reached
// Slack. A nil webhook skips delivery silently.
func (j *DailyReport) deliver(ctx context.Context, date string, msg slack.Message) bool {
	if j.webhook == nil {
		j.logger.Debugw("Slack webhook not configured, skipping daily report delivery")
		return false
	}
	if err := slack.Validate(msg.Blocks); err != nil {
		j.logger.Errorw("Daily report failed validation", "date", date, "error", err)
		return false
	}
	if err := j.webhook.Send(ctx, msg); err != nil {
		j.logger.Errorw("Daily report delivery failed", "date", date, "error", err)
		return false
	}
	j.logger.Infow("Daily report delivered", "date", date)
	return true
}
