// Package jobs holds the built-in tick jobs: a morning summary toast, a
// continuous-work break reminder and an evening Slack report.
//
// Jobs that must fire once per day implement the daily-marker pattern
// themselves: the state key daily:<jobID>:<date> holds the date it was
// written for, and ShouldRun declines while the marker carries today's
// date. The engine knows nothing about markers.
package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/awtools/aw-analyzer/ai"
	"github.com/awtools/aw-analyzer/aw"
	"github.com/awtools/aw-analyzer/config"
	"github.com/awtools/aw-analyzer/report"
	"github.com/awtools/aw-analyzer/tick"
)

const dateLayout = "2006-01-02"

// MetricsProvider is the slice of the activity provider the jobs use
type MetricsProvider interface {
	DailyMetrics(ctx context.Context, r aw.TimeRange) (*aw.DailyMetrics, error)
}

var _ MetricsProvider = (*aw.Client)(nil)

// Deps bundles the collaborators the built-in jobs draw from. Nil
// fields degrade: no Analyzer means the deterministic fallback, no
// Webhook means no Slack delivery, no Logger discards logs.
type Deps struct {
	Provider     MetricsProvider
	Analyzer     ai.Analyzer
	Webhook      report.Sender
	Offset       time.Duration
	Jobs         config.JobsConfig
	DashboardURL string
	Hostname     string
	Logger       *zap.SugaredLogger
}

func (d Deps) logger() *zap.SugaredLogger {
	if d.Logger != nil {
		return d.Logger
	}
	return zap.NewNop().Sugar()
}

// Defaults returns the built-in jobs in their fixed evaluation order
func Defaults(deps Deps) []tick.Job {
	return []tick.Job{
		NewDailySummary(deps),
		NewContinuousWork(deps),
		NewDailyReport(deps),
	}
}
