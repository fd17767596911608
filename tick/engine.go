package tick

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/internal/sysinfo"
	"github.com/awtools/aw-analyzer/logger"
)

// TickResult summarizes one engine pass.
type TickResult struct {
	RunID    string
	Executed []string
	Notified []string
	Skipped  []string
	Duration time.Duration
}

// Engine runs jobs sequentially in declaration order.
type Engine struct {
	logger *zap.SugaredLogger
}

// NewEngine creates a tick engine.
func NewEngine(log *zap.SugaredLogger) *Engine {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Engine{logger: log}
}

// Run evaluates every job once. A gate failure skips that job and the
// loop continues; a run failure or a notifier failure aborts the tick
// with the partial TickResult alongside the error. Decisions depend
// only on tc.Now and the state store, so the same inputs replay to the
// same outcome.
func (e *Engine) Run(tc *Context, jobs []Job) (*TickResult, error) {
	start := time.Now()
	if tc.RunID == "" {
		tc.RunID = uuid.New().String()
	}
	runLog := logger.ChildLogger(e.logger, logger.FieldRunID, shortID(tc.RunID))

	res := &TickResult{RunID: tc.RunID}

	runLog.Debugw("Tick started",
		"jobs", len(jobs),
		"now", tc.Now.Format(time.RFC3339))

	for _, job := range jobs {
		ok, err := job.ShouldRun(tc)
		if err != nil {
			runLog.Warnw("Job gate failed, skipping",
				logger.FieldJobID, job.ID(),
				logger.FieldError, err)
			res.Skipped = append(res.Skipped, job.ID())
			continue
		}
		if !ok {
			runLog.Debugw("Job skipped",
				logger.FieldJobID, job.ID(),
				logger.FieldReason, "shouldRun=false")
			res.Skipped = append(res.Skipped, job.ID())
			continue
		}

		result, err := job.Run(tc)
		if err != nil {
			res.Duration = time.Since(start)
			runLog.Errorw("Tick FAILED",
				logger.FieldJobID, job.ID(),
				logger.FieldDurationMS, res.Duration.Milliseconds(),
				logger.FieldError, err)
			return res, errors.Wrapf(err, "job %s failed", job.ID())
		}
		res.Executed = append(res.Executed, job.ID())

		if !result.Notify {
			runLog.Infow("Job OK, nothing to notify",
				logger.FieldJobID, job.ID(),
				logger.FieldReason, result.Reason)
			continue
		}

		if e.suppressed(tc, runLog, job.ID(), result) {
			continue
		}

		if err := tc.Notifier.Notify(tc.Ctx, result.Title, result.Body); err != nil {
			res.Duration = time.Since(start)
			runLog.Errorw("Tick FAILED",
				logger.FieldJobID, job.ID(),
				logger.FieldDurationMS, res.Duration.Milliseconds(),
				logger.FieldError, err)
			return res, errors.Wrapf(err, "notifier failed for job %s", job.ID())
		}
		res.Notified = append(res.Notified, job.ID())
		runLog.Infow("Job OK, notified",
			logger.FieldJobID, job.ID(),
			"title", result.Title)

		// Stamp after a delivered notification so a suppressed or failed
		// one never pushes the window forward.
		if result.CooldownKey != "" {
			if err := tc.State.SetTime(result.CooldownKey, tc.Now); err != nil {
				runLog.Warnw("Cooldown stamp write failed",
					logger.FieldJobID, job.ID(),
					logger.FieldStateKey, result.CooldownKey,
					logger.FieldError, err)
			}
		}
	}

	res.Duration = time.Since(start)

	mem := sysinfo.Memory()
	runLog.Infow("Tick OK",
		"executed", len(res.Executed),
		"notified", len(res.Notified),
		"skipped", len(res.Skipped),
		logger.FieldDurationMS, res.Duration.Milliseconds(),
		"rss_mb", fmt.Sprintf("%.1f", mem.ProcessRSSMB),
		"sys_mem", fmt.Sprintf("%.1f/%.1fGB (%.0f%%)",
			mem.SystemUsedGB, mem.SystemTotalGB, mem.SystemUsedPct))

	return res, nil
}

// suppressed applies the post-run cooldown gate. The inequality is
// strict: a stamp exactly cooldown old notifies again. Read failures
// fail open so a broken state file degrades to extra notifications,
// never to silence.
func (e *Engine) suppressed(tc *Context, runLog *zap.SugaredLogger, jobID string, r Result) bool {
	if r.CooldownKey == "" || r.Cooldown <= 0 {
		return false
	}

	last, ok, err := tc.State.GetTime(r.CooldownKey)
	if err != nil {
		runLog.Warnw("Cooldown read failed, allowing notification",
			logger.FieldJobID, jobID,
			logger.FieldStateKey, r.CooldownKey,
			logger.FieldError, err)
		return false
	}
	if !ok {
		return false
	}

	elapsed := tc.Now.Sub(last)
	if elapsed < r.Cooldown {
		runLog.Infow("Notification suppressed by cooldown",
			logger.FieldJobID, jobID,
			logger.FieldStateKey, r.CooldownKey,
			"since_last", elapsed.Round(time.Second),
			"cooldown", r.Cooldown)
		return true
	}
	return false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
