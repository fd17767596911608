// Package tick evaluates the registered jobs once and exits. The
// process is started by launchd (or cron) on an interval; everything
// that must survive between runs lives in the state store.
package tick

import (
	"context"
	"time"

	"github.com/awtools/aw-analyzer/notify"
	"github.com/awtools/aw-analyzer/state"
)

// StateStore is the slice of the state store jobs and the engine touch.
type StateStore interface {
	Get(key string) (any, bool, error)
	Set(key string, value any) error
	GetTime(key string) (time.Time, bool, error)
	SetTime(key string, t time.Time) error
}

var _ StateStore = (*state.Store)(nil)

// Context carries one tick's collaborators to every job. Now is read
// once when the tick starts and never re-read, so all jobs in a tick
// agree on the time.
type Context struct {
	Ctx      context.Context
	Now      time.Time
	State    StateStore
	Notifier notify.Notifier
	RunID    string
}

// Result is a job outcome: either nothing to show (Reason says why) or
// a notification, optionally guarded by a cooldown key.
type Result struct {
	Notify      bool
	Title       string
	Body        string
	CooldownKey string        // state key that stamps and suppresses this notification
	Cooldown    time.Duration // minimum gap between deliveries, 0 = none
	Reason      string        // set when Notify is false
}

// NoNotify reports a successful run with nothing to show.
func NoNotify(reason string) Result {
	return Result{Reason: reason}
}

// Notify reports a notification without a cooldown.
func Notify(title, body string) Result {
	return Result{Notify: true, Title: title, Body: body}
}

// NotifyWithCooldown reports a notification suppressed while a previous
// delivery under the same key is younger than d.
func NotifyWithCooldown(title, body, key string, d time.Duration) Result {
	return Result{Notify: true, Title: title, Body: body, CooldownKey: key, Cooldown: d}
}

// Job is one schedulable unit. ShouldRun is the cheap gate; Run does
// the work and decides whether to notify.
type Job interface {
	ID() string
	ShouldRun(tc *Context) (bool, error)
	Run(tc *Context) (Result, error)
}
