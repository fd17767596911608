// Package notify delivers desktop toast notifications.
//
// Desktop shells out to the platform notifier (osascript on macOS,
// notify-send on Linux) with arguments passed as argv, never through a
// shell. Quiet swallows notifications into the log for --no-notify runs.
package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/awtools/aw-analyzer/errors"
)

// commandTimeout bounds a single notifier invocation. osascript can hang
// when no user session is attached (e.g. over ssh), so the exec is cut
// off rather than stalling the whole tick.
const commandTimeout = 10 * time.Second

// Notifier delivers a short title/body message to the user.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// runnerFunc executes an external command. Swapped out in tests.
type runnerFunc func(ctx context.Context, name string, args ...string) error

// Desktop posts native notifications through the platform's CLI tools.
type Desktop struct {
	goos   string
	runner runnerFunc
	logger *zap.SugaredLogger
}

// NewDesktop creates a notifier for the current platform.
func NewDesktop(logger *zap.SugaredLogger) *Desktop {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Desktop{
		goos:   runtime.GOOS,
		runner: runCommand,
		logger: logger,
	}
}

// Notify posts a toast. Failures are notifier errors so callers can
// distinguish delivery problems from the job errors that precede them.
func (d *Desktop) Notify(ctx context.Context, title, body string) error {
	name, args, err := d.command(title, body)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if err := d.runner(ctx, name, args...); err != nil {
		return errors.WrapNotifier(err, "desktop notification failed")
	}

	d.logger.Debugw("Notification delivered",
		"title", title,
		"notifier", name)
	return nil
}

// command builds the argv for the platform notifier.
func (d *Desktop) command(title, body string) (string, []string, error) {
	switch d.goos {
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s",
			appleScriptQuote(body), appleScriptQuote(title))
		return "osascript", []string{"-e", script}, nil
	case "linux":
		return "notify-send", []string{title, body}, nil
	default:
		return "", nil, errors.NewNotifierError("no desktop notifier for %s", d.goos)
	}
}

// appleScriptQuote wraps s in an AppleScript string literal. The script
// is passed as a single argv element, so only AppleScript's own escapes
// matter here.
func appleScriptQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// runCommand executes the notifier binary and folds its output into the
// error on failure.
func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return errors.Wrapf(err, "%s: %s", name, msg)
		}
		return errors.Wrapf(err, "%s failed", name)
	}
	return nil
}

// Quiet logs notifications instead of showing them.
type Quiet struct {
	logger *zap.SugaredLogger
}

// NewQuiet creates a notifier that only writes to the log.
func NewQuiet(logger *zap.SugaredLogger) *Quiet {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Quiet{logger: logger}
}

// Notify records the notification at info level and always succeeds.
func (q *Quiet) Notify(_ context.Context, title, body string) error {
	q.logger.Infow("Notification suppressed",
		"title", title,
		"body", body)
	return nil
}

var _ Notifier = (*Desktop)(nil)
var _ Notifier = (*Quiet)(nil)
