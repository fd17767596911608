// Package install manages the launchd agent that runs `aw-analyzer
// tick` on an interval. launchd is macOS only; every other platform
// gets a config error pointing at cron.
package install

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/awtools/aw-analyzer/config"
	"github.com/awtools/aw-analyzer/errors"
)

// launchctl can block on a wedged agent
const commandTimeout = 30 * time.Second

type runnerFunc func(ctx context.Context, name string, args ...string) error

// Installer writes, loads, unloads and removes the launch agent
type Installer struct {
	goos   string
	runner runnerFunc
	logger *zap.SugaredLogger
}

// New creates an installer for the current platform
func New(logger *zap.SugaredLogger) *Installer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Installer{
		goos:   runtime.GOOS,
		runner: runCommand,
		logger: logger,
	}
}

// Install renders the plist, writes it and (re)loads the agent. A dry
// run prints the redacted plist and the exact launchctl commands, and
// touches nothing.
func (i *Installer) Install(ctx context.Context, plan *Plan, dryRun bool) error {
	if i.goos != "darwin" {
		return errNotDarwin(i.goos)
	}
	if dryRun {
		return i.printInstallPlan(plan)
	}

	plist, err := renderPlist(plan)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(plan.PlistPath), config.DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "creating LaunchAgents directory")
	}
	if err := os.MkdirAll(filepath.Dir(plan.StdoutLog), config.DefaultDirPermissions); err != nil {
		return errors.Wrap(err, "creating log directory")
	}
	if err := os.WriteFile(plan.PlistPath, plist, config.DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "writing launch agent plist")
	}

	// Unload first so a reinstall picks up the new plist. The agent may
	// not be loaded yet, so this failing is normal.
	if err := i.runner(ctx, "launchctl", "unload", plan.PlistPath); err != nil {
		i.logger.Debugw("launchctl unload failed, agent likely not loaded", "error", err)
	}
	if err := i.runner(ctx, "launchctl", "load", "-w", plan.PlistPath); err != nil {
		return errors.Wrap(err, "launchctl load failed")
	}

	i.logger.Infow("Launch agent installed",
		"label", plan.Label, "plist", plan.PlistPath, "interval_s", plan.IntervalSeconds)
	return nil
}

// Uninstall unloads the agent and removes the plist. A missing plist is
// success, so repeated uninstalls are harmless.
func (i *Installer) Uninstall(ctx context.Context, plan *Plan, dryRun bool) error {
	if i.goos != "darwin" {
		return errNotDarwin(i.goos)
	}
	if dryRun {
		pterm.Warning.Println("DRY RUN MODE: nothing unloaded, no files removed")
		pterm.Println()
		pterm.Info.Println("Would run:")
		pterm.Printf("  %s\n", shellquote.Join("launchctl", "unload", plan.PlistPath))
		pterm.Printf("  %s\n", shellquote.Join("rm", plan.PlistPath))
		return nil
	}

	if _, err := os.Stat(plan.PlistPath); os.IsNotExist(err) {
		i.logger.Infow("Launch agent not installed, nothing to remove", "plist", plan.PlistPath)
		return nil
	}
	if err := i.runner(ctx, "launchctl", "unload", plan.PlistPath); err != nil {
		i.logger.Debugw("launchctl unload failed, agent likely not loaded", "error", err)
	}
	if err := os.Remove(plan.PlistPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing launch agent plist")
	}

	i.logger.Infow("Launch agent removed", "label", plan.Label)
	return nil
}

func (i *Installer) printInstallPlan(plan *Plan) error {
	plist, err := renderPlist(plan.redacted())
	if err != nil {
		return err
	}

	pterm.Warning.Println("DRY RUN MODE: no files written, nothing loaded")
	pterm.Println()
	pterm.Info.Printf("Would write %s:\n", plan.PlistPath)
	pterm.Println(string(plist))
	pterm.Info.Println("Would run:")
	pterm.Printf("  %s\n", shellquote.Join("launchctl", "unload", plan.PlistPath))
	pterm.Printf("  %s\n", shellquote.Join("launchctl", "load", "-w", plan.PlistPath))
	return nil
}

func errNotDarwin(goos string) error {
	return errors.NewConfigError(
		"launchd scheduling is macOS only; on %s add a cron entry running \"aw-analyzer tick\" instead", goos)
}

func runCommand(ctx context.Context, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return errors.Wrapf(err, "%s: %s", name, string(out))
		}
		return errors.Wrapf(err, "%s failed", name)
	}
	return nil
}
