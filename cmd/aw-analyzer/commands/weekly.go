package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/awtools/aw-analyzer/logger"
	"github.com/awtools/aw-analyzer/report"
)

// WeeklyReportCmd represents the weekly-report command
var WeeklyReportCmd = &cobra.Command{
	Use:   "weekly-report",
	Short: "Build the weekly summary and post it to Slack",
	Long: `Build the weekly summary and post it to Slack.

The window ends yesterday in the configured report timezone. The report
carries total and per-day activity, sleep estimates, an LLM analysis
when an OpenRouter key is configured, and an activity heatmap image
when a renderer and Slack bot token are available.`,
	RunE: runWeeklyReport,
}

func init() {
	WeeklyReportCmd.Flags().IntP("days", "d", 0, "Window length in days, 1..31 (default from config)")
}

func runWeeklyReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	offset, err := reportOffset(cfg)
	if err != nil {
		return err
	}

	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		days = cfg.GetReportDays()
	}

	analyzer, closeUsage := buildAnalyzer(cfg)
	defer closeUsage()

	var renderer report.Renderer
	if execRenderer, rerr := report.NewExecRenderer(cfg.GetRenderer(), logger.Logger); rerr != nil {
		logger.Warnw("SVG renderer unavailable, report will go out without the heatmap", "error", rerr)
	} else {
		renderer = execRenderer
	}

	pipeline := report.NewWeeklyPipeline(
		newActivityClient(cfg),
		analyzer,
		renderer,
		buildWebhook(cfg),
		buildUploader(cfg),
		logger.Logger,
	)

	res, err := pipeline.RunWeekly(cmd.Context(), report.WeeklyOptions{
		Days:             days,
		Offset:           offset,
		SleepMin:         time.Duration(cfg.GetSleepMinMinutes()) * time.Minute,
		MinActiveSeconds: float64(cfg.GetMinActiveSeconds()),
	})
	if err != nil {
		return fmt.Errorf("weekly report failed: %w", err)
	}

	image := "no image"
	if res.ImageIncluded {
		image = "heatmap attached"
	}
	fmt.Printf("Weekly report delivered for %s to %s (%d of %d days with data, %s)\n",
		res.Dates[0], res.Dates[len(res.Dates)-1], res.Summary.DaysWithData, res.Summary.Days, image)
	return nil
}
