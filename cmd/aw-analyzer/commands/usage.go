package commands

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/awtools/aw-analyzer/ai/tracker"
	"github.com/awtools/aw-analyzer/logger"
)

// UsageCmd represents the usage command
var UsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show LLM usage statistics",
	Long:  `Display request counts, token totals and per-model breakdown from the usage database.`,
	RunE:  runUsage,
}

func init() {
	UsageCmd.Flags().Int("days", 30, "Window in days")
}

func runUsage(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	database, err := openUsageDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	usage := tracker.NewUsageTracker(database, logger.Logger)
	stats, err := usage.Stats(since)
	if err != nil {
		return fmt.Errorf("failed to aggregate usage: %w", err)
	}
	if stats.TotalRequests == 0 {
		fmt.Printf("No LLM usage recorded in the last %d days\n", days)
		return nil
	}

	pterm.Printf("LLM usage, last %d days\n", days)
	pterm.Printf("  %s %d total, %d succeeded (%.0f%% success)\n",
		pterm.Gray("requests:"), stats.TotalRequests, stats.SuccessfulRequests, stats.SuccessRate*100)
	pterm.Printf("  %s %d prompt + %d completion = %d\n",
		pterm.Gray("tokens:  "), stats.PromptTokens, stats.CompletionTokens, stats.TotalTokens)
	pterm.Printf("  %s %d\n", pterm.Gray("models:  "), stats.UniqueModels)

	breakdown, err := usage.Breakdown(since)
	if err != nil {
		return fmt.Errorf("failed to break down usage by model: %w", err)
	}
	if len(breakdown) > 0 {
		pterm.Println()
		for _, row := range breakdown {
			latency := "n/a"
			if row.AvgLatencyMS != nil {
				latency = fmt.Sprintf("%.0fms", *row.AvgLatencyMS)
			}
			pterm.Printf("  %s %-40s %5d requests %9d tokens  avg %s\n",
				pterm.Gray("→"), row.Model, row.Requests, row.TotalTokens, latency)
		}
	}
	return nil
}
