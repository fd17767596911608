// Package ai turns activity metrics into natural-language readings.
// An OpenRouter-backed analyzer is used when an API key is configured;
// otherwise a deterministic fallback composes the same shape locally.
package ai

import (
	"context"

	"github.com/awtools/aw-analyzer/aw"
	"github.com/awtools/aw-analyzer/timeline"
)

// DailyInput carries one day of metrics into an analysis
type DailyInput struct {
	Date    string // YYYY-MM-DD the metrics describe
	Metrics aw.DailyMetrics
}

// WeeklyInput carries a week of aggregates into an analysis
type WeeklyInput struct {
	Dates    []string // oldest first
	Summary  timeline.Summary
	Projects []aw.ProjectTotal
	Sleep    timeline.SleepWakeResult
}

// DailyAnalysis is the shape every daily analysis must produce.
// The JSON field names are the contract with the LLM.
type DailyAnalysis struct {
	Summary  string   `json:"summary"`
	Insights []string `json:"insights"` // 1 to 5 short observations
	Tip      string   `json:"tip"`
}

// WeeklyAnalysis is the shape every weekly analysis must produce
type WeeklyAnalysis struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Insights   []string `json:"insights"` // 1 to 5 short observations
	NextAction string   `json:"next_action"`
}

// Analyzer produces analyses from activity data. Implementations must
// return every field populated or an error; callers fall back on error.
type Analyzer interface {
	AnalyzeDaily(ctx context.Context, in DailyInput) (*DailyAnalysis, error)
	AnalyzeWeekly(ctx context.Context, in WeeklyInput) (*WeeklyAnalysis, error)
}
