package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/awtools/aw-analyzer/ai/openrouter"
	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/internal/util"
)

// ChatClient is the LLM transport the analyzer speaks through.
// *openrouter.Client satisfies it.
type ChatClient interface {
	Chat(ctx context.Context, req openrouter.ChatRequest) (*openrouter.ChatResponse, error)
}

const dailySystemPrompt = `You are a personal productivity assistant reviewing one day of computer activity.
Respond with a single JSON object and no other text:
{"summary": "<2-3 sentence plain-language recap>", "insights": ["<1 to 5 short observations>"], "tip": "<one actionable suggestion>"}
Every field is required. Be concrete and warm, never judgmental.`

const weeklySystemPrompt = `You are a personal productivity assistant reviewing one week of computer activity.
Respond with a single JSON object and no other text:
{"title": "<short report title>", "summary": "<3-4 sentence recap of the week>", "insights": ["<1 to 5 short observations>"], "next_action": "<one concrete suggestion for next week>"}
Every field is required. Be concrete and warm, never judgmental.`

// LLMAnalyzer asks an LLM for the analysis and validates the reply shape
type LLMAnalyzer struct {
	client ChatClient
	logger *zap.SugaredLogger
}

// NewLLM creates an analyzer backed by a chat client
func NewLLM(client ChatClient, logger *zap.SugaredLogger) *LLMAnalyzer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &LLMAnalyzer{client: client, logger: logger}
}

// AnalyzeDaily generates a daily analysis via the LLM
func (a *LLMAnalyzer) AnalyzeDaily(ctx context.Context, in DailyInput) (*DailyAnalysis, error) {
	resp, err := a.client.Chat(ctx, openrouter.ChatRequest{
		SystemPrompt: dailySystemPrompt,
		UserPrompt:   buildDailyPrompt(in),
		Operation:    "daily-analysis",
	})
	if err != nil {
		return nil, err
	}

	var out DailyAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &out); err != nil {
		return nil, errors.WrapParse(err, "daily analysis is not valid JSON")
	}
	if err := validateDaily(&out); err != nil {
		return nil, err
	}

	a.logger.Debugw("Daily analysis generated",
		"date", in.Date, "insights", len(out.Insights), "total_tokens", resp.Usage.TotalTokens)
	return &out, nil
}

// AnalyzeWeekly generates a weekly analysis via the LLM
func (a *LLMAnalyzer) AnalyzeWeekly(ctx context.Context, in WeeklyInput) (*WeeklyAnalysis, error) {
	resp, err := a.client.Chat(ctx, openrouter.ChatRequest{
		SystemPrompt: weeklySystemPrompt,
		UserPrompt:   buildWeeklyPrompt(in),
		Operation:    "weekly-analysis",
	})
	if err != nil {
		return nil, err
	}

	var out WeeklyAnalysis
	if err := json.Unmarshal([]byte(stripCodeFence(resp.Content)), &out); err != nil {
		return nil, errors.WrapParse(err, "weekly analysis is not valid JSON")
	}
	if err := validateWeekly(&out); err != nil {
		return nil, err
	}

	a.logger.Debugw("Weekly analysis generated",
		"days", len(in.Dates), "insights", len(out.Insights), "total_tokens", resp.Usage.TotalTokens)
	return &out, nil
}

func buildDailyPrompt(in DailyInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\n", in.Date)
	fmt.Fprintf(&b, "Total active time: %s (%.0f seconds)\n",
		util.FormatSeconds(in.Metrics.WorkSeconds), in.Metrics.WorkSeconds)
	fmt.Fprintf(&b, "Longest continuous stretch: %s\n",
		util.FormatSeconds(in.Metrics.MaxContinuousSeconds))

	if len(in.Metrics.TopApps) > 0 {
		b.WriteString("Top applications:\n")
		for i, app := range in.Metrics.TopApps {
			fmt.Fprintf(&b, "  %d. %s (%s)\n", i+1, app.App, util.FormatSeconds(app.Seconds))
		}
	} else {
		b.WriteString("No application data recorded.\n")
	}

	return b.String()
}

func buildWeeklyPrompt(in WeeklyInput) string {
	var b strings.Builder
	if len(in.Dates) > 0 {
		fmt.Fprintf(&b, "Period: %s to %s\n", in.Dates[0], in.Dates[len(in.Dates)-1])
	}
	fmt.Fprintf(&b, "Days with activity: %d of %d\n", in.Summary.DaysWithData, in.Summary.Days)
	fmt.Fprintf(&b, "Total active time: %s\n", util.FormatSeconds(in.Summary.TotalNotAfkSeconds))
	fmt.Fprintf(&b, "Average per active day: %s\n", util.FormatSeconds(in.Summary.AvgNotAfkSecondsPerDay))

	if len(in.Projects) > 0 {
		b.WriteString("Editor time by project:\n")
		for i, p := range in.Projects {
			fmt.Fprintf(&b, "  %d. %s (%s)\n", i+1, p.Project, util.FormatSeconds(p.Seconds))
		}
	}

	if in.Sleep.AvgWakeMinutes != nil {
		fmt.Fprintf(&b, "Average wake time: %s\n", util.FormatClockMinute(int(*in.Sleep.AvgWakeMinutes)))
	}
	if in.Sleep.AvgSleepMinutes != nil {
		fmt.Fprintf(&b, "Average sleep time: %s\n", util.FormatClockMinute(int(*in.Sleep.AvgSleepMinutes)))
	}

	return b.String()
}

// stripCodeFence unwraps fenced responses some models still emit despite
// the json_object response format.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func validateDaily(a *DailyAnalysis) error {
	var problems []string
	if strings.TrimSpace(a.Summary) == "" {
		problems = append(problems, "summary is empty")
	}
	problems = append(problems, validateInsights(a.Insights)...)
	if strings.TrimSpace(a.Tip) == "" {
		problems = append(problems, "tip is empty")
	}
	if len(problems) > 0 {
		return errors.NewParseError("daily analysis failed validation: %s", strings.Join(problems, "; "))
	}
	return nil
}

func validateWeekly(a *WeeklyAnalysis) error {
	var problems []string
	if strings.TrimSpace(a.Title) == "" {
		problems = append(problems, "title is empty")
	}
	if strings.TrimSpace(a.Summary) == "" {
		problems = append(problems, "summary is empty")
	}
	problems = append(problems, validateInsights(a.Insights)...)
	if strings.TrimSpace(a.NextAction) == "" {
		problems = append(problems, "next_action is empty")
	}
	if len(problems) > 0 {
		return errors.NewParseError("weekly analysis failed validation: %s", strings.Join(problems, "; "))
	}
	return nil
}

func validateInsights(insights []string) []string {
	var problems []string
	if len(insights) == 0 {
		problems = append(problems, "insights is empty")
	}
	if len(insights) > 5 {
		problems = append(problems, fmt.Sprintf("too many insights (%d, max 5)", len(insights)))
	}
	for i, s := range insights {
		if strings.TrimSpace(s) == "" {
			problems = append(problems, fmt.Sprintf("insight %d is empty", i+1))
		}
	}
	return problems
}

var _ Analyzer = (*LLMAnalyzer)(nil)
var _ ChatClient = (*openrouter.Client)(nil)
