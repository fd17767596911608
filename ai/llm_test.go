package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/awtools/aw-analyzer/ai/openrouter"
	"github.com/awtools/aw-analyzer/aw"
	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/timeline"
)

// stubChat is a canned ChatClient for exercising the analyzer offline
type stubChat struct {
	content string
	err     error
	last    openrouter.ChatRequest
}

func (s *stubChat) Chat(_ context.Context, req openrouter.ChatRequest) (*openrouter.ChatResponse, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &openrouter.ChatResponse{
		Content: s.content,
		Usage:   openrouter.Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150},
	}, nil
}

func dailyInput() DailyInput {
	return DailyInput{
		Date: "2026-01-14",
		Metrics: aw.DailyMetrics{
			WorkSeconds:          28800,
			MaxContinuousSeconds: 5400,
			TopApps:              []aw.AppTotal{{App: "VS Code", Seconds: 14400}},
		},
	}
}

func TestLLMAnalyzeDaily(t *testing.T) {
	t.Run("valid response", func(t *testing.T) {
		stub := &stubChat{content: `{"summary": "A focused day.", "insights": ["Deep work before noon"], "tip": "Keep mornings clear."}`}
		analyzer := NewLLM(stub, nil)

		out, err := analyzer.AnalyzeDaily(context.Background(), dailyInput())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Summary != "A focused day." {
			t.Errorf("unexpected summary: %s", out.Summary)
		}
		if len(out.Insights) != 1 || out.Insights[0] != "Deep work before noon" {
			t.Errorf("unexpected insights: %v", out.Insights)
		}
		if out.Tip != "Keep mornings clear." {
			t.Errorf("unexpected tip: %s", out.Tip)
		}

		if stub.last.Operation != "daily-analysis" {
			t.Errorf("expected daily-analysis operation, got %s", stub.last.Operation)
		}
		if !strings.Contains(stub.last.UserPrompt, "8h") || !strings.Contains(stub.last.UserPrompt, "VS Code") {
			t.Errorf("expected metrics in user prompt, got: %s", stub.last.UserPrompt)
		}
		if stub.last.SystemPrompt == "" {
			t.Error("expected a system prompt")
		}
	})

	t.Run("fenced response is unwrapped", func(t *testing.T) {
		stub := &stubChat{content: "```json\n{\"summary\": \"ok\", \"insights\": [\"one\"], \"tip\": \"t\"}\n```"}
		analyzer := NewLLM(stub, nil)

		out, err := analyzer.AnalyzeDaily(context.Background(), dailyInput())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Summary != "ok" {
			t.Errorf("unexpected summary: %s", out.Summary)
		}
	})

	t.Run("invalid JSON is a parse error", func(t *testing.T) {
		stub := &stubChat{content: "Sure! Here is your analysis: it was a good day."}
		analyzer := NewLLM(stub, nil)

		_, err := analyzer.AnalyzeDaily(context.Background(), dailyInput())
		if err == nil {
			t.Fatal("expected error for prose response")
		}
		if !errors.IsParseError(err) {
			t.Errorf("expected parse error, got: %v", err)
		}
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
			problem string
		}{
			{
				name:    "empty summary",
				content: `{"summary": "", "insights": ["one"], "tip": "t"}`,
				problem: "summary is empty",
			},
			{
				name:    "no insights",
				content: `{"summary": "s", "insights": [], "tip": "t"}`,
				problem: "insights is empty",
			},
			{
				name:    "too many insights",
				content: `{"summary": "s", "insights": ["1","2","3","4","5","6"], "tip": "t"}`,
				problem: "too many insights",
			},
			{
				name:    "blank insight",
				content: `{"summary": "s", "insights": ["one", "  "], "tip": "t"}`,
				problem: "insight 2 is empty",
			},
			{
				name:    "missing tip",
				content: `{"summary": "s", "insights": ["one"]}`,
				problem: "tip is empty",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				stub := &stubChat{content: tt.content}
				analyzer := NewLLM(stub, nil)

				_, err := analyzer.AnalyzeDaily(context.Background(), dailyInput())
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.IsParseError(err) {
					t.Errorf("expected parse error, got: %v", err)
				}
				if !strings.Contains(err.Error(), tt.problem) {
					t.Errorf("expected %q in error, got: %v", tt.problem, err)
				}
			})
		}
	})

	t.Run("client errors pass through", func(t *testing.T) {
		stub := &stubChat{err: errors.NewAPIError("API request failed with status 500")}
		analyzer := NewLLM(stub, nil)

		_, err := analyzer.AnalyzeDaily(context.Background(), dailyInput())
		if err == nil {
			t.Fatal("expected error from client")
		}
		if !errors.IsAPIError(err) {
			t.Errorf("expected API error to pass through, got: %v", err)
		}
	})
}

func TestLLMAnalyzeWeekly(t *testing.T) {
	in := WeeklyInput{
		Dates: []string{"2026-01-08", "2026-01-14"},
		Summary: timeline.Summary{
			Days:                   7,
			DaysWithData:           5,
			TotalNotAfkSeconds:     90000,
			AvgNotAfkSecondsPerDay: 18000,
		},
		Projects: []aw.ProjectTotal{{Project: "analyzer", Seconds: 36000}},
	}

	t.Run("valid response", func(t *testing.T) {
		stub := &stubChat{content: `{"title": "Steady Week", "summary": "Five active days.", "insights": ["Mornings were strong"], "next_action": "Protect Friday afternoons."}`}
		analyzer := NewLLM(stub, nil)

		out, err := analyzer.AnalyzeWeekly(context.Background(), in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Title != "Steady Week" {
			t.Errorf("unexpected title: %s", out.Title)
		}
		if out.NextAction != "Protect Friday afternoons." {
			t.Errorf("unexpected next action: %s", out.NextAction)
		}

		if stub.last.Operation != "weekly-analysis" {
			t.Errorf("expected weekly-analysis operation, got %s", stub.last.Operation)
		}
		if !strings.Contains(stub.last.UserPrompt, "analyzer") {
			t.Errorf("expected projects in user prompt, got: %s", stub.last.UserPrompt)
		}
	})

	t.Run("missing next_action fails validation", func(t *testing.T) {
		stub := &stubChat{content: `{"title": "T", "summary": "S", "insights": ["one"]}`}
		analyzer := NewLLM(stub, nil)

		_, err := analyzer.AnalyzeWeekly(context.Background(), in)
		if err == nil {
			t.Fatal("expected validation error")
		}
		if !errors.IsParseError(err) {
			t.Errorf("expected parse error, got: %v", err)
		}
		if !strings.Contains(err.Error(), "next_action is empty") {
			t.Errorf("expected next_action problem, got: %v", err)
		}
	})
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}\n", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
