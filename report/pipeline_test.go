package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/awtools/aw-analyzer/ai"
	"github.com/awtools/aw-analyzer/aw"
	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/slack"
)

type fakeProvider struct {
	metrics      *aw.AfkMetrics
	metricsErr   error
	metricsCalls int
	periods      []string

	events    []aw.AfkEvent
	eventsErr error

	projects    []aw.ProjectTotal
	projectsErr error
}

func (f *fakeProvider) AfkMetrics(_ context.Context, r aw.TimeRange) (*aw.AfkMetrics, error) {
	f.metricsCalls++
	f.periods = append(f.periods, r.Period())
	if f.metricsErr != nil {
		return nil, f.metricsErr
	}
	return f.metrics, nil
}

func (f *fakeProvider) AfkEvents(_ context.Context, _ aw.TimeRange) ([]aw.AfkEvent, error) {
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return f.events, nil
}

func (f *fakeProvider) EditorProjects(_ context.Context, _ aw.TimeRange) ([]aw.ProjectTotal, error) {
	if f.projectsErr != nil {
		return nil, f.projectsErr
	}
	return f.projects, nil
}

type fakeSender struct {
	sent []slack.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg slack.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeUploader struct {
	up          *slack.Upload
	err         error
	uploads     int
	public      string
	publicCalls int
}

func (f *fakeUploader) UploadFile(_ context.Context, _ string, _ []byte, _, _ string) (*slack.Upload, error) {
	f.uploads++
	if f.err != nil {
		return nil, f.err
	}
	return f.up, nil
}

func (f *fakeUploader) SharePublic(_ context.Context, _ string) string {
	f.publicCalls++
	return f.public
}

type fakeRenderer struct {
	png []byte
	err error
}

func (f *fakeRenderer) Render(_ context.Context, _ []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.png, nil
}

type failingAnalyzer struct{}

func (failingAnalyzer) AnalyzeDaily(_ context.Context, _ ai.DailyInput) (*ai.DailyAnalysis, error) {
	return nil, errors.NewAPIError("model unavailable")
}

func (failingAnalyzer) AnalyzeWeekly(_ context.Context, _ ai.WeeklyInput) (*ai.WeeklyAnalysis, error) {
	return nil, errors.NewAPIError("model unavailable")
}

func afkEvent(ts string, durationSeconds float64, status string) aw.AfkEvent {
	t0, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return aw.AfkEvent{Timestamp: t0, Duration: durationSeconds, Status: status}
}

// testOpts covers 2026-01-05 through 2026-01-07 in JST.
func testOpts() WeeklyOptions {
	return WeeklyOptions{
		Days:   3,
		Offset: 9 * time.Hour,
		Now:    time.Date(2026, 1, 8, 12, 0, 0, 0, time.UTC),
	}
}

func healthyProvider() *fakeProvider {
	return &fakeProvider{
		metrics: &aw.AfkMetrics{NotAfkSeconds: 7200, AfkSeconds: 3600},
		events: []aw.AfkEvent{
			afkEvent("2026-01-05T22:00:00+09:00", 8*3600, "afk"),
			afkEvent("2026-01-06T09:00:00+09:00", 3600, "not-afk"),
		},
		projects: []aw.ProjectTotal{{Project: "atlas", Seconds: 43200}},
	}
}

func TestRunWeeklyDelivers(t *testing.T) {
	provider := healthyProvider()
	sender := &fakeSender{}
	uploader := &fakeUploader{
		up:     &slack.Upload{FileID: "F123", Permalink: "https://sl/f"},
		public: "https://pub/f",
	}
	p := NewWeeklyPipeline(provider, nil, &fakeRenderer{png: []byte("png")}, sender, uploader, nil)

	res, err := p.RunWeekly(context.Background(), testOpts())
	if err != nil {
		t.Fatalf("RunWeekly failed: %v", err)
	}

	wantDates := []string{"2026-01-05", "2026-01-06", "2026-01-07"}
	if len(res.Dates) != 3 {
		t.Fatalf("Expected 3 dates, got %v", res.Dates)
	}
	for i, d := range wantDates {
		if res.Dates[i] != d {
			t.Errorf("Date %d: expected %s, got %s", i, d, res.Dates[i])
		}
	}
	if res.Summary.TotalNotAfkSeconds != 21600 {
		t.Errorf("Expected 21600s total, got %v", res.Summary.TotalNotAfkSeconds)
	}
	if !res.ImageIncluded {
		t.Error("Expected the image to be included")
	}

	if provider.metricsCalls != 3 {
		t.Errorf("Expected 3 per-day metric calls, got %d", provider.metricsCalls)
	}
	if provider.periods[0] != "2026-01-05/2026-01-06" {
		t.Errorf("Unexpected first day period: %s", provider.periods[0])
	}

	if len(sender.sent) != 1 {
		t.Fatalf("Expected 1 delivered message, got %d", len(sender.sent))
	}
	msg := sender.sent[0]

	header := msg.Blocks[0].Text.Text
	if !strings.Contains(header, "2026-01-05 to 2026-01-07") {
		t.Errorf("Header missing the window: %s", header)
	}

	img := findImageBlock(msg.Blocks)
	if img == nil || img.SlackFile == nil || img.SlackFile.ID != "F123" {
		t.Errorf("Expected uploaded file image, got %+v", img)
	}

	// Sleep inference from the long afk run
	fields := msg.Blocks[2].Fields
	if !strings.Contains(fields[2].Text, "06:00") {
		t.Errorf("Expected 06:00 wake, got: %s", fields[2].Text)
	}
	if !strings.Contains(fields[3].Text, "22:00") {
		t.Errorf("Expected 22:00 sleep, got: %s", fields[3].Text)
	}

	if msg.Text == "" {
		t.Error("Expected a text digest on the message")
	}
	if uploader.publicCalls != 1 {
		t.Errorf("Expected one public-share attempt, got %d", uploader.publicCalls)
	}
}

func TestRunWeeklyNoWebhook(t *testing.T) {
	provider := healthyProvider()
	p := NewWeeklyPipeline(provider, nil, nil, nil, nil, nil)

	_, err := p.RunWeekly(context.Background(), testOpts())
	if err == nil {
		t.Fatal("Expected error without a webhook")
	}
	if !errors.IsConfigError(err) {
		t.Errorf("Expected config error, got %v", err)
	}
	if provider.metricsCalls != 0 {
		t.Errorf("Expected no provider calls, got %d", provider.metricsCalls)
	}
}

func TestRunWeeklyProviderErrorsAbort(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *fakeProvider)
		wantMsg string
	}{
		{
			name:    "per-day metrics failure",
			mutate:  func(p *fakeProvider) { p.metricsErr = errors.NewConnectionError("server down") },
			wantMsg: "afk metrics for",
		},
		{
			name:    "event fetch failure",
			mutate:  func(p *fakeProvider) { p.eventsErr = errors.NewQueryError("bad query") },
			wantMsg: "afk events",
		},
		{
			name:    "project fetch failure",
			mutate:  func(p *fakeProvider) { p.projectsErr = errors.NewQueryError("bad query") },
			wantMsg: "editor projects",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := healthyProvider()
			tt.mutate(provider)
			sender := &fakeSender{}
			p := NewWeeklyPipeline(provider, nil, nil, sender, nil, nil)

			_, err := p.RunWeekly(context.Background(), testOpts())
			if err == nil {
				t.Fatal("Expected provider error to abort")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Expected %q in error, got: %v", tt.wantMsg, err)
			}
			if len(sender.sent) != 0 {
				t.Error("Nothing should be sent after a provider failure")
			}
		})
	}
}

func TestRunWeeklyImageDegradation(t *testing.T) {
	t.Run("render failure posts without the image", func(t *testing.T) {
		sender := &fakeSender{}
		uploader := &fakeUploader{up: &slack.Upload{FileID: "F123"}}
		p := NewWeeklyPipeline(healthyProvider(), nil,
			&fakeRenderer{err: errors.New("rsvg-convert not available")}, sender, uploader, nil)

		res, err := p.RunWeekly(context.Background(), testOpts())
		if err != nil {
			t.Fatalf("RunWeekly failed: %v", err)
		}
		if res.ImageIncluded {
			t.Error("Image should be dropped after a render failure")
		}
		if uploader.uploads != 0 {
			t.Errorf("Expected no upload attempts, got %d", uploader.uploads)
		}
		if img := findImageBlock(sender.sent[0].Blocks); img != nil {
			t.Errorf("Expected no image block, got %+v", img)
		}
	})

	t.Run("upload failure posts without the image", func(t *testing.T) {
		sender := &fakeSender{}
		uploader := &fakeUploader{err: errors.NewAPIError("invalid_auth")}
		p := NewWeeklyPipeline(healthyProvider(), nil,
			&fakeRenderer{png: []byte("png")}, sender, uploader, nil)

		res, err := p.RunWeekly(context.Background(), testOpts())
		if err != nil {
			t.Fatalf("RunWeekly failed: %v", err)
		}
		if res.ImageIncluded {
			t.Error("Image should be dropped after an upload failure")
		}
		if uploader.publicCalls != 0 {
			t.Error("No public share should be attempted after an upload failure")
		}
		if img := findImageBlock(sender.sent[0].Blocks); img != nil {
			t.Errorf("Expected no image block, got %+v", img)
		}
	})

	t.Run("nil uploader skips the whole image path", func(t *testing.T) {
		sender := &fakeSender{}
		p := NewWeeklyPipeline(healthyProvider(), nil,
			&fakeRenderer{png: []byte("png")}, sender, nil, nil)

		res, err := p.RunWeekly(context.Background(), testOpts())
		if err != nil {
			t.Fatalf("RunWeekly failed: %v", err)
		}
		if res.ImageIncluded {
			t.Error("Image should be skipped without an uploader")
		}
	})
}

func TestRunWeeklyAnalyzerFallsBack(t *testing.T) {
	sender := &fakeSender{}
	p := NewWeeklyPipeline(healthyProvider(), failingAnalyzer{}, nil, sender, nil, nil)

	_, err := p.RunWeekly(context.Background(), testOpts())
	if err != nil {
		t.Fatalf("RunWeekly failed: %v", err)
	}

	if !strings.Contains(sender.sent[0].Text, "You were active on") {
		t.Errorf("Expected fallback analysis in the digest: %s", sender.sent[0].Text)
	}
}

func TestRunWeeklySendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.NewHTTPError("webhook returned 500")}
	p := NewWeeklyPipeline(healthyProvider(), nil, nil, sender, nil, nil)

	_, err := p.RunWeekly(context.Background(), testOpts())
	if err == nil {
		t.Fatal("Expected delivery failure to surface")
	}
	if !strings.Contains(err.Error(), "delivery failed") {
		t.Errorf("Expected delivery context in error, got: %v", err)
	}
}
