package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/awtools/aw-analyzer/ai"
	"github.com/awtools/aw-analyzer/aw"
	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/slack"
	"github.com/awtools/aw-analyzer/timeline"
)

// ActivityProvider is the slice of the ActivityWatch client the weekly
// pipeline consumes.
type ActivityProvider interface {
	AfkMetrics(ctx context.Context, r aw.TimeRange) (*aw.AfkMetrics, error)
	AfkEvents(ctx context.Context, r aw.TimeRange) ([]aw.AfkEvent, error)
	EditorProjects(ctx context.Context, r aw.TimeRange) ([]aw.ProjectTotal, error)
}

// Sender posts a finished message to the chat channel.
type Sender interface {
	Send(ctx context.Context, msg slack.Message) error
}

// FileUploader pushes the rendered heatmap into the channel.
type FileUploader interface {
	UploadFile(ctx context.Context, filename string, data []byte, title, comment string) (*slack.Upload, error)
	SharePublic(ctx context.Context, fileID string) string
}

// WeeklyOptions tunes one pipeline run.
type WeeklyOptions struct {
	Days             int           // window length, clamped to 1..31
	Offset           time.Duration // report timezone as a fixed UTC offset
	SleepMin         time.Duration // minimum afk run treated as sleep
	MinActiveSeconds float64       // threshold for a day to count as having data
	Now              time.Time     // zero = time.Now()
}

// WeeklyResult summarizes a delivered weekly report.
type WeeklyResult struct {
	Dates         []string
	Summary       timeline.Summary
	ImageIncluded bool
}

// WeeklyPipeline assembles and delivers the weekly report.
type WeeklyPipeline struct {
	provider ActivityProvider
	analyzer ai.Analyzer
	renderer Renderer
	webhook  Sender
	uploader FileUploader
	logger   *zap.SugaredLogger
}

// NewWeeklyPipeline wires the weekly report collaborators. webhook may
// be nil when no URL is configured; RunWeekly then refuses to start.
// analyzer, renderer and uploader may each be nil: a nil analyzer uses
// the deterministic fallback, a nil renderer or uploader skips the
// heatmap image.
func NewWeeklyPipeline(provider ActivityProvider, analyzer ai.Analyzer, renderer Renderer, webhook Sender, uploader FileUploader, logger *zap.SugaredLogger) *WeeklyPipeline {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &WeeklyPipeline{
		provider: provider,
		analyzer: analyzer,
		renderer: renderer,
		webhook:  webhook,
		uploader: uploader,
		logger:   logger,
	}
}

// RunWeekly builds and posts the report for the window ending yesterday.
// Provider failures abort. Heatmap rendering, upload and public-link
// failures degrade to an imageless message. An analyzer failure falls
// back to the deterministic analysis. A delivery failure is the
// returned error.
func (p *WeeklyPipeline) RunWeekly(ctx context.Context, opts WeeklyOptions) (*WeeklyResult, error) {
	if p.webhook == nil {
		return nil, errors.NewConfigError("Slack webhook URL not configured")
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	dates := timeline.DateKeys(now, opts.Days, opts.Offset)
	first, last := dates[0], dates[len(dates)-1]
	loc := timeline.Location(opts.Offset)

	p.logger.Infow("Building weekly report",
		"from", first,
		"to", last,
		"days", len(dates))

	notAfk := make([]float64, len(dates))
	for i, date := range dates {
		day, err := time.ParseInLocation(dateLayout, date, loc)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid date key %q", date)
		}
		m, err := p.provider.AfkMetrics(ctx, aw.Day(day))
		if err != nil {
			return nil, errors.Wrapf(err, "afk metrics for %s", date)
		}
		notAfk[i] = m.NotAfkSeconds
	}
	summary := timeline.WeekSummary(notAfk, opts.MinActiveSeconds)

	// One event fetch over the whole window feeds both the heatmap and
	// the sleep inference.
	start, err := time.ParseInLocation(dateLayout, first, loc)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid date key %q", first)
	}
	end, err := time.ParseInLocation(dateLayout, last, loc)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid date key %q", last)
	}
	weekRange := aw.TimeRange{Start: start, End: end}

	events, err := p.provider.AfkEvents(ctx, weekRange)
	if err != nil {
		return nil, errors.Wrap(err, "afk events for the report window")
	}

	image := p.buildImage(ctx, timeline.BinEvents(events, dates, opts.Offset), first, last)
	sleep := timeline.SleepWake(events, dates, opts.Offset, opts.SleepMin)

	projects, err := p.provider.EditorProjects(ctx, weekRange)
	if err != nil {
		return nil, errors.Wrap(err, "editor projects for the report window")
	}

	analysis := p.analyze(ctx, ai.WeeklyInput{
		Dates:    dates,
		Summary:  summary,
		Projects: projects,
		Sleep:    sleep,
	})

	msg := Weekly(WeeklyData{
		StartDate: first,
		EndDate:   last,
		Summary:   summary,
		Sleep:     sleep,
		Projects:  projects,
		Analysis:  analysis,
		Image:     image,
	})

	if err := slack.Validate(msg.Blocks); err != nil {
		return nil, err
	}
	if err := p.webhook.Send(ctx, msg); err != nil {
		return nil, errors.Wrap(err, "weekly report delivery failed")
	}

	p.logger.Infow("Weekly report delivered",
		"days", len(dates),
		"active_days", summary.DaysWithData,
		"image", image != nil)

	return &WeeklyResult{Dates: dates, Summary: summary, ImageIncluded: image != nil}, nil
}

// buildImage renders, uploads and publicizes the heatmap. Every failure
// on this path degrades to a nil image.
func (p *WeeklyPipeline) buildImage(ctx context.Context, bins []timeline.DayBins, first, last string) *WeeklyImage {
	if p.renderer == nil || p.uploader == nil {
		return nil
	}

	png, err := p.renderer.Render(ctx, HeatmapSVG(bins))
	if err != nil {
		p.logger.Warnw("Heatmap rendering failed, posting without the image", "error", err)
		return nil
	}

	title := fmt.Sprintf("Activity heatmap %s to %s", first, last)
	up, err := p.uploader.UploadFile(ctx, "heatmap.png", png, title, "")
	if err != nil {
		p.logger.Warnw("Heatmap upload failed, posting without the image", "error", err)
		return nil
	}

	img := &WeeklyImage{FileID: up.FileID, FileURL: up.Permalink, Alt: title}
	if img.URL = up.PermalinkPublic; img.URL == "" {
		img.URL = p.uploader.SharePublic(ctx, up.FileID)
	}
	return img
}

// analyze runs the configured analyzer and falls back to the
// deterministic rules when it is missing or fails.
func (p *WeeklyPipeline) analyze(ctx context.Context, input ai.WeeklyInput) *ai.WeeklyAnalysis {
	if p.analyzer != nil {
		analysis, err := p.analyzer.AnalyzeWeekly(ctx, input)
		if err == nil {
			return analysis
		}
		p.logger.Warnw("Weekly analyzer failed, using fallback analysis", "error", err)
	}

	analysis, err := ai.NewFallback().AnalyzeWeekly(ctx, input)
	if err != nil {
		p.logger.Errorw("Fallback analysis failed", "error", err)
		return nil
	}
	return analysis
}

var (
	_ ActivityProvider = (*aw.Client)(nil)
	_ Sender           = (*slack.Webhook)(nil)
	_ FileUploader     = (*slack.Uploader)(nil)
)
