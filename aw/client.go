// Package aw is the activity provider: an HTTP client for a local
// ActivityWatch server that discovers watcher buckets, runs server-side
// queries, and decodes the results into fixed-shape metrics.
//
// Every call is self-contained: bucket discovery runs per call and no
// state is held across calls, so a short-lived process can construct a
// Client, ask one question, and exit.
package aw

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/internal/httpclient"
	"github.com/awtools/aw-analyzer/internal/util"
)

// DefaultBaseURL is the standard local ActivityWatch server address
const DefaultBaseURL = "http://localhost:5600"

// Config holds the provider's connection settings
type Config struct {
	BaseURL  string             // Server address (empty = DefaultBaseURL)
	Hostname string             // Preferred bucket hostname (empty = first match wins)
	Timeout  time.Duration      // Per-request timeout (zero = 30s)
	Logger   *zap.SugaredLogger // Structured logger (nil = nop logger)
}

// Client talks to one ActivityWatch server
type Client struct {
	baseURL    string
	hostname   string
	httpClient *httpclient.SaferClient
	logger     *zap.SugaredLogger
}

// NewClient creates a provider client. The server is local by contract,
// so the SSRF guard keeps its scheme and redirect checks but does not
// block private addresses.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	blockPrivateIP := false
	saferClient := httpclient.NewSaferClientWithOptions(cfg.Timeout, httpclient.SaferClientOptions{
		BlockPrivateIP: &blockPrivateIP,
	})

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		hostname:   cfg.Hostname,
		httpClient: saferClient,
		logger:     logger,
	}
}

// Buckets fetches the server's bucket listing, keyed by bucket ID
func (c *Client) Buckets(ctx context.Context) (map[string]Bucket, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/0/buckets/", nil)
	if err != nil {
		return nil, errors.WrapConnection(err, "failed to create bucket request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WithHint(
			errors.WrapConnection(err, "failed to list buckets"),
			"is the ActivityWatch server running?")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapConnection(err, "failed to read bucket response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewConnectionError("bucket list returned status %d", resp.StatusCode)
	}

	var buckets map[string]Bucket
	if err := json.Unmarshal(body, &buckets); err != nil {
		return nil, errors.WrapParse(err, "failed to decode bucket list")
	}

	c.logger.Debugw("Fetched bucket list", "buckets", len(buckets))
	return buckets, nil
}

// queryRequest is the POST /api/0/query/ body
type queryRequest struct {
	Query       []string `json:"query"`
	Timeperiods []string `json:"timeperiods"`
}

// Query runs one or more query programs against the server. The response
// array is aligned to timeperiods; callers working with a single period
// read index 0.
func (c *Client) Query(ctx context.Context, query []string, timeperiods []string) ([]json.RawMessage, error) {
	reqBody, err := json.Marshal(queryRequest{Query: query, Timeperiods: timeperiods})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal query request")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/0/query/", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, errors.WrapConnection(err, "failed to create query request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WithHint(
			errors.WrapConnection(err, "failed to run query"),
			"is the ActivityWatch server running?")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapConnection(err, "failed to read query response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewQueryError("query returned status %d: %s",
			resp.StatusCode, util.TruncateRunes(string(body), 500))
	}

	var results []json.RawMessage
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, errors.WrapParse(err, "failed to decode query response")
	}

	return results, nil
}

// queryEvents runs a single-period query and decodes its result rows
func (c *Client) queryEvents(ctx context.Context, kind, query string, r TimeRange) ([]Event, error) {
	period := r.Period()
	results, err := c.Query(ctx, []string{query}, []string{period})
	if err != nil {
		return nil, errors.Wrapf(err, "%s query failed", kind)
	}
	if len(results) == 0 {
		return nil, errors.NewParseError("%s query returned no result for period %s", kind, period)
	}

	var events []Event
	if err := json.Unmarshal(results[0], &events); err != nil {
		return nil, errors.WrapParse(err, kind+" query result has unexpected shape")
	}

	c.logger.Debugw("Query complete", "kind", kind, "period", period, "events", len(events))
	return events, nil
}

// discover lists buckets and resolves the watcher set for this host
func (c *Client) discover(ctx context.Context) (BucketSet, error) {
	buckets, err := c.Buckets(ctx)
	if err != nil {
		return BucketSet{}, err
	}
	return DiscoverBuckets(buckets, c.hostname)
}

// DailyMetrics returns the work summary for the given range: total work
// seconds, the longest merged span, and the top five applications.
func (c *Client) DailyMetrics(ctx context.Context, r TimeRange) (*DailyMetrics, error) {
	set, err := c.discover(ctx)
	if err != nil {
		return nil, err
	}

	events, err := c.queryEvents(ctx, "work-metrics", WorkMetricsQuery(set.Window, set.AFK), r)
	if err != nil {
		return nil, err
	}
	return decodeDailyMetrics(events), nil
}

// AfkMetrics returns total afk and not-afk seconds for the given range
func (c *Client) AfkMetrics(ctx context.Context, r TimeRange) (*AfkMetrics, error) {
	set, err := c.discover(ctx)
	if err != nil {
		return nil, err
	}

	events, err := c.queryEvents(ctx, "afk-metrics", AfkMetricsQuery(set.AFK), r)
	if err != nil {
		return nil, err
	}
	return decodeAfkMetrics(events), nil
}

// AfkEvents returns the raw afk/not-afk stream for the given range in
// timestamp order, for hourly binning and sleep analysis.
func (c *Client) AfkEvents(ctx context.Context, r TimeRange) ([]AfkEvent, error) {
	set, err := c.discover(ctx)
	if err != nil {
		return nil, err
	}

	events, err := c.queryEvents(ctx, "afk-events", AfkEventsQuery(set.AFK), r)
	if err != nil {
		return nil, err
	}

	out := make([]AfkEvent, 0, len(events))
	for _, ev := range events {
		status, _ := ev.Data["status"].(string)
		out = append(out, AfkEvent{Timestamp: ev.Timestamp, Duration: ev.Duration, Status: status})
	}
	return out, nil
}

// EditorProjects returns per-project editor time for the given range,
// largest first. A host without an editor watcher yields an empty slice,
// not an error.
func (c *Client) EditorProjects(ctx context.Context, r TimeRange) ([]ProjectTotal, error) {
	set, err := c.discover(ctx)
	if err != nil {
		return nil, err
	}
	if set.Editor == "" {
		c.logger.Debugw("No editor bucket found, skipping project metrics")
		return []ProjectTotal{}, nil
	}

	events, err := c.queryEvents(ctx, "editor-projects", EditorProjectsQuery(set.Editor, set.AFK), r)
	if err != nil {
		return nil, err
	}
	return decodeEditorProjects(events), nil
}

// decodeDailyMetrics folds merged-by-app events into a work summary.
// MaxContinuousSeconds is the longest single merged event, which stands
// in for the longest continuous session.
func decodeDailyMetrics(events []Event) *DailyMetrics {
	m := &DailyMetrics{}
	perApp := make(map[string]float64)

	for _, ev := range events {
		m.WorkSeconds += ev.Duration
		if ev.Duration > m.MaxContinuousSeconds {
			m.MaxContinuousSeconds = ev.Duration
		}

		app, _ := ev.Data["app"].(string)
		if app == "" {
			app = "Unknown"
		}
		perApp[app] += ev.Duration
	}

	apps := make([]AppTotal, 0, len(perApp))
	for app, seconds := range perApp {
		apps = append(apps, AppTotal{App: app, Seconds: seconds})
	}
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].Seconds != apps[j].Seconds {
			return apps[i].Seconds > apps[j].Seconds
		}
		return apps[i].App < apps[j].App
	})
	if len(apps) > 5 {
		apps = apps[:5]
	}
	m.TopApps = apps

	return m
}

func decodeAfkMetrics(events []Event) *AfkMetrics {
	m := &AfkMetrics{}
	for _, ev := range events {
		status, _ := ev.Data["status"].(string)
		switch status {
		case StatusAfk:
			m.AfkSeconds += ev.Duration
		case StatusNotAfk:
			m.NotAfkSeconds += ev.Duration
		}
	}
	return m
}

// decodeEditorProjects folds merged-by-project events into a ranking.
// Distinct paths can share a final segment, so durations re-accumulate
// after the name is shortened.
func decodeEditorProjects(events []Event) []ProjectTotal {
	perProject := make(map[string]float64)
	for _, ev := range events {
		raw, _ := ev.Data["project"].(string)
		name := projectName(raw)
		if name == "" {
			continue
		}
		perProject[name] += ev.Duration
	}

	projects := make([]ProjectTotal, 0, len(perProject))
	for name, seconds := range perProject {
		projects = append(projects, ProjectTotal{Project: name, Seconds: seconds})
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].Seconds != projects[j].Seconds {
			return projects[i].Seconds > projects[j].Seconds
		}
		return projects[i].Project < projects[j].Project
	})
	return projects
}

// projectName takes the last path segment of a project identifier, so
// "/Users/x/dev/tool" ranks as "tool"
func projectName(p string) string {
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	return p
}
