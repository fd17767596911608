// Package tracker records LLM usage into the local SQLite database so
// the `usage` verb can answer what the analyses cost.
package tracker

import (
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// Record is one LLM call as stored in the ai_usage table
type Record struct {
	Operation        string // e.g. "daily-analysis", "weekly-analysis"
	Model            string
	Provider         string // defaults to "openrouter"
	PromptTokens     *int
	CompletionTokens *int
	TotalTokens      *int
	LatencyMS        *int64
	Success          bool
	ErrorKind        *string // failure class when Success is false
	RequestTime      time.Time
}

// Stats aggregates usage over a time window
type Stats struct {
	TotalRequests      int     `json:"total_requests"`
	SuccessfulRequests int     `json:"successful_requests"`
	SuccessRate        float64 `json:"success_rate"`
	PromptTokens       int     `json:"prompt_tokens"`
	CompletionTokens   int     `json:"completion_tokens"`
	TotalTokens        int     `json:"total_tokens"`
	UniqueModels       int     `json:"unique_models"`
}

// ModelBreakdown is per-model usage over a time window
type ModelBreakdown struct {
	Model        string   `json:"model"`
	Provider     string   `json:"provider"`
	Requests     int      `json:"requests"`
	TotalTokens  int      `json:"total_tokens"`
	AvgLatencyMS *float64 `json:"avg_latency_ms,omitempty"`
}

// UsageTracker writes and aggregates ai_usage rows
type UsageTracker struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewUsageTracker creates a tracker on an open usage database
func NewUsageTracker(db *sql.DB, logger *zap.SugaredLogger) *UsageTracker {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UsageTracker{db: db, logger: logger}
}

// Track inserts one usage record. Callers treat failures as
// log-and-continue; losing a usage row must never fail an analysis.
func (t *UsageTracker) Track(rec *Record) error {
	provider := rec.Provider
	if provider == "" {
		provider = "openrouter"
	}

	query := `
		INSERT INTO ai_usage (
			operation, model, model_provider, prompt_tokens, completion_tokens,
			total_tokens, latency_ms, success, error_kind, request_timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := t.db.Exec(query,
		rec.Operation, rec.Model, provider,
		rec.PromptTokens, rec.CompletionTokens, rec.TotalTokens,
		rec.LatencyMS, rec.Success, rec.ErrorKind, rec.RequestTime,
	)
	return err
}

// Stats returns aggregate usage since the given time
func (t *UsageTracker) Stats(since time.Time) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) as total_requests,
			COUNT(CASE WHEN success = 1 THEN 1 END) as successful_requests,
			COALESCE(SUM(COALESCE(prompt_tokens, 0)), 0) as prompt_tokens,
			COALESCE(SUM(COALESCE(completion_tokens, 0)), 0) as completion_tokens,
			COALESCE(SUM(COALESCE(total_tokens, 0)), 0) as total_tokens,
			COUNT(DISTINCT model) as unique_models
		FROM ai_usage
		WHERE request_timestamp >= ?`

	var stats Stats
	err := t.db.QueryRow(query, since).Scan(
		&stats.TotalRequests, &stats.SuccessfulRequests,
		&stats.PromptTokens, &stats.CompletionTokens, &stats.TotalTokens,
		&stats.UniqueModels,
	)
	if err != nil {
		return nil, err
	}

	if stats.TotalRequests > 0 {
		stats.SuccessRate = float64(stats.SuccessfulRequests) / float64(stats.TotalRequests)
	}
	return &stats, nil
}

// Breakdown returns per-model usage since the given time, busiest first
func (t *UsageTracker) Breakdown(since time.Time) ([]ModelBreakdown, error) {
	query := `
		SELECT
			model,
			model_provider,
			COUNT(*) as requests,
			SUM(COALESCE(total_tokens, 0)) as total_tokens,
			AVG(latency_ms) as avg_latency_ms
		FROM ai_usage
		WHERE request_timestamp >= ?
		GROUP BY model, model_provider
		ORDER BY requests DESC, model ASC`

	rows, err := t.db.Query(query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breakdown []ModelBreakdown
	for rows.Next() {
		var mb ModelBreakdown
		if err := rows.Scan(&mb.Model, &mb.Provider, &mb.Requests, &mb.TotalTokens, &mb.AvgLatencyMS); err != nil {
			t.logger.Warnw("Failed to scan usage breakdown row", "error", err)
			continue
		}
		breakdown = append(breakdown, mb)
	}
	return breakdown, rows.Err()
}
