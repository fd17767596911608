package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/internal/util"
)

// WebhookConfig configures the incoming-webhook sender
type WebhookConfig struct {
	URL        string
	Timeout    time.Duration // default 10s
	RetryLimit int           // extra attempts after the first (default 2)
	Client     *http.Client  // override for tests
}

// Webhook delivers messages to a Slack incoming webhook
type Webhook struct {
	url        string
	retryLimit int
	client     *http.Client
	logger     *zap.SugaredLogger
}

// NewWebhook builds a webhook sender. The URL is required.
func NewWebhook(cfg WebhookConfig, logger *zap.SugaredLogger) (*Webhook, error) {
	url := strings.TrimSpace(cfg.URL)
	if url == "" {
		return nil, errors.NewConfigError("Slack webhook URL not configured")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	retries := cfg.RetryLimit
	if retries <= 0 {
		retries = 2
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Webhook{
		url:        url,
		retryLimit: retries,
		client:     client,
		logger:     logger,
	}, nil
}

// Send posts a message to the webhook. Network failures are retried with
// linear backoff up to the retry limit; a non-2xx response, 429 included,
// is surfaced immediately as an http error without retrying.
func (w *Webhook) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "encode webhook payload")
	}

	attempts := w.retryLimit + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			// Simple linear backoff to avoid thundering retries
			delay := time.Duration(attempt) * 200 * time.Millisecond
			w.logger.Debugw("Retrying webhook delivery", "attempt", attempt, "delay", delay)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return ctx.Err()
			case <-timer.C:
			}
		}

		err = w.post(ctx, body)
		if err == nil {
			return nil
		}
		if errors.IsHTTPError(err) {
			return err
		}
		lastErr = err
	}

	return errors.Wrapf(lastErr, "webhook delivery failed after %d attempts", attempts)
}

func (w *Webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "webhook request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read webhook response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewHTTPError("webhook returned %s: %s",
			resp.Status, util.TruncateRunes(strings.TrimSpace(string(respBody)), 200))
	}

	return nil
}
