package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/awtools/aw-analyzer/errors"
)

func TestNewWebhookValidation(t *testing.T) {
	if _, err := NewWebhook(WebhookConfig{}, nil); err == nil {
		t.Fatal("expected error when webhook url missing")
	} else if !errors.IsConfigError(err) {
		t.Errorf("expected config error, got: %v", err)
	}
}

func TestWebhookSend(t *testing.T) {
	var received Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type: %s", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	hook, err := NewWebhook(WebhookConfig{URL: server.URL}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msg := Message{
		Text:   "Daily report for 2026-01-14",
		Blocks: []*Block{Header("Daily Report"), Section("A focused day.")},
	}
	if err := hook.Send(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if received.Text != msg.Text {
		t.Errorf("expected text %q, got %q", msg.Text, received.Text)
	}
	if len(received.Blocks) != 2 || received.Blocks[0].Type != BlockTypeHeader {
		t.Errorf("unexpected blocks: %+v", received.Blocks)
	}
}

func TestWebhookHTTPErrorNotRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "channel_not_found", http.StatusNotFound)
	}))
	defer server.Close()

	hook, err := NewWebhook(WebhookConfig{URL: server.URL}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = hook.Send(context.Background(), Message{Text: "hi"})
	if err == nil {
		t.Fatal("expected error for HTTP 404")
	}
	if !errors.IsHTTPError(err) {
		t.Errorf("expected http error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "channel_not_found") {
		t.Errorf("expected body snippet in error, got: %v", err)
	}
	if requests != 1 {
		t.Errorf("expected 1 request, got %d", requests)
	}
}

func TestWebhookRateLimitNotRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "rate_limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	hook, err := NewWebhook(WebhookConfig{URL: server.URL}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = hook.Send(context.Background(), Message{Text: "hi"})
	if err == nil {
		t.Fatal("expected error for HTTP 429")
	}
	if !errors.IsHTTPError(err) {
		t.Errorf("expected http error, got: %v", err)
	}
	if requests != 1 {
		t.Errorf("expected 1 request (429 is not retried), got %d", requests)
	}
}

// flakyTransport fails the first n round trips with a transport error
type flakyTransport struct {
	failures int
	attempts int
	inner    http.RoundTripper
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.attempts++
	if f.attempts <= f.failures {
		return nil, errors.New("dial tcp: connection refused")
	}
	return f.inner.RoundTrip(req)
}

func TestWebhookNetworkErrorRetried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := &flakyTransport{failures: 1, inner: http.DefaultTransport}
	hook, err := NewWebhook(WebhookConfig{
		URL:    server.URL,
		Client: &http.Client{Transport: transport},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := hook.Send(context.Background(), Message{Text: "hi"}); err != nil {
		t.Fatalf("expected retry to recover, got: %v", err)
	}
	if transport.attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", transport.attempts)
	}
}

func TestWebhookNetworkErrorExhaustsRetries(t *testing.T) {
	transport := &flakyTransport{failures: 100, inner: http.DefaultTransport}
	hook, err := NewWebhook(WebhookConfig{
		URL:        "http://localhost:1/hook",
		RetryLimit: 1,
		Client:     &http.Client{Transport: transport},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = hook.Send(context.Background(), Message{Text: "hi"})
	if err == nil {
		t.Fatal("expected error after retries")
	}
	if !strings.Contains(err.Error(), "after 2 attempts") {
		t.Errorf("expected attempt count in error, got: %v", err)
	}
	if transport.attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", transport.attempts)
	}
}

func TestWebhookContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport := &flakyTransport{failures: 100, inner: http.DefaultTransport}
	hook, err := NewWebhook(WebhookConfig{
		URL:    "http://localhost:1/hook",
		Client: &http.Client{Transport: transport},
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = hook.Send(ctx, Message{Text: "hi"})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}
