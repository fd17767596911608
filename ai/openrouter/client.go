// Package openrouter is a minimal OpenRouter.ai chat-completions client.
// Responses are requested as JSON objects; every call is recorded through
// ai/tracker when a usage database is attached.
package openrouter

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/awtools/aw-analyzer/ai/tracker"
	"github.com/awtools/aw-analyzer/errors"
	"github.com/awtools/aw-analyzer/internal/httpclient"
	"github.com/awtools/aw-analyzer/internal/util"
)

const (
	// DefaultModel is the fallback model when none is specified.
	// Should match the default in config/defaults.go for consistency.
	DefaultModel = "anthropic/claude-3.5-haiku"

	baseURL = "https://openrouter.ai/api/v1"
)

// Client talks to the OpenRouter.ai chat completions API
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpclient.SaferClient
	config     Config
	usage      *tracker.UsageTracker
	logger     *zap.SugaredLogger
}

// Config holds AI client configuration
type Config struct {
	APIKey      string
	Model       string
	Temperature *float64           // nil = use default (0.2)
	MaxTokens   *int               // nil = use default (1000)
	Debug       bool               // log full prompts instead of lengths
	Logger      *zap.SugaredLogger // Structured logger (nil = nop logger)
	DB          *sql.DB            // Usage database for per-call tracking (nil = no tracking)
}

// NewClient creates a new OpenRouter.ai client with analyzer defaults
func NewClient(config Config) *Client {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Temperature == nil {
		defaultTemp := 0.2
		config.Temperature = &defaultTemp
	}
	if config.MaxTokens == nil {
		defaultTokens := 1000
		config.MaxTokens = &defaultTokens
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	var usage *tracker.UsageTracker
	if config.DB != nil {
		usage = tracker.NewUsageTracker(config.DB, logger)
	}

	// SSRF-safer HTTP client with redirect protection. Blocks private
	// IPs, localhost, AWS metadata endpoint, dangerous schemes.
	blockPrivateIP := true
	saferClient := httpclient.NewSaferClientWithOptions(120*time.Second, httpclient.SaferClientOptions{
		BlockPrivateIP: &blockPrivateIP,
	})

	return &Client{
		apiKey:     config.APIKey,
		baseURL:    baseURL,
		httpClient: saferClient,
		config:     config,
		usage:      usage,
		logger:     logger,
	}
}

// ChatCompletionRequest represents a request to the chat completions endpoint
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat constrains the shape of the assistant message
type ResponseFormat struct {
	Type string `json:"type"` // "json_object"
}

// ChatRequest represents a high-level request to the AI
type ChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	Operation    string   // tracking label, e.g. "daily-analysis"
	Temperature  *float64 // Override default temperature
	MaxTokens    *int     // Override default max tokens
	Model        *string  // Override default model
}

// ChatResponse represents the AI response
type ChatResponse struct {
	Content string
	Usage   Usage
}

// Message represents a message in a chat completion
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse represents the response from chat completions
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice represents a completion choice
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage represents token usage information
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CreateChatCompletion sends a single chat completion request to OpenRouter
func (c *Client) CreateChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	// Attribution headers for the OpenRouter dashboard
	httpReq.Header.Set("HTTP-Referer", "https://github.com/awtools/aw-analyzer")
	httpReq.Header.Set("X-Title", "aw-analyzer")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.WrapAPI(err, "failed to send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapAPI(err, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError("API request failed with status %d: %s",
			resp.StatusCode, util.TruncateRunes(string(respBody), 500))
	}

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, errors.WrapParse(err, "failed to unmarshal response")
	}

	return &chatResp, nil
}

// Chat sends a chat completion request with retry logic. The assistant is
// always asked for a JSON object response. Network failures are retried up
// to three attempts with linear backoff; HTTP errors, including 429, are
// surfaced immediately.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if c.config.APIKey == "" {
		return nil, errors.NewConfigError("OpenRouter API key not configured")
	}

	// Dereference config defaults, allow per-request overrides
	temperature := *c.config.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	maxTokens := *c.config.MaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	model := c.config.Model
	if req.Model != nil {
		model = *req.Model
	}

	operation := req.Operation
	if operation == "" {
		operation = "chat"
	}

	if c.config.Debug {
		c.logger.Debugw("AI chat request",
			"model", model,
			"temperature", temperature,
			"max_tokens", maxTokens,
			"operation", operation,
			"system_prompt", req.SystemPrompt,
			"user_prompt", req.UserPrompt,
		)
	} else {
		c.logger.Debugw("AI chat request",
			"model", model,
			"temperature", temperature,
			"max_tokens", maxTokens,
			"operation", operation,
			"system_prompt_len", len(req.SystemPrompt),
			"user_prompt_len", len(req.UserPrompt),
		)
	}

	messages := []Message{{Role: "user", Content: req.UserPrompt}}
	if req.SystemPrompt != "" {
		messages = append([]Message{{Role: "system", Content: req.SystemPrompt}}, messages...)
	}

	openrouterReq := ChatCompletionRequest{
		Model:          model,
		Messages:       messages,
		Temperature:    temperature,
		MaxTokens:      maxTokens,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	requestTime := time.Now()

	maxRetries := 3
	var resp *ChatCompletionResponse
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * time.Second
			c.logger.Debugw("Retrying OpenRouter request",
				"attempt", attempt, "max_retries", maxRetries-1, "delay", delay)
			time.Sleep(delay)
		}

		resp, err = c.CreateChatCompletion(ctx, openrouterReq)

		// Success
		if err == nil {
			if attempt > 0 {
				c.logger.Infow("Request succeeded after retries", "attempts", attempt+1, "model", model)
			}
			break
		}

		c.logger.Warnw("OpenRouter API error",
			"attempt", attempt+1, "max_retries", maxRetries,
			"error", err, "model", model,
			"url", c.baseURL+"/chat/completions")

		if c.isRetryableError(err) {
			c.logger.Debugw("Retryable error detected, will retry", "error", err)
			continue
		}

		// Non-retryable: HTTP status errors, parse errors, cancelled context
		c.trackFailure(requestTime, model, operation, err)
		return nil, errors.Wrap(err, "OpenRouter API error")
	}

	if err != nil {
		c.trackFailure(requestTime, model, operation, err)
		return nil, errors.Wrapf(err, "OpenRouter API error after %d retries", maxRetries)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.NewParseError("no response choices from OpenRouter")
	}

	responseText := strings.TrimSpace(resp.Choices[0].Message.Content)

	c.logger.Debugw("OpenRouter response",
		"content_length", len(responseText),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"total_tokens", resp.Usage.TotalTokens,
	)

	if c.usage != nil {
		lat := time.Since(requestTime).Milliseconds()
		rec := &tracker.Record{
			Operation:        operation,
			Model:            model,
			PromptTokens:     util.Ptr(resp.Usage.PromptTokens),
			CompletionTokens: util.Ptr(resp.Usage.CompletionTokens),
			TotalTokens:      util.Ptr(resp.Usage.TotalTokens),
			LatencyMS:        &lat,
			Success:          true,
			RequestTime:      requestTime,
		}
		if trackErr := c.usage.Track(rec); trackErr != nil {
			c.logger.Warnw("Failed to track usage", "error", trackErr, "model", model)
		}
	}

	return &ChatResponse{
		Content: responseText,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// isRetryableError checks if an error is worth retrying (network-related)
func (c *Client) isRetryableError(err error) bool {
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return true
	}

	if syscallErr, ok := err.(*net.OpError); ok {
		if errno, ok := syscallErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT:
				return true
			}
		}
	}

	// Check for common network error strings
	errStr := strings.ToLower(err.Error())
	networkErrors := []string{
		"connection reset by peer",
		"connection refused",
		"timeout",
		"temporary failure",
		"network is unreachable",
		"i/o timeout",
	}

	for _, netErr := range networkErrors {
		if strings.Contains(errStr, netErr) {
			return true
		}
	}

	return false
}

// trackFailure records a failed API request in the usage database
func (c *Client) trackFailure(requestTime time.Time, model, operation string, chatErr error) {
	if c.usage == nil {
		return
	}

	lat := time.Since(requestTime).Milliseconds()
	kind := errorKind(chatErr)
	rec := &tracker.Record{
		Operation:   operation,
		Model:       model,
		LatencyMS:   &lat,
		Success:     false,
		ErrorKind:   &kind,
		RequestTime: requestTime,
	}

	if trackErr := c.usage.Track(rec); trackErr != nil {
		c.logger.Warnw("Failed to track failed request", "error", trackErr, "model", model, "original_error", chatErr.Error())
	}
}

func errorKind(err error) string {
	if errors.IsParseError(err) {
		return "parse_error"
	}
	return "api_error"
}

// IsConfigured returns true if the client has a valid API key
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// SetHTTPClient allows overriding the HTTP client for testing
// ⚠️ WARNING: Only use this in tests. Production code should use the default SSRF-safer client.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = httpclient.WrapClient(client)
}
