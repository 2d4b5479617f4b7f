// Package aiclient is the outbound HTTP client to the AI adventure
// subsystem: scenario generation and choice evaluation, with retry,
// backoff and a circuit breaker guarding a misbehaving upstream.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/moneyquest/backend/internal/apperrors"
	"github.com/moneyquest/backend/internal/config"
	"github.com/moneyquest/backend/internal/metrics"
)

// Config is the AI client's tunables, sourced from AIConfig.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// FromAppConfig adapts the application's AIConfig, applying the defaults
// the AI service's own defaults.
func FromAppConfig(cfg config.AIConfig) Config {
	c := Config{
		BaseURL:    cfg.ServiceURL,
		Timeout:    time.Duration(cfg.Timeout) * time.Second,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: time.Duration(cfg.RetryDelay) * time.Second,
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay == 0 {
		c.RetryDelay = time.Second
	}
	return c
}

// GenerateRequest is the generate sub-protocol request body.
type GenerateRequest struct {
	UserAge           int      `json:"user_age"`
	Allowance         float64  `json:"allowance"`
	GoalContext       string   `json:"goal_context,omitempty"`
	RecentActivities  []string `json:"recent_activities,omitempty"`
}

// GenerateResponse is the generate sub-protocol response body.
type GenerateResponse struct {
	Scenario    string   `json:"scenario"`
	Choices     []string `json:"choices"`
	OpikTraceID string   `json:"opik_trace_id"`
}

// EvaluateRequest is the evaluate sub-protocol request body.
type EvaluateRequest struct {
	Scenario    string                 `json:"scenario"`
	ChoiceIndex int                    `json:"choice_index"`
	ChoiceText  string                 `json:"choice_text"`
	UserAge     int                    `json:"user_age"`
	Amounts     map[string]interface{} `json:"amounts,omitempty"`
}

// EvaluateResponse is the evaluate sub-protocol response body.
type EvaluateResponse struct {
	Feedback    string             `json:"feedback"`
	Scores      map[string]float64 `json:"scores"`
	OpikTraceID string             `json:"opik_trace_id"`
}

// Client talks to the AI adventure subsystem over HTTP.
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// New creates a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ai-adventure",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		logger:     logger,
	}
}

// GenerateAdventure calls POST <baseURL>/api/adventure/generate.
func (c *Client) GenerateAdventure(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	var resp GenerateResponse
	err := c.doRequest(ctx, "/api/adventure/generate", req, &resp)
	metrics.ObserveAICall("generate", start, err)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// EvaluateChoice calls POST <baseURL>/api/adventure/evaluate.
func (c *Client) EvaluateChoice(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	start := time.Now()
	var resp EvaluateResponse
	err := c.doRequest(ctx, "/api/adventure/evaluate", req, &resp)
	metrics.ObserveAICall("evaluate", start, err)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// doRequest issues a POST with JSON body, retrying retryable failures
// with exponential backoff (retryDelay × 2^attempt) and guarding the
// whole attempt loop with a circuit breaker. A failure is retryable iff
// it is a network/timeout error or the response status is 5xx or 429.
func (c *Client) doRequest(ctx context.Context, path string, body, out interface{}) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal AI request: %w", err)
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.doWithRetry(ctx, path, reqBody, out)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return apperrors.Wrap(apperrors.ServiceUnavailable, "AI adventure service unavailable", err)
		}
		return err
	}
	return nil
}

func (c *Client) doWithRetry(ctx context.Context, path string, reqBody []byte, out interface{}) error {
	url := c.cfg.BaseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.RetryDelay * time.Duration(1<<uint(attempt-1))
			c.logger.Debug("retrying AI request",
				zap.Int("attempt", attempt), zap.String("path", path), zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
		if err != nil {
			return fmt.Errorf("build AI request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("AI service returned status %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("AI service rejected request: status %d, body %s", resp.StatusCode, string(respBody))
		}

		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode AI response: %w", err)
		}
		return nil
	}

	return apperrors.Wrap(apperrors.ServiceUnavailable, "AI adventure service exhausted retries", lastErr)
}
