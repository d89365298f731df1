package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shahmeerahmad1435/tracker-app/internal/metrics"
	"github.com/shahmeerahmad1435/tracker-app/internal/usage"
)

// Client talks to the attendance backend. All requests carry the session
// bearer token once logged in and are bounded by the configured timeout.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a backend API client.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "api-client").Logger(),
	}
}

// Token returns the current session token, empty when logged out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken installs a session token (e.g. from a restored session).
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Login authenticates and stores the returned session token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"email": email, "password": password}

	var result LoginResponse
	if err := c.post(ctx, "/auth/login", body, &result); err != nil {
		return nil, err
	}
	if result.SessionToken == "" {
		return nil, fmt.Errorf("login succeeded but no session token received")
	}

	c.SetToken(result.SessionToken)
	return &result, nil
}

// Logout invalidates the session. The token is cleared locally even when
// the call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.post(ctx, "/auth/logout", nil, nil)
	c.SetToken("")
	return err
}

// Me returns the current user.
func (c *Client) Me(ctx context.Context) (*UserInfo, error) {
	var result UserInfo
	if err := c.get(ctx, "/auth/me", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckIn records the start of a work session.
func (c *Client) CheckIn(ctx context.Context) error {
	if c.Token() == "" {
		return fmt.Errorf("not authenticated")
	}
	return c.post(ctx, "/staff/check-in", nil, nil)
}

// CheckOut records the end of a work session.
func (c *Client) CheckOut(ctx context.Context) error {
	return c.post(ctx, "/staff/check-out", nil, nil)
}

// StartBreak begins a manual break.
func (c *Client) StartBreak(ctx context.Context) error {
	return c.post(ctx, "/staff/break/start", nil, nil)
}

// EndBreak ends the current break.
func (c *Client) EndBreak(ctx context.Context) error {
	return c.post(ctx, "/staff/break/end", nil, nil)
}

// ForceBreakStart begins a forced break triggered by inactivity.
func (c *Client) ForceBreakStart(ctx context.Context) error {
	return c.post(ctx, "/desktop/break/force-start", nil, nil)
}

// ReportIdle reports the current idle duration.
func (c *Client) ReportIdle(ctx context.Context, idleSeconds int64) error {
	body := map[string]any{
		"idle_seconds": idleSeconds,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	}
	return c.post(ctx, "/desktop/idle/report", body, nil)
}

// UploadScreenshot uploads a base64-encoded PNG capture.
func (c *Client) UploadScreenshot(ctx context.Context, screenshotBase64 string) error {
	body := map[string]any{
		"screenshot_base64": screenshotBase64,
		"screen_status":     "active",
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
	}
	return c.post(ctx, "/desktop/screenshot/upload", body, nil)
}

// ReportUsage delivers accumulated usage entries. Implements usage.Reporter.
func (c *Client) ReportUsage(ctx context.Context, entries []usage.Entry) error {
	body := map[string]any{"entries": entries}
	return c.post(ctx, "/desktop/usage/report", body, nil)
}

// DashboardStats fetches the session sync source.
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var result DashboardStats
	if err := c.get(ctx, "/staff/dashboard/stats", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, body, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug().Str("method", method).Str("endpoint", endpoint).Msg("API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("failed to read response from %s: %w", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.APIRequests.WithLabelValues(endpoint, "error").Inc()
		return &Error{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    extractErrorMessage(data, resp.StatusCode),
		}
	}

	metrics.APIRequests.WithLabelValues(endpoint, "ok").Inc()

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
		}
	}
	return nil
}
