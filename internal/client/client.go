package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/trafficlens/trafficlens/internal/model"
)

// Client talks to the traffic-video analysis backend.
//
// Design decision: We use a struct holding the http.Client rather than
// passing a client on each call because:
//  1. The session cookie jar must be shared across all requests
//  2. Connection pooling works better with a shared client
//  3. Easier to test by swapping the base URL for an httptest server
type Client struct {
	// httpClient is the underlying HTTP client with the session cookie jar.
	httpClient *http.Client

	// baseURL is the backend address all endpoint paths resolve against.
	baseURL *url.URL

	// userAgent is the User-Agent header sent with every request.
	userAgent string

	// maxBodySize limits reads of JSON and text bodies.
	// Artifact streams are not subject to this limit.
	maxBodySize int64

	// headers are extra headers from per-server configuration.
	headers map[string]string

	// cookie is a pinned cookie string from per-server configuration.
	// It is sent in addition to whatever the jar holds.
	cookie string

	// logger is used for structured logging of request outcomes.
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum JSON/text response body size.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithCookie pins a cookie string sent with every request.
// Useful for backends behind an authenticating proxy.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithLogger sets a custom logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the backend at baseURL.
// The timeout applies per request. A cookie jar is always installed so the
// backend's session cookie survives across calls.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	c := &Client{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		baseURL:     u,
		userAgent:   "trafficlens/1.0",
		maxBodySize: 16 * 1024 * 1024, // 16MB
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// BaseURL returns the backend address this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// EstablishSession fetches the backend index page so the session cookie
// lands in the jar. The backend creates a fresh session on every index
// request and scopes all analysis state to it.
func (c *Client) EstablishSession(ctx context.Context) error {
	resp, err := c.get(ctx, "/")
	if err != nil {
		return fmt.Errorf("failed to establish session: %w", err)
	}
	defer resp.Body.Close()

	// The page body itself is irrelevant on success; only the Set-Cookie
	// matters. It still has to be drained, and on failure it carries the
	// backend's error message.
	body, err := c.readAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read index page: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return c.apiError(resp, body)
	}

	c.logger.Debug("session established", "baseURL", c.baseURL.String())
	return nil
}

// startResponse is the body of POST /run-analysis.
type startResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// StartAnalysis asks the backend to start an analysis job.
// Any non-2xx response or error field is a failure; the backend refuses to
// start a second job while one is running for the same session.
func (c *Client) StartAnalysis(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/run-analysis", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to request analysis start: %w", err)
	}
	defer resp.Body.Close()

	body, err := c.readAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read start response: %w", err)
	}

	var sr startResponse
	// The body may be empty or non-JSON on proxy errors; the status code
	// check below still catches those.
	_ = json.Unmarshal(body, &sr)

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: sr.Error}
	}
	if sr.Error != "" {
		return fmt.Errorf("analysis start rejected: %s", sr.Error)
	}

	c.logger.Debug("analysis started", "status", sr.Status)
	return nil
}

// Status fetches the current job state.
func (c *Client) Status(ctx context.Context) (model.Status, error) {
	resp, err := c.get(ctx, "/status")
	if err != nil {
		return model.Status{}, fmt.Errorf("failed to request status: %w", err)
	}
	defer resp.Body.Close()

	body, err := c.readAll(resp.Body)
	if err != nil {
		return model.Status{}, fmt.Errorf("failed to read status response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return model.Status{}, c.apiError(resp, body)
	}

	var status model.Status
	if err := json.Unmarshal(body, &status); err != nil {
		return model.Status{}, fmt.Errorf("failed to decode status response: %w", err)
	}

	return status, nil
}

// Report fetches the plain-text statistics report of the completed analysis.
func (c *Client) Report(ctx context.Context) (string, error) {
	resp, err := c.get(ctx, "/results/statistics_report.txt")
	if err != nil {
		return "", fmt.Errorf("failed to request text report: %w", err)
	}
	defer resp.Body.Close()

	body, err := c.readAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read text report: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", c.apiError(resp, body)
	}

	return string(body), nil
}

// statsEnvelope is the body of GET /visualizations/stats.
type statsEnvelope struct {
	Success bool              `json:"success"`
	Data    *model.Statistics `json:"data"`
	Error   string            `json:"error"`
}

// Statistics fetches the aggregated traffic metrics of the completed analysis.
func (c *Client) Statistics(ctx context.Context) (*model.Statistics, error) {
	resp, err := c.get(ctx, "/visualizations/stats")
	if err != nil {
		return nil, fmt.Errorf("failed to request statistics: %w", err)
	}
	defer resp.Body.Close()

	body, err := c.readAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read statistics response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp, body)
	}

	var env statsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode statistics response: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("statistics unavailable: %s", env.Error)
	}
	if env.Data == nil {
		return nil, ErrNoStatistics
	}

	return env.Data, nil
}

// OpenArtifact opens a streaming reader for a downloadable result file.
// The caller must close the returned reader. The second return value is the
// declared content length, or -1 when unknown.
//
// Design decision: Downloads stream instead of buffering because the zip
// bundle can be large; the maxBodySize limit applies only to JSON and text
// endpoints that are decoded in memory.
func (c *Client) OpenArtifact(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to request artifact %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := c.readAll(resp.Body)
		resp.Body.Close()
		return nil, 0, c.apiError(resp, body)
	}

	return resp.Body, resp.ContentLength, nil
}

// get issues a GET request against the given endpoint path.
func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}

// newRequest builds a request against the backend with the client's
// standing headers applied.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	u := c.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	return req, nil
}

// readAll reads a response body with the size limit applied.
func (c *Client) readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, c.maxBodySize))
}

// apiError builds an *APIError for a non-2xx response, pulling the backend's
// error message out of the body when one is present. The backend answers
// session problems with a JSON error object, but artifact endpoints return
// bare text like "Файл не найден".
func (c *Client) apiError(resp *http.Response, body []byte) error {
	message := ""
	if len(body) > 0 {
		var env struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
			message = env.Error
		} else if !strings.HasPrefix(strings.TrimSpace(string(body)), "<") {
			// Plain-text error body; skip HTML error pages.
			message = strings.TrimSpace(string(body))
		}
	}

	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
