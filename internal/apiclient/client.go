package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/civictrack/civictrack-go/internal/logging"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 15 * time.Second

// Client talks to the CivicTrack REST backend. Each call is a single attempt;
// retrying is left to callers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *Metrics
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Its timeout is kept as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit caps outgoing requests per second. rps <= 0 disables the limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New creates a client for the given base URL, e.g. http://localhost:8080/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		metrics: &Metrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Metrics returns a snapshot of the call counters.
func (c *Client) Metrics() MetricsSnapshot {
	return c.metrics.snapshot()
}

// Get issues GET path and returns the unwrapped payload.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil, "")
}

// Post issues POST path with body encoded as JSON and returns the unwrapped payload.
func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	return c.do(ctx, http.MethodPost, path, reader, "application/json")
}

// PostFile uploads content as a single multipart file field.
func (c *Client) PostFile(ctx context.Context, path, field, filename string, content io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("copy file content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
}

// GetJSON issues GET path and decodes the payload into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	payload, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	return decodePayload(payload, out)
}

// PostJSON issues POST path with in as JSON and decodes the payload into out.
// out may be nil when the caller does not need the response.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	payload, err := c.Post(ctx, path, in)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodePayload(payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	logger := logging.New(ctx)
	operation := method + " " + path
	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			logger.LogError(operation, err)
			return nil, transportError(err, "")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, transportError(fmt.Errorf("create request: %w", err), "")
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if rid := logging.RequestID(ctx); rid != "" {
		req.Header.Set("X-Request-Id", rid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.record(time.Since(start), err)
		logger.LogError(operation, err)
		return nil, transportError(err, c.failureMessage(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	if err != nil {
		c.metrics.record(duration, err)
		logger.LogError(operation, err)
		return nil, transportError(fmt.Errorf("read response: %w", err), "")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := statusError(resp.StatusCode, raw)
		c.metrics.record(duration, apiErr)
		logger.LogWarnf(operation, "backend returned status %d: %s", resp.StatusCode, apiErr.Message)
		return nil, apiErr
	}

	payload, err := unwrap(resp.StatusCode, raw)
	c.metrics.record(duration, err)
	if err != nil {
		logger.LogWarnf(operation, "backend rejected request: %v", err)
		return nil, err
	}
	return payload, nil
}

func (c *Client) failureMessage(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Sprintf("request timed out after %s", c.httpClient.Timeout)
	}
	return ""
}

func decodePayload(payload []byte, out any) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}
	return nil
}
