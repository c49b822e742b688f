// Package router talks to the cost-control routing service over HTTP.
package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultGenerateURL = "http://localhost:8000/generate"
	DefaultLogsURL     = "http://localhost:8000/logs"

	logsTimeout     = 10 * time.Second
	previewLength   = 300
	requestIDHeader = "X-Request-ID"
)

// generateRequest is the JSON body sent to the generate endpoint.
type generateRequest struct {
	Prompt string `json:"prompt"`
}

// Reply is the routing service's answer to one prompt.
type Reply struct {
	Content        *string `json:"content"`
	ModelUsed      Text    `json:"model_used"`
	CostSaved      Text    `json:"cost_saved"`
	RouterDecision Text    `json:"router_decision"`
}

// ContentText returns the reply content, empty when absent.
func (r *Reply) ContentText() string {
	if r == nil || r.Content == nil {
		return ""
	}
	return *r.Content
}

// Text is a JSON scalar kept as display text. Strings are unquoted, numbers and
// booleans keep their literal form, null is empty.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case '{', '[':
		return fmt.Errorf("expected scalar, got %s", truncate(string(data), 40))
	default:
		*t = Text(data)
		return nil
	}
}

type requestIDKey struct{}

// WithRequestID attaches a request ID that is sent as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the ID set by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Client calls the generate and logs endpoints.
type Client struct {
	httpClient  *http.Client
	generateURL string
	logsURL     string
	logger      *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a client. Empty URLs fall back to the local defaults.
func New(generateURL, logsURL string, opts ...Option) *Client {
	if generateURL == "" {
		generateURL = DefaultGenerateURL
	}
	if logsURL == "" {
		logsURL = DefaultLogsURL
	}
	c := &Client{
		// no client timeout: a dispatched prompt runs until the service answers
		httpClient:  &http.Client{},
		generateURL: generateURL,
		logsURL:     logsURL,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate posts prompt to the routing service. Every failure is returned as
// a *RequestFailure.
func (c *Client) Generate(ctx context.Context, prompt string) (*Reply, error) {
	var reply Reply
	if err := c.do(ctx, "generate", http.MethodPost, c.generateURL, generateRequest{Prompt: prompt}, &reply); err != nil {
		return nil, err
	}
	if reply.Content == nil {
		return nil, &RequestFailure{Op: "generate", URL: c.generateURL, Status: http.StatusOK,
			Err: fmt.Errorf("%w: missing content", ErrMalformedResponse)}
	}
	return &reply, nil
}

// Logs fetches the most recent request logs kept by the service.
func (c *Client) Logs(ctx context.Context) ([]LogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, logsTimeout)
	defer cancel()

	var entries []LogEntry
	if err := c.do(ctx, "logs", http.MethodGet, c.logsURL, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) do(ctx context.Context, op, method, url string, body, out any) error {
	fail := func(status int, err error) error {
		return &RequestFailure{Op: op, URL: url, Status: status, Err: err}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fail(0, fmt.Errorf("marshaling body: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fail(0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := RequestID(ctx); id != "" {
		req.Header.Set(requestIDHeader, id)
	}

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("router request failed", "op", op, "error", err, "duration", time.Since(start))
		return fail(0, fmt.Errorf("sending request: %w", err))
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			c.logger.Warn("failed to close response body", "error", closeErr, "url", url)
		}
	}()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fail(res.StatusCode, fmt.Errorf("reading response body: %w", err))
	}

	c.logger.Debug("router response",
		"op", op,
		"status", res.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start),
	)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fail(res.StatusCode, fmt.Errorf("non-2xx status: %s", truncate(strings.TrimSpace(string(data)), previewLength)))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fail(res.StatusCode, fmt.Errorf("%w: %v (preview: %s)", ErrMalformedResponse, err, truncate(string(data), previewLength)))
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
