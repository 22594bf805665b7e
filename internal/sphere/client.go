// Package sphere is the REST client for the remote Sphere API, the backend
// that owns all appointment, slot, payment, and document state. The gateway
// never persists any of these records; it shapes requests and relays responses.
package sphere

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ubietysphere/sphere-web/internal/observability/metrics"
	"github.com/ubietysphere/sphere-web/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// Client is a bearer-authenticated JSON client for the Sphere API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	tracer     trace.Tracer
	metrics    *metrics.BookingMetrics
}

// WithMetrics attaches request latency metrics to the client.
func (c *Client) WithMetrics(m *metrics.BookingMetrics) *Client {
	c.metrics = m
	return c
}

// New creates a Sphere API client.
func New(baseURL string, timeout time.Duration, logger *logging.Logger) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("sphere: base URL is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		tracer:     otel.Tracer("sphereweb.internal.sphere"),
	}, nil
}

// do performs one JSON request against the backend. A non-2xx response is
// returned as *APIError with a bounded body snippet.
func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	ctx, span := c.tracer.Start(ctx, "sphere."+method+" "+path)
	defer span.End()
	span.SetAttributes(attribute.String("sphere.path", path))

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("sphere: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("sphere: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.send(req, span, out)
}

func (c *Client) send(req *http.Request, span trace.Span, out any) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		c.metrics.ObserveAPILatency(operationLabel(req), "error", time.Since(start).Seconds())
		return fmt.Errorf("sphere: http request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveAPILatency(operationLabel(req), strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("sphere: read response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := strings.TrimSpace(string(respBody))
		if len(msg) > 300 {
			msg = msg[:300]
		}
		c.logger.Error("sphere api request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"status", resp.StatusCode,
		)
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("sphere: unmarshal response: %w", err)
	}
	return nil
}

// operationLabel keeps the latency metric's cardinality bounded: method plus
// the first path segment, never ids.
func operationLabel(req *http.Request) string {
	path := strings.TrimPrefix(req.URL.Path, "/")
	if i := strings.IndexByte(path, '/'); i > 0 {
		path = path[:i]
	}
	return req.Method + " /" + path
}

// Login exchanges credentials for a bearer token. The only unauthenticated
// call in the client.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/login", "", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("sphere: login response missing token")
	}
	return &out, nil
}
