package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"github.com/mark-c-hall/moviecards/internal/config"
)

const maxErrorBody = 4096

var (
	meter = otel.Meter("github.com/mark-c-hall/moviecards/internal/rest")

	requestCounter  metric.Int64Counter
	requestDuration metric.Float64Histogram
)

// The meter hands back no-op instruments alongside an error, so recording
// stays safe; the error goes to the global OTel handler.
func init() {
	var err error
	requestCounter, err = meter.Int64Counter(
		"moviecards.client.requests",
		metric.WithDescription("Requests sent to the moviecards service"),
	)
	if err != nil {
		otel.Handle(err)
	}
	requestDuration, err = meter.Float64Histogram(
		"moviecards.client.duration",
		metric.WithDescription("Round trip time of requests to the moviecards service"),
		metric.WithUnit("s"),
	)
	if err != nil {
		otel.Handle(err)
	}
}

// Client performs JSON requests against the moviecards service. Non-2xx
// responses come back as *StatusError.
type Client struct {
	HTTPClient http.Client
	Limiter    *rate.Limiter
	Logger     *slog.Logger
}

func NewClient(cfg config.ClientConfig, logger *slog.Logger) *Client {
	client := Client{
		HTTPClient: http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Limiter: rate.NewLimiter(rate.Every(time.Second/time.Duration(cfg.Limit)), cfg.Burst),
		Logger:  logger,
	}
	return &client
}

// Get decodes the JSON response of a GET into out.
func (c *Client) Get(ctx context.Context, url string, out any) error {
	return c.do(ctx, http.MethodGet, url, nil, out)
}

// Post sends body as JSON. A *string out receives the raw response text.
func (c *Client) Post(ctx context.Context, url string, body, out any) error {
	return c.do(ctx, http.MethodPost, url, body, out)
}

func (c *Client) Put(ctx context.Context, url string, body any) error {
	return c.do(ctx, http.MethodPut, url, body, nil)
}

func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("error creating http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.record(ctx, method, "error", start)
		return fmt.Errorf("error making http request: %w", err)
	}
	defer resp.Body.Close()

	c.record(ctx, method, statusClass(resp.StatusCode), start)
	c.logger().DebugContext(ctx, "moviecards request",
		"method", method,
		"url", url,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	switch v := out.(type) {
	case nil:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case *string:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("error reading response body: %w", err)
		}
		*v = unquote(strings.TrimSpace(string(data)))
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding %s %s response: %w", method, url, err)
	}
	return nil
}

func (c *Client) record(ctx context.Context, method, status string, start time.Time) {
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("status_class", status),
	)
	requestCounter.Add(ctx, 1, attrs)
	requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}

// unquote turns a JSON string literal such as "12" into 12; anything else is
// returned untouched.
func unquote(s string) string {
	if !strings.HasPrefix(s, `"`) {
		return s
	}
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s
}
