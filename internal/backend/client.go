// Package backend is a typed client for the external commerce REST API.
//
// Every call maps failures onto a small taxonomy (see errors.go): a missing or
// rejected credential is ErrUnauthenticated, a non-2xx answer or transport
// failure is ErrRequestFailed, an unparsable body is ErrMalformedResponse
// (itself a RequestFailure) and an elapsed caller deadline is ErrTimeout.
// The client never retries.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyBytes = 1 << 20

// Config holds the backend client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the commerce backend over HTTP/JSON.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// NewClient creates a backend client for the given base URL.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", cfg.BaseURL)
	}

	return &Client{
		baseURL: base,
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout: cfg.Timeout,
		logger:  logger.With().Str("component", "backend-client").Logger(),
	}, nil
}

// request describes a single backend call.
type request struct {
	method string
	path   string
	query  url.Values
	token  string
	auth   bool
	body   any
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do executes req and decodes a successful JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	fail := func(status int, kind error, message string) error {
		return &APIError{
			Method:   req.method,
			Endpoint: req.path,
			Status:   status,
			Message:  message,
			Kind:     kind,
		}
	}

	if req.auth && req.token == "" {
		return fail(0, ErrUnauthenticated, "no credential")
	}

	// A caller deadline, such as checkout's, takes precedence over the
	// per-request timeout.
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s request: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(payload)
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", req.method, req.path, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		kind := ErrRequestFailed
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = ErrTimeout
		}
		c.logger.Warn().
			Err(err).
			Str("method", req.method).
			Str("path", req.path).
			Dur("duration", time.Since(start)).
			Msg("backend call failed")
		return fail(0, kind, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		kind := ErrRequestFailed
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = ErrTimeout
		}
		return fail(resp.StatusCode, kind, "failed to read response body")
	}

	c.logger.Debug().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := errorMessage(raw)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return fail(resp.StatusCode, ErrUnauthenticated, message)
		case http.StatusForbidden:
			return fail(resp.StatusCode, ErrForbidden, message)
		case http.StatusNotFound:
			return fail(resp.StatusCode, ErrNotFound, message)
		case http.StatusGatewayTimeout:
			return fail(resp.StatusCode, ErrTimeout, message)
		default:
			return fail(resp.StatusCode, ErrRequestFailed, message)
		}
	}

	if out == nil {
		return nil
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return fail(resp.StatusCode, ErrMalformedResponse, "empty response body")
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fail(resp.StatusCode, ErrMalformedResponse, err.Error())
	}

	return nil
}

// errorMessage extracts the backend's error text, falling back to the raw body.
func errorMessage(raw []byte) string {
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil {
		if eb.Error != "" {
			return eb.Error
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
