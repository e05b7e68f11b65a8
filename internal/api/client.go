// Package api talks to the SCIC backend. Admin resources go through the
// session guard; public resources use the plain HTTP client.
package api

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

	"github.com/google/uuid"

	"github.com/existflow/scic/internal/config"
	"github.com/existflow/scic/internal/logger"
	"github.com/existflow/scic/internal/session"
)

const maxErrorBody = 64 << 10

// Client is the backend API client
type Client struct {
	cfg        config.API
	guard      *session.Guard
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a client. httpClient should share the cookie jar the guard
// uses, so the credential set at login is sent on guarded calls.
func New(cfg config.API, guard *session.Guard, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:        cfg,
		guard:      guard,
		httpClient: httpClient,
		log:        logger.Global().WithFields(logger.F("component", "api")),
	}
}

// WithLogger replaces the client's logger
func (c *Client) WithLogger(l *logger.Logger) *Client {
	c.log = l.WithFields(logger.F("component", "api"))
	return c
}

// Guard returns the session guard used for admin calls
func (c *Client) Guard() *session.Guard {
	return c.guard
}

func (c *Client) resourceURL(path string, id ...string) string {
	u := c.cfg.URL(path)
	for _, part := range id {
		u += "/" + url.PathEscape(part)
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, rawURL string, v interface{}) (*http.Request, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return c.newRequest(ctx, method, rawURL, bytes.NewReader(data), "application/json")
}

// sendPublic issues a request that needs no session
func (c *Client) sendPublic(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.trace(req, resp, err, start)
	if err != nil {
		return nil, networkError(err)
	}
	return resp, nil
}

// sendGuarded issues a request through the session guard
func (c *Client) sendGuarded(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.guard.Do(ctx, req)
	c.trace(req, resp, err, start)
	if err != nil {
		if errors.Is(err, session.ErrUnauthenticated) || errors.Is(err, session.ErrSessionExpired) {
			return nil, err
		}
		return nil, networkError(err)
	}
	return resp, nil
}

func (c *Client) trace(req *http.Request, resp *http.Response, err error, start time.Time) {
	fields := []logger.Field{
		logger.F("method", req.Method),
		logger.F("url", req.URL.String()),
		logger.F("request_id", req.Header.Get("X-Request-ID")),
		logger.F("duration", time.Since(start).String()),
	}
	if err != nil {
		c.log.Warn("API request failed", append(fields, logger.F("error", err))...)
		return
	}
	c.log.Debug("API request", append(fields, logger.F("status", resp.StatusCode))...)
}

// envelope is the backend's {status, data, message} wrapper
type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// decode checks the status and unmarshals the body into out, unwrapping the
// envelope when present. out may be nil. The body is always closed.
func decode(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}
	return decodeBody(resp.StatusCode, body, out)
}

func decodeBody(status int, body []byte, out interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}

	if trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err == nil {
			if isEnvelope(fields) {
				var env envelope
				if err := json.Unmarshal(trimmed, &env); err != nil {
					return fmt.Errorf("failed to decode response: %w", err)
				}
				if env.Status == "error" || env.Status == "fail" {
					return &Error{StatusCode: status, Message: firstNonEmpty(env.Message, env.Error, genericMessage(status))}
				}
				if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
					return nil
				}
				if err := json.Unmarshal(env.Data, out); err != nil {
					return fmt.Errorf("failed to decode response: %w", err)
				}
				return nil
			}
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// isEnvelope tells the wrapper apart from a bare resource. A member also
// has a "status" field, so only the wrapper's status values count.
func isEnvelope(fields map[string]json.RawMessage) bool {
	if _, ok := fields["data"]; ok {
		return true
	}
	raw, ok := fields["status"]
	if !ok {
		return false
	}
	var status string
	if json.Unmarshal(raw, &status) != nil {
		return false
	}
	switch status {
	case "success", "error", "fail":
		return true
	}
	return false
}

func errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var env envelope
	msg := ""
	if json.Unmarshal(body, &env) == nil {
		msg = firstNonEmpty(env.Message, env.Error)
	}
	if msg == "" {
		msg = genericMessage(resp.StatusCode)
	}
	return &Error{StatusCode: resp.StatusCode, Message: msg}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
