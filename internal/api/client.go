// Package api is the HTTP client for the SQL assistant service. Every call
// returns the decoded reply, even for 4xx/5xx statuses, since the service
// reports business failures as {success: false, message} bodies. Only a
// request that fails or a body that does not decode yields an error, always a
// *TransportError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sadopc/querydesk/internal/connection"
	"github.com/sadopc/querydesk/internal/logging"
)

// RequestIDHeader carries a per-request UUID for server-side correlation.
const RequestIDHeader = "X-Request-ID"

// TransportError means no usable reply arrived: the request failed, or the
// body was not the expected JSON.
type TransportError struct {
	Method string
	Path   string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Method, e.Path, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client talks to one service base URL and keeps its session cookie in
// memory for the life of the process.
type Client struct {
	base *url.URL
	http *http.Client
	log  *logrus.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets a per-request timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. Its Jar is replaced
// with a fresh in-memory jar when nil.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		jar := c.http.Jar
		c.http = hc
		if c.http.Jar == nil {
			c.http.Jar = jar
		}
	}
}

// New returns a client for baseURL, e.g. "http://localhost:5000".
func New(baseURL string, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		return nil, fmt.Errorf("api: empty server URL")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("api: parse server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api: server URL %q has no host", baseURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("api: cookie jar: %w", err)
	}

	c := &Client{
		base: u,
		http: &http.Client{Jar: jar},
		log:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server URL with any userinfo removed.
func (c *Client) BaseURL() string {
	return logging.RedactURL(c.base.String())
}

// Login signs in. A successful reply sets the session cookie.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*Reply, error) {
	var out Reply
	if err := c.do(ctx, http.MethodPost, "/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Reply, error) {
	var out Reply
	if err := c.do(ctx, http.MethodPost, "/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Connections lists the signed-in user's saved connections.
func (c *Client) Connections(ctx context.Context) (*ConnectionList, error) {
	var out ConnectionList
	if err := c.do(ctx, http.MethodGet, "/connection", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TestConnection asks the service to try a draft without saving it.
func (c *Client) TestConnection(ctx context.Context, d connection.Draft) (*Reply, error) {
	var out Reply
	if err := c.do(ctx, http.MethodPost, "/connection/test", NewTestRequest(d), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveConnection creates the draft when its id is empty and updates it
// otherwise.
func (c *Client) SaveConnection(ctx context.Context, d connection.Draft) (*Reply, error) {
	if d.AdditionalParams == nil {
		d.AdditionalParams = map[string]string{}
	}
	var out Reply
	if err := c.do(ctx, http.MethodPost, "/connection", d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteConnection removes a saved connection.
func (c *Client) DeleteConnection(ctx context.Context, id string) (*Reply, error) {
	var out Reply
	path := "/connection/" + url.PathEscape(id) + "/delete"
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateSQL turns a natural-language prompt into SQL for a connection.
func (c *Client) GenerateSQL(ctx context.Context, connectionID, prompt string) (*Generated, error) {
	var out Generated
	body := generateRequest{ConnectionID: connectionID, Prompt: prompt}
	if err := c.do(ctx, http.MethodPost, "/api/generate-sql", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RunQuery executes SQL on a connection through the service.
func (c *Client) RunQuery(ctx context.Context, connectionID, query string) (*QueryResult, error) {
	var out QueryResult
	body := runRequest{ConnectionID: connectionID, Query: query}
	if err := c.do(ctx, http.MethodPost, "/api/run-query", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SchemaInfo fetches the schema snapshot of a connection.
func (c *Client) SchemaInfo(ctx context.Context, connectionID string) (*SchemaInfo, error) {
	var out SchemaInfo
	path := "/api/schema-info/" + url.PathEscape(connectionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	reqID := uuid.NewString()
	entry := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": reqID,
	})
	fail := func(status int, err error) error {
		entry.WithField("status", status).Error(logging.Redact(err.Error()))
		return &TransportError{Method: method, Path: path, Status: status, Err: err}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fail(0, fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	u := *c.base
	u.Path = c.base.Path + path
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fail(0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fail(resp.StatusCode, fmt.Errorf("decode reply: %w", err))
	}

	entry.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start).Round(time.Millisecond).String(),
	}).Debug("request complete")
	return nil
}
