// Package api talks to the remote todo service over HTTP/JSON.
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

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/idilsaglam/tada/internal/model"
)

// RequestIDHeader carries a per-request UUID so client and server logs line up.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 4 << 20

// ErrStatus is wrapped by every StatusError.
var ErrStatus = errors.New("unexpected status")

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (e *StatusError) Unwrap() error { return ErrStatus }

// Client is a thin HTTP client for the /todos collection.
type Client struct {
	base    *url.URL
	http    *http.Client
	logger  *log.Logger
	schemas *schemas
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds every request. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			hc := *c.http
			hc.Timeout = d
			c.http = &hc
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a Client rooted at baseURL, e.g. http://localhost:5000/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", baseURL)
	}
	s, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	c := &Client{
		base:    u,
		http:    &http.Client{},
		logger:  log.New(io.Discard),
		schemas: s,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the collection root the client was built with.
func (c *Client) BaseURL() string { return c.base.String() }

type createRequest struct {
	Task string `json:"task"`
}

type updateRequest struct {
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
}

// List fetches the whole collection in server order.
func (c *Client) List(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := c.do(ctx, http.MethodGet, c.base.JoinPath("todos"), nil, &items, c.schemas.items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// Create asks the server to create an item with the given task text.
func (c *Client) Create(ctx context.Context, task string) (model.Item, error) {
	var it model.Item
	err := c.do(ctx, http.MethodPost, c.base.JoinPath("todos"), createRequest{Task: task}, &it, c.schemas.item)
	return it, err
}

// Update sends the desired task and completed flag for it.ID.
func (c *Client) Update(ctx context.Context, it model.Item) (model.Item, error) {
	var out model.Item
	body := updateRequest{Task: it.Task, Completed: it.Completed}
	err := c.do(ctx, http.MethodPut, c.itemURL(it.ID), body, &out, c.schemas.item)
	return out, err
}

// Delete removes the item. The response body is ignored.
func (c *Client) Delete(ctx context.Context, id model.ID) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil, nil)
}

// itemURL is todos/{id} with id as a single escaped segment. JoinPath is
// not used for the id because it would clean "." and ".." away.
func (c *Client) itemURL(id model.ID) *url.URL {
	u := c.base.JoinPath("todos")
	raw := u.EscapedPath()
	seg := url.PathEscape(id.String())
	if seg == "." || seg == ".." {
		seg = strings.ReplaceAll(seg, ".", "%2E")
	}
	u.Path += "/" + id.String()
	u.RawPath = raw + "/" + seg
	return u
}

func (c *Client) do(ctx context.Context, method string, u *url.URL, body, out any, schema *jsonschema.Schema) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: marshal: %w", method, u.Path, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u.Path, err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", u.Path, "request_id", reqID, "err", err)
		return fmt.Errorf("%s %s: %w", method, u.Path, err)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.logger.Debug("request",
		"method", method,
		"path", u.Path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"took", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: u.Path, Code: resp.StatusCode, Body: snippet(data)}
	}
	if out == nil {
		return nil
	}
	if readErr != nil {
		return fmt.Errorf("%s %s: read body: %w", method, u.Path, readErr)
	}
	if err := validate(schema, data); err != nil {
		return fmt.Errorf("%s %s: %w", method, u.Path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", method, u.Path, ErrInvalidResponse, err)
	}
	return nil
}

func snippet(b []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		s = s[:limit] + "…"
	}
	return s
}
