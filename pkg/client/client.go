package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Operation names used in logs and metrics.
const (
	opSearch      = "search"
	opPopularTags = "popular_tags"
	opDetails     = "details"
	opSetup       = "setup"
	opHealth      = "health"
)

// Document is a document as returned by the gateway, untouched.
type Document = json.RawMessage

// SetupResult is the answer of POST /setup.
type SetupResult struct {
	Status  string          `json:"status"`
	Details json.RawMessage `json:"details"`
}

// HealthReport is the answer of GET /health.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Healthy reports whether every check passed.
func (h HealthReport) Healthy() bool { return h.Status == "ok" }

// Client calls a searchgw instance. It is safe for concurrent use.
type Client struct {
	base   *url.URL
	apiKey string
	origin string
	http   *http.Client
	obs    *observer
}

// New creates a Client for the gateway at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("searchgw: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("searchgw: base url must be http(s), got %q", baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = http.DefaultClient
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, fmt.Errorf("searchgw: init observer: %w", err)
	}

	return &Client{
		base:   base,
		apiKey: cfg.apiKey,
		origin: cfg.origin,
		http:   hc,
		obs:    obs,
	}, nil
}

// Search returns up to 10 documents matching q. An empty q returns no documents.
func (c *Client) Search(ctx context.Context, q string) ([]Document, error) {
	var docs []Document
	err := c.call(ctx, opSearch, http.MethodGet, "/search?"+url.Values{"q": {q}}.Encode(), &docs, http.StatusOK)
	return docs, err
}

// PopularTags returns up to 10 tag names, most frequent first.
func (c *Client) PopularTags(ctx context.Context) ([]string, error) {
	var tags []string
	err := c.call(ctx, opPopularTags, http.MethodGet, "/popular-tags", &tags, http.StatusOK)
	return tags, err
}

// Details returns the document with the given numeric id, or ErrNotFound.
func (c *Client) Details(ctx context.Context, id int64) (Document, error) {
	var doc Document
	err := c.call(ctx, opDetails, http.MethodGet, "/details/"+strconv.FormatInt(id, 10), &doc, http.StatusOK)
	return doc, err
}

// Setup asks the gateway to create the index and ingest its documents file.
func (c *Client) Setup(ctx context.Context) (SetupResult, error) {
	var res SetupResult
	err := c.call(ctx, opSetup, http.MethodPost, "/setup", &res, http.StatusOK)
	return res, err
}

// Health returns the gateway health report. A degraded gateway is not an error.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	var rep HealthReport
	err := c.call(ctx, opHealth, http.MethodGet, "/health", &rep, http.StatusOK, http.StatusServiceUnavailable)
	return rep, err
}

// reply is one raw gateway answer.
type reply struct {
	status    int
	body      []byte
	requestID string
}

// call sends one request, decodes an accepted answer into dest and records the call.
func (c *Client) call(ctx context.Context, op, method, pathAndQuery string, dest any, accepted ...int) error {
	start := time.Now()
	rep, err := c.do(ctx, method, pathAndQuery)
	if err == nil {
		err = rep.decode(op, dest, accepted)
	}
	c.obs.observe(op, start, rep.requestID, err)
	return err
}

func (r reply) decode(op string, dest any, accepted []int) error {
	if err := checkStatus(op, r.status, r.body, accepted...); err != nil {
		return err
	}
	if err := json.Unmarshal(r.body, dest); err != nil {
		return fmt.Errorf("searchgw: %s: %w: %w", op, ErrInvalidResponse, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, pathAndQuery string) (reply, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+pathAndQuery, http.NoBody)
	if err != nil {
		return reply{}, fmt.Errorf("searchgw: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if c.origin != "" {
		req.Header.Set("Origin", c.origin)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return reply{}, fmt.Errorf("searchgw: %s %s: %w", method, pathAndQuery, err)
	}
	defer func() { _ = resp.Body.Close() }()

	rep := reply{status: resp.StatusCode, requestID: resp.Header.Get("X-Request-ID")}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return rep, fmt.Errorf("searchgw: read response: %w", err)
	}
	rep.body = buf.Bytes()
	return rep, nil
}

func checkStatus(op string, status int, body []byte, accepted ...int) error {
	for _, s := range accepted {
		if status == s {
			return nil
		}
	}
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusForbidden:
		return ErrForbidden
	}
	return &StatusError{Op: op, Status: status, Body: body}
}

// IsStatus reports whether err is a StatusError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}
