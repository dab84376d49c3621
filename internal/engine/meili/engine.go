// Package meili implements the engine contract over the Meilisearch HTTP API.
package meili

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

	"github.com/kailas-cloud/searchgw/internal/domain"
	"github.com/kailas-cloud/searchgw/internal/engine"
)

// Compile-time check: Engine implements engine.Engine.
var _ engine.Engine = (*Engine)(nil)

// maxResponseBytes caps how much of an engine answer is read into memory.
const maxResponseBytes = 64 << 20

// Config holds the Meilisearch connection settings.
type Config struct {
	Host    string
	APIKey  string
	Index   string
	Timeout time.Duration // 0 = no client-side timeout

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Engine talks to a single Meilisearch index.
type Engine struct {
	base   *url.URL
	apiKey string
	index  string
	client *http.Client
}

// NewEngine validates cfg and creates a Meilisearch engine.
func NewEngine(cfg *Config) (*Engine, error) {
	if cfg.Host == "" {
		return nil, errors.New("meilisearch host is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.Host, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse meilisearch host: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("meilisearch host must be http(s), got %q", cfg.Host)
	}
	if cfg.Index == "" {
		return nil, errors.New("index name is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Engine{
		base:   base,
		apiKey: cfg.APIKey,
		index:  cfg.Index,
		client: client,
	}, nil
}

type searchRequest struct {
	Q     string `json:"q"`
	Limit int    `json:"limit"`
}

type searchResponse struct {
	Hits []domain.Document `json:"hits"`
}

// Search runs POST /indexes/{index}/search and returns the hits as-is.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]domain.Document, error) {
	body, err := json.Marshal(searchRequest{Q: query, Limit: limit})
	if err != nil {
		return nil, &engine.Error{Op: engine.OpSearch, Err: err}
	}

	raw, err := e.do(ctx, engine.OpSearch, http.MethodPost, e.indexPath("search"), body)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &engine.Error{Op: engine.OpSearch, Err: fmt.Errorf("decode hits: %w", err)}
	}
	return resp.Hits, nil
}

type createIndexRequest struct {
	UID string `json:"uid"`
}

// CreateIndex runs POST /indexes. Meilisearch enqueues creation asynchronously,
// so an existing index usually surfaces as a failed task rather than an error here.
func (e *Engine) CreateIndex(ctx context.Context) error {
	body, err := json.Marshal(createIndexRequest{UID: e.index})
	if err != nil {
		return &engine.Error{Op: engine.OpCreateIndex, Err: err}
	}

	_, err = e.do(ctx, engine.OpCreateIndex, http.MethodPost, "/indexes", body)
	if err != nil {
		var se *engine.StatusError
		if errors.As(err, &se) && errorCode(se.Body) == "index_already_exists" {
			return engine.ErrIndexExists
		}
		return err
	}
	return nil
}

// AddDocuments runs POST /indexes/{index}/documents with all docs in one request.
func (e *Engine) AddDocuments(ctx context.Context, docs []domain.Document) (json.RawMessage, error) {
	if docs == nil {
		docs = []domain.Document{}
	}
	body, err := json.Marshal(docs)
	if err != nil {
		return nil, &engine.Error{Op: engine.OpAddDocuments, Err: err}
	}

	raw, err := e.do(ctx, engine.OpAddDocuments, http.MethodPost, e.indexPath("documents"), body)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Ping checks GET /health.
func (e *Engine) Ping(ctx context.Context) error {
	_, err := e.do(ctx, engine.OpPing, http.MethodGet, "/health", nil)
	return err
}

// Close releases idle connections.
func (e *Engine) Close() {
	e.client.CloseIdleConnections()
}

func (e *Engine) indexPath(suffix string) string {
	return "/indexes/" + url.PathEscape(e.index) + "/" + suffix
}

// do sends one request. Non-2xx answers return *engine.StatusError carrying the raw body.
func (e *Engine) do(ctx context.Context, op, method, path string, body []byte) (json.RawMessage, error) {
	u := *e.base
	u.Path = strings.TrimRight(u.Path, "/") + path

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, &engine.Error{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &engine.Error{Op: op, Err: fmt.Errorf("%w: %w", engine.ErrUnavailable, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &engine.Error{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &engine.StatusError{Op: op, Status: resp.StatusCode, Body: raw}
	}
	return raw, nil
}

// errorCode extracts the "code" field of a Meilisearch error body.
func errorCode(body []byte) string {
	var parsed struct {
		Code string `json:"code"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Code
	}
	return ""
}
