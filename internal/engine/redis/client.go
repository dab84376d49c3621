// Package redis implements the engine contract on the Redis Query Engine
// (FT.* commands over JSON documents) via rueidis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchgw/internal/engine"
)

// Compile-time check: Engine implements engine.Engine.
var _ engine.Engine = (*Engine)(nil)

// DefaultTagField is the document field indexed as TAG.
const DefaultTagField = "tags"

// Config holds connection and index parameters for a Redis engine.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int

	Index      string
	TextFields []string // top-level fields indexed as TEXT
	TagField   string   // array field indexed as TAG (default "tags")
}

// Engine implements engine.Engine for Redis 8+.
type Engine struct {
	client     rueidis.Client
	index      string
	prefix     string
	textFields []string
	tagField   string
}

// NewEngine creates a Redis engine via rueidis.
func NewEngine(cfg Config) (*Engine, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	e, err := newEngine(client, cfg)
	if err != nil {
		client.Close()
		return nil, err
	}
	return e, nil
}

func newEngine(client rueidis.Client, cfg Config) (*Engine, error) {
	if cfg.Index == "" {
		return nil, errors.New("index name is required")
	}
	if !isValidIdentifier(cfg.Index) {
		return nil, fmt.Errorf("index name %q contains invalid characters", cfg.Index)
	}

	tagField := cfg.TagField
	if tagField == "" {
		tagField = DefaultTagField
	}
	for _, f := range append([]string{tagField}, cfg.TextFields...) {
		if !isValidIdentifier(f) {
			return nil, fmt.Errorf("field name %q contains invalid characters", f)
		}
	}

	return &Engine{
		client:     client,
		index:      cfg.Index,
		prefix:     cfg.Index + ":",
		textFields: cfg.TextFields,
		tagField:   tagField,
	}, nil
}

// Ping checks connectivity.
func (e *Engine) Ping(ctx context.Context) error {
	cmd := e.client.B().Ping().Build()
	if err := e.client.Do(ctx, cmd).Error(); err != nil {
		return &engine.Error{Op: engine.OpPing, Err: fmt.Errorf("%w: %w", engine.ErrUnavailable, err)}
	}
	return nil
}

// Close shuts down the client.
func (e *Engine) Close() {
	e.client.Close()
}

func (e *Engine) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return e.client.Do(ctx, cmd)
}

func (e *Engine) b() rueidis.Builder {
	return e.client.B()
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}

// isValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func isValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
