package engine

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgw/internal/domain"
	"github.com/kailas-cloud/searchgw/internal/metrics"
)

// Instrumented wraps an Engine with Prometheus metrics and debug logging.
// It never changes results or errors of the inner engine.
type Instrumented struct {
	inner  Engine
	driver string
	logger *zap.Logger
}

var _ Engine = (*Instrumented)(nil)

// NewInstrumented wraps inner. driver is used as the metric label (meilisearch, redis).
func NewInstrumented(inner Engine, driver string, logger *zap.Logger) *Instrumented {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumented{inner: inner, driver: driver, logger: logger}
}

// Search delegates to the inner engine.
func (e *Instrumented) Search(ctx context.Context, query string, limit int) ([]domain.Document, error) {
	start := time.Now()
	docs, err := e.inner.Search(ctx, query, limit)
	e.observe(OpSearch, start, err,
		zap.Int("limit", limit),
		zap.Int("hits", len(docs)),
	)
	return docs, err //nolint:wrapcheck // decorator is transparent
}

// CreateIndex delegates to the inner engine. ErrIndexExists counts as success.
func (e *Instrumented) CreateIndex(ctx context.Context) error {
	start := time.Now()
	err := e.inner.CreateIndex(ctx)
	observed := err
	if isIndexExists(err) {
		observed = nil
	}
	e.observe(OpCreateIndex, start, observed)
	return err //nolint:wrapcheck // decorator is transparent
}

// AddDocuments delegates to the inner engine and counts ingested documents.
func (e *Instrumented) AddDocuments(ctx context.Context, docs []domain.Document) (json.RawMessage, error) {
	start := time.Now()
	raw, err := e.inner.AddDocuments(ctx, docs)
	e.observe(OpAddDocuments, start, err, zap.Int("documents", len(docs)))
	if err == nil {
		metrics.EngineDocumentsIngestedTotal.WithLabelValues(e.driver).Add(float64(len(docs)))
	}
	return raw, err //nolint:wrapcheck // decorator is transparent
}

// Ping delegates to the inner engine.
func (e *Instrumented) Ping(ctx context.Context) error {
	start := time.Now()
	err := e.inner.Ping(ctx)
	e.observe(OpPing, start, err)
	return err //nolint:wrapcheck // decorator is transparent
}

// Close closes the inner engine.
func (e *Instrumented) Close() {
	e.inner.Close()
}

func (e *Instrumented) observe(op string, start time.Time, err error, fields ...zap.Field) {
	duration := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.EngineRequestsTotal.WithLabelValues(e.driver, op, status).Inc()
	metrics.EngineRequestDuration.WithLabelValues(e.driver, op).Observe(duration.Seconds())

	fields = append(fields,
		zap.String("driver", e.driver),
		zap.String("op", op),
		zap.Duration("duration", duration),
	)
	if err != nil {
		e.logger.Warn("Engine request failed", append(fields, zap.Error(err))...)
		return
	}
	e.logger.Debug("Engine request completed", fields...)
}
