// Package catalog reshapes search engine answers into the gateway's read
// operations and drives one-shot index setup.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgw/internal/domain"
	"github.com/kailas-cloud/searchgw/internal/engine"
	"github.com/kailas-cloud/searchgw/internal/logger"
	"github.com/kailas-cloud/searchgw/internal/metrics"
)

const (
	// SearchLimit caps the number of hits returned by Search.
	SearchLimit = 10
	// ScanLimit is how many documents PopularTags and GetDetails fetch.
	ScanLimit = 1000
	// PopularTagsLimit caps the number of tags returned by PopularTags.
	PopularTagsLimit = 10

	// StatusIndexCreated is reported by SetupIndex.
	StatusIndexCreated = "index created"
)

// Operation labels for degraded responses.
const (
	opSearch      = "search"
	opPopularTags = "popular_tags"
	opDetails     = "details"
)

// SetupResult is the outcome of SetupIndex. Details is the engine's answer to
// the bulk ingestion, relayed as-is.
type SetupResult struct {
	Status  string          `json:"status"`
	Details json.RawMessage `json:"details"`
}

// Service implements the catalog read operations and index setup.
// Read operations never surface engine failures: they degrade to empty results.
type Service struct {
	engine SearchEngine
}

// New creates a catalog service.
func New(e SearchEngine) *Service {
	return &Service{engine: e}
}

// Search returns at most SearchLimit hits for query.
// An empty query returns an empty slice without calling the engine.
func (s *Service) Search(ctx context.Context, query string) []domain.Document {
	if query == "" {
		return []domain.Document{}
	}

	docs, err := s.engine.Search(ctx, query, SearchLimit)
	if err != nil {
		s.degraded(ctx, opSearch, err, zap.String("query", query))
		return []domain.Document{}
	}
	if docs == nil {
		return []domain.Document{}
	}
	return docs
}

// PopularTags returns up to PopularTagsLimit tag names ordered by descending
// frequency over the first ScanLimit documents.
func (s *Service) PopularTags(ctx context.Context) []string {
	docs, err := s.engine.Search(ctx, "", ScanLimit)
	if err != nil {
		s.degraded(ctx, opPopularTags, err)
		return []string{}
	}
	return domain.TopTags(docs, PopularTagsLimit)
}

// GetDetails returns the first scanned document whose numeric id equals id.
// Engine failures are reported as domain.ErrNotFound.
func (s *Service) GetDetails(ctx context.Context, id int64) (domain.Document, error) {
	docs, err := s.engine.Search(ctx, "", ScanLimit)
	if err != nil {
		s.degraded(ctx, opDetails, err, zap.Int64("id", id))
		return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
	}

	for _, doc := range docs {
		if docID, ok := doc.ID(); ok && docID == id {
			return doc, nil
		}
	}
	return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
}

// SetupIndex loads the JSON array at path, creates the index and ingests all
// documents in one bulk call.
func (s *Service) SetupIndex(ctx context.Context, path string) (SetupResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SetupResult{}, fmt.Errorf("read documents file: %w", err)
	}

	docs, err := domain.ParseDocuments(data)
	if err != nil {
		return SetupResult{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return s.Setup(ctx, docs)
}

// Setup creates the index and ingests docs. A failed create is logged and
// ingestion still runs. A non-success ingestion answer is returned as Details.
func (s *Service) Setup(ctx context.Context, docs []domain.Document) (SetupResult, error) {
	log := logger.FromContext(ctx)

	if err := s.engine.CreateIndex(ctx); err != nil && !errors.Is(err, engine.ErrIndexExists) {
		log.Warn("Create index failed, continuing with ingestion", zap.Error(err))
	}

	raw, err := s.engine.AddDocuments(ctx, docs)
	if err != nil {
		var se *engine.StatusError
		if !errors.As(err, &se) {
			return SetupResult{}, fmt.Errorf("add documents: %w", err)
		}
		log.Warn("Engine rejected documents",
			zap.Int("status", se.Status),
			zap.Int("documents", len(docs)),
		)
		raw = se.Body
	}

	log.Info("Index setup finished", zap.Int("documents", len(docs)))
	return SetupResult{Status: StatusIndexCreated, Details: asJSON(raw)}, nil
}

func (s *Service) degraded(ctx context.Context, op string, err error, fields ...zap.Field) {
	metrics.DegradedResponsesTotal.WithLabelValues(op).Inc()
	logger.FromContext(ctx).Warn("Engine failed, answering with empty result",
		append(fields, zap.String("operation", op), zap.Error(err))...)
}

// asJSON returns raw if it is valid JSON, otherwise raw encoded as a JSON string.
func asJSON(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	if json.Valid(raw) {
		return json.RawMessage(raw)
	}
	quoted, err := json.Marshal(string(raw))
	if err != nil {
		return json.RawMessage("null")
	}
	return quoted
}
