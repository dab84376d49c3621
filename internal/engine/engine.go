// Package engine defines the contract between the gateway and the external
// full-text search engine, plus driver-independent instrumentation.
package engine

import (
	"context"
	"encoding/json"

	"github.com/kailas-cloud/searchgw/internal/domain"
)

// Engine is the search engine facade used by the gateway.
type Engine interface {
	Pinger
	Searcher
	Indexer
	Close()
}

// Pinger checks engine availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Searcher runs full-text queries. An empty query matches every document.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Document, error)
}

// Indexer manages the index and bulk ingestion.
type Indexer interface {
	// CreateIndex creates the configured index. Returns ErrIndexExists if it is already there.
	CreateIndex(ctx context.Context) error
	// AddDocuments ingests docs in one bulk request and returns the engine's raw answer.
	AddDocuments(ctx context.Context, docs []domain.Document) (json.RawMessage, error)
}
