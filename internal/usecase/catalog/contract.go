package catalog

import (
	"context"
	"encoding/json"

	"github.com/kailas-cloud/searchgw/internal/domain"
)

// SearchEngine is the subset of the engine the catalog needs.
type SearchEngine interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Document, error)
	CreateIndex(ctx context.Context) error
	AddDocuments(ctx context.Context, docs []domain.Document) (json.RawMessage, error)
}
