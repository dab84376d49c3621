package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchgw/internal/domain"
	"github.com/kailas-cloud/searchgw/internal/engine"
)

type addDocumentsResponse struct {
	IndexUID string `json:"indexUid"`
	Indexed  int    `json:"indexed"`
}

// AddDocuments stores every document with JSON.SET in a single DoMulti round-trip.
// Documents without a scalar id get a random key.
func (e *Engine) AddDocuments(ctx context.Context, docs []domain.Document) (json.RawMessage, error) {
	if len(docs) > 0 {
		cmds := make([]rueidis.Completed, len(docs))
		keys := make([]string, len(docs))
		for i, doc := range docs {
			keys[i] = e.documentKey(doc)
			cmds[i] = e.b().Arbitrary("JSON.SET").Keys(keys[i]).Args("$", string(doc)).Build()
		}

		results := e.client.DoMulti(ctx, cmds...)
		for i, res := range results {
			if err := res.Error(); err != nil {
				return nil, &engine.Error{Op: engine.OpAddDocuments, Err: fmt.Errorf("key %s: %w", keys[i], err)}
			}
		}
	}

	raw, err := json.Marshal(addDocumentsResponse{IndexUID: e.index, Indexed: len(docs)})
	if err != nil {
		return nil, &engine.Error{Op: engine.OpAddDocuments, Err: err}
	}
	return raw, nil
}

func (e *Engine) documentKey(doc domain.Document) string {
	if id, ok := doc.RawID(); ok {
		return e.prefix + id
	}
	return e.prefix + uuid.NewString()
}
