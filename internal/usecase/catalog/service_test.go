package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/searchgw/internal/domain"
	"github.com/kailas-cloud/searchgw/internal/engine"
	"github.com/kailas-cloud/searchgw/internal/metrics"
)

// --- Mocks ---

type searchCall struct {
	query string
	limit int
}

type mockEngine struct {
	docs      []domain.Document
	searchErr error
	createErr error
	addRaw    json.RawMessage
	addErr    error

	searches    []searchCall
	createCalls int
	added       [][]domain.Document
}

func (m *mockEngine) Search(_ context.Context, query string, limit int) ([]domain.Document, error) {
	m.searches = append(m.searches, searchCall{query: query, limit: limit})
	return m.docs, m.searchErr
}

func (m *mockEngine) CreateIndex(_ context.Context) error {
	m.createCalls++
	return m.createErr
}

func (m *mockEngine) AddDocuments(_ context.Context, docs []domain.Document) (json.RawMessage, error) {
	m.added = append(m.added, docs)
	return m.addRaw, m.addErr
}

func scenarioDocs() []domain.Document {
	return []domain.Document{
		domain.Document(`{"id":1,"tags":["a","b"]}`),
		domain.Document(`{"id":2,"tags":["a"]}`),
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "documents.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

// --- Search ---

func TestSearch_EmptyQuerySkipsEngine(t *testing.T) {
	m := &mockEngine{docs: scenarioDocs()}
	got := New(m).Search(context.Background(), "")

	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
	if len(m.searches) != 0 {
		t.Errorf("expected no engine call, got %d", len(m.searches))
	}
}

func TestSearch_PassesLimit(t *testing.T) {
	m := &mockEngine{docs: scenarioDocs()}
	got := New(m).Search(context.Background(), "matrix")

	if len(got) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(got))
	}
	if len(m.searches) != 1 || m.searches[0] != (searchCall{"matrix", SearchLimit}) {
		t.Errorf("unexpected engine calls: %+v", m.searches)
	}
}

func TestSearch_EngineFailureIsEmpty(t *testing.T) {
	m := &mockEngine{searchErr: engine.ErrUnavailable}
	before := testutil.ToFloat64(metrics.DegradedResponsesTotal.WithLabelValues(opSearch))

	got := New(m).Search(context.Background(), "matrix")
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
	after := testutil.ToFloat64(metrics.DegradedResponsesTotal.WithLabelValues(opSearch))
	if after-before != 1 {
		t.Errorf("expected degraded counter +1, got %f", after-before)
	}
}

func TestSearch_NilHitsBecomeEmpty(t *testing.T) {
	got := New(&mockEngine{}).Search(context.Background(), "x")
	if got == nil {
		t.Fatal("expected non-nil slice")
	}
}

// --- PopularTags ---

func TestPopularTags_Scenario(t *testing.T) {
	m := &mockEngine{docs: scenarioDocs()}
	got := New(m).PopularTags(context.Background())

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected [a b], got %v", got)
	}
	if len(m.searches) != 1 || m.searches[0] != (searchCall{"", ScanLimit}) {
		t.Errorf("unexpected engine calls: %+v", m.searches)
	}
}

func TestPopularTags_AtMostTen(t *testing.T) {
	var docs []domain.Document
	for _, tag := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		docs = append(docs, domain.Document(`{"tags":["`+tag+`"]}`))
	}
	got := New(&mockEngine{docs: docs}).PopularTags(context.Background())
	if len(got) != PopularTagsLimit {
		t.Errorf("expected %d tags, got %d", PopularTagsLimit, len(got))
	}
}

func TestPopularTags_EngineFailureIsEmpty(t *testing.T) {
	got := New(&mockEngine{searchErr: errors.New("boom")}).PopularTags(context.Background())
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestPopularTags_NoDocuments(t *testing.T) {
	got := New(&mockEngine{}).PopularTags(context.Background())
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

// --- GetDetails ---

func TestGetDetails_Found(t *testing.T) {
	m := &mockEngine{docs: scenarioDocs()}
	doc, err := New(m).GetDetails(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(doc) != `{"id":2,"tags":["a"]}` {
		t.Errorf("unexpected doc: %s", doc)
	}
	if m.searches[0] != (searchCall{"", ScanLimit}) {
		t.Errorf("unexpected engine call: %+v", m.searches[0])
	}
}

func TestGetDetails_FirstMatchWins(t *testing.T) {
	m := &mockEngine{docs: []domain.Document{
		domain.Document(`{"id":"7","v":"string id"}`),
		domain.Document(`{"id":7,"v":"first"}`),
		domain.Document(`{"id":7,"v":"second"}`),
	}}
	doc, err := New(m).GetDetails(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(doc) != `{"id":7,"v":"first"}` {
		t.Errorf("unexpected doc: %s", doc)
	}
}

func TestGetDetails_NotFound(t *testing.T) {
	_, err := New(&mockEngine{docs: scenarioDocs()}).GetDetails(context.Background(), 99)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetDetails_EngineFailureIsNotFound(t *testing.T) {
	_, err := New(&mockEngine{searchErr: engine.ErrUnavailable}).GetDetails(context.Background(), 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, engine.ErrUnavailable) {
		t.Error("engine failure must not leak to callers")
	}
}

// --- SetupIndex ---

func TestSetupIndex_OneCreateOneBulk(t *testing.T) {
	path := writeFile(t, `[{"id":1},{"id":2},{"id":3}]`)
	m := &mockEngine{addRaw: json.RawMessage(`{"taskUid":1,"status":"enqueued"}`)}

	res, err := New(m).SetupIndex(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.createCalls != 1 {
		t.Errorf("expected 1 create call, got %d", m.createCalls)
	}
	if len(m.added) != 1 || len(m.added[0]) != 3 {
		t.Fatalf("expected one bulk call with 3 docs, got %v", m.added)
	}
	if res.Status != StatusIndexCreated {
		t.Errorf("status = %q", res.Status)
	}
	if string(res.Details) != `{"taskUid":1,"status":"enqueued"}` {
		t.Errorf("details = %s", res.Details)
	}
}

func TestSetupIndex_ExistingIndexIgnored(t *testing.T) {
	path := writeFile(t, `[{"id":1}]`)
	m := &mockEngine{createErr: engine.ErrIndexExists, addRaw: json.RawMessage(`{}`)}

	if _, err := New(m).SetupIndex(context.Background(), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.added) != 1 {
		t.Errorf("expected bulk call after existing index, got %d", len(m.added))
	}
}

func TestSetupIndex_CreateFailureStillIngests(t *testing.T) {
	path := writeFile(t, `[{"id":1}]`)
	m := &mockEngine{createErr: errors.New("denied"), addRaw: json.RawMessage(`{}`)}

	if _, err := New(m).SetupIndex(context.Background(), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.added) != 1 {
		t.Errorf("expected bulk call, got %d", len(m.added))
	}
}

func TestSetupIndex_RejectedBodyBecomesDetails(t *testing.T) {
	path := writeFile(t, `[{"x":1}]`)
	m := &mockEngine{addErr: &engine.StatusError{
		Op:     engine.OpAddDocuments,
		Status: 400,
		Body:   []byte(`{"code":"missing_document_id"}`),
	}}

	res, err := New(m).SetupIndex(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(res.Details) != `{"code":"missing_document_id"}` {
		t.Errorf("details = %s", res.Details)
	}
}

func TestSetupIndex_NonJSONBodyIsQuoted(t *testing.T) {
	path := writeFile(t, `[]`)
	m := &mockEngine{addErr: &engine.StatusError{Op: engine.OpAddDocuments, Status: 502, Body: []byte("bad gateway")}}

	res, err := New(m).SetupIndex(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(res.Details) != `"bad gateway"` {
		t.Errorf("details = %s", res.Details)
	}
}

func TestSetupIndex_TransportFailure(t *testing.T) {
	path := writeFile(t, `[{"id":1}]`)
	m := &mockEngine{addErr: &engine.Error{Op: engine.OpAddDocuments, Err: engine.ErrUnavailable}}

	_, err := New(m).SetupIndex(context.Background(), path)
	if !errors.Is(err, engine.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSetupIndex_MissingFile(t *testing.T) {
	m := &mockEngine{}
	_, err := New(m).SetupIndex(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
	if m.createCalls != 0 || len(m.added) != 0 {
		t.Error("engine must not be called when the file is missing")
	}
}

func TestSetupIndex_InvalidJSON(t *testing.T) {
	path := writeFile(t, `{"id":1}`)
	_, err := New(&mockEngine{}).SetupIndex(context.Background(), path)
	if !errors.Is(err, domain.ErrInvalidDocuments) {
		t.Fatalf("expected ErrInvalidDocuments, got %v", err)
	}
}
