package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Document is an opaque engine document kept as raw JSON.
// The gateway relays it without re-encoding and only peeks at id and tags.
type Document json.RawMessage

// MarshalJSON returns the raw document bytes ("null" for an empty document).
func (d Document) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

// UnmarshalJSON stores a copy of data.
func (d *Document) UnmarshalJSON(data []byte) error {
	*d = append((*d)[:0], data...)
	return nil
}

// ID returns the numeric top-level "id" field.
// ok is false when the field is missing, not a number, or not an integer.
func (d Document) ID() (int64, bool) {
	raw, ok := d.field("id")
	if !ok || len(raw) == 0 || raw[0] == '"' {
		return 0, false
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	// 2.0 is still id 2
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// RawID returns the top-level "id" value as a string for keys,
// accepting both numbers and strings.
func (d Document) RawID() (string, bool) {
	raw, ok := d.field("id")
	if !ok || len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return "", false
		}
		return s, true
	case '{', '[', 'n', 't', 'f':
		return "", false
	default:
		return string(raw), true
	}
}

// Tags returns the string entries of the top-level "tags" array.
func (d Document) Tags() []string {
	raw, ok := d.field("tags")
	if !ok {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	tags := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		tags = append(tags, s)
	}
	return tags
}

// IsObject reports whether the document is a JSON object.
func (d Document) IsObject() bool {
	trimmed := bytes.TrimSpace(d)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func (d Document) field(name string) (json.RawMessage, bool) {
	if !d.IsObject() {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(d, &fields); err != nil {
		return nil, false
	}
	raw, ok := fields[name]
	return raw, ok
}

// ParseDocuments decodes a JSON array into documents without touching their contents.
func ParseDocuments(data []byte) ([]Document, error) {
	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocuments, err)
	}
	return docs, nil
}
