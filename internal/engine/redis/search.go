package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/searchgw/internal/domain"
	"github.com/kailas-cloud/searchgw/internal/engine"
)

// jsonRootField is the field name FT.SEARCH uses for the whole JSON document.
const jsonRootField = "$"

// Search runs FT.SEARCH over the index. An empty query matches all documents.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		return nil, &engine.Error{Op: engine.OpSearch, Err: fmt.Errorf("limit must be positive")}
	}

	args := []string{
		e.index, buildQuery(query),
		"LIMIT", "0", strconv.Itoa(limit),
		"DIALECT", "2",
	}

	cmd := e.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := e.do(ctx, cmd).ToArray()
	if err != nil {
		if _, ok := rueidis.IsRedisErr(err); ok {
			return nil, &engine.Error{Op: engine.OpSearch, Err: err}
		}
		return nil, &engine.Error{Op: engine.OpSearch, Err: fmt.Errorf("%w: %w", engine.ErrUnavailable, err)}
	}

	return parseSearchResult(raw)
}

// buildQuery turns free text into an FT.SEARCH query; each term is escaped.
func buildQuery(q string) string {
	terms := strings.Fields(q)
	if len(terms) == 0 {
		return "*"
	}
	for i, t := range terms {
		terms[i] = escapeQuery(t)
	}
	return strings.Join(terms, " ")
}

// parseSearchResult reads [total, key1, [field, value, ...], key2, ...] keeping hit order.
func parseSearchResult(raw []rueidis.RedisMessage) ([]domain.Document, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, &engine.Error{Op: engine.OpSearch, Err: fmt.Errorf("parse total: %w", err)}
	}
	if total == 0 {
		return nil, nil
	}

	docs := make([]domain.Document, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		body, ok := parseFieldPairs(fields)[jsonRootField]
		if !ok {
			continue
		}
		docs = append(docs, domain.Document(body))
	}
	return docs, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`,`, `\,`,
	`.`, `\.`,
)
