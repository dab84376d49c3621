package redis

import (
	"context"
	"strconv"

	"github.com/kailas-cloud/searchgw/internal/engine"
)

// CreateIndex creates the FT index over JSON keys with the engine's prefix.
func (e *Engine) CreateIndex(ctx context.Context) error {
	cmd := e.b().Arbitrary("FT.CREATE").Args(e.createArgs()...).Build()
	if err := e.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return engine.ErrIndexExists
		}
		return &engine.Error{Op: engine.OpCreateIndex, Err: err}
	}
	return nil
}

// createArgs builds: <index> ON JSON PREFIX 1 <index>: SCHEMA $.f AS f TEXT ... $.tags[*] AS tags TAG
func (e *Engine) createArgs() []string {
	args := []string{
		e.index,
		"ON", "JSON",
		"PREFIX", strconv.Itoa(1), e.prefix,
		"SCHEMA",
	}
	for _, f := range e.textFields {
		args = append(args, "$."+f, "AS", f, "TEXT")
	}
	args = append(args, "$."+e.tagField+"[*]", "AS", e.tagField, "TAG")
	return args
}
