package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrisbudnik/cloud-run-jumpstart/internal/logger"
)

const defaultSinkTimeout = 60 * time.Second

// Gateway validates ingestion requests and drives the warehouse sink.
// Single-shot semantics: at most one load submission per request, no
// retries.
type Gateway struct {
	sink    TableSink
	cache   ExistenceCache // optional, nil disables caching
	timeout time.Duration
}

func NewGateway(sink TableSink, cache ExistenceCache, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = defaultSinkTimeout
	}
	return &Gateway{
		sink:    sink,
		cache:   cache,
		timeout: timeout,
	}
}

// Ingest submits one load job. An empty batch returns MissingData without
// touching the sink. With CheckExists set, a missing destination fails
// with ErrNotFound before any write attempt.
func (g *Gateway) Ingest(ctx context.Context, req Request) (Result, error) {
	if len(req.Rows) == 0 {
		logger.Warn("no data to load", map[string]any{"table_id": req.TableID})
		return MissingData, nil
	}

	ref, err := ParseTableRef(req.TableID)
	if err != nil {
		return "", err
	}

	if req.Strategy == "" {
		req.Strategy = WriteAppend
	}
	if !req.Strategy.Valid() {
		return "", fmt.Errorf("%w: unknown write disposition %q", ErrInvalidInput, req.Strategy)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if req.CheckExists {
		if err := g.checkExists(ctx, ref); err != nil {
			return "", err
		}
	}

	cfg := LoadConfig{
		Schema:           req.Schema,
		Strategy:         req.Strategy,
		PartitionField:   req.PartitionField,
		ClusteringFields: req.ClusteringFields,
	}

	if err := g.sink.Load(ctx, ref, req.Rows, cfg); err != nil {
		logger.Error("load failed", map[string]any{
			"table_id": ref.String(),
			"rows":     len(req.Rows),
			"error":    err.Error(),
		})
		return "", fmt.Errorf("%w: load into %s", ErrSinkFailure, ref)
	}

	logger.Info("load completed", map[string]any{
		"table_id": ref.String(),
		"rows":     len(req.Rows),
	})
	return ExportCompleted, nil
}

// InsertRow streams one record into the destination, outside any load
// job. A missing destination is ErrNotFound; everything else the sink
// reports becomes ErrSinkFailure.
func (g *Gateway) InsertRow(ctx context.Context, tableID string, row Row) error {
	ref, err := ParseTableRef(tableID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.checkExists(ctx, ref); err != nil {
		return err
	}

	if err := g.sink.InsertRow(ctx, ref, row); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		logger.Error("row insert failed", map[string]any{
			"table_id": ref.String(),
			"error":    err.Error(),
		})
		return fmt.Errorf("%w: insert into %s", ErrSinkFailure, ref)
	}

	return nil
}

// checkExists consults the cache first: a remembered destination skips
// the sink round trip entirely. Only positive results are cached, so a
// table created after a miss is picked up on the next check.
func (g *Gateway) checkExists(ctx context.Context, ref TableRef) error {
	if g.cache != nil && g.cache.Seen(ctx, ref.String()) {
		return nil
	}

	exists, err := g.sink.Exists(ctx, ref)
	if err != nil {
		logger.Error("existence check failed", map[string]any{
			"table_id": ref.String(),
			"error":    err.Error(),
		})
		return fmt.Errorf("%w: existence check for %s", ErrSinkFailure, ref)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}

	if g.cache != nil {
		g.cache.Mark(ctx, ref.String())
	}
	return nil
}
