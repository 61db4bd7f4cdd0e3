package blob

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chrisbudnik/cloud-run-jumpstart/internal/logger"
)

// ObjectSink is the object store this gateway writes to. Writes are
// create-or-overwrite; no existence check happens here. Implementations
// must be safe for concurrent use.
type ObjectSink interface {
	Write(ctx context.Context, key string, data []byte) error
}

// ErrSinkFailure is the only failure callers see; the sink's own error
// stays in the logs.
var ErrSinkFailure = errors.New("object store write failed")

const defaultSinkTimeout = 60 * time.Second

type Gateway struct {
	sink    ObjectSink
	timeout time.Duration
}

func NewGateway(sink ObjectSink, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = defaultSinkTimeout
	}
	return &Gateway{sink: sink, timeout: timeout}
}

// Write stores payload under key, generating a key when the caller
// supplies none. Empty payloads are written as empty objects; unlike row
// ingestion there is no emptiness short-circuit. Returns the key used.
func (g *Gateway) Write(ctx context.Context, key string, payload []byte) (string, error) {
	if key == "" {
		key = GenerateKey()
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.sink.Write(ctx, key, payload); err != nil {
		logger.Error("object write failed", map[string]any{
			"key":   key,
			"bytes": len(payload),
			"error": err.Error(),
		})
		return "", ErrSinkFailure
	}

	logger.Info("object written", map[string]any{
		"key":   key,
		"bytes": len(payload),
	})
	return key, nil
}

// GenerateKey builds a collision-resistant object key. Uniqueness of
// caller-supplied keys is the caller's problem; generated ones combine a
// wall-clock timestamp with a random UUID.
func GenerateKey() string {
	return fmt.Sprintf("export-%s-%s.json",
		time.Now().UTC().Format("20060102T150405Z"),
		uuid.NewString(),
	)
}
