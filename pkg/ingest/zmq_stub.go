//go:build !zmq

package ingest

import (
	"context"
	"log/slog"
)

// Stream is unavailable without the zmq build tag.
func Stream(ctx context.Context, endpoint, session string, logger *slog.Logger) (<-chan Sample, error) {
	return nil, ErrZMQDisabled
}
