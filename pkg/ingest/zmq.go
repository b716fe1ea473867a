//go:build zmq

package ingest

import (
	"context"
	"log/slog"
	"syscall"

	"github.com/pebbe/zmq4"

	"github.com/teslashibe/go-mindwave/pkg/protocol"
)

// Stream connects a PULL socket to endpoint and emits every CBOR landmarks
// message under the given session name. Bad messages are logged and skipped.
func Stream(ctx context.Context, endpoint, session string, logger *slog.Logger) (<-chan Sample, error) {
	if logger == nil {
		logger = slog.Default()
	}
	socket, err := zmq4.NewSocket(zmq4.PULL)
	if err != nil {
		return nil, err
	}
	if err := socket.Connect(endpoint); err != nil {
		_ = socket.Close()
		return nil, err
	}
	// wake up periodically to observe ctx
	if err := socket.SetRcvtimeo(pollInterval); err != nil {
		_ = socket.Close()
		return nil, err
	}

	skipped := newThrottledWarn(warnInterval, logger.With("endpoint", endpoint))
	out := make(chan Sample, 128)
	go func() {
		defer close(out)
		defer socket.Close()

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			msg, err := socket.RecvBytes(0)
			if err != nil {
				if zmq4.AsErrno(err) == zmq4.Errno(syscall.EAGAIN) {
					continue
				}
				skipped.warn("ingest recv error", "error", err)
				continue
			}

			sample, err := Decode(msg, protocol.CBOR, session)
			if err != nil {
				skipped.warn("ingest decode skipped message", "error", err)
				continue
			}

			select {
			case <-ctx.Done():
				return
			case out <- sample:
			}
		}
	}()

	return out, nil
}
