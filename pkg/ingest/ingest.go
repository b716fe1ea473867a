// Package ingest provides landmark sources other than the session websocket:
// a ZeroMQ PULL socket fed by a detection sidecar and JSON-lines recordings.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/teslashibe/go-mindwave/pkg/affect"
	"github.com/teslashibe/go-mindwave/pkg/landmark"
	"github.com/teslashibe/go-mindwave/pkg/protocol"
)

// pollInterval bounds how long a blocking receive can delay shutdown.
const pollInterval = 250 * time.Millisecond

// Sample is one decoded landmark frame from a source.
type Sample struct {
	Session string
	FrameID uint64
	Frame   *landmark.Frame // nil when no face was detected
	Sent    time.Time       // producer timestamp, zero if unknown
}

// Decode turns one encoded landmarks message into a Sample.
func Decode(data []byte, enc protocol.Encoding, session string) (Sample, error) {
	msg, err := protocol.Decode(data, enc)
	if err != nil {
		return Sample{}, err
	}
	return FromMessage(msg, session)
}

// FromMessage converts a parsed landmarks message into a Sample.
func FromMessage(msg *protocol.Message, session string) (Sample, error) {
	if msg.Type != protocol.TypeLandmarks {
		return Sample{}, fmt.Errorf("%w: %q", ErrNotLandmarks, msg.Type)
	}
	lm, err := msg.GetLandmarksData()
	if err != nil {
		return Sample{}, err
	}

	s := Sample{Session: session, FrameID: lm.FrameID, Frame: lm.Frame()}
	if msg.Timestamp > 0 {
		s.Sent = time.UnixMilli(msg.Timestamp)
	}
	return s, nil
}

// Run scores samples until the channel closes or ctx is done. Each session
// name gets its own pipeline; publish is called for every scored frame.
func Run(ctx context.Context, samples <-chan Sample, cfg affect.Config, publish func(session string, m affect.DisplayMetrics), logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	pipelines := make(map[string]*affect.Pipeline)

	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-samples:
			if !ok {
				logger.Info("ingest source closed", "sessions", len(pipelines))
				return
			}
			p, ok := pipelines[s.Session]
			if !ok {
				p = affect.NewPipeline(cfg)
				pipelines[s.Session] = p
				logger.Info("ingest session started", "session_id", s.Session)
			}
			m := p.Process(s.Frame)
			if publish != nil {
				publish(s.Session, m)
			}
		}
	}
}

// warnInterval spaces repeated ingest warnings.
const warnInterval = 5 * time.Second

// throttledWarn logs the first warning and then at most one per interval,
// carrying the running occurrence count.
type throttledWarn struct {
	every  rate.Sometimes
	count  int
	logger *slog.Logger
}

// newThrottledWarn logs every warning when interval is not positive.
func newThrottledWarn(interval time.Duration, logger *slog.Logger) *throttledWarn {
	w := &throttledWarn{logger: logger}
	if interval > 0 {
		w.every.First, w.every.Interval = 1, interval
	} else {
		w.every.Every = 1
	}
	return w
}

func (w *throttledWarn) warn(msg string, args ...any) {
	w.count++
	w.every.Do(func() {
		w.logger.Warn(msg, append(args, "occurrences", w.count)...)
	})
}
