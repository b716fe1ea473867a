package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/teslashibe/go-mindwave/pkg/affect"
	"github.com/teslashibe/go-mindwave/pkg/lowlight"
	"github.com/teslashibe/go-mindwave/pkg/protocol"
)

// Conn is the write half of a websocket connection.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
}

// Session is one connected landmark producer and its assessment state.
type Session struct {
	ID        string
	Connected time.Time

	conn     Conn
	logger   *slog.Logger
	pipeline *affect.Pipeline
	frames   *lowlight.LatestFrame
	sampler  *lowlight.Sampler
	cancel   context.CancelFunc

	active  atomic.Bool
	scored  atomic.Uint64
	skipped atomic.Uint64

	mu       sync.Mutex // guards conn writes and the fields below
	lastSeen time.Time
	subject  string
	last     affect.DisplayMetrics
	encoding protocol.Encoding
}

func newSession(id string, conn Conn, cfg Config, logger *slog.Logger) *Session {
	frames := &lowlight.LatestFrame{}
	sampler := lowlight.NewSampler(cfg.LowLight, frames, cfg.Meter, logger)

	opts := []affect.Option{affect.WithLowLight(sampler)}
	if cfg.Clock != nil {
		opts = append(opts, affect.WithClock(cfg.Clock))
	}

	now := time.Now()
	s := &Session{
		ID:        id,
		Connected: now,
		conn:      conn,
		logger:    logger,
		pipeline:  affect.NewPipeline(cfg.Affect, opts...),
		frames:    frames,
		sampler:   sampler,
		lastSeen:  now,
	}
	s.active.Store(true)
	return s
}

// start launches the luminance sampler until ctx is done or close is called.
func (s *Session) start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.sampler.Run(ctx)
}

func (s *Session) close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Send writes a message using the message's own encoding.
func (s *Session) Send(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	mt := websocket.TextMessage
	if msg.Encoding() == protocol.CBOR {
		mt = websocket.BinaryMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(mt, data)
}

// reply sends a message in the encoding the producer last used.
func (s *Session) reply(msgType protocol.MessageType, data any) error {
	var (
		msg *protocol.Message
		err error
	)
	if s.Encoding() == protocol.CBOR {
		msg, err = protocol.NewBinaryMessage(msgType, data)
	} else {
		msg, err = protocol.NewMessage(msgType, data)
	}
	if err != nil {
		return err
	}
	return s.Send(msg)
}

// process advances the pipeline by one frame. It returns false when the
// assessment is stopped and the frame was not scored.
func (s *Session) process(data *protocol.LandmarksData) (affect.DisplayMetrics, bool) {
	if !s.active.Load() {
		s.skipped.Add(1)
		return affect.DisplayMetrics{}, false
	}

	m := s.pipeline.Process(data.Frame())
	s.scored.Add(1)

	s.mu.Lock()
	s.last = m
	s.mu.Unlock()
	return m, true
}

func (s *Session) touch(enc protocol.Encoding) {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.encoding = enc
	s.mu.Unlock()
}

func (s *Session) setActive(active bool, subject string) {
	s.active.Store(active)
	if subject != "" {
		s.mu.Lock()
		s.subject = subject
		s.mu.Unlock()
	}
}

// Encoding returns the wire format of the last message received.
func (s *Session) Encoding() protocol.Encoding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encoding
}

// Active reports whether frames are being assessed.
func (s *Session) Active() bool {
	return s.active.Load()
}

// LowLight reports the session's latest luminance advisory.
func (s *Session) LowLight() bool {
	return s.sampler.LowLight()
}

// Last returns the most recent metrics emitted by the session.
func (s *Session) Last() affect.DisplayMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Info is a snapshot of a session for the REST listing.
type Info struct {
	ID        string                `json:"id"`
	Subject   string                `json:"subject,omitempty"`
	Active    bool                  `json:"active"`
	Encoding  string                `json:"encoding"`
	Connected time.Time             `json:"connected"`
	LastSeen  time.Time             `json:"last_seen"`
	Scored    uint64                `json:"frames_scored"`
	Skipped   uint64                `json:"frames_skipped"`
	LowLight  bool                  `json:"low_light"`
	Light     float64               `json:"light_level"`
	Metrics   affect.DisplayMetrics `json:"metrics"`
}

// Info returns a point-in-time snapshot of the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:        s.ID,
		Subject:   s.subject,
		Active:    s.active.Load(),
		Encoding:  s.encoding.String(),
		Connected: s.Connected,
		LastSeen:  s.lastSeen,
		Scored:    s.scored.Load(),
		Skipped:   s.skipped.Load(),
		LowLight:  s.sampler.LowLight(),
		Light:     s.sampler.Level(),
		Metrics:   s.last,
	}
}
