// Package session provides the WebSocket endpoint landmark producers connect
// to. Every connection owns exactly one metrics pipeline; frames are scored
// in the connection's read loop, one message per state update.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-mindwave/internal/log"
	"github.com/teslashibe/go-mindwave/pkg/affect"
	"github.com/teslashibe/go-mindwave/pkg/lowlight"
	"github.com/teslashibe/go-mindwave/pkg/protocol"
)

// Config holds the settings every new session is created with.
type Config struct {
	Affect   affect.Config
	LowLight lowlight.Config
	Meter    lowlight.Meter   // nil uses lowlight.NewDefaultMeter
	Clock    func() time.Time // nil uses time.Now
	Logger   *slog.Logger     // nil uses the global logger
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		Affect:   affect.DefaultConfig(),
		LowLight: lowlight.DefaultConfig(),
	}
}

// EventType names a session lifecycle change.
type EventType string

const (
	EventConnected    EventType = "connected"
	EventDisconnected EventType = "disconnected"
	EventStarted      EventType = "started"
	EventStopped      EventType = "stopped"
)

// Event is a session lifecycle notification.
type Event struct {
	Type    EventType `json:"type"`
	Session string    `json:"session"`
	Time    time.Time `json:"time"`
}

// Hub manages WebSocket connections from landmark producers
type Hub struct {
	cfg    Config
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session

	// Callbacks
	onMetrics func(sessionID string, m affect.DisplayMetrics)
	onEvent   func(ev Event)

	// Stats
	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	framesReceived   atomic.Uint64
	framesScored     atomic.Uint64
	parseErrors      atomic.Uint64
}

// NewHub creates a new session hub
func NewHub(cfg Config) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = log.L()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		cfg:      cfg,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}
}

// Close stops every session's background sampler.
func (h *Hub) Close() {
	h.cancel()
}

// OnMetrics sets the callback for every scored frame
func (h *Hub) OnMetrics(callback func(sessionID string, m affect.DisplayMetrics)) {
	h.mu.Lock()
	h.onMetrics = callback
	h.mu.Unlock()
}

// OnEvent sets the callback for session lifecycle events
func (h *Hub) OnEvent(callback func(ev Event)) {
	h.mu.Lock()
	h.onEvent = callback
	h.mu.Unlock()
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (h *Hub) RegisterRoutes(app *fiber.App) {
	app.Use("/ws/session", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/session", websocket.New(h.handleSession))
	app.Get("/ws/session/:id", websocket.New(h.handleSession))
}

// handleSession handles a producer WebSocket connection
func (h *Hub) handleSession(c *websocket.Conn) {
	id := c.Params("id")
	if id == "" {
		id = uuid.NewString()
	}

	s, err := h.register(id, c)
	if err != nil {
		h.logger.Warn("session rejected", "session_id", id, "error", err)
		if msg, merr := protocol.NewErrorMessage("session_exists", err.Error()); merr == nil {
			if data, berr := msg.Bytes(); berr == nil {
				_ = c.WriteMessage(websocket.TextMessage, data)
			}
		}
		return
	}
	defer h.unregister(s)

	if err := s.reply(protocol.TypeSession, protocol.SessionData{ID: s.ID, Active: s.Active()}); err == nil {
		h.messagesSent.Add(1)
	}

	// Read loop
	for {
		mt, data, err := c.ReadMessage()
		if err != nil {
			s.logger.Debug("read loop ended", "error", err)
			return
		}

		enc := protocol.JSON
		if mt == websocket.BinaryMessage {
			enc = protocol.CBOR
		}
		h.messagesReceived.Add(1)
		h.handleMessage(s, enc, data)
	}
}

func (h *Hub) register(id string, conn Conn) (*Session, error) {
	h.mu.Lock()
	if _, exists := h.sessions[id]; exists {
		h.mu.Unlock()
		return nil, fmt.Errorf("session %q already connected", id)
	}
	s := newSession(id, conn, h.cfg, h.logger.With("session_id", id))
	h.sessions[id] = s
	count := len(h.sessions)
	h.mu.Unlock()

	s.start(h.ctx)
	s.logger.Info("session connected", "sessions", count)
	h.emit(EventConnected, id)
	return s, nil
}

func (h *Hub) unregister(s *Session) {
	s.close()

	h.mu.Lock()
	delete(h.sessions, s.ID)
	count := len(h.sessions)
	h.mu.Unlock()

	s.logger.Info("session disconnected", "sessions", count, "frames_scored", s.scored.Load())
	h.emit(EventDisconnected, s.ID)
}

// handleMessage processes one incoming message. A bad message is answered
// with an error message and never ends the session.
func (h *Hub) handleMessage(s *Session, enc protocol.Encoding, data []byte) {
	s.touch(enc)

	msg, err := protocol.Decode(data, enc)
	if err != nil {
		h.parseErrors.Add(1)
		code := "bad_message"
		if errors.Is(err, protocol.ErrUnknownType) {
			code = "unknown_type"
		}
		s.logger.Debug("rejected message", "code", code, "error", err)
		h.sendError(s, code, err)
		return
	}

	switch msg.Type {
	case protocol.TypeLandmarks:
		h.framesReceived.Add(1)
		lm, err := msg.GetLandmarksData()
		if err != nil {
			h.parseErrors.Add(1)
			h.sendError(s, "bad_payload", err)
			return
		}
		m, ok := s.process(lm)
		if !ok {
			return
		}
		h.framesScored.Add(1)

		h.mu.RLock()
		metricsCb := h.onMetrics
		h.mu.RUnlock()
		if metricsCb != nil {
			metricsCb(s.ID, m)
		}

		out, err := protocol.NewMetricsMessage(s.ID, lm.FrameID, m, enc)
		if err != nil {
			s.logger.Warn("encode metrics", "error", err)
			return
		}
		h.send(s, out)

	case protocol.TypeThumbnail:
		th, err := msg.GetThumbnailData()
		if err == nil {
			var img []byte
			img, err = th.DecodeThumbnail()
			if err == nil {
				s.frames.Store(img)
			}
		}
		if err != nil {
			h.parseErrors.Add(1)
			h.sendError(s, "bad_payload", err)
		}

	case protocol.TypeStart:
		start, err := msg.GetStartData()
		if err != nil {
			h.parseErrors.Add(1)
			h.sendError(s, "bad_payload", err)
			return
		}
		h.setActive(s, true, start.Subject)

	case protocol.TypeStop:
		h.setActive(s, false, "")

	case protocol.TypePing:
		// Respond with pong
		ping, err := msg.GetPingData()
		if err != nil {
			ping = &protocol.PingData{}
		}
		pingTS := ping.Timestamp
		if pingTS == 0 {
			pingTS = msg.Timestamp
		}
		pongTS := time.Now().UnixMilli()
		h.reply(s, protocol.TypePong, protocol.PongData{
			ID:        ping.ID,
			PingTS:    pingTS,
			PongTS:    pongTS,
			LatencyMs: pongTS - pingTS,
		})

	default:
		h.parseErrors.Add(1)
		h.sendError(s, "unknown_type", fmt.Errorf("%w: %q is not accepted from producers", protocol.ErrUnknownType, msg.Type))
	}
}

func (h *Hub) setActive(s *Session, active bool, subject string) {
	s.setActive(active, subject)
	ev := EventStopped
	if active {
		ev = EventStarted
	}
	s.logger.Info("assessment "+string(ev), "subject", subject)
	h.reply(s, protocol.TypeSession, protocol.SessionData{ID: s.ID, Active: active})
	h.emit(ev, s.ID)
}

func (h *Hub) emit(t EventType, id string) {
	h.mu.RLock()
	cb := h.onEvent
	h.mu.RUnlock()
	if cb != nil {
		cb(Event{Type: t, Session: id, Time: time.Now()})
	}
}

func (h *Hub) send(s *Session, msg *protocol.Message) {
	if err := s.Send(msg); err != nil {
		s.logger.Debug("write failed", "type", msg.Type, "error", err)
		return
	}
	h.messagesSent.Add(1)
}

func (h *Hub) reply(s *Session, t protocol.MessageType, data any) {
	if err := s.reply(t, data); err != nil {
		s.logger.Debug("write failed", "type", t, "error", err)
		return
	}
	h.messagesSent.Add(1)
}

func (h *Hub) sendError(s *Session, code string, err error) {
	h.reply(s, protocol.TypeError, protocol.ErrorData{Code: code, Message: err.Error()})
}

// Get returns a connected session by ID
func (h *Hub) Get(id string) (*Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Start resumes scoring on a session, as a producer "start" message would.
func (h *Hub) Start(id string) error {
	s, err := h.Get(id)
	if err != nil {
		return err
	}
	h.setActive(s, true, "")
	return nil
}

// Stop pauses scoring on a session, as a producer "stop" message would.
func (h *Hub) Stop(id string) error {
	s, err := h.Get(id)
	if err != nil {
		return err
	}
	h.setActive(s, false, "")
	return nil
}

// SessionCount returns the number of connected sessions
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Infos returns snapshots of all connected sessions
func (h *Hub) Infos() []Info {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	infos := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	return infos
}

// Stats contains hub statistics
type Stats struct {
	SessionCount     int    `json:"session_count"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	FramesReceived   uint64 `json:"frames_received"`
	FramesScored     uint64 `json:"frames_scored"`
	ParseErrors      uint64 `json:"parse_errors"`
}

// GetStats returns hub statistics
func (h *Hub) GetStats() Stats {
	return Stats{
		SessionCount:     h.SessionCount(),
		MessagesReceived: h.messagesReceived.Load(),
		MessagesSent:     h.messagesSent.Load(),
		FramesReceived:   h.framesReceived.Load(),
		FramesScored:     h.framesScored.Load(),
		ParseErrors:      h.parseErrors.Load(),
	}
}

// RegisterAPIRoutes registers API routes for session management
func (h *Hub) RegisterAPIRoutes(api fiber.Router) {
	sessions := api.Group("/sessions")

	// List connected sessions
	sessions.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"sessions": h.Infos(),
			"count":    h.SessionCount(),
		})
	})

	// Get hub stats
	sessions.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(h.GetStats())
	})

	sessions.Get("/:id", func(c *fiber.Ctx) error {
		s, err := h.Get(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(s.Info())
	})

	sessions.Post("/:id/start", func(c *fiber.Ctx) error {
		if err := h.Start(c.Params("id")); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "started"})
	})

	sessions.Post("/:id/stop", func(c *fiber.Ctx) error {
		if err := h.Stop(c.Params("id")); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "stopped"})
	})
}
