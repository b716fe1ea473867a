// Package web serves the assessment dashboard: session and metric REST
// endpoints, live metric and log websockets, and the static frontend.
package web

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/time/rate"

	"github.com/teslashibe/go-mindwave/pkg/affect"
	"github.com/teslashibe/go-mindwave/pkg/hub"
	"github.com/teslashibe/go-mindwave/pkg/session"
)

const maxLogs = 500

// Config holds dashboard server settings.
type Config struct {
	Port        string
	StaticDir   string  // empty disables static files
	BroadcastHz float64 // per-session metric updates pushed to viewers
	AccessLog   bool    // log every HTTP request
}

// DefaultConfig serves on 8080 and pushes 15 updates per second.
func DefaultConfig() Config {
	return Config{
		Port:        "8080",
		StaticDir:   "./web",
		BroadcastHz: 15,
	}
}

// LogEntry represents a log line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Type    string `json:"type"` // session, metrics, error, ...
	Message string `json:"message"`
}

// MetricsUpdate is what dashboard viewers receive for a scored frame.
type MetricsUpdate struct {
	Session string                `json:"session"`
	Time    time.Time             `json:"time"`
	Metrics affect.DisplayMetrics `json:"metrics"`
}

// Server is the web dashboard server
type Server struct {
	app      *fiber.App
	api      fiber.Router
	cfg      Config
	logger   *slog.Logger
	sessions *session.Hub
	started  time.Time

	// Latest metrics per session, regardless of throttling
	latest   map[string]MetricsUpdate
	limiters map[string]*rate.Limiter
	latestMu sync.RWMutex

	// Log buffer (last maxLogs entries)
	logs   []LogEntry
	logsMu sync.RWMutex

	// Hubs for websocket broadcast
	metricsHub *hub.Hub
	logHub     *hub.Hub
}

// NewServer creates the dashboard server. Call Mount to attach the session
// hub before Run.
func NewServer(cfg Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if cfg.BroadcastHz <= 0 {
		cfg.BroadcastHz = DefaultConfig().BroadcastHz
	}

	s := &Server{
		cfg:        cfg,
		logger:     log,
		started:    time.Now(),
		latest:     make(map[string]MetricsUpdate),
		limiters:   make(map[string]*rate.Limiter),
		logs:       make([]LogEntry, 0, maxLogs),
		metricsHub: hub.New("metrics", log),
		logHub:     hub.New("logs", log),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Mindwave",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New())
	}
	// CORS for local development
	app.Use(cors.New())

	app.Get("/healthz", s.handleHealth)

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/metrics", s.handleLatest)
	api.Get("/metrics/:id", s.handleLatestSession)
	api.Get("/logs", s.handleGetLogs)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/metrics", websocket.New(s.handleMetricsWS))
	app.Get("/ws/logs", websocket.New(s.handleLogsWS))

	s.app = app
	s.api = api
	return s
}

// Mount serves the session hub's routes and forwards its metrics and
// lifecycle events to dashboard viewers.
func (s *Server) Mount(sessions *session.Hub) {
	s.sessions = sessions
	sessions.RegisterRoutes(s.app)
	sessions.RegisterAPIRoutes(s.api)
	sessions.OnMetrics(s.PublishMetrics)
	sessions.OnEvent(s.handleEvent)
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the broadcast hubs and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	// Static files last so they never shadow the API
	if s.cfg.StaticDir != "" {
		s.app.Static("/", s.cfg.StaticDir)
	}

	go s.metricsHub.Run(ctx)
	go s.logHub.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "url", "http://localhost:"+s.cfg.Port)
		errc <- s.app.Listen(":" + s.cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return s.app.ShutdownWithTimeout(5 * time.Second)
	}
}

// PublishMetrics records the latest metrics for a session and, at most
// BroadcastHz times per second per session, pushes them to viewers.
func (s *Server) PublishMetrics(sessionID string, m affect.DisplayMetrics) {
	update := MetricsUpdate{Session: sessionID, Time: time.Now(), Metrics: m}

	s.latestMu.Lock()
	s.latest[sessionID] = update
	lim, ok := s.limiters[sessionID]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(s.cfg.BroadcastHz), 1)
		s.limiters[sessionID] = lim
	}
	s.latestMu.Unlock()

	if !lim.Allow() {
		return
	}
	if err := s.metricsHub.Publish(sessionID, update); err != nil {
		s.logger.Warn("encode metrics update", "session_id", sessionID, "error", err)
	}
}

func (s *Server) handleEvent(ev session.Event) {
	if ev.Type == session.EventDisconnected {
		s.latestMu.Lock()
		delete(s.latest, ev.Session)
		delete(s.limiters, ev.Session)
		s.latestMu.Unlock()
	}
	s.AddLog(slog.LevelInfo, "session", "session "+ev.Session+" "+string(ev.Type))
}

// Latest returns the most recent metrics of every connected session.
func (s *Server) Latest() []MetricsUpdate {
	s.latestMu.RLock()
	defer s.latestMu.RUnlock()
	out := make([]MetricsUpdate, 0, len(s.latest))
	for _, u := range s.latest {
		out = append(out, u)
	}
	return out
}

// AddLog adds a log entry and broadcasts to clients
func (s *Server) AddLog(level slog.Level, logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Level:   level.String(),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxLogs {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	s.logHub.BroadcastJSON(entry)
}

// Logs returns a copy of the buffered log entries.
func (s *Server) Logs() []LogEntry {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return append([]LogEntry(nil), s.logs...)
}

// MetricsHub returns the metrics hub for external use
func (s *Server) MetricsHub() *hub.Hub {
	return s.metricsHub
}

// LogHub returns the log hub for external use
func (s *Server) LogHub() *hub.Hub {
	return s.logHub
}
