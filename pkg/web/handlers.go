package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-mindwave/pkg/hub"
	"github.com/teslashibe/go-mindwave/pkg/session"
)

// Status is the dashboard overview
type Status struct {
	Uptime   string        `json:"uptime"`
	Sessions int           `json:"sessions"`
	Ingest   session.Stats `json:"ingest"`
	Viewers  hub.Stats     `json:"viewers"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleStatus returns the server overview
func (s *Server) handleStatus(c *fiber.Ctx) error {
	st := Status{
		Uptime:  time.Since(s.started).Round(time.Second).String(),
		Viewers: s.metricsHub.GetStats(),
	}
	if s.sessions != nil {
		st.Ingest = s.sessions.GetStats()
		st.Sessions = st.Ingest.SessionCount
	}
	return c.JSON(st)
}

// handleLatest returns the latest metrics of every session
func (s *Server) handleLatest(c *fiber.Ctx) error {
	return c.JSON(s.Latest())
}

func (s *Server) handleLatestSession(c *fiber.Ctx) error {
	id := c.Params("id")
	s.latestMu.RLock()
	u, ok := s.latest[id]
	s.latestMu.RUnlock()
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": session.ErrSessionNotFound.Error()})
	}
	return c.JSON(u)
}

// handleGetLogs returns recent log entries
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	return c.JSON(s.Logs())
}

// handleMetricsWS streams throttled metrics. ?session=<id> narrows the
// feed to one session; viewers can also send {"session": "<id>"} later.
func (s *Server) handleMetricsWS(c *websocket.Conn) {
	topic := c.Query("session")

	// current snapshot before the write pump starts
	for _, u := range s.Latest() {
		if topic == "" || topic == u.Session {
			c.WriteJSON(u)
		}
	}

	hub.NewClient(s.metricsHub, c, topic).Run()
}

// handleLogsWS handles WebSocket connections for live logs
func (s *Server) handleLogsWS(c *websocket.Conn) {
	// Send recent logs
	for _, entry := range s.Logs() {
		c.WriteJSON(entry)
	}

	hub.NewClient(s.logHub, c, "").Run()
}
