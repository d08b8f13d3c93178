package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/corvidlabs/go-aura/pkg/hub"
	"github.com/corvidlabs/go-aura/pkg/session"
	"github.com/corvidlabs/go-aura/pkg/visual"
)

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.status())
}

func (s *Server) handleConnect(c *fiber.Ctx) error {
	if err := s.manager.Connect(c.UserContext()); err != nil {
		st := s.manager.State()
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": st.Err,
		})
	}
	s.PublishStatus()
	return c.JSON(s.status())
}

func (s *Server) handleDisconnect(c *fiber.Ctx) error {
	s.manager.Disconnect()

	// Dropping the session also drops any preview override.
	s.mu.Lock()
	s.override = ""
	s.mu.Unlock()

	s.PublishStatus()
	return c.JSON(s.status())
}

// ModeRequest sets or clears the UI-only mode preview. An empty mode
// clears the override.
type ModeRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) handleMode(c *fiber.Ctx) error {
	var req ModeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	switch m := session.Mode(req.Mode); m {
	case "", session.ModeIdle, session.ModeListening, session.ModeSpeaking, session.ModeSearching:
		s.mu.Lock()
		s.override = m
		s.mu.Unlock()
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown mode"})
	}

	s.PublishStatus()
	return c.JSON(s.status())
}

func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	return c.JSON(s.engine.Profile())
}

func (s *Server) handlePutProfile(c *fiber.Ctx) error {
	var p visual.Profile
	if err := c.BodyParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid profile"})
	}
	if _, err := visual.ParseLayoutKind(string(p.Kind)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	s.engine.SetProfile(p)
	s.logger.Info("profile updated", "name", p.Name, "layout", p.Kind)
	return c.JSON(s.engine.Profile())
}

// ThemeRequest switches the light/dark palette.
type ThemeRequest struct {
	Theme string `json:"theme"`
}

func (s *Server) handleTheme(c *fiber.Ctx) error {
	var req ThemeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	switch t := visual.Theme(req.Theme); t {
	case visual.ThemeLight, visual.ThemeDark:
		s.engine.SetTheme(t)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown theme"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	return c.JSON(s.manager.Metrics())
}

// handleStatusWS streams status snapshots. The current status is sent
// immediately so clients render without waiting for the next tick.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	if err := c.WriteJSON(s.status()); err != nil {
		c.Close()
		return
	}
	hub.NewClient(s.statusHub, c).Run()
}

// handleFramesWS streams JPEG animation frames.
func (s *Server) handleFramesWS(c *websocket.Conn) {
	hub.NewClient(s.frameHub, c).Run()
}
