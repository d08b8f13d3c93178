// Package web serves the avatar dashboard: REST endpoints for session
// control and profile edits, plus websocket streams for status updates
// and rendered animation frames.
package web

import (
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/corvidlabs/go-aura/pkg/hub"
	"github.com/corvidlabs/go-aura/pkg/session"
	"github.com/corvidlabs/go-aura/pkg/visual"
)

// Status is the dashboard's view of the system.
type Status struct {
	Mode      session.Mode `json:"mode"`
	Connected bool         `json:"connected"`
	Error     string       `json:"error,omitempty"`
	Profile   string       `json:"profile"`
	Clients   int          `json:"clients"`
}

// Server is the dashboard HTTP/websocket server.
type Server struct {
	app    *fiber.App
	port   string
	logger *slog.Logger

	manager *session.Manager
	engine  *visual.Engine

	statusHub *hub.Hub
	frameHub  *hub.Hub

	// override is the UI-only mode preview. It is never persisted and
	// never fed back into the session manager.
	mu       sync.RWMutex
	override session.Mode
}

// NewServer wires the dashboard around a session manager and an engine.
func NewServer(port string, manager *session.Manager, engine *visual.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		port:      port,
		logger:    logger,
		manager:   manager,
		engine:    engine,
		statusHub: hub.New("status", logger),
		frameHub:  hub.New("frames", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Aura Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development.
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/connect", s.handleConnect)
	api.Post("/disconnect", s.handleDisconnect)
	api.Post("/mode", s.handleMode)
	api.Get("/profile", s.handleGetProfile)
	api.Put("/profile", s.handlePutProfile)
	api.Post("/theme", s.handleTheme)
	api.Get("/metrics", s.handleMetrics)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))

	s.app = app
	return s
}

// Start runs the hubs and blocks serving HTTP.
func (s *Server) Start() error {
	s.logger.Info("dashboard listening", "addr", "http://localhost:"+s.port)
	go s.statusHub.Run()
	go s.frameHub.Run()
	return s.app.Listen(":" + s.port)
}

// StartAsync runs the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("dashboard server failed", "error", err)
		}
	}()
}

// Shutdown stops the server and both hubs.
func (s *Server) Shutdown() error {
	s.statusHub.Stop()
	s.frameHub.Stop()
	return s.app.Shutdown()
}

// EffectiveMode is the mode the visualization should render: the
// preview override when one is set, the session's mode otherwise.
func (s *Server) EffectiveMode() session.Mode {
	s.mu.RLock()
	override := s.override
	s.mu.RUnlock()
	if override != "" {
		return override
	}
	return s.manager.State().Mode
}

// status snapshots the dashboard view.
func (s *Server) status() Status {
	st := s.manager.State()
	return Status{
		Mode:      s.EffectiveMode(),
		Connected: st.Connected,
		Error:     st.Err,
		Profile:   s.engine.Profile().Name,
		Clients:   s.statusHub.ClientCount() + s.frameHub.ClientCount(),
	}
}

// PublishStatus broadcasts the current status to websocket clients.
// The render loop calls it once per frame; stale snapshots are cheap.
func (s *Server) PublishStatus() {
	if err := s.statusHub.BroadcastJSON(s.status()); err != nil {
		s.logger.Warn("status broadcast failed", "error", err)
	}
}

// SendFrame broadcasts one encoded animation frame.
func (s *Server) SendFrame(jpeg []byte) {
	s.frameHub.BroadcastBinary(jpeg)
}

// FrameClients returns how many clients watch the frame stream, so the
// render loop can skip JPEG encoding when nobody is connected.
func (s *Server) FrameClients() int {
	return s.frameHub.ClientCount()
}
