// Package aura assembles the voice-agent avatar: the audio session
// manager, the visualization engine, and the web dashboard, driven by
// a fixed-rate render loop.
package aura

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"time"

	"github.com/corvidlabs/go-aura/pkg/session"
	"github.com/corvidlabs/go-aura/pkg/visual"
	"github.com/corvidlabs/go-aura/pkg/web"
)

// Config holds the application configuration.
type Config struct {
	// Port the dashboard listens on.
	Port string

	// APIKey authenticates against the remote voice service.
	APIKey string

	// Model and Voice select the remote model and synthesis voice.
	Model string
	Voice string

	// SystemPrompt steers the agent's persona.
	SystemPrompt string

	// EnableSearch turns on search augmentation for the agent.
	EnableSearch bool

	// AutoConnect opens the voice session at startup.
	AutoConnect bool

	// Frame geometry and cadence for the rendered animation.
	FrameWidth  int
	FrameHeight int
	FrameRate   int
	JPEGQuality int

	Theme visual.Theme
	Debug bool
}

// DefaultConfig returns the stock application configuration.
func DefaultConfig() Config {
	return Config{
		Port:        "8090",
		FrameWidth:  640,
		FrameHeight: 640,
		FrameRate:   30,
		JPEGQuality: 80,
		Theme:       visual.ThemeDark,
	}
}

// Validate checks frame geometry and cadence.
func (c *Config) Validate() error {
	if c.FrameWidth <= 0 || c.FrameHeight <= 0 {
		return fmt.Errorf("invalid frame size %dx%d", c.FrameWidth, c.FrameHeight)
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("frame rate must be positive, got %d", c.FrameRate)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be in [1,100], got %d", c.JPEGQuality)
	}
	return nil
}

// App wires the subsystems together.
type App struct {
	cfg     Config
	logger  *slog.Logger
	manager *session.Manager
	engine  *visual.Engine
	server  *web.Server
}

// New builds the application from its configuration.
func New(cfg Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	sessCfg := session.DefaultConfig()
	sessCfg.Live.APIKey = cfg.APIKey
	sessCfg.Live.Model = cfg.Model
	sessCfg.Live.Voice = cfg.Voice
	sessCfg.Live.SystemPrompt = cfg.SystemPrompt
	sessCfg.Live.EnableSearch = cfg.EnableSearch
	sessCfg.Live.Debug = cfg.Debug

	manager := session.NewManager(sessCfg, logger)
	engine := visual.NewEngine(visual.DefaultProfile(), visual.WithTheme(cfg.Theme))
	server := web.NewServer(cfg.Port, manager, engine, logger)

	return &App{
		cfg:     cfg,
		logger:  logger,
		manager: manager,
		engine:  engine,
		server:  server,
	}, nil
}

// Run starts the dashboard and blocks in the render loop until ctx is
// cancelled, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	a.server.StartAsync()

	if a.cfg.AutoConnect {
		go func() {
			if err := a.manager.Connect(ctx); err != nil {
				a.logger.Warn("auto-connect failed", "error", err)
			}
		}()
	}

	a.renderLoop(ctx)

	a.manager.Disconnect()
	if err := a.server.Shutdown(); err != nil {
		a.logger.Warn("dashboard shutdown failed", "error", err)
	}
	a.logger.Info("shutdown complete")
	return nil
}

// renderLoop renders and publishes frames at the configured rate.
// JPEG encoding is skipped while no client watches the frame stream.
func (a *App) renderLoop(ctx context.Context) {
	dst := image.NewRGBA(image.Rect(0, 0, a.cfg.FrameWidth, a.cfg.FrameHeight))
	ticker := time.NewTicker(time.Second / time.Duration(a.cfg.FrameRate))
	defer ticker.Stop()

	var buf bytes.Buffer
	opts := &jpeg.Options{Quality: a.cfg.JPEGQuality}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lv := a.manager.GetVolumeLevels()
			mode := a.server.EffectiveMode()
			a.engine.Frame(dst, lv, mode)

			if a.server.FrameClients() > 0 {
				buf.Reset()
				if err := jpeg.Encode(&buf, dst, opts); err != nil {
					a.logger.Warn("frame encode failed", "error", err)
					continue
				}
				frame := make([]byte, buf.Len())
				copy(frame, buf.Bytes())
				a.server.SendFrame(frame)
			}
			a.server.PublishStatus()
		}
	}
}
