// Aura - voice-agent avatar with an audio-reactive web dashboard.
// Streams microphone audio to the Gemini Live API and renders the
// agent's state as a procedural animation.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/corvidlabs/go-aura/internal/config"
	"github.com/corvidlabs/go-aura/internal/log"
	"github.com/corvidlabs/go-aura/pkg/aura"
	"github.com/corvidlabs/go-aura/pkg/debug"
	"github.com/corvidlabs/go-aura/pkg/visual"
)

func main() {
	cfg := parseFlags()

	log.Init(config.LogLevel())
	logger := log.L()

	app, err := aura.New(cfg, logger)
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := app.Run(ctx); err != nil {
		logger.Error("runtime error", "error", err)
		os.Exit(1)
	}
}

// parseFlags parses command line flags and returns configuration.
func parseFlags() aura.Config {
	cfg := aura.DefaultConfig()

	port := flag.String("port", "", "Dashboard port (overrides AURA_PORT env var)")
	model := flag.String("model", "", "Voice service model")
	voice := flag.String("voice", "", "Synthesis voice name")
	prompt := flag.String("prompt", "", "System prompt for the agent persona")
	search := flag.Bool("search", false, "Enable search augmentation")
	connect := flag.Bool("connect", false, "Open the voice session at startup")
	theme := flag.String("theme", "dark", "Dashboard theme: light or dark")
	width := flag.Int("width", cfg.FrameWidth, "Rendered frame width")
	height := flag.Int("height", cfg.FrameHeight, "Rendered frame height")
	fps := flag.Int("fps", cfg.FrameRate, "Render frame rate")
	debugFlag := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	cfg.Model = *model
	cfg.Voice = *voice
	cfg.SystemPrompt = *prompt
	cfg.EnableSearch = *search
	cfg.AutoConnect = *connect
	cfg.FrameWidth = *width
	cfg.FrameHeight = *height
	cfg.FrameRate = *fps
	cfg.Debug = *debugFlag
	debug.Enabled = *debugFlag

	cfg.Port = config.Port()
	if *port != "" {
		cfg.Port = *port
	}
	if *theme == "light" {
		cfg.Theme = visual.ThemeLight
	}

	cfg.APIKey = config.GeminiAPIKey()
	return cfg
}
