// Package live implements the duplex connection to the Gemini Live API.
//
// The client streams 16 kHz PCM16 microphone audio up and receives 24 kHz
// PCM16 synthesized audio down over a single websocket. It treats the
// service as an opaque transport: framing details stay inside this package
// and callers only see decoded audio and session events.
package live

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/corvidlabs/go-aura/pkg/debug"
)

const (
	// Gemini Live API websocket endpoint.
	liveURL = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	// DefaultModel is the default Gemini Live model.
	DefaultModel = "models/gemini-2.0-flash-exp"

	// DefaultVoice is the default prebuilt voice.
	DefaultVoice = "Puck"

	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
)

// Common errors returned by the client.
var (
	ErrMissingAPIKey = errors.New("live: missing API key")
	ErrNotConnected  = errors.New("live: not connected")
	ErrAlreadyOpen   = errors.New("live: session already open")
)

// Config holds the session parameters sent in the setup message.
type Config struct {
	// APIKey is the Gemini API credential. Required.
	APIKey string

	// Model overrides the default Gemini Live model.
	Model string

	// Voice selects a prebuilt voice (Puck, Charon, Kore, Fenrir, Aoede).
	Voice string

	// SystemPrompt is the persona system instruction.
	SystemPrompt string

	// EnableSearch grants the session the Google Search grounding tool.
	EnableSearch bool

	// Debug enables verbose wire logging.
	Debug bool
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Client is a Gemini Live session over a websocket.
// Callbacks must be set before Connect; they are invoked from the
// reader goroutine and must not block.
type Client struct {
	cfg Config

	ws   *websocket.Conn
	wsMu sync.Mutex

	mu        sync.RWMutex
	connected bool
	closed    bool

	onAudio        func(pcm []byte)
	onInterrupted  func()
	onTurnComplete func()
	onClose        func(err error)
	onError        func(err error)
}

// NewClient creates a client for the given configuration.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Voice == "" {
		cfg.Voice = DefaultVoice
	}
	return &Client{cfg: cfg}, nil
}

// OnAudio sets the callback for decoded 24 kHz PCM16 audio chunks.
func (c *Client) OnAudio(fn func(pcm []byte)) { c.onAudio = fn }

// OnInterrupted sets the callback for barge-in signals from the service.
func (c *Client) OnInterrupted(fn func()) { c.onInterrupted = fn }

// OnTurnComplete sets the callback fired when a model turn finishes.
func (c *Client) OnTurnComplete(fn func()) { c.onTurnComplete = fn }

// OnClose sets the callback for session teardown. err is nil for an
// expected close.
func (c *Client) OnClose(fn func(err error)) { c.onClose = fn }

// OnError sets the callback for transport errors.
func (c *Client) OnError(fn func(err error)) { c.onError = fn }

// Connect dials the service and sends the setup message.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.mu.Unlock()

	url := fmt.Sprintf("%s?key=%s", liveURL, c.cfg.APIKey)

	header := make(http.Header)
	header.Set("Content-Type", "application/json")

	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}

	ws, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return fmt.Errorf("live: failed to connect: %w", err)
	}

	c.mu.Lock()
	c.ws = ws
	c.connected = true
	c.closed = false
	c.mu.Unlock()

	if err := c.sendSetup(); err != nil {
		c.Close()
		return fmt.Errorf("live: failed to configure session: %w", err)
	}

	go c.readLoop()

	if c.cfg.Debug {
		debug.Logln("live session connected")
	}
	return nil
}

// sendSetup sends the initial session configuration.
func (c *Client) sendSetup() error {
	return c.sendJSON(c.setupMessage())
}

// setupMessage builds the session setup envelope.
func (c *Client) setupMessage() map[string]any {
	setup := map[string]any{
		"model": c.cfg.Model,
		"generation_config": map[string]any{
			"response_modalities": []string{"AUDIO"},
			"speech_config": map[string]any{
				"voice_config": map[string]any{
					"prebuilt_voice_config": map[string]any{
						"voice_name": c.cfg.Voice,
					},
				},
			},
		},
	}

	if c.cfg.SystemPrompt != "" {
		setup["system_instruction"] = map[string]any{
			"parts": []map[string]any{
				{"text": c.cfg.SystemPrompt},
			},
		}
	}

	if c.cfg.EnableSearch {
		setup["tools"] = []map[string]any{
			{"google_search": map[string]any{}},
		}
	}

	return map[string]any{"setup": setup}
}

// SendAudio sends one captured PCM16 frame to the service.
// Returns ErrNotConnected when the session is down or mid-teardown;
// the capture loop treats that as non-fatal.
func (c *Client) SendAudio(pcm16 []byte) error {
	c.mu.RLock()
	if !c.connected || c.closed {
		c.mu.RUnlock()
		return ErrNotConnected
	}
	c.mu.RUnlock()

	msg := map[string]any{
		"realtime_input": map[string]any{
			"media_chunks": []map[string]any{
				{
					"data":      base64.StdEncoding.EncodeToString(pcm16),
					"mime_type": "audio/pcm",
				},
			},
		},
	}
	return c.sendJSON(msg)
}

// Close abandons the session. Best-effort: a close frame is written but
// not waited on. Safe to call multiple times.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	ws := c.ws
	c.mu.Unlock()

	if ws != nil {
		c.wsMu.Lock()
		ws.SetWriteDeadline(time.Now().Add(writeTimeout))
		_ = ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.wsMu.Unlock()
		return ws.Close()
	}
	return nil
}

// IsConnected reports whether the session is open.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && !c.closed
}

// readLoop processes inbound websocket messages until the session ends.
func (c *Client) readLoop() {
	for {
		c.mu.RLock()
		closed := c.closed
		ws := c.ws
		c.mu.RUnlock()

		if closed || ws == nil {
			c.notifyClose(nil)
			return
		}

		_, message, err := ws.ReadMessage()
		if err != nil {
			c.mu.RLock()
			closed := c.closed
			c.mu.RUnlock()

			if closed {
				c.notifyClose(nil)
			} else {
				if c.onError != nil {
					c.onError(err)
				}
				c.notifyClose(err)
			}
			return
		}

		var msg map[string]any
		if err := json.Unmarshal(message, &msg); err != nil {
			if c.cfg.Debug {
				debug.Log("live: failed to parse message: %v\n", err)
			}
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) notifyClose(err error) {
	if c.onClose != nil {
		c.onClose(err)
	}
}

// handleMessage dispatches a single service message.
func (c *Client) handleMessage(msg map[string]any) {
	if _, ok := msg["setupComplete"]; ok {
		if c.cfg.Debug {
			debug.Logln("live session ready")
		}
		return
	}

	if serverContent, ok := msg["serverContent"].(map[string]any); ok {
		c.handleServerContent(serverContent)
		return
	}

	if _, ok := msg["interrupted"]; ok {
		if c.onInterrupted != nil {
			c.onInterrupted()
		}
		return
	}

	if c.cfg.Debug {
		debug.Log("live: unhandled message: %v\n", msg)
	}
}

// handleServerContent processes audio and turn events.
func (c *Client) handleServerContent(content map[string]any) {
	if interrupted, ok := content["interrupted"].(bool); ok && interrupted {
		if c.onInterrupted != nil {
			c.onInterrupted()
		}
		return
	}

	if turnComplete, ok := content["turnComplete"].(bool); ok && turnComplete {
		if c.onTurnComplete != nil {
			c.onTurnComplete()
		}
		return
	}

	modelTurn, ok := content["modelTurn"].(map[string]any)
	if !ok {
		return
	}
	parts, ok := modelTurn["parts"].([]any)
	if !ok {
		return
	}

	for _, part := range parts {
		partMap, ok := part.(map[string]any)
		if !ok {
			continue
		}
		inlineData, ok := partMap["inlineData"].(map[string]any)
		if !ok {
			continue
		}
		mimeType, _ := inlineData["mimeType"].(string)
		if !isPCMMime(mimeType) {
			continue
		}
		data, ok := inlineData["data"].(string)
		if !ok {
			continue
		}

		// One malformed chunk must not kill the stream.
		pcm, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			if c.cfg.Debug {
				debug.Log("live: dropping malformed audio chunk: %v\n", err)
			}
			continue
		}
		if len(pcm) > 0 && c.onAudio != nil {
			c.onAudio(pcm)
		}
	}
}

func isPCMMime(mime string) bool {
	return mime == "audio/pcm" || mime == "audio/pcm;rate=24000"
}

// sendJSON writes a JSON message, serialized with the write mutex.
func (c *Client) sendJSON(v any) error {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()

	if c.ws == nil {
		return ErrNotConnected
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}
