// Package session owns the real-time voice session: the device audio
// contexts, the microphone capture loop, the duplex connection to the
// remote voice service, and the playback scheduler. It exposes a small
// state machine and the GetVolumeLevels query the visualization reads.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/corvidlabs/go-aura/pkg/audioio"
	"github.com/corvidlabs/go-aura/pkg/debug"
	"github.com/corvidlabs/go-aura/pkg/levels"
	"github.com/corvidlabs/go-aura/pkg/live"
	"github.com/corvidlabs/go-aura/pkg/playback"
)

// Human-readable error strings surfaced in State.Err.
// Transport internals are deliberately not leaked.
const (
	errMissingCredential = "No API key configured"
	errDeviceFailed      = "Microphone or speaker unavailable"
	errConnectionFailed  = "Connection Error"
)

// FrameSamples is the fixed capture frame size sent to the service.
const FrameSamples = 4096

// State is the externally visible session state. Written only by the
// Manager; read by the dashboard and the visualization engine.
type State struct {
	Mode      Mode   `json:"mode"`
	Connected bool   `json:"connected"`
	Err       string `json:"error,omitempty"`
}

// VoiceSession is the duplex transport the manager drives. Implemented
// by live.Client; faked in tests.
type VoiceSession interface {
	Connect(ctx context.Context) error
	Close() error
	SendAudio(pcm16 []byte) error
	OnAudio(fn func(pcm []byte))
	OnInterrupted(fn func())
	OnTurnComplete(fn func())
	OnClose(fn func(err error))
	OnError(fn func(err error))
}

// Config holds manager construction parameters.
type Config struct {
	// Live is the remote voice service configuration.
	Live live.Config

	// Capture is the microphone device configuration (16 kHz mono).
	Capture audioio.Config

	// Playback is the speaker device configuration (24 kHz mono).
	Playback audioio.Config
}

// DefaultConfig returns a Config with device defaults filled in.
func DefaultConfig() Config {
	return Config{
		Capture:  audioio.CaptureConfig(),
		Playback: audioio.PlaybackConfig(),
	}
}

// Option customizes a Manager.
type Option func(*Manager)

// WithSessionFactory overrides how the duplex session is created.
// Used by tests to inject a fake transport.
func WithSessionFactory(fn func(cfg live.Config) (VoiceSession, error)) Option {
	return func(m *Manager) { m.newSession = fn }
}

// WithClock overrides the playback scheduling clock.
func WithClock(c playback.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// Manager is the audio session state machine.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	newSession func(cfg live.Config) (VoiceSession, error)
	clock      playback.Clock

	extractor *levels.Extractor
	metrics   *Collector

	mu         sync.Mutex
	state      State
	lastEvent  Event
	generation int

	source        audioio.Source
	sink          audioio.Sink
	sched         *playback.Scheduler
	sess          VoiceSession
	captureCancel context.CancelFunc
}

// NewManager creates a manager in the Idle state.
func NewManager(cfg Config, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		cfg:    cfg,
		logger: logger,
		newSession: func(cfg live.Config) (VoiceSession, error) {
			return live.NewClient(cfg)
		},
		clock:     playback.NewClock(),
		extractor: levels.NewExtractor(),
		metrics:   NewCollector(),
		state:     State{Mode: ModeIdle},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a copy of the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastEvent returns the most recently applied state-machine event.
func (m *Manager) LastEvent() Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastEvent
}

// GetVolumeLevels returns a fresh loudness snapshot. Safe to call at
// render frequency, before Connect, and after Disconnect.
func (m *Manager) GetVolumeLevels() levels.Levels {
	return m.extractor.GetVolumeLevels()
}

// Metrics returns the session turn metrics.
func (m *Manager) Metrics() Metrics {
	return m.metrics.Current()
}

// apply runs one state-machine event under the lock, logging the
// transition. Undefined transitions are ignored.
func (m *Manager) applyLocked(ev Event) {
	to, ok := next(m.state.Mode, ev)
	if !ok {
		m.logger.Debug("ignoring event", "mode", m.state.Mode, "event", ev)
		return
	}
	if to != m.state.Mode {
		m.logger.Info("mode transition", "from", m.state.Mode, "to", to, "event", ev)
	}
	m.state.Mode = to
	m.lastEvent = ev
}

func (m *Manager) apply(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyLocked(ev)
}

// applyForGeneration applies an event only if the session generation
// still matches, so callbacks from an abandoned session are inert.
func (m *Manager) applyForGeneration(gen int, ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		return
	}
	m.applyLocked(ev)
}

// Connect opens the devices and the duplex session. It may block on
// device resume and the websocket handshake, so callers usually run it
// in a goroutine; Disconnect during a pending Connect is safe.
func (m *Manager) Connect(ctx context.Context) error {
	// Configuration errors abort before any device resource is touched.
	if err := m.cfg.Live.Validate(); err != nil {
		m.setError(errMissingCredential)
		return err
	}

	m.mu.Lock()
	if m.state.Connected {
		m.mu.Unlock()
		return nil
	}
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	source, sink, err := m.openDevices(ctx)
	if err != nil {
		m.setError(errDeviceFailed)
		return err
	}

	inputAn := levels.NewAnalyser()
	outputAn := levels.NewAnalyser()

	sched := playback.NewScheduler(m.clock, sink)
	sched.OnChunkPlay(func(chunk audioio.AudioChunk) {
		outputAn.WritePCM16(chunk.Samples)
	})
	sched.OnDrained(func() {
		m.applyForGeneration(gen, EventPlaybackDrained)
	})

	sess, err := m.newSession(m.cfg.Live)
	if err != nil {
		m.closeDevices(source, sink)
		m.setError(errConnectionFailed)
		return err
	}

	sess.OnAudio(func(pcm []byte) {
		var chunk audioio.AudioChunk
		chunk.FromBytes(pcm, m.cfg.Playback.SampleRate, m.cfg.Playback.Channels)
		if _, err := sched.Schedule(chunk); err != nil {
			return
		}
		m.metrics.MarkChunkReceived()
		m.applyForGeneration(gen, EventAudioScheduled)
	})
	sess.OnInterrupted(func() {
		sched.Interrupt()
		m.metrics.MarkInterrupted()
		m.applyForGeneration(gen, EventInterrupted)
	})
	sess.OnTurnComplete(func() {
		m.metrics.MarkTurnComplete()
	})
	sess.OnClose(func(err error) {
		m.handleTransportDown(gen, err)
	})
	sess.OnError(func(err error) {
		m.logger.Warn("voice session error", "error", err)
	})

	if err := sess.Connect(ctx); err != nil {
		sched.Stop()
		m.closeDevices(source, sink)
		m.setError(errConnectionFailed)
		return err
	}

	m.mu.Lock()
	if m.generation != gen {
		// Disconnect won the race: a late open must not resurrect
		// an abandoned session.
		m.mu.Unlock()
		sched.Stop()
		_ = sess.Close()
		m.closeDevices(source, sink)
		return nil
	}

	captureCtx, cancel := context.WithCancel(context.Background())
	m.source = source
	m.sink = sink
	m.sched = sched
	m.sess = sess
	m.captureCancel = cancel
	m.state.Connected = true
	m.state.Err = ""
	m.applyLocked(EventSessionOpened)
	// Attach before releasing the lock: a Disconnect racing in right
	// after the generation check must always observe the attach and
	// detach it, never run its Detach first.
	m.extractor.Attach(inputAn, outputAn)
	m.mu.Unlock()

	go m.captureLoop(captureCtx, source, sess, inputAn)

	m.logger.Info("session connected",
		"capture", source.Name(),
		"playback", sink.Name(),
	)
	return nil
}

// openDevices opens and resumes both device contexts, closing any
// partially opened context on failure.
func (m *Manager) openDevices(ctx context.Context) (audioio.Source, audioio.Sink, error) {
	source, err := audioio.NewSource(m.cfg.Capture, m.logger)
	if err != nil {
		return nil, nil, err
	}
	if err := source.Start(ctx); err != nil {
		_ = source.Close()
		return nil, nil, err
	}

	sink, err := audioio.NewSink(m.cfg.Playback, m.logger)
	if err != nil {
		_ = source.Close()
		return nil, nil, err
	}
	if err := sink.Start(ctx); err != nil {
		_ = sink.Close()
		_ = source.Close()
		return nil, nil, err
	}
	return source, sink, nil
}

// closeDevices releases both device contexts, swallowing close errors.
func (m *Manager) closeDevices(source audioio.Source, sink audioio.Sink) {
	if source != nil {
		if err := source.Close(); err != nil {
			m.logger.Warn("capture close failed", "error", err)
		}
	}
	if sink != nil {
		if err := sink.Close(); err != nil {
			m.logger.Warn("playback close failed", "error", err)
		}
	}
}

// captureLoop accumulates fixed-size frames from the capture stream and
// sends them over the duplex session. Send errors are swallowed: the
// session may be mid-teardown and the loop exits via ctx instead.
func (m *Manager) captureLoop(ctx context.Context, source audioio.Source, sess VoiceSession, analyser *levels.Analyser) {
	frame := make([]int16, 0, FrameSamples)

	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-source.Stream():
			if !ok {
				return
			}
			analyser.WritePCM16(chunk.Samples)
			frame = append(frame, chunk.Samples...)

			for len(frame) >= FrameSamples {
				out := audioio.AudioChunk{
					Samples:    frame[:FrameSamples],
					SampleRate: m.cfg.Capture.SampleRate,
					Channels:   m.cfg.Capture.Channels,
				}
				if err := sess.SendAudio(out.Bytes()); err != nil {
					if !errors.Is(err, live.ErrNotConnected) {
						debug.Log("capture send failed: %v\n", err)
					}
				} else {
					m.metrics.MarkChunkSent()
				}
				frame = append(frame[:0], frame[FrameSamples:]...)
			}
		}
	}
}

// handleTransportDown forces the session to Idle after a remote close
// or transport error.
func (m *Manager) handleTransportDown(gen int, err error) {
	m.mu.Lock()
	if m.generation != gen || !m.state.Connected {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("transport down", "error", err)
	}
	m.teardown(errConnectionFailed, EventTransportError)
}

// Disconnect tears the session down. Idempotent; safe to call while a
// Connect is still in flight.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.generation++
	m.mu.Unlock()

	m.teardown("", EventDisconnected)
}

// teardown flips the state first so the UI reacts without waiting on
// I/O, then releases resources best-effort.
func (m *Manager) teardown(errMsg string, ev Event) {
	m.mu.Lock()
	source, sink, sched, sess := m.source, m.sink, m.sched, m.sess
	cancel := m.captureCancel
	m.source, m.sink, m.sched, m.sess, m.captureCancel = nil, nil, nil, nil, nil

	m.state.Connected = false
	m.state.Err = errMsg
	m.state.Mode = ModeIdle
	m.lastEvent = ev
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if source != nil {
		if err := source.Stop(); err != nil {
			m.logger.Warn("capture stop failed", "error", err)
		}
	}
	m.closeDevices(source, sink)
	if sched != nil {
		sched.Stop()
	}
	m.extractor.Detach()
	if sess != nil {
		// Best-effort: the remote close is not waited on.
		if err := sess.Close(); err != nil {
			m.logger.Debug("session close failed", "error", err)
		}
	}
}

// setError records a human-readable error and resets to Idle.
func (m *Manager) setError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.Err = msg
	m.state.Connected = false
	m.state.Mode = ModeIdle
}
