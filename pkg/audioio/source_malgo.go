package audioio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"
)

// MalgoSource captures microphone audio via miniaudio.
type MalgoSource struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	actx     *malgo.AllocatedContext
	device   *malgo.Device
	running  bool
	closed   bool
	streamCh chan AudioChunk
}

// NewMalgoSource creates a microphone source backed by miniaudio.
func NewMalgoSource(cfg Config, logger *slog.Logger) (*MalgoSource, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ctxConfig := malgo.ContextConfig{}
	ctxConfig.ThreadPriority = malgo.ThreadPriorityRealtime

	actx, err := malgo.InitContext(nil, ctxConfig, nil)
	if err != nil {
		return nil, fmt.Errorf("audioio: init capture context: %w", err)
	}

	return &MalgoSource{
		cfg:      cfg,
		logger:   logger,
		actx:     actx,
		streamCh: make(chan AudioChunk, 16),
	}, nil
}

// Start opens the capture device and resumes it.
// Microphone permission is requested by the OS on first open.
func (s *MalgoSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}
	if s.running {
		return nil
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(s.cfg.Channels)
	deviceConfig.SampleRate = uint32(s.cfg.SampleRate)
	deviceConfig.PeriodSizeInMilliseconds = uint32(s.cfg.BufferDuration.Milliseconds())

	s.streamCh = make(chan AudioChunk, 16)
	streamCh := s.streamCh

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			chunk := AudioChunk{}
			chunk.FromBytes(input, s.cfg.SampleRate, s.cfg.Channels)
			select {
			case streamCh <- chunk:
			default:
				// Consumer fell behind, drop the chunk rather than block
				// the device callback.
			}
		},
	}

	device, err := malgo.InitDevice(s.actx.Context, deviceConfig, callbacks)
	if err != nil {
		return fmt.Errorf("audioio: open capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		return fmt.Errorf("audioio: resume capture device: %w", err)
	}

	s.device = device
	s.running = true
	s.logger.Info("capture device started",
		"backend", "malgo",
		"sample_rate", s.cfg.SampleRate,
	)
	return nil
}

// Stop halts capture and closes the chunk stream.
func (s *MalgoSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.device != nil {
		// Device stop errors are not actionable here.
		if err := s.device.Stop(); err != nil {
			s.logger.Warn("capture device stop failed", "error", err)
		}
		s.device.Uninit()
		s.device = nil
	}
	// The data callback is the only producer. device.Stop and Uninit
	// are synchronous, so no callback can run past this point and the
	// channel is safe to close here.
	close(s.streamCh)
	return nil
}

// Stream returns the captured chunk channel.
func (s *MalgoSource) Stream() <-chan AudioChunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamCh
}

// Config returns the source configuration.
func (s *MalgoSource) Config() Config { return s.cfg }

// Name returns "malgo".
func (s *MalgoSource) Name() string { return "malgo" }

// Close stops capture and releases the miniaudio context.
func (s *MalgoSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.Stop()
	if s.actx != nil {
		if uerr := s.actx.Uninit(); uerr != nil {
			s.logger.Warn("capture context close failed", "error", uerr)
		}
		s.actx.Free()
	}
	return err
}

var _ Source = (*MalgoSource)(nil)
