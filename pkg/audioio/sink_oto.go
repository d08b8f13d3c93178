package audioio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process, so playback sinks share one.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
)

func sharedOtoContext(sampleRate, channels int, bufferDuration time.Duration) (*oto.Context, error) {
	otoOnce.Do(func() {
		opts := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   bufferDuration,
		}
		ctx, ready, err := oto.NewContext(opts)
		if err != nil {
			otoErr = err
			return
		}
		// The context starts suspended until the device is ready.
		<-ready
		otoCtx = ctx
	})
	return otoCtx, otoErr
}

// OtoSink plays PCM16 audio through the system speaker via oto.
// It buffers written chunks and feeds them to the device through an
// io.Reader pull loop, returning silence when the buffer runs dry.
type OtoSink struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	buf     []byte
	player  *oto.Player
	running bool
	closed  bool
}

// NewOtoSink creates a speaker sink backed by oto.
func NewOtoSink(cfg Config, logger *slog.Logger) (*OtoSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &OtoSink{
		cfg:    cfg,
		logger: logger,
		buf:    make([]byte, 0, cfg.SampleRate*2),
	}, nil
}

// Start resumes the playback device context.
func (s *OtoSink) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}
	if s.running {
		return nil
	}

	octx, err := sharedOtoContext(s.cfg.SampleRate, s.cfg.Channels, s.cfg.BufferDuration)
	if err != nil {
		return fmt.Errorf("audioio: open playback context: %w", err)
	}

	s.player = octx.NewPlayer(otoReader{s})
	s.player.Play()
	s.running = true

	s.logger.Info("playback device started",
		"backend", "oto",
		"sample_rate", s.cfg.SampleRate,
	)
	return nil
}

// Stop pauses playback and drops any queued audio.
func (s *OtoSink) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	s.buf = s.buf[:0]

	if s.player != nil {
		if err := s.player.Close(); err != nil {
			s.logger.Warn("playback device close failed", "error", err)
		}
		s.player = nil
	}
	return nil
}

// Write queues a chunk of PCM16 audio for playback.
func (s *OtoSink) Write(chunk AudioChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.running {
		return io.ErrClosedPipe
	}
	s.buf = append(s.buf, chunk.Bytes()...)
	return nil
}

// Clear discards all queued audio immediately.
func (s *OtoSink) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = s.buf[:0]
	return nil
}

// Buffered returns the number of queued samples.
func (s *OtoSink) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf) / 2
}

// Config returns the sink configuration.
func (s *OtoSink) Config() Config { return s.cfg }

// Name returns "oto".
func (s *OtoSink) Name() string { return "oto" }

// Close stops playback. The shared oto context stays alive for the process.
func (s *OtoSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.Stop()
}

// otoReader adapts the sink buffer to the pull model oto expects.
type otoReader struct {
	sink *OtoSink
}

func (r otoReader) Read(p []byte) (int, error) {
	r.sink.mu.Lock()
	defer r.sink.mu.Unlock()

	n := copy(p, r.sink.buf)
	r.sink.buf = r.sink.buf[n:]

	// Pad with silence so the device keeps running between turns.
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

var _ Sink = (*OtoSink)(nil)
