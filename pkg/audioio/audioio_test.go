package audioio

import (
	"context"
	"testing"
	"time"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid capture config",
			config:  CaptureConfig(),
			wantErr: false,
		},
		{
			name:    "valid playback config",
			config:  PlaybackConfig(),
			wantErr: false,
		},
		{
			name:    "zero sample rate",
			config:  Config{SampleRate: 0, Channels: 1, BufferDuration: time.Millisecond},
			wantErr: true,
		},
		{
			name:    "zero channels",
			config:  Config{SampleRate: 16000, Channels: 0, BufferDuration: time.Millisecond},
			wantErr: true,
		},
		{
			name:    "zero buffer duration",
			config:  Config{SampleRate: 16000, Channels: 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigBufferSize(t *testing.T) {
	cfg := Config{SampleRate: 16000, Channels: 1, BufferDuration: 20 * time.Millisecond}
	if got := cfg.BufferSize(); got != 320 {
		t.Errorf("BufferSize() = %d, want 320", got)
	}
	if got := cfg.BufferBytes(); got != 640 {
		t.Errorf("BufferBytes() = %d, want 640", got)
	}
}

func TestChunkRoundTrip(t *testing.T) {
	chunk := AudioChunk{
		Samples:    []int16{0, 100, -100, 32767, -32768},
		SampleRate: 24000,
		Channels:   1,
	}

	raw := chunk.Bytes()
	if len(raw) != 10 {
		t.Fatalf("Bytes() length = %d, want 10", len(raw))
	}

	var decoded AudioChunk
	decoded.FromBytes(raw, 24000, 1)
	for i, s := range decoded.Samples {
		if s != chunk.Samples[i] {
			t.Errorf("sample %d = %d, want %d", i, s, chunk.Samples[i])
		}
	}
}

func TestChunkDuration(t *testing.T) {
	chunk := AudioChunk{
		Samples:    make([]int16, 24000),
		SampleRate: 24000,
		Channels:   1,
	}
	if d := chunk.Duration(); d != 1.0 {
		t.Errorf("Duration() = %f, want 1.0", d)
	}

	var empty AudioChunk
	if d := empty.Duration(); d != 0 {
		t.Errorf("empty Duration() = %f, want 0", d)
	}
}

func TestMockSourceProducesChunks(t *testing.T) {
	cfg := CaptureConfig()
	cfg.Backend = BackendMock
	cfg.BufferDuration = 5 * time.Millisecond

	src := NewMockSource(cfg, nil, WithSineWave(440, 0.5))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := src.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer src.Close()

	select {
	case chunk := <-src.Stream():
		if len(chunk.Samples) != cfg.BufferSize() {
			t.Errorf("chunk size = %d, want %d", len(chunk.Samples), cfg.BufferSize())
		}
		if chunk.SampleRate != cfg.SampleRate {
			t.Errorf("chunk rate = %d, want %d", chunk.SampleRate, cfg.SampleRate)
		}
		// Sine wave should not be all silence.
		silent := true
		for _, s := range chunk.Samples {
			if s != 0 {
				silent = false
				break
			}
		}
		if silent {
			t.Error("expected sine wave chunk, got silence")
		}
	case <-time.After(time.Second):
		t.Fatal("no chunk received from mock source")
	}
}

func TestMockSourceStopClosesStream(t *testing.T) {
	cfg := CaptureConfig()
	cfg.Backend = BackendMock

	src := NewMockSource(cfg, nil)
	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	stream := src.Stream()
	if err := src.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	// Stop twice is safe.
	if err := src.Stop(); err != nil {
		t.Fatalf("second Stop() error: %v", err)
	}

	// Stream drains then closes.
	for {
		select {
		case _, ok := <-stream:
			if !ok {
				return
			}
		case <-time.After(time.Second):
			t.Fatal("stream not closed after Stop")
		}
	}
}

func TestMockSourceStopWhileProducing(t *testing.T) {
	cfg := CaptureConfig()
	cfg.Backend = BackendMock
	cfg.BufferDuration = time.Millisecond

	// Stop must never race the producer's sends, whatever the timing.
	for i := 0; i < 25; i++ {
		src := NewMockSource(cfg, nil)
		if err := src.Start(context.Background()); err != nil {
			t.Fatalf("Start() error: %v", err)
		}

		drained := make(chan struct{})
		go func() {
			for range src.Stream() {
			}
			close(drained)
		}()

		time.Sleep(2 * time.Millisecond)
		if err := src.Stop(); err != nil {
			t.Fatalf("Stop() error: %v", err)
		}

		select {
		case <-drained:
		case <-time.After(time.Second):
			t.Fatal("stream not closed after Stop")
		}
	}
}

func TestMockSinkRecordsAndClears(t *testing.T) {
	cfg := PlaybackConfig()
	cfg.Backend = BackendMock

	sink := NewMockSink(cfg, nil)
	if err := sink.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	chunk := AudioChunk{Samples: make([]int16, 480), SampleRate: 24000, Channels: 1}
	if err := sink.Write(chunk); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if err := sink.Write(chunk); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	if got := sink.Buffered(); got != 960 {
		t.Errorf("Buffered() = %d, want 960", got)
	}
	if err := sink.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if got := sink.Buffered(); got != 0 {
		t.Errorf("Buffered() after Clear = %d, want 0", got)
	}
	if sink.ClearCount() != 1 {
		t.Errorf("ClearCount() = %d, want 1", sink.ClearCount())
	}
}

func TestFactoryMockBackends(t *testing.T) {
	srcCfg := CaptureConfig()
	srcCfg.Backend = BackendMock
	src, err := NewSource(srcCfg, nil)
	if err != nil {
		t.Fatalf("NewSource(mock) error: %v", err)
	}
	if src.Name() != "mock" {
		t.Errorf("source name = %s, want mock", src.Name())
	}

	sinkCfg := PlaybackConfig()
	sinkCfg.Backend = BackendMock
	sink, err := NewSink(sinkCfg, nil)
	if err != nil {
		t.Fatalf("NewSink(mock) error: %v", err)
	}
	if sink.Name() != "mock" {
		t.Errorf("sink name = %s, want mock", sink.Name())
	}

	if _, err := NewSource(Config{Backend: "bogus", SampleRate: 1, Channels: 1, BufferDuration: time.Millisecond}, nil); err == nil {
		t.Error("expected error for unknown source backend")
	}
}

func TestResample(t *testing.T) {
	t.Run("identity", func(t *testing.T) {
		in := []int16{1, 2, 3}
		out := Resample(in, 16000, 16000)
		if len(out) != 3 {
			t.Errorf("identity resample changed length: %d", len(out))
		}
	})

	t.Run("downsample halves length", func(t *testing.T) {
		in := make([]int16, 480)
		out := Resample(in, 48000, 24000)
		if len(out) != 240 {
			t.Errorf("len = %d, want 240", len(out))
		}
	})

	t.Run("upsample interpolates", func(t *testing.T) {
		in := []int16{0, 100}
		out := Resample(in, 8000, 16000)
		if len(out) != 4 {
			t.Fatalf("len = %d, want 4", len(out))
		}
		if out[1] != 50 {
			t.Errorf("interpolated sample = %d, want 50", out[1])
		}
	})

	t.Run("empty input", func(t *testing.T) {
		out := Resample(nil, 16000, 24000)
		if len(out) != 0 {
			t.Errorf("expected empty output, got %d samples", len(out))
		}
	})
}
