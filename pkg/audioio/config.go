// Package audioio provides audio capture and playback device contexts.
//
// Two real backends are supported:
//   - malgo (miniaudio) for microphone capture
//   - oto for speaker playback
//
// A mock backend is available for tests and CI machines without audio
// hardware. The voice session captures at 16 kHz mono and plays back at
// 24 kHz mono, matching the remote service's audio contract.
package audioio

import (
	"fmt"
	"time"
)

// Backend represents the audio backend type.
type Backend string

const (
	// BackendAuto selects the real device backend for the direction.
	BackendAuto Backend = "auto"
	// BackendMalgo uses miniaudio for capture.
	BackendMalgo Backend = "malgo"
	// BackendOto uses oto for playback.
	BackendOto Backend = "oto"
	// BackendMock uses an in-memory implementation for testing.
	BackendMock Backend = "mock"
)

// Common sample rates for the voice session.
const (
	CaptureRate  = 16000
	PlaybackRate = 24000
)

// Config holds audio device configuration.
type Config struct {
	// Backend specifies which audio backend to use.
	Backend Backend `json:"backend"`

	// SampleRate is the audio sample rate in Hz.
	SampleRate int `json:"sample_rate"`

	// Channels is the number of audio channels. Always 1 for the voice path.
	Channels int `json:"channels"`

	// BufferDuration is the size of device-level audio buffers.
	BufferDuration time.Duration `json:"buffer_duration"`
}

// CaptureConfig returns the capture-side defaults (16 kHz mono).
func CaptureConfig() Config {
	return Config{
		Backend:        BackendAuto,
		SampleRate:     CaptureRate,
		Channels:       1,
		BufferDuration: 20 * time.Millisecond,
	}
}

// PlaybackConfig returns the playback-side defaults (24 kHz mono).
func PlaybackConfig() Config {
	return Config{
		Backend:        BackendAuto,
		SampleRate:     PlaybackRate,
		Channels:       1,
		BufferDuration: 100 * time.Millisecond,
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("channels must be positive, got %d", c.Channels)
	}
	if c.BufferDuration <= 0 {
		return fmt.Errorf("buffer_duration must be positive, got %v", c.BufferDuration)
	}
	return nil
}

// BufferSize returns the number of samples per device buffer.
func (c *Config) BufferSize() int {
	return int(float64(c.SampleRate) * c.BufferDuration.Seconds())
}

// BufferBytes returns the size of a device buffer in bytes (int16 samples).
func (c *Config) BufferBytes() int {
	return c.BufferSize() * c.Channels * 2
}
