package audioio

import (
	"context"
	"io"
)

// Sink plays audio to a speaker or other output device.
type Sink interface {
	// Start begins audio playback. Device contexts may come up suspended;
	// Start performs the explicit resume.
	Start(ctx context.Context) error

	// Stop halts audio playback. Safe to call multiple times.
	Stop() error

	// Write queues an audio chunk for playback.
	Write(chunk AudioChunk) error

	// Clear discards all buffered audio immediately.
	// Used to interrupt playback on barge-in.
	Clear() error

	// Buffered returns the number of samples currently queued.
	Buffered() int

	// Config returns the current audio configuration.
	Config() Config

	// Name returns the backend name (e.g., "oto", "mock").
	Name() string

	// Close releases all resources. After Close the sink cannot restart.
	io.Closer
}
