package session

import (
	"sync"
	"time"
)

// Metrics tracks per-session conversation counters for the dashboard.
type Metrics struct {
	// ChunksSent is the number of capture frames sent upstream.
	ChunksSent int64 `json:"chunks_sent"`

	// ChunksReceived is the number of audio chunks scheduled for playback.
	ChunksReceived int64 `json:"chunks_received"`

	// Turns is the number of completed model turns.
	Turns int64 `json:"turns"`

	// Interruptions is the number of barge-ins.
	Interruptions int64 `json:"interruptions"`

	// FirstAudioLatency is the delay between the start of the current
	// turn and its first audio chunk.
	FirstAudioLatency time.Duration `json:"first_audio_latency"`
}

// Collector accumulates metrics. Goroutine-safe; written from the
// transport callbacks and read by the dashboard.
type Collector struct {
	mu      sync.Mutex
	current Metrics

	turnStart  time.Time
	firstAudio bool
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// MarkChunkSent records one capture frame sent upstream.
func (c *Collector) MarkChunkSent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current.ChunksSent++
	if c.turnStart.IsZero() {
		c.turnStart = time.Now()
		c.firstAudio = false
	}
}

// MarkChunkReceived records one inbound audio chunk.
func (c *Collector) MarkChunkReceived() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current.ChunksReceived++
	if !c.firstAudio && !c.turnStart.IsZero() {
		c.firstAudio = true
		c.current.FirstAudioLatency = time.Since(c.turnStart)
	}
}

// MarkTurnComplete records the end of a model turn.
func (c *Collector) MarkTurnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current.Turns++
	c.turnStart = time.Time{}
}

// MarkInterrupted records a barge-in.
func (c *Collector) MarkInterrupted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current.Interruptions++
	c.turnStart = time.Time{}
}

// Current returns a copy of the accumulated metrics.
func (c *Collector) Current() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}
