// Package playback schedules inbound audio chunks for gap-free playback.
//
// Chunks arrive from the remote service in bursts, faster than real time.
// The scheduler assigns each chunk a start time with a monotonic cursor:
//
//	start  = max(now, cursor)
//	cursor = start + chunkDuration
//
// so chunks never overlap, a burst queues back-to-back, and an underrun
// produces a gap instead of corrupted audio.
package playback

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/corvidlabs/go-aura/pkg/audioio"
)

// ErrStopped is returned when scheduling after Stop.
var ErrStopped = errors.New("playback: scheduler stopped")

// Clock supplies device time in seconds. The zero point is arbitrary;
// only monotonicity matters.
type Clock interface {
	Now() float64
}

// NewClock returns a Clock measuring seconds since its creation.
func NewClock() Clock {
	return &realClock{start: time.Now()}
}

type realClock struct {
	start time.Time
}

func (c *realClock) Now() float64 {
	return time.Since(c.start).Seconds()
}

// scheduled is one chunk queued for playback.
type scheduled struct {
	chunk audioio.AudioChunk
	start float64
	end   float64

	writeTimer *time.Timer
	doneTimer  *time.Timer
}

// Scheduler owns the pending-chunk set and the scheduling cursor.
type Scheduler struct {
	clock Clock
	sink  audioio.Sink

	mu      sync.Mutex
	cursor  float64
	pending map[uuid.UUID]*scheduled
	stopped bool

	// onChunkPlay taps each chunk as it is written to the device,
	// feeding the output analyser.
	onChunkPlay func(audioio.AudioChunk)
	onActive    func()
	onDrained   func()
}

// NewScheduler creates a scheduler writing to the given sink.
func NewScheduler(clock Clock, sink audioio.Sink) *Scheduler {
	return &Scheduler{
		clock:   clock,
		sink:    sink,
		pending: make(map[uuid.UUID]*scheduled),
	}
}

// OnChunkPlay sets the tap invoked when a chunk starts playing.
func (s *Scheduler) OnChunkPlay(fn func(audioio.AudioChunk)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChunkPlay = fn
}

// OnActive sets the callback fired when the pending set goes from
// empty to non-empty (first chunk of a turn).
func (s *Scheduler) OnActive(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onActive = fn
}

// OnDrained sets the callback fired when the pending set empties.
func (s *Scheduler) OnDrained(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDrained = fn
}

// Schedule queues a chunk and returns its assigned start time.
func (s *Scheduler) Schedule(chunk audioio.AudioChunk) (float64, error) {
	dur := chunk.Duration()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return 0, ErrStopped
	}

	now := s.clock.Now()
	start := now
	if s.cursor > start {
		start = s.cursor
	}
	end := start + dur
	s.cursor = end

	id := uuid.New()
	sc := &scheduled{chunk: chunk, start: start, end: end}
	wasEmpty := len(s.pending) == 0
	s.pending[id] = sc

	sc.writeTimer = time.AfterFunc(secondsToDuration(start-now), func() {
		s.playChunk(id)
	})
	sc.doneTimer = time.AfterFunc(secondsToDuration(end-now), func() {
		s.finishChunk(id)
	})

	onActive := s.onActive
	s.mu.Unlock()

	if wasEmpty && onActive != nil {
		onActive()
	}
	return start, nil
}

// playChunk writes a chunk to the device at its scheduled start.
func (s *Scheduler) playChunk(id uuid.UUID) {
	s.mu.Lock()
	sc, ok := s.pending[id]
	tap := s.onChunkPlay
	s.mu.Unlock()

	if !ok {
		// Interrupted before its start time.
		return
	}

	// Sink write errors mean the device is mid-teardown; the chunk is
	// simply lost, which the done timer already accounts for.
	_ = s.sink.Write(sc.chunk)
	if tap != nil {
		tap(sc.chunk)
	}
}

// finishChunk removes a chunk whose playback interval has elapsed.
func (s *Scheduler) finishChunk(id uuid.UUID) {
	s.mu.Lock()
	if _, ok := s.pending[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	drained := len(s.pending) == 0
	onDrained := s.onDrained
	s.mu.Unlock()

	if drained && onDrained != nil {
		onDrained()
	}
}

// Interrupt stops all scheduled and playing chunks immediately, clears
// the pending set and resets the cursor. Models barge-in.
func (s *Scheduler) Interrupt() {
	s.mu.Lock()
	for id, sc := range s.pending {
		sc.writeTimer.Stop()
		sc.doneTimer.Stop()
		delete(s.pending, id)
	}
	s.cursor = 0
	s.mu.Unlock()

	// Drop whatever the device has already buffered.
	_ = s.sink.Clear()
}

// Stop interrupts playback and rejects further scheduling. Idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.Interrupt()
}

// Pending returns the number of chunks scheduled or playing.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Cursor returns the current scheduling cursor position.
func (s *Scheduler) Cursor() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func secondsToDuration(sec float64) time.Duration {
	if sec < 0 {
		return 0
	}
	return time.Duration(sec * float64(time.Second))
}
