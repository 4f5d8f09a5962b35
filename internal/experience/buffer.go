package experience

import (
	"math/rand"

	"github.com/rs/zerolog"
)

// DefaultCapacity is the replay memory size used when none is configured
const DefaultCapacity = 2000

// ReplayBuffer is a fixed-capacity ring of transitions. When full, adding a
// transition evicts the oldest one. It is owned by a single session and is
// not safe for concurrent use.
type ReplayBuffer struct {
	buffer   []Transition
	capacity int
	size     int
	head     int // Write position

	totalAdded   int64
	totalDropped int64
	totalSampled int64

	logger zerolog.Logger
}

// NewReplayBuffer creates a new replay buffer with the specified capacity
func NewReplayBuffer(capacity int, logger zerolog.Logger) *ReplayBuffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &ReplayBuffer{
		buffer:   make([]Transition, capacity),
		capacity: capacity,
		logger:   logger.With().Str("component", "replay_buffer").Logger(),
	}
}

// Add appends a transition, evicting the oldest one when the buffer is full
func (b *ReplayBuffer) Add(t Transition) {
	if b.size >= b.capacity {
		b.totalDropped++
	} else {
		b.size++
	}

	b.buffer[b.head] = t
	b.head = (b.head + 1) % b.capacity
	b.totalAdded++

	if b.size == b.capacity && b.totalDropped == 0 {
		b.logger.Debug().Int("capacity", b.capacity).Msg("Replay buffer filled")
	}
}

// tail is the index of the oldest transition
func (b *ReplayBuffer) tail() int {
	return (b.head - b.size + b.capacity) % b.capacity
}

// Sample draws n transitions uniformly at random with replacement. The
// returned transitions share their vectors with the buffer and must be
// treated as read-only. Returns nil when the buffer is empty.
func (b *ReplayBuffer) Sample(n int, rng *rand.Rand) []Transition {
	if b.size == 0 || n <= 0 {
		return nil
	}

	result := make([]Transition, n)
	tail := b.tail()
	for i := range result {
		result[i] = b.buffer[(tail+rng.Intn(b.size))%b.capacity]
	}
	b.totalSampled += int64(n)
	return result
}

// Snapshot returns the stored transitions from oldest to newest
func (b *ReplayBuffer) Snapshot() []Transition {
	result := make([]Transition, b.size)
	tail := b.tail()
	for i := range result {
		result[i] = b.buffer[(tail+i)%b.capacity]
	}
	return result
}

// Latest returns the most recently added transition
func (b *ReplayBuffer) Latest() (Transition, bool) {
	if b.size == 0 {
		return Transition{}, false
	}
	return b.buffer[(b.head-1+b.capacity)%b.capacity], true
}

// Len returns the current number of transitions in the buffer
func (b *ReplayBuffer) Len() int { return b.size }

// Capacity returns the maximum capacity of the buffer
func (b *ReplayBuffer) Capacity() int { return b.capacity }

// IsFull returns true if the buffer is at capacity
func (b *ReplayBuffer) IsFull() bool { return b.size >= b.capacity }

// Clear removes all transitions from the buffer
func (b *ReplayBuffer) Clear() {
	clear(b.buffer)
	b.size = 0
	b.head = 0

	b.logger.Debug().Msg("Replay buffer cleared")
}

// Stats returns buffer statistics
func (b *ReplayBuffer) Stats() BufferStats {
	return BufferStats{
		CurrentSize:    b.size,
		Capacity:       b.capacity,
		TotalAdded:     b.totalAdded,
		TotalDropped:   b.totalDropped,
		TotalSampled:   b.totalSampled,
		UtilizationPct: float64(b.size) / float64(b.capacity) * 100,
	}
}

// BufferStats contains buffer statistics
type BufferStats struct {
	CurrentSize    int
	Capacity       int
	TotalAdded     int64
	TotalDropped   int64
	TotalSampled   int64
	UtilizationPct float64
}
