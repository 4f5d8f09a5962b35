package experience

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/core"
)

func createTestTransition(id int) Transition {
	return NewTransition([]float64{float64(id)}, core.ActionUp, float64(id), []float64{float64(id + 1)}, false)
}

func TestReplayBuffer_Creation(t *testing.T) {
	buffer := NewReplayBuffer(100, zerolog.Nop())

	assert.Equal(t, 100, buffer.Capacity())
	assert.Equal(t, 0, buffer.Len())
	assert.False(t, buffer.IsFull())

	assert.Equal(t, DefaultCapacity, NewReplayBuffer(0, zerolog.Nop()).Capacity())
}

func TestReplayBuffer_FIFOEviction(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		inserts  int
	}{
		{"below capacity", 10, 7},
		{"exactly full", 10, 10},
		{"overflow by one", 10, 11},
		{"overflow by many", 10, 37},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buffer := NewReplayBuffer(tt.capacity, zerolog.Nop())
			for i := 0; i < tt.inserts; i++ {
				buffer.Add(createTestTransition(i))
			}

			want := min(tt.inserts, tt.capacity)
			require.Equal(t, want, buffer.Len())

			snap := buffer.Snapshot()
			require.Len(t, snap, want)
			first := tt.inserts - want
			for i, tr := range snap {
				assert.Equal(t, float64(first+i), tr.Reward, "position %d", i)
			}

			latest, ok := buffer.Latest()
			require.True(t, ok)
			assert.Equal(t, float64(tt.inserts-1), latest.Reward)

			stats := buffer.Stats()
			assert.Equal(t, int64(tt.inserts), stats.TotalAdded)
			assert.Equal(t, int64(tt.inserts-want), stats.TotalDropped)
		})
	}
}

func TestReplayBuffer_Sample(t *testing.T) {
	buffer := NewReplayBuffer(5, zerolog.Nop())
	rng := rand.New(rand.NewSource(12345))

	assert.Nil(t, buffer.Sample(3, rng), "empty buffer yields nothing")

	for i := 0; i < 8; i++ {
		buffer.Add(createTestTransition(i))
	}

	batch := buffer.Sample(32, rng)
	require.Len(t, batch, 32, "sampling is with replacement")
	for _, tr := range batch {
		assert.GreaterOrEqual(t, tr.Reward, 3.0, "evicted transitions are never sampled")
		assert.LessOrEqual(t, tr.Reward, 7.0)
	}
	assert.Equal(t, int64(32), buffer.Stats().TotalSampled)
}

func TestReplayBuffer_Clear(t *testing.T) {
	buffer := NewReplayBuffer(4, zerolog.Nop())
	for i := 0; i < 6; i++ {
		buffer.Add(createTestTransition(i))
	}

	buffer.Clear()
	assert.Zero(t, buffer.Len())
	assert.Empty(t, buffer.Snapshot())
	_, ok := buffer.Latest()
	assert.False(t, ok)

	buffer.Add(createTestTransition(42))
	assert.Equal(t, 42.0, buffer.Snapshot()[0].Reward)
}

func TestNewTransition_CopiesVectors(t *testing.T) {
	state := []float64{1, 0, 1}
	next := []float64{0, 1, 1}

	tr := NewTransition(state, core.ActionPlaceBomb, -10, next, true)
	state[0] = 9
	next[0] = 9

	assert.Equal(t, []float64{1, 0, 1}, tr.State)
	assert.Equal(t, []float64{0, 1, 1}, tr.NextState)
	assert.True(t, tr.Done)
}
