package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreUpdate_Regimes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		update    ScoreUpdate
		known     bool
		computing bool
		below300  bool
	}{
		{"unknown", ScoreUpdate{Score: 10, MaxAchievable: MaxUnknown}, false, false, false},
		{"computing", ScoreUpdate{Score: 10, MaxAchievable: MaxComputing}, false, true, false},
		{"losing line", ScoreUpdate{Score: 10, MaxAchievable: 120}, true, false, true},
		{"winning line", ScoreUpdate{Score: 10, MaxAchievable: 340}, true, false, false},
		{"exactly target", ScoreUpdate{Score: 10, MaxAchievable: 300}, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.known, tt.update.Known())
			assert.Equal(t, tt.computing, tt.update.Computing())
			assert.Equal(t, tt.below300, tt.update.BelowTarget(300))
		})
	}
}

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var got1, got2 []ScoreUpdate
	bus.Subscribe(ObserverFunc(func(u ScoreUpdate) { got1 = append(got1, u) }))
	bus.Subscribe(ObserverFunc(func(u ScoreUpdate) { got2 = append(got2, u) }))

	bus.Publish(ScoreUpdate{Score: 50, MaxAchievable: MaxComputing})
	bus.Publish(ScoreUpdate{Score: 50, MaxAchievable: 210})

	want := []ScoreUpdate{
		{Score: 50, MaxAchievable: MaxComputing},
		{Score: 50, MaxAchievable: 210},
	}
	assert.Equal(t, want, got1)
	assert.Equal(t, want, got2)
	assert.Equal(t, want[1], bus.Last())
}

func TestBus_Unsubscribe(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	calls := 0
	id := bus.Subscribe(ObserverFunc(func(ScoreUpdate) { calls++ }))
	require.Equal(t, 1, bus.Len())

	assert.True(t, bus.Unsubscribe(id))
	assert.False(t, bus.Unsubscribe(id))
	assert.Equal(t, 0, bus.Len())

	bus.Publish(ScoreUpdate{Score: 1})
	assert.Equal(t, 0, calls)
}

func TestBus_InitialState(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ScoreUpdate{Score: 0, MaxAchievable: MaxUnknown}, NewBus().Last())
}

func TestBus_ConcurrentSubscribeAndPublish(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	var mu sync.Mutex
	total := 0

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Subscribe(ObserverFunc(func(ScoreUpdate) {
				mu.Lock()
				total++
				mu.Unlock()
			}))
		}()
	}
	wg.Wait()

	bus.Publish(ScoreUpdate{Score: 1, MaxAchievable: MaxUnknown})
	assert.Equal(t, 10, total)
}
