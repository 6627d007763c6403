package answer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// virtualClock advances only when the gate sleeps, so spacing is observable
// without real waiting.
type virtualClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newVirtualGate(minInterval time.Duration) (*Gate, *virtualClock) {
	clock := &virtualClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	g := NewGate(minInterval)
	g.now = func() time.Time { return clock.now }
	g.sleep = func(ctx context.Context, d time.Duration) error {
		clock.sleeps = append(clock.sleeps, d)
		clock.now = clock.now.Add(d)
		return nil
	}
	return g, clock
}

func TestGateSpacesCalls(t *testing.T) {
	g, clock := newVirtualGate(500 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, g.Wait(context.Background()))
	}

	require.Len(t, clock.sleeps, 2)
	for _, d := range clock.sleeps {
		assert.Equal(t, 500*time.Millisecond, d)
	}
}

func TestGateNoDelayAfterIdlePeriod(t *testing.T) {
	g, clock := newVirtualGate(500 * time.Millisecond)

	require.NoError(t, g.Wait(context.Background()))
	clock.now = clock.now.Add(time.Second)
	require.NoError(t, g.Wait(context.Background()))

	assert.Empty(t, clock.sleeps)
}

func TestGateDisabled(t *testing.T) {
	g := NewGate(0)
	for i := 0; i < 5; i++ {
		assert.NoError(t, g.Wait(context.Background()))
	}
}
