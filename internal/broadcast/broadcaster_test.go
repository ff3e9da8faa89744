package broadcast

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudresh69/SIH2025/internal/observability"
	"github.com/rudresh69/SIH2025/internal/sim"
)

const testInterval = 100 * time.Millisecond

type fixture struct {
	broadcaster *Broadcaster
	clock       *clockwork.FakeClock
	cancel      context.CancelFunc
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC))
	simCtx := sim.NewContext(42, sim.WithClock(clock), sim.WithAutonomousEvents(false))

	b := New(simCtx, clock, testInterval, nil,
		slog.New(slog.DiscardHandler), observability.NewMetricsForTesting())

	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx) //nolint:errcheck // exits on cancel

	// Wait for the loop's ticker to be armed before advancing the clock.
	clock.BlockUntil(1)
	t.Cleanup(cancel)

	return &fixture{broadcaster: b, clock: clock, cancel: cancel}
}

func waitFrame(t *testing.T, ch <-chan sim.Frame) sim.Frame {
	t.Helper()
	select {
	case f, ok := <-ch:
		require.True(t, ok, "subscription closed unexpectedly")
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return sim.Frame{}
	}
}

func TestBroadcaster_DeliversFramesOnTick(t *testing.T) {
	fx := newFixture(t)

	frames, unsubscribe := fx.broadcaster.Subscribe()
	defer unsubscribe()

	fx.clock.Advance(testInterval)
	first := waitFrame(t, frames)
	fx.clock.Advance(testInterval)
	second := waitFrame(t, frames)

	assert.Equal(t, sim.PhaseIdle, first.Phase)
	assert.True(t, second.Timestamp.After(first.Timestamp))
}

func TestBroadcaster_TriggerReflectedInFrames(t *testing.T) {
	fx := newFixture(t)

	frames, unsubscribe := fx.broadcaster.Subscribe()
	defer unsubscribe()

	err := fx.broadcaster.TriggerHazard(context.Background(), sim.HazardRockfall, time.Minute)
	require.NoError(t, err)

	fx.clock.Advance(testInterval)
	f := waitFrame(t, frames)
	assert.Equal(t, sim.PhaseNormal, f.Phase)
	assert.Equal(t, sim.HazardRockfall, f.HazardKind)
	assert.Equal(t, 1, f.Label)
}

func TestBroadcaster_TriggerInvalidKindRejected(t *testing.T) {
	fx := newFixture(t)

	err := fx.broadcaster.TriggerHazard(context.Background(), "meteor", time.Minute)
	require.ErrorIs(t, err, sim.ErrInvalidHazardKind)

	err = fx.broadcaster.TriggerHazard(context.Background(), sim.HazardRockfall, 0)
	require.ErrorIs(t, err, sim.ErrInvalidDuration)
}

func TestBroadcaster_TriggerHonorsCallerContext(t *testing.T) {
	clock := clockwork.NewFakeClock()
	simCtx := sim.NewContext(1, sim.WithClock(clock), sim.WithAutonomousEvents(false))
	b := New(simCtx, clock, testInterval, nil,
		slog.New(slog.DiscardHandler), observability.NewMetricsForTesting())

	// Loop not running: the request must time out on the caller's context
	// instead of blocking forever.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := b.TriggerHazard(ctx, sim.HazardRockfall, time.Minute)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	fx := newFixture(t)

	frames, unsubscribe := fx.broadcaster.Subscribe()
	unsubscribe()
	unsubscribe() // safe to call twice

	_, ok := <-frames
	assert.False(t, ok)
}

func TestBroadcaster_SlowSubscriberDoesNotStallLoop(t *testing.T) {
	fx := newFixture(t)

	// Never read from this subscription; the loop must keep ticking.
	_, unsubscribe := fx.broadcaster.Subscribe()
	defer unsubscribe()

	frames, unsubscribe2 := fx.broadcaster.Subscribe()
	defer unsubscribe2()

	for i := 0; i < subscriberBuffer+10; i++ {
		fx.clock.Advance(testInterval)
		waitFrame(t, frames)
	}
}

func TestBroadcaster_CheckReadiness(t *testing.T) {
	clock := clockwork.NewFakeClock()
	simCtx := sim.NewContext(1, sim.WithClock(clock), sim.WithAutonomousEvents(false))
	b := New(simCtx, clock, testInterval, nil,
		slog.New(slog.DiscardHandler), observability.NewMetricsForTesting())

	require.Error(t, b.CheckReadiness(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	go b.Run(ctx) //nolint:errcheck
	clock.BlockUntil(1)

	assert.NoError(t, b.CheckReadiness(context.Background()))

	cancel()
	require.Eventually(t, func() bool {
		return b.CheckReadiness(context.Background()) != nil
	}, 2*time.Second, 10*time.Millisecond)
}
