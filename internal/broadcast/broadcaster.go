package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rudresh69/SIH2025/internal/observability"
	"github.com/rudresh69/SIH2025/internal/sim"
)

// subscriberBuffer is the per-subscriber channel depth. A subscriber that
// falls further behind than this starts losing frames rather than stalling
// the tick loop.
const subscriberBuffer = 64

// FramePublisher pushes frames to an external sink. Implementations must be
// safe to call from the tick loop goroutine.
type FramePublisher interface {
	PublishFrame(ctx context.Context, frame sim.Frame) error
}

type triggerRequest struct {
	kind     sim.HazardKind
	duration time.Duration
	reply    chan error
}

// Broadcaster owns the simulation context and drives it from a single
// goroutine. All mutation funnels through Run: ticks come from the clock,
// hazard triggers arrive over a request channel, and every produced frame
// fans out to the current subscribers. The sim.Context itself is never
// touched concurrently.
type Broadcaster struct {
	sim       *sim.Context
	clock     clockwork.Clock
	interval  time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
	publisher FramePublisher

	triggers chan triggerRequest

	mu          sync.Mutex
	running     bool
	subscribers map[chan sim.Frame]struct{}
}

// New creates a broadcaster around a simulation context. publisher may be
// nil when no external sink is configured.
func New(simCtx *sim.Context, clock clockwork.Clock, interval time.Duration, publisher FramePublisher, logger *slog.Logger, metrics *observability.Metrics) *Broadcaster {
	return &Broadcaster{
		sim:         simCtx,
		clock:       clock,
		interval:    interval,
		logger:      logger,
		metrics:     metrics,
		publisher:   publisher,
		triggers:    make(chan triggerRequest),
		subscribers: make(map[chan sim.Frame]struct{}),
	}
}

// Run drives the tick loop until ctx is cancelled. It must be called exactly
// once.
func (b *Broadcaster) Run(ctx context.Context) error {
	b.mu.Lock()
	b.running = true
	b.mu.Unlock()
	b.metrics.StreamRunning.Set(1)

	defer func() {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
		b.metrics.StreamRunning.Set(0)
	}()

	ticker := b.clock.NewTicker(b.interval)
	defer ticker.Stop()

	b.logger.Info("broadcast loop starting", "interval", b.interval)

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("broadcast loop stopping", "ticks", b.sim.Tick())
			return ctx.Err()

		case req := <-b.triggers:
			err := b.sim.TriggerHazard(req.kind, req.duration)
			if err != nil {
				b.metrics.TriggerRejections.Inc()
			} else {
				b.metrics.HazardsTriggered.WithLabelValues(string(req.kind)).Inc()
				b.logger.Info("hazard triggered", "kind", req.kind, "duration", req.duration)
			}
			req.reply <- err

		case <-ticker.Chan():
			b.step(ctx)
		}
	}
}

// step advances the simulation one tick and distributes the frame.
func (b *Broadcaster) step(ctx context.Context) {
	start := time.Now()
	frame := b.sim.Advance()
	b.metrics.TickDuration.Observe(time.Since(start).Seconds())
	b.metrics.TicksTotal.Inc()

	counters := b.sim.Counters()
	b.metrics.InvariantClamps.Set(float64(counters.InvariantClamps))
	b.metrics.AutonomousStarts.Set(float64(counters.AutonomousStarts))

	b.mu.Lock()
	delivered := false
	for ch := range b.subscribers {
		select {
		case ch <- frame:
			delivered = true
		default:
			// Subscriber is full; it misses this frame.
		}
	}
	b.mu.Unlock()
	if delivered {
		b.metrics.FramesBroadcast.Inc()
	}

	if b.publisher != nil {
		if err := b.publisher.PublishFrame(ctx, frame); err != nil {
			b.metrics.KafkaPublishErrors.Inc()
			b.logger.Error("frame publish failed", "error", err)
		}
	}
}

// Subscribe registers a frame receiver. The returned cancel func must be
// called when done; afterwards the channel is closed.
func (b *Broadcaster) Subscribe() (<-chan sim.Frame, func()) {
	ch := make(chan sim.Frame, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	n := len(b.subscribers)
	b.mu.Unlock()
	b.metrics.Subscribers.Set(float64(n))

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		n := len(b.subscribers)
		b.mu.Unlock()
		b.metrics.Subscribers.Set(float64(n))
	}
	return ch, cancel
}

// TriggerHazard forwards a hazard request to the tick loop and waits for its
// verdict. The request is serialized with Advance calls, so a trigger and the
// tick that first reflects it can never race.
func (b *Broadcaster) TriggerHazard(ctx context.Context, kind sim.HazardKind, duration time.Duration) error {
	req := triggerRequest{kind: kind, duration: duration, reply: make(chan error, 1)}

	select {
	case b.triggers <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CheckReadiness reports whether the tick loop is running.
func (b *Broadcaster) CheckReadiness(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return errors.New("broadcast loop not running")
	}
	return nil
}
