package answer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Gate enforces a minimum interval between generation calls. The clock and
// sleep functions are injectable so the spacing is testable without real
// waiting.
type Gate struct {
	limiter *rate.Limiter
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewGate creates a gate allowing one call per minInterval. A non-positive
// interval disables the gate.
func NewGate(minInterval time.Duration) *Gate {
	g := &Gate{
		now:   time.Now,
		sleep: sleepCtx,
	}
	if minInterval > 0 {
		g.limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}
	return g
}

// Wait blocks until the next call is allowed or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	if g.limiter == nil {
		return nil
	}
	r := g.limiter.ReserveN(g.now(), 1)
	if !r.OK() {
		return nil
	}
	if delay := r.DelayFrom(g.now()); delay > 0 {
		return g.sleep(ctx, delay)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
