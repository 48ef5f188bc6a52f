package reflection

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/intentional-app/intentional/internal/model"
)

// Ticker delivers countdown ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTicker returns a wall-clock Ticker firing every d.
func NewTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

type immediateTicker struct{ ch chan time.Time }

func (t immediateTicker) C() <-chan time.Time { return t.ch }
func (immediateTicker) Stop()                 {}

// Immediate returns a Ticker that fires as fast as it is read. Headless runs
// use it to skip the wait.
func Immediate() Ticker {
	ch := make(chan time.Time)
	close(ch)
	return immediateTicker{ch: ch}
}

// RunCountdown feeds ticks to c until the countdown finishes, the session
// leaves the countdown some other way, or ctx is done. The ticker is
// stopped on every return path.
func RunCountdown(ctx context.Context, c *Controller, t Ticker) error {
	defer t.Stop()
	for {
		if !c.inPhase(model.PhaseCountdown) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C():
			if c.Tick(ctx) {
				return nil
			}
		}
	}
}

// RunUntilBypass feeds ticks to c until bypass unlocks, then stops. It
// returns ErrBypassUnavailable without ticking when the app never allows it.
func RunUntilBypass(ctx context.Context, c *Controller, t Ticker) error {
	defer t.Stop()
	if c.BypassThreshold() == math.MaxInt {
		return fmt.Errorf("%s: %w", c.app.Name, ErrBypassUnavailable)
	}
	for !c.BypassAvailable() {
		if !c.inPhase(model.PhaseCountdown) {
			return fmt.Errorf("countdown ended first: %w", ErrBypassUnavailable)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C():
			c.Tick(ctx)
		}
	}
	return nil
}
