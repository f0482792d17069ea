// Package retry implements the fixed-delay reconnect policy shared by the
// device loop and the uplink connection loop.
package retry

import (
	"context"
	"time"

	"github.com/cfoust/padlink/pkg/failure"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DEFAULT_DELAY = 1 * time.Second
	// Repeated failures are reported at warn level at most this often.
	LOG_INTERVAL = 10 * time.Second
)

// Policy waits a fixed delay after every failure. The delay never grows and
// has no jitter; the limiter only affects how loudly failures are logged.
type Policy struct {
	Delay   time.Duration
	log     zerolog.Logger
	limiter *rate.Limiter
}

func New(delay time.Duration, logger zerolog.Logger) *Policy {
	if delay <= 0 {
		delay = DEFAULT_DELAY
	}

	return &Policy{
		Delay:   delay,
		log:     logger,
		limiter: rate.NewLimiter(rate.Every(LOG_INTERVAL), 1),
	}
}

// OnFailure logs err and blocks for the fixed delay. It returns ctx.Err() if
// the context is cancelled first, and nil otherwise.
func (p *Policy) OnFailure(ctx context.Context, err error) error {
	event := p.log.Debug()
	if p.limiter.Allow() {
		event = p.log.Warn()
	}

	if kind, ok := failure.KindOf(err); ok {
		event = event.Stringer("kind", kind)
	}
	event.Err(err).Dur("delay", p.Delay).Msg("retrying after failure")

	return Wait(ctx, p.Delay)
}

func Wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
