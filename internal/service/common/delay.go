package common

import (
	"context"
	"math/rand/v2"
	"time"
)

// Delay pauses between consecutive upstream requests
type Delay interface {
	Wait(ctx context.Context) error
}

// randomDelay sleeps a uniformly random duration in [min, max]
type randomDelay struct {
	min, max time.Duration
}

// NewRandomDelay creates a Delay drawing from [min, max]. A zero range never sleeps.
func NewRandomDelay(min, max time.Duration) Delay {
	if max < min {
		max = min
	}
	return &randomDelay{min: min, max: max}
}

// next draws the duration the next Wait sleeps
func (d *randomDelay) next() time.Duration {
	if d.max == d.min {
		return d.min
	}
	return d.min + rand.N(d.max-d.min+1)
}

// Wait sleeps for the drawn duration or until ctx is done
func (d *randomDelay) Wait(ctx context.Context) error {
	wait := d.next()
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
