// Package pacer spaces out requests to a target site so traffic never
// arrives in bursts. A pacer belongs to exactly one provider; providers
// never share pacing state.
package pacer

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

const (
	DefaultMinDelay = 2 * time.Second
	DefaultMaxDelay = 5 * time.Second
)

// Pacer blocks until the next request to host may be sent.
type Pacer interface {
	Wait(ctx context.Context, host string) error
}

// Local sleeps a delay sampled uniformly from [minDelay, maxDelay]
// before every request.
type Local struct {
	minDelay time.Duration
	maxDelay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand

	// sleep is swapped in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLocal creates a Local pacer. Zero delays fall back to the defaults.
func NewLocal(minDelay, maxDelay time.Duration) *Local {
	if minDelay <= 0 {
		minDelay = DefaultMinDelay
	}
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Local{
		minDelay: minDelay,
		maxDelay: maxDelay,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:    Sleep,
	}
}

// Delay samples the next inter-request delay.
func (l *Local) Delay() time.Duration {
	spread := int64(l.maxDelay - l.minDelay)
	if spread <= 0 {
		return l.minDelay
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.minDelay + time.Duration(l.rnd.Int63n(spread+1))
}

// Wait implements Pacer.
func (l *Local) Wait(ctx context.Context, _ string) error {
	return l.sleep(ctx, l.Delay())
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Noop never waits. Used by static providers and tests.
type Noop struct{}

func (Noop) Wait(ctx context.Context, _ string) error { return ctx.Err() }
