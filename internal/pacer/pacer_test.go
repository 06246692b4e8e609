package pacer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDelay_WithinRange(t *testing.T) {
	l := NewLocal(2*time.Second, 5*time.Second)

	for i := 0; i < 200; i++ {
		d := l.Delay()
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.LessOrEqual(t, d, 5*time.Second)
	}
}

func TestLocalDelay_Defaults(t *testing.T) {
	l := NewLocal(0, 0)

	assert.Equal(t, DefaultMinDelay, l.minDelay)
	assert.Equal(t, DefaultMaxDelay, l.maxDelay)
}

func TestLocalDelay_InvertedRange(t *testing.T) {
	l := NewLocal(3*time.Second, time.Second)

	assert.Equal(t, 3*time.Second, l.Delay())
}

func TestLocalWait_SleepsSampledDelay(t *testing.T) {
	l := NewLocal(time.Second, 2*time.Second)
	var slept []time.Duration
	l.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	require.NoError(t, l.Wait(context.Background(), "example.com"))
	require.NoError(t, l.Wait(context.Background(), "example.com"))

	require.Len(t, slept, 2)
	for _, d := range slept {
		assert.GreaterOrEqual(t, d, time.Second)
		assert.LessOrEqual(t, d, 2*time.Second)
	}
}

func TestSleep_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Sleep(ctx, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleep_ZeroDuration(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), 0))
}

func TestBuildKey_ScopedPerProvider(t *testing.T) {
	a := buildKey("Indeed", "www.indeed.com")
	b := buildKey("linkedin", "www.indeed.com")

	assert.Equal(t, "jobsearcher:pace:indeed:www.indeed.com", a)
	assert.NotEqual(t, a, b)
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Wait(context.Background(), "x"))
}
