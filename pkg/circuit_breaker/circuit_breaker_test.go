package circuit_breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errBroker = errors.New("broker down")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestCircuitBreaker_Call(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := newWithClock(Config{Window: 4, Cooldown: time.Minute, Threshold: 0.5, Recovery: 2}, clock.now)

	fail := func() error { return errBroker }
	ok := func() error { return nil }

	require.NoError(t, cb.Call(ok))
	require.ErrorIs(t, cb.Call(fail), errBroker)
	require.Equal(t, Closed, cb.status())

	// second failure out of four reaches the threshold
	require.ErrorIs(t, cb.Call(fail), errBroker)
	require.Equal(t, Open, cb.status())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrOpen)
	require.False(t, called)

	clock.t = clock.t.Add(time.Minute)
	require.NoError(t, cb.Call(ok))
	require.Equal(t, HalfOpen, cb.status())
	require.NoError(t, cb.Call(ok))
	require.Equal(t, Closed, cb.status())
}

func TestCircuitBreaker_HalfOpenFailure(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := newWithClock(Config{Window: 2, Cooldown: time.Second, Threshold: 0.5, Recovery: 3}, clock.now)

	require.Error(t, cb.Call(func() error { return errBroker }))
	require.Equal(t, Open, cb.status())

	clock.t = clock.t.Add(2 * time.Second)
	require.ErrorIs(t, cb.Call(func() error { return errBroker }), errBroker)
	require.Equal(t, Open, cb.status())
	require.ErrorIs(t, cb.Call(func() error { return nil }), ErrOpen)

	// cooldown again, then enough probes close it
	clock.t = clock.t.Add(2 * time.Second)
	for i := 0; i < 3; i++ {
		require.NoError(t, cb.Call(func() error { return nil }))
	}
	require.Equal(t, Closed, cb.status())
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()
	cb := newWithClock(Config{}, time.Now)
	require.Len(t, cb.window, 10)
	require.InDelta(t, 0.5, cb.cfg.Threshold, 1e-9)
}
