package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func immediate(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func TestFixedSchedulerStopsOnPassError(t *testing.T) {
	s := NewFixedScheduler("test", time.Hour)
	s.after = immediate
	halt := errors.New("halt")
	calls := 0
	err := s.Run(context.Background(), func(context.Context) error {
		calls++
		if calls == 3 {
			return halt
		}
		return nil
	})
	require.ErrorIs(t, err, halt)
	assert.Equal(t, 3, calls)
}

func TestFixedSchedulerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewFixedScheduler("test", time.Hour)
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx, func(context.Context) error {
			calls++
			return nil
		})
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, 1, calls)
}

func TestCandleSpan(t *testing.T) {
	d, err := CandleSpan("5m")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)
	d, err = CandleSpan(" 4H ")
	require.NoError(t, err)
	assert.Equal(t, 4*time.Hour, d)
	for _, bad := range []string{"0m", "5s", "2h", ""} {
		_, err = CandleSpan(bad)
		assert.Error(t, err, bad)
	}
}

func TestCycleInterval(t *testing.T) {
	assert.Equal(t, 30*time.Second, CycleInterval(30, "15m"))
	assert.Equal(t, 15*time.Minute, CycleInterval(0, "15m"))
	assert.Equal(t, time.Minute, CycleInterval(0, "bogus"))
}
