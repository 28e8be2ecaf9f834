package register

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

func TestNextDelay(t *testing.T) {
	base := 30 * time.Second
	limit := 2 * time.Minute
	fail := errors.New("offline")

	tests := []struct {
		name    string
		current time.Duration
		err     error
		want    time.Duration
	}{
		{name: "success resets", current: limit, want: base},
		{name: "first failure doubles", current: base, err: fail, want: time.Minute},
		{name: "second failure doubles", current: time.Minute, err: fail, want: 2 * time.Minute},
		{name: "capped", current: 2 * time.Minute, err: fail, want: limit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextDelay(tt.current, base, limit, tt.err))
		})
	}
}

func TestLoop_Trigger(t *testing.T) {
	var runs atomic.Int32
	l := newLoop("test", time.Hour, time.Hour, func(context.Context) error {
		runs.Add(1)
		return nil
	}, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.start(ctx)
		close(done)
	}()

	l.Trigger()
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestLoop_TriggerCollapses(t *testing.T) {
	l := newLoop("test", time.Hour, time.Hour, func(context.Context) error { return nil }, slog.Default())

	l.Trigger()
	l.Trigger()
	l.Trigger()

	assert.Len(t, l.trigger, 1)
}
