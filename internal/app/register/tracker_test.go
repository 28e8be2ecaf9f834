package register

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

type countingBeats struct {
	mu    sync.Mutex
	beats map[string]int
}

func (c *countingBeats) Heartbeat(_ context.Context, shiftID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.beats == nil {
		c.beats = make(map[string]int)
	}
	c.beats[shiftID]++
	return nil
}

func (c *countingBeats) count(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beats[id]
}

type recordingWatch struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingWatch) Track(_ context.Context, shiftID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, shiftID)
	return nil
}

func (r *recordingWatch) tracked() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func TestTracker_SwitchesShift(t *testing.T) {
	beats := &countingBeats{}
	watch := &recordingWatch{}
	tr := newTracker(beats, watch, 10*time.Millisecond, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr.bind(ctx)

	tr.Track("s1")
	assert.Eventually(t, func() bool { return beats.count("s1") >= 2 }, time.Second, 5*time.Millisecond)

	// повторный Track той же смены ничего не перезапускает
	tr.Track("s1")
	assert.Equal(t, []string{"s1"}, watch.tracked())

	tr.Track("s2")
	assert.Equal(t, "s2", tr.Current())
	stopped := beats.count("s1")
	assert.Eventually(t, func() bool { return beats.count("s2") >= 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, stopped, beats.count("s1"))

	tr.Track("")
	assert.Empty(t, tr.Current())
	assert.Equal(t, []string{"s1", "s2", ""}, watch.tracked())
}

func TestTracker_Stop(t *testing.T) {
	beats := &countingBeats{}
	watch := &recordingWatch{}
	tr := newTracker(beats, watch, 10*time.Millisecond, slog.Default())

	tr.Track("s1")
	tr.Stop()

	n := beats.count("s1")
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, beats.count("s1"))
	assert.Empty(t, tr.Current())
}
