package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/shift"
)

type fakeSource struct {
	mu   sync.Mutex
	subs map[string]chan shift.Change
	err  error
}

func newFakeSource() *fakeSource {
	return &fakeSource{subs: make(map[string]chan shift.Change)}
}

func (f *fakeSource) Subscribe(ctx context.Context, shiftID string) (<-chan shift.Change, error) {
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan shift.Change, 8)
	f.mu.Lock()
	f.subs[shiftID] = ch
	f.mu.Unlock()
	return ch, nil
}

func (f *fakeSource) send(shiftID string, c shift.Change) {
	f.mu.Lock()
	ch := f.subs[shiftID]
	f.mu.Unlock()
	ch <- c
}

type fakeCloser struct {
	calls atomic.Int32
	fail  atomic.Bool
}

func (f *fakeCloser) ApplyRemoteClose(ctx context.Context, change shift.Change) (bool, error) {
	f.calls.Add(1)
	if f.fail.Load() {
		return false, errors.New("database is locked")
	}
	return true, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (f *fakeNotifier) Warn(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

type fakeReinit struct {
	calls    atomic.Int32
	listener *Listener
}

func (f *fakeReinit) Reinitialize(ctx context.Context) error {
	f.calls.Add(1)
	// как в приложении: после закрытия открытой смены нет
	return f.listener.Track(ctx, "")
}

func remoteClose(id string) shift.Change {
	return shift.Change{ID: id, Status: shift.StatusClosed, ClosedBy: shift.ClosedByRemote}
}

func newTestListener() (*Listener, *fakeSource, *fakeCloser, *fakeNotifier, *fakeReinit) {
	src := newFakeSource()
	closer := &fakeCloser{}
	notifier := &fakeNotifier{}
	reinit := &fakeReinit{}
	l := NewListener(src, closer, notifier, reinit, slog.Default())
	reinit.listener = l
	return l, src, closer, notifier, reinit
}

func TestListener_RemoteCloseHandledOnce(t *testing.T) {
	l, src, closer, notifier, reinit := newTestListener()
	defer l.Stop()

	require.NoError(t, l.Track(context.Background(), "s1"))

	src.send("s1", remoteClose("s1"))
	src.send("s1", remoteClose("s1"))

	require.Eventually(t, func() bool { return reinit.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, int32(1), closer.calls.Load())
	assert.Equal(t, 1, notifier.count())
	assert.Equal(t, int32(1), reinit.calls.Load())
	assert.Empty(t, l.Tracked())
}

func TestListener_DuplicateAfterResubscribe(t *testing.T) {
	l, src, closer, _, reinit := newTestListener()
	defer l.Stop()

	require.NoError(t, l.Track(context.Background(), "s1"))
	src.send("s1", remoteClose("s1"))
	require.Eventually(t, func() bool { return reinit.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, l.Track(context.Background(), "s1"))
	src.send("s1", remoteClose("s1"))
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, int32(1), closer.calls.Load())
	assert.Equal(t, int32(1), reinit.calls.Load())
}

func TestListener_IgnoresOtherChanges(t *testing.T) {
	l, src, closer, notifier, _ := newTestListener()
	defer l.Stop()

	require.NoError(t, l.Track(context.Background(), "s1"))

	src.send("s1", shift.Change{ID: "s1", Status: shift.StatusOpen})
	src.send("s1", shift.Change{ID: "s1", Status: shift.StatusClosed, ClosedBy: shift.ClosedByLocal})
	src.send("s1", remoteClose("s2"))
	time.Sleep(30 * time.Millisecond)

	assert.Zero(t, closer.calls.Load())
	assert.Zero(t, notifier.count())
	assert.Equal(t, "s1", l.Tracked())
}

func TestListener_ApplyFailureAllowsRetry(t *testing.T) {
	l, src, closer, _, reinit := newTestListener()
	defer l.Stop()
	closer.fail.Store(true)

	require.NoError(t, l.Track(context.Background(), "s1"))
	src.send("s1", remoteClose("s1"))
	require.Eventually(t, func() bool { return closer.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, reinit.calls.Load())

	closer.fail.Store(false)
	src.send("s1", remoteClose("s1"))
	require.Eventually(t, func() bool { return reinit.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), closer.calls.Load())
}

func TestListener_TrackSwitchesAndUnsubscribes(t *testing.T) {
	l, src, _, _, _ := newTestListener()

	require.NoError(t, l.Track(context.Background(), "s1"))
	assert.Equal(t, "s1", l.Tracked())

	require.NoError(t, l.Track(context.Background(), "s2"))
	assert.Equal(t, "s2", l.Tracked())

	require.NoError(t, l.Track(context.Background(), ""))
	assert.Empty(t, l.Tracked())

	src.err = errors.New("connection refused")
	assert.Error(t, l.Track(context.Background(), "s3"))
	assert.Empty(t, l.Tracked())
}

// blockingCloser держит ApplyRemoteClose до release
type blockingCloser struct {
	entered chan struct{}
	release chan struct{}
	err     error
}

func (b *blockingCloser) ApplyRemoteClose(ctx context.Context, change shift.Change) (bool, error) {
	close(b.entered)
	<-b.release
	return b.err == nil, b.err
}

func TestListener_UntrackWhileApplyingRemoteClose(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantReinit int32
	}{
		{name: "close applied", wantReinit: 1},
		{name: "close failed", err: errors.New("database is locked")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			closer := &blockingCloser{entered: make(chan struct{}), release: make(chan struct{}), err: tt.err}
			reinit := &fakeReinit{}
			l := NewListener(src, closer, &fakeNotifier{}, reinit, slog.Default())
			reinit.listener = l
			defer l.Stop()

			require.NoError(t, l.Track(context.Background(), "s1"))
			src.send("s1", remoteClose("s1"))
			<-closer.entered

			untracked := make(chan error, 1)
			go func() { untracked <- l.Track(context.Background(), "") }()

			select {
			case <-untracked:
				t.Fatal("untrack returned before the handler finished")
			case <-time.After(20 * time.Millisecond):
			}

			close(closer.release)
			select {
			case err := <-untracked:
				require.NoError(t, err)
			case <-time.After(time.Second):
				t.Fatal("untrack blocked by the running handler")
			}

			assert.Empty(t, l.Tracked())
			require.Eventually(t, func() bool { return reinit.calls.Load() == tt.wantReinit }, time.Second, 5*time.Millisecond)
		})
	}
}

func TestListener_StopWhileApplyingRemoteClose(t *testing.T) {
	src := newFakeSource()
	closer := &blockingCloser{entered: make(chan struct{}), release: make(chan struct{}), err: errors.New("timeout")}
	l := NewListener(src, closer, &fakeNotifier{}, &fakeReinit{}, slog.Default())

	require.NoError(t, l.Track(context.Background(), "s1"))
	src.send("s1", remoteClose("s1"))
	<-closer.entered

	stopped := make(chan struct{})
	go func() {
		l.Stop()
		close(stopped)
	}()
	time.AfterFunc(20*time.Millisecond, func() { close(closer.release) })

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop blocked by the running handler")
	}
	assert.Empty(t, l.Tracked())
}
