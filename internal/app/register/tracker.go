package register

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// Heartbeater продление признака жизни открытой смены
type Heartbeater interface {
	Heartbeat(ctx context.Context, shiftID string) error
}

// ShiftTracker подписка на изменения отслеживаемой смены
type ShiftTracker interface {
	Track(ctx context.Context, shiftID string) error
}

// tracker держит heartbeat и подписку на изменения для текущей открытой
// смены. Смена id перезапускает обе задачи, пустой id останавливает их.
type tracker struct {
	beats    Heartbeater
	watch    ShiftTracker
	interval time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	base    context.Context
	current string
	cancel  context.CancelFunc
	done    chan struct{}
}

func newTracker(beats Heartbeater, watch ShiftTracker, interval time.Duration, log *slog.Logger) *tracker {
	return &tracker{
		beats:    beats,
		watch:    watch,
		interval: interval,
		log:      log.With(slog.String("component", "tracker")),
		base:     context.Background(),
	}
}

// bind задает контекст приложения, в котором живут фоновые задачи
func (t *tracker) bind(ctx context.Context) {
	t.mu.Lock()
	t.base = ctx
	t.mu.Unlock()
}

func (t *tracker) Track(shiftID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if shiftID == t.current && (shiftID == "" || t.cancel != nil) {
		return
	}
	t.stopLocked()
	t.current = shiftID

	if err := t.watch.Track(t.base, shiftID); err != nil {
		t.log.Warn("Не удалось подписаться на изменения смены",
			slog.String("shift_id", shiftID),
			slog.Any("error", err),
		)
	}

	if shiftID == "" {
		return
	}

	ctx, cancel := context.WithCancel(t.base)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done
	go t.heartbeat(ctx, shiftID, done)

	t.log.Info("Отслеживание смены", slog.String("shift_id", shiftID))
}

func (t *tracker) Current() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.current = ""
	_ = t.watch.Track(t.base, "")
}

func (t *tracker) stopLocked() {
	if t.cancel == nil {
		return
	}
	t.cancel()
	<-t.done
	t.cancel = nil
	t.done = nil
}

func (t *tracker) heartbeat(ctx context.Context, shiftID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.beats.Heartbeat(ctx, shiftID); err != nil && ctx.Err() == nil {
				t.log.Warn("Heartbeat не записан",
					slog.String("shift_id", shiftID),
					slog.Any("error", err),
				)
			}
		}
	}
}
