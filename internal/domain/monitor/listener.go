package monitor

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/exp/slog"

	"gophregister/internal/domain/shift"
)

// EventSource поток изменений одной смены. Доставка at-least-once:
// одно и то же событие может прийти несколько раз.
type EventSource interface {
	Subscribe(ctx context.Context, shiftID string) (<-chan shift.Change, error)
}

type ShiftCloser interface {
	ApplyRemoteClose(ctx context.Context, change shift.Change) (bool, error)
}

// Notifier показывает оператору предупреждение. Не должен блокировать.
type Notifier interface {
	Warn(msg string)
}

// Reinitializer перечитывает локальное состояние смены после удаленного закрытия
type Reinitializer interface {
	Reinitialize(ctx context.Context) error
}

const RemoteCloseNotice = "Register was closed remotely. Open a new shift to continue."

// Listener следит за открытой сменой и реагирует на ее закрытие из облака
type Listener struct {
	source EventSource
	closer ShiftCloser
	notify Notifier
	reinit Reinitializer
	log    *slog.Logger

	// switchMu упорядочивает Track и Stop; обработчик его не берет
	switchMu sync.Mutex

	mu      sync.Mutex
	tracked string
	cancel  context.CancelFunc
	done    chan struct{}
	handled map[string]struct{}
}

// NewListener создает наблюдателя за удаленным закрытием смены
func NewListener(source EventSource, closer ShiftCloser, notify Notifier, reinit Reinitializer, log *slog.Logger) *Listener {
	return &Listener{
		source:  source,
		closer:  closer,
		notify:  notify,
		reinit:  reinit,
		log:     log.With(slog.String("component", "monitor")),
		handled: make(map[string]struct{}),
	}
}

// Track переключает подписку на смену shiftID. Пустой id только снимает подписку.
func (l *Listener) Track(ctx context.Context, shiftID string) error {
	l.switchMu.Lock()
	defer l.switchMu.Unlock()

	l.mu.Lock()
	if shiftID == l.tracked && l.cancel != nil {
		l.mu.Unlock()
		return nil
	}
	cancel, done := l.takeLocked()
	l.mu.Unlock()

	// ждем обработчик без l.mu: он сам берет l.mu
	wait(cancel, done)

	if shiftID == "" {
		return nil
	}

	runCtx, runCancel := context.WithCancel(ctx)
	events, err := l.source.Subscribe(runCtx, shiftID)
	if err != nil {
		runCancel()
		return fmt.Errorf("subscribe to shift %s: %w", shiftID, err)
	}

	runDone := make(chan struct{})
	l.mu.Lock()
	l.tracked = shiftID
	l.cancel = runCancel
	l.done = runDone
	l.mu.Unlock()

	go func() {
		if l.run(runCtx, runCancel, shiftID, events, runDone) {
			// после close(runDone): Reinitialize может снова вызвать Track
			if err := l.reinit.Reinitialize(context.WithoutCancel(ctx)); err != nil {
				l.log.Error("Ошибка переинициализации после удаленного закрытия", slog.Any("error", err))
			}
		}
	}()

	l.log.Debug("Подписка на изменения смены", slog.String("shift_id", shiftID))
	return nil
}

// Tracked id смены, за которой идет наблюдение
func (l *Listener) Tracked() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tracked
}

// Stop снимает подписку и дожидается завершения обработчика
func (l *Listener) Stop() {
	l.switchMu.Lock()
	defer l.switchMu.Unlock()

	l.mu.Lock()
	cancel, done := l.takeLocked()
	l.mu.Unlock()

	wait(cancel, done)
}

func (l *Listener) takeLocked() (context.CancelFunc, chan struct{}) {
	cancel, done := l.cancel, l.done
	l.tracked = ""
	l.cancel = nil
	l.done = nil
	return cancel, done
}

func wait(cancel context.CancelFunc, done chan struct{}) {
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// run читает события смены. Возвращает true, если удаленное закрытие
// применено и нужна переинициализация.
func (l *Listener) run(ctx context.Context, cancel context.CancelFunc, shiftID string, events <-chan shift.Change, done chan struct{}) bool {
	defer close(done)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return false
		case change, ok := <-events:
			if !ok {
				l.detach(done)
				return false
			}
			if change.ID != shiftID || !change.IsRemoteClose() {
				continue
			}
			if l.handle(ctx, change, done) {
				l.log.Info("Удаленное закрытие смены обработано", slog.String("shift_id", change.ID))
				return true
			}
		}
	}
}

// handle обрабатывает удаленное закрытие ровно один раз на смену.
// Возвращает true, если обработчик отсоединен и должен завершиться.
func (l *Listener) handle(ctx context.Context, change shift.Change, done chan struct{}) bool {
	l.mu.Lock()
	if _, seen := l.handled[change.ID]; seen {
		l.mu.Unlock()
		return false
	}
	l.handled[change.ID] = struct{}{}
	l.mu.Unlock()

	if _, err := l.closer.ApplyRemoteClose(ctx, change); err != nil {
		l.log.Error("Не удалось применить удаленное закрытие",
			slog.String("shift_id", change.ID),
			slog.Any("error", err),
		)
		// повторная доставка события даст еще одну попытку
		l.mu.Lock()
		delete(l.handled, change.ID)
		l.mu.Unlock()
		return false
	}

	l.notify.Warn(RemoteCloseNotice)
	l.detach(done)
	return true
}

func (l *Listener) detach(done chan struct{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done == done {
		l.tracked = ""
		l.cancel = nil
		l.done = nil
	}
}
