package register

import (
	"context"
	"time"

	"golang.org/x/exp/slog"
)

// loop периодическая задача с внеочередным запуском и ограниченной
// экспоненциальной задержкой после ошибок
type loop struct {
	name     string
	interval time.Duration
	maxDelay time.Duration
	run      func(ctx context.Context) error
	trigger  chan struct{}
	log      *slog.Logger
}

func newLoop(name string, interval, maxDelay time.Duration, run func(ctx context.Context) error, log *slog.Logger) *loop {
	if maxDelay < interval {
		maxDelay = interval
	}
	return &loop{
		name:     name,
		interval: interval,
		maxDelay: maxDelay,
		run:      run,
		trigger:  make(chan struct{}, 1),
		log:      log.With(slog.String("loop", name)),
	}
}

// Trigger запрашивает внеочередной запуск. Повторные запросы до запуска схлопываются.
func (l *loop) Trigger() {
	select {
	case l.trigger <- struct{}{}:
	default:
	}
}

func (l *loop) start(ctx context.Context) {
	delay := l.interval
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			l.log.Info("Цикл остановлен")
			return
		case <-timer.C:
		case <-l.trigger:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		err := l.run(ctx)
		if ctx.Err() != nil {
			return
		}
		delay = nextDelay(delay, l.interval, l.maxDelay, err)
		if err != nil {
			l.log.Warn("Ошибка цикла, повтор позже",
				slog.Any("error", err),
				slog.Duration("retry_in", delay),
			)
		}
		timer.Reset(delay)
	}
}

// nextDelay после успеха возвращает базовый интервал, после ошибки удваивает
// текущую задержку не выше limit
func nextDelay(current, base, limit time.Duration, err error) time.Duration {
	if err == nil {
		return base
	}
	next := current * 2
	if next > limit {
		next = limit
	}
	return next
}
