package poll

import (
	"context"
	"time"

	"golang.org/x/exp/slog"

	"gophregister/internal/domain/shift"
)

// Fetcher читает текущее состояние смены из облака
type Fetcher interface {
	FetchShift(ctx context.Context, shiftID string) (*shift.Change, error)
}

// Source опрашивает облако с заданным интервалом. Каждое закрытие смены
// отдается при каждом опросе, пока подписка активна.
type Source struct {
	fetcher  Fetcher
	interval time.Duration
	log      *slog.Logger
}

func New(fetcher Fetcher, interval time.Duration, log *slog.Logger) *Source {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Source{
		fetcher:  fetcher,
		interval: interval,
		log:      log.With(slog.String("component", "poll_source")),
	}
}

func (s *Source) Subscribe(ctx context.Context, shiftID string) (<-chan shift.Change, error) {
	out := make(chan shift.Change, 1)
	go s.run(ctx, shiftID, out)
	return out, nil
}

func (s *Source) run(ctx context.Context, shiftID string, out chan<- shift.Change) {
	defer close(out)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		change, err := s.fetcher.FetchShift(ctx, shiftID)
		switch {
		case err != nil:
			if ctx.Err() == nil {
				s.log.Debug("Опрос смены не удался", slog.String("shift_id", shiftID), slog.Any("error", err))
			}
		case change != nil && change.Status == shift.StatusClosed:
			select {
			case out <- *change:
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
