package pgnotify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/shift"
)

// Channel канал NOTIFY, в который облако пишет изменения смен
const Channel = "shift_changes"

const (
	minReconnect = time.Second
	maxReconnect = time.Minute
)

// Source слушает LISTEN shift_changes напрямую в Postgres.
// После обрыва соединение восстанавливается с нарастающей паузой.
type Source struct {
	dsn string
	log *slog.Logger
}

func New(dsn string, log *slog.Logger) *Source {
	return &Source{
		dsn: dsn,
		log: log.With(slog.String("component", "pgnotify_source")),
	}
}

func (s *Source) Subscribe(ctx context.Context, shiftID string) (<-chan shift.Change, error) {
	conn, err := s.listen(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan shift.Change, 1)
	go s.run(ctx, conn, shiftID, out)
	return out, nil
}

func (s *Source) listen(ctx context.Context) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, s.dsn)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{Channel}.Sanitize()); err != nil {
		_ = conn.Close(context.Background())
		return nil, fmt.Errorf("listen %s: %w", Channel, err)
	}
	return conn, nil
}

func (s *Source) run(ctx context.Context, conn *pgx.Conn, shiftID string, out chan<- shift.Change) {
	defer close(out)
	defer func() {
		if conn != nil {
			_ = conn.Close(context.Background())
		}
	}()

	backoff := minReconnect
	for {
		if conn == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}

			c, err := s.listen(ctx)
			if err != nil {
				s.log.Warn("Переподключение к каналу изменений не удалось", slog.Any("error", err))
				backoff = min(backoff*2, maxReconnect)
				continue
			}
			conn = c
			backoff = minReconnect
		}

		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("Соединение с каналом изменений потеряно", slog.Any("error", err))
			_ = conn.Close(context.Background())
			conn = nil
			continue
		}

		change, err := ParsePayload(n.Payload)
		if err != nil {
			s.log.Warn("Некорректное событие смены", slog.String("payload", n.Payload), slog.Any("error", err))
			continue
		}
		if change.ID != shiftID {
			continue
		}

		select {
		case out <- change:
		case <-ctx.Done():
			return
		}
	}
}

// ParsePayload разбирает полезную нагрузку NOTIFY
// {"id", "status", "closed_by_method", "end_time"}
func ParsePayload(payload string) (shift.Change, error) {
	var c shift.Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return shift.Change{}, err
	}
	if c.ID == "" {
		return shift.Change{}, fmt.Errorf("payload without shift id")
	}
	return c, nil
}
