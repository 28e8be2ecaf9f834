package shift

import (
	"context"
	"time"
)

type Repository interface {
	// OpenOrGet в одной транзакции ищет открытую смену филиала и создает
	// candidate только если такой нет. Второй результат true для найденной смены.
	OpenOrGet(ctx context.Context, candidate *Shift) (*Shift, bool, error)
	GetByID(ctx context.Context, id string) (*Shift, error)
	GetOpen(ctx context.Context, branchID string) (*Shift, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Totals(ctx context.Context, id string) (*Totals, error)
	Close(ctx context.Context, c *Closing) error
	MarkClosedRemotely(ctx context.Context, id string, endTime time.Time) (bool, error)
	// ListRecent последние смены филиала, новые первыми
	ListRecent(ctx context.Context, branchID string, limit int) ([]Shift, error)
}
