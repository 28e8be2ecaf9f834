package sync

import (
	"context"
	"time"
)

type Repository interface {
	// ApplySnapshot применяет снимок одной транзакцией, не трогая
	// несинхронизированные строки и остатки зарезервированных товаров
	ApplySnapshot(ctx context.Context, branchID string, snap *Snapshot) (*ApplyStats, error)
	// Prune удаляет синхронизированные строки старше before
	Prune(ctx context.Context, before time.Time) (int64, error)
	BranchExists(ctx context.Context, id string) (bool, error)
	Unsynced(ctx context.Context, branchID string) (*Batch, error)
	// MarkSynced помечает строки без проверки ревизии
	MarkSynced(ctx context.Context, entity string, ids []string) error
	// AckSynced помечает строки, ревизия которых не менялась после сборки
	// пакета, и возвращает число помеченных
	AckSynced(ctx context.Context, entity string, acks []Ack) (int, error)
	PendingCounts(ctx context.Context, branchID string) (map[string]int, error)
}

// Remote облачная точка синхронизации
type Remote interface {
	FetchSnapshot(ctx context.Context, branchID string, days int) (*Snapshot, error)
	PushBatch(ctx context.Context, b *Batch) (*PushResponse, error)
}
