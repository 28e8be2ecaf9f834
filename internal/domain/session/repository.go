package session

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, operatorID, tokenHash string, expiresAt time.Time) error
	// Validate возвращает оператора по хешу токена, если сессия не истекла на момент now
	Validate(ctx context.Context, tokenHash string, now time.Time) (string, error)
	Revoke(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
