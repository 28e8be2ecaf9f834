package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gophregister/internal/domain/session"
)

type SessionRepository struct {
	s *Storage
}

func NewSessionRepository(s *Storage) *SessionRepository {
	return &SessionRepository{s: s}
}

func (r *SessionRepository) Create(ctx context.Context, operatorID, tokenHash string, expiresAt time.Time) error {
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO api_sessions (token_hash, operator_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
			tokenHash, operatorID, expiresAt, time.Now().UTC())
		return err
	})
}

func (r *SessionRepository) Validate(ctx context.Context, tokenHash string, now time.Time) (string, error) {
	var operatorID string
	err := r.s.db.GetContext(ctx, &operatorID,
		`SELECT operator_id FROM api_sessions WHERE token_hash = ? AND expires_at > ?`, tokenHash, now)
	if err != nil {
		return "", notFound(err, session.ErrInvalidSession)
	}
	return operatorID, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, tokenHash string) error {
	return r.s.write(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM api_sessions WHERE token_hash = ?`, tokenHash)
		return err
	})
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.s.write(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM api_sessions WHERE expires_at <= ?`, now)
		if err != nil {
			return fmt.Errorf("delete expired sessions: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}
