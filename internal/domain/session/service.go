package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

// DefaultTTL срок жизни токена локального API
const DefaultTTL = 7 * 24 * time.Hour

// Servicer токены доступа интерфейса оператора к локальному API
type Servicer interface {
	Create(ctx context.Context, operatorID string) (string, error)
	Validate(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
	Sweep(ctx context.Context) (int64, error)
}

// Service сессии операторов локального API
type Service struct {
	repo Repository
	log  *slog.Logger
	ttl  time.Duration
	now  func() time.Time
}

// NewService создает сервис сессий с временем жизни ttl
func NewService(repo Repository, log *slog.Logger, ttl time.Duration, now func() time.Time) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo: repo,
		log:  log,
		ttl:  ttl,
		now:  now,
	}
}

// Create выдает токен оператору
func (s *Service) Create(ctx context.Context, operatorID string) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	token := base64.URLEncoding.EncodeToString(tokenBytes)

	expiresAt := s.now().UTC().Add(s.ttl)
	if err := s.repo.Create(ctx, operatorID, hashToken(token), expiresAt); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	return token, nil
}

// Validate возвращает оператора по действующему токену
func (s *Service) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidSession
	}
	return s.repo.Validate(ctx, hashToken(token), s.now().UTC())
}

func (s *Service) Revoke(ctx context.Context, token string) error {
	return s.repo.Revoke(ctx, hashToken(token))
}

// Sweep удаляет истекшие сессии
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Debug("Удалены истекшие сессии", slog.Int64("count", n))
	}
	return n, nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
