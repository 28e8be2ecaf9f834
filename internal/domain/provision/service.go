package provision

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/exp/slog"

	"gophregister/internal/utils/validate"
)

type Servicer interface {
	// Start открывает сессию привязки и возвращает ссылку для QR-кода
	Start(ctx context.Context, deviceID, deviceName string) (*Session, error)
	// Wait опрашивает сессию до подтверждения или отказа
	Wait(ctx context.Context, sessionID, deviceID string, interval time.Duration) (*Credentials, error)
}

// Service привязка устройства к филиалу
type Service struct {
	remote Remote
	store  Store
	log    *slog.Logger
}

// NewService создает сервис привязки
func NewService(remote Remote, store Store, log *slog.Logger) *Service {
	return &Service{
		remote: remote,
		store:  store,
		log:    log.With(slog.String("component", "provision")),
	}
}

func (s *Service) Start(ctx context.Context, deviceID, deviceName string) (*Session, error) {
	hostname, _ := os.Hostname()
	if deviceName == "" {
		deviceName = hostname
	}

	req := StartRequest{
		Fingerprint: Fingerprint(deviceID, hostname),
		DeviceName:  deviceName,
		DeviceType:  DeviceTypePOS,
	}
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	session, err := s.remote.StartSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("start provisioning session: %w", err)
	}

	s.log.Info("Сессия привязки устройства открыта", slog.String("session_id", session.ID))
	return session, nil
}

// Wait опрашивает облако, пока сессия привязки не будет подтверждена
func (s *Service) Wait(ctx context.Context, sessionID, deviceID string, interval time.Duration) (*Credentials, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	if interval <= 0 {
		interval = 3 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		creds, done, err := s.poll(ctx, sessionID, deviceID)
		if done {
			return creds, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Service) poll(ctx context.Context, sessionID, deviceID string) (*Credentials, bool, error) {
	res, err := s.remote.Poll(ctx, sessionID)
	if err != nil {
		// сетевые ошибки не прерывают ожидание
		s.log.Warn("Ошибка опроса сессии привязки", slog.Any("error", err))
		return nil, false, nil
	}

	switch res.Status {
	case StatusApproved:
		if res.AuthToken == "" {
			return nil, true, ErrNoToken
		}
		creds := Credentials{
			Token:          res.AuthToken,
			OrganizationID: res.OrganizationID,
			DeviceID:       deviceID,
		}
		if err := s.store.SaveCredentials(ctx, creds); err != nil {
			return nil, true, fmt.Errorf("save credentials: %w", err)
		}
		s.log.Info("Устройство привязано",
			slog.String("organization_id", creds.OrganizationID),
			slog.String("device_id", creds.DeviceID),
		)
		return &creds, true, nil
	case StatusRejected:
		return nil, true, ErrRejected
	case StatusExpired:
		return nil, true, ErrExpired
	default:
		return nil, false, nil
	}
}
