package provision

import "context"

// Remote облачные точки привязки устройства
type Remote interface {
	StartSession(ctx context.Context, req StartRequest) (*Session, error)
	Poll(ctx context.Context, sessionID string) (*PollResult, error)
}

// Store хранилище учетных данных устройства
type Store interface {
	SaveCredentials(ctx context.Context, c Credentials) error
}
