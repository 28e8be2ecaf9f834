package provision

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) StartSession(ctx context.Context, req StartRequest) (*Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockRemote) Poll(ctx context.Context, sessionID string) (*PollResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PollResult), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveCredentials(ctx context.Context, c Credentials) error {
	return m.Called(ctx, c).Error(0)
}

func TestService_Start(t *testing.T) {
	remote := new(MockRemote)
	svc := NewService(remote, new(MockStore), slog.Default())

	remote.On("StartSession", mock.Anything, mock.MatchedBy(func(r StartRequest) bool {
		return r.DeviceName == "caja-1" && r.DeviceType == DeviceTypePOS && len(r.Fingerprint) == 64
	})).Return(&Session{ID: "ps1", QRURL: "https://example.test/qr/ps1"}, nil)

	session, err := svc.Start(context.Background(), "dev-1", "caja-1")

	require.NoError(t, err)
	assert.Equal(t, "ps1", session.ID)
	remote.AssertExpectations(t)
}

func TestService_Wait_Approved(t *testing.T) {
	remote := new(MockRemote)
	store := new(MockStore)
	svc := NewService(remote, store, slog.Default())

	remote.On("Poll", mock.Anything, "ps1").Return(&PollResult{Status: StatusPending}, nil).Once()
	remote.On("Poll", mock.Anything, "ps1").Return(nil, errors.New("timeout")).Once()
	remote.On("Poll", mock.Anything, "ps1").Return(&PollResult{
		Status:         StatusApproved,
		AuthToken:      "tok",
		OrganizationID: "org1",
	}, nil).Once()
	store.On("SaveCredentials", mock.Anything, Credentials{Token: "tok", OrganizationID: "org1", DeviceID: "dev-1"}).Return(nil)

	creds, err := svc.Wait(context.Background(), "ps1", "dev-1", time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, "org1", creds.OrganizationID)
	remote.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestService_Wait_Terminal(t *testing.T) {
	tests := []struct {
		name    string
		result  *PollResult
		wantErr error
	}{
		{name: "rejected", result: &PollResult{Status: StatusRejected}, wantErr: ErrRejected},
		{name: "expired", result: &PollResult{Status: StatusExpired}, wantErr: ErrExpired},
		{name: "approved without token", result: &PollResult{Status: StatusApproved}, wantErr: ErrNoToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := new(MockRemote)
			store := new(MockStore)
			svc := NewService(remote, store, slog.Default())
			remote.On("Poll", mock.Anything, "ps1").Return(tt.result, nil)

			_, err := svc.Wait(context.Background(), "ps1", "dev-1", time.Millisecond)

			assert.ErrorIs(t, err, tt.wantErr)
			store.AssertNotCalled(t, "SaveCredentials", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Wait_Cancelled(t *testing.T) {
	remote := new(MockRemote)
	svc := NewService(remote, new(MockStore), slog.Default())
	remote.On("Poll", mock.Anything, "ps1").Return(&PollResult{Status: StatusPending}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Wait(ctx, "ps1", "dev-1", 5*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, Fingerprint("a", "host"), Fingerprint("a", "host"))
	assert.NotEqual(t, Fingerprint("a", "host"), Fingerprint("b", "host"))
}
