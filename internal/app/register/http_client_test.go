package register

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/catalog"
	"gophregister/internal/domain/provision"
	domainsync "gophregister/internal/domain/sync"
)

type staticToken string

func (t staticToken) Token() (string, error) { return string(t), nil }

func TestHTTPClient_FetchSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sync", r.URL.Path)
		assert.Equal(t, "b1", r.URL.Query().Get("branch_id"))
		assert.Equal(t, "7", r.URL.Query().Get("days"))
		assert.Equal(t, "Bearer device-token", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(domainsync.Snapshot{
			Branches: []catalog.Branch{{ID: "b1", Name: "Centro"}},
		})
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, staticToken("device-token"), slog.Default())

	snap, err := client.FetchSnapshot(context.Background(), "b1", 7)
	require.NoError(t, err)
	require.Len(t, snap.Branches, 1)
	assert.Equal(t, "Centro", snap.Branches[0].Name)
}

func TestHTTPClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domainsync.ErrUnauthorized)
			},
		},
		{
			name:   "server error with message",
			status: http.StatusBadGateway,
			body:   `{"error":"upstream down"}`,
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusBadGateway, se.Code)
				assert.Equal(t, "upstream down", se.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewHTTPClient(srv.URL, staticToken("device-token"), slog.Default())
			_, err := client.PushBatch(context.Background(), &domainsync.Batch{BranchID: "b1"})
			tt.check(t, err)
		})
	}
}

func TestHTTPClient_ExpiredTokenNotSent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	client := NewHTTPClient(srv.URL, staticToken(expired), slog.Default())

	_, err = client.FetchSnapshot(context.Background(), "b1", 30)
	assert.ErrorIs(t, err, domainsync.ErrUnauthorized)
	assert.Zero(t, hits.Load())
}

func TestHTTPClient_Provisioning(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/provision/session", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var req provision.StartRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, provision.DeviceTypePOS, req.DeviceType)
		_ = json.NewEncoder(w).Encode(provision.Session{ID: "s1", QRURL: "https://link/s1"})
	})
	mux.HandleFunc("/provision/poll", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "s1", r.URL.Query().Get("session_id"))
		_ = json.NewEncoder(w).Encode(provision.PollResult{
			Status:         provision.StatusApproved,
			AuthToken:      "tok",
			OrganizationID: "org1",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewHTTPClient(srv.URL, nil, slog.Default())

	session, err := client.StartSession(context.Background(), provision.StartRequest{
		Fingerprint: "fp",
		DeviceName:  "caja-1",
		DeviceType:  provision.DeviceTypePOS,
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", session.ID)

	res, err := client.Poll(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, provision.StatusApproved, res.Status)
	assert.Equal(t, "org1", res.OrganizationID)
}
