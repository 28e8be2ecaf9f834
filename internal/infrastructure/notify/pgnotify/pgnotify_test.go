package pgnotify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/shift"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    shift.Change
		wantErr bool
	}{
		{
			name:    "remote close",
			payload: `{"id":"s1","status":"closed","closed_by_method":"remote","end_time":"2025-03-10T22:00:00Z"}`,
			want: shift.Change{
				ID:       "s1",
				Status:   shift.StatusClosed,
				ClosedBy: shift.ClosedByRemote,
				EndTime:  ptr(time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)),
			},
		},
		{
			name:    "open without end time",
			payload: `{"id":"s2","status":"open"}`,
			want:    shift.Change{ID: "s2", Status: shift.StatusOpen},
		},
		{name: "missing id", payload: `{"status":"closed"}`, wantErr: true},
		{name: "not json", payload: `closed`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePayload(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want.ID, got.ID)
			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, tt.want.ClosedBy, got.ClosedBy)
			if tt.want.EndTime == nil {
				assert.Nil(t, got.EndTime)
			} else {
				require.NotNil(t, got.EndTime)
				assert.True(t, tt.want.EndTime.Equal(*got.EndTime))
			}
		})
	}
}

func TestSource_SubscribeFailsWithoutServer(t *testing.T) {
	src := New("postgres://nobody@127.0.0.1:1/none?connect_timeout=1", slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := src.Subscribe(ctx, "s1")
	assert.Error(t, err)
}

func ptr[T any](v T) *T { return &v }
