package respond

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errClosed = errors.New("shift is already closed")

func TestMap(t *testing.T) {
	rules := []Rule{{Target: errClosed, Code: http.StatusConflict}}

	err := Map(fmt.Errorf("close: %w", errClosed), rules...)
	var resp *ErrorResponse
	require.ErrorAs(t, err, &resp)
	assert.Equal(t, http.StatusConflict, resp.GetStatus())
	assert.Equal(t, StatusError, resp.Status)

	other := errors.New("disk full")
	assert.Same(t, other, Map(other, rules...))
	assert.NoError(t, Map(nil, rules...))
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "integer", value: "50000", want: "50000"},
		{name: "decimal", value: " 12.50 ", want: "12.5"},
		{name: "empty is zero", value: "", want: "0"},
		{name: "garbage", value: "12a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Amount("amount", tt.value)
			if tt.wantErr {
				var resp *ErrorResponse
				require.ErrorAs(t, err, &resp)
				assert.Equal(t, http.StatusUnprocessableEntity, resp.GetStatus())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
