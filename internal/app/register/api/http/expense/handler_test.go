package expense

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"gophregister/internal/app/register/api/http/respond"
	"gophregister/internal/domain/expense"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, req expense.CreateRequest) (*expense.Expense, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*expense.Expense), args.Error(1)
}

func (m *MockService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockService) ListByShift(ctx context.Context, shiftID string) ([]expense.Expense, error) {
	args := m.Called(ctx, shiftID)
	return args.Get(0).([]expense.Expense), args.Error(1)
}

type stubRegister string

func (r stubRegister) BranchID() string { return string(r) }

func TestHandler_deleteErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "unknown expense", err: expense.ErrExpenseNotFound, code: http.StatusNotFound},
		{name: "already synced", err: fmt.Errorf("delete: %w", expense.ErrExpenseSynced), code: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Delete", mock.Anything, "e-1").Return(tt.err)
			h := NewHandler(svc, stubRegister("b1"), slog.Default(), huma.Middlewares{})

			_, err := h.delete(context.Background(), &idInput{ID: "e-1"})

			var resp *respond.ErrorResponse
			require.ErrorAs(t, err, &resp)
			assert.Equal(t, tt.code, resp.GetStatus())
		})
	}
}

func TestHandler_delete(t *testing.T) {
	svc := new(MockService)
	svc.On("Delete", mock.Anything, "e-1").Return(nil)
	h := NewHandler(svc, stubRegister("b1"), slog.Default(), huma.Middlewares{})

	out, err := h.delete(context.Background(), &idInput{ID: "e-1"})

	require.NoError(t, err)
	assert.Equal(t, respond.StatusOk, out.Body.Status)
	svc.AssertExpectations(t)
}
