package expense

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"gophregister/internal/domain/shift"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, e *Expense) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) ListByShift(ctx context.Context, shiftID string) ([]Expense, error) {
	args := m.Called(ctx, shiftID)
	return args.Get(0).([]Expense), args.Error(1)
}

type MockShifts struct {
	mock.Mock
}

func (m *MockShifts) Current(ctx context.Context, branchID string) (*shift.Shift, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shift.Shift), args.Error(1)
}

func TestService_Create(t *testing.T) {
	repo := new(MockRepository)
	shifts := new(MockShifts)
	svc := NewService(repo, shifts, slog.Default(), nil)

	shifts.On("Current", mock.Anything, "b1").Return(&shift.Shift{ID: "s1"}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *Expense) bool {
		return e.ShiftID == "s1" && e.ID != "" && e.Amount.Equal(decimal.NewFromInt(5000))
	})).Return(nil)

	e, err := svc.Create(context.Background(), CreateRequest{
		BranchID:    "b1",
		Amount:      decimal.NewFromInt(5000),
		Description: "ice",
	})

	require.NoError(t, err)
	assert.Equal(t, "s1", e.ShiftID)
	repo.AssertExpectations(t)
}

func TestService_Create_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRequest
		shift   *shift.Shift
		err     error
		wantErr error
	}{
		{
			name:    "no branch",
			req:     CreateRequest{Amount: decimal.NewFromInt(1), Description: "x"},
			wantErr: ErrNoBranch,
		},
		{
			name:    "zero amount",
			req:     CreateRequest{BranchID: "b1", Description: "x"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "no description",
			req:     CreateRequest{BranchID: "b1", Amount: decimal.NewFromInt(1)},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "no open shift",
			req:     CreateRequest{BranchID: "b1", Amount: decimal.NewFromInt(1), Description: "x"},
			err:     shift.ErrNoOpenShift,
			wantErr: ErrNoOpenShift,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			shifts := new(MockShifts)
			svc := NewService(repo, shifts, slog.Default(), nil)

			if tt.err != nil {
				shifts.On("Current", mock.Anything, "b1").Return(nil, tt.err)
			}

			_, err := svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestService_Delete(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockShifts), slog.Default(), nil)

	repo.On("Delete", mock.Anything, "e1").Return(nil)
	repo.On("Delete", mock.Anything, "missing").Return(ErrExpenseNotFound)

	assert.NoError(t, svc.Delete(context.Background(), "e1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "missing"), ErrExpenseNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), ""), ErrExpenseNotFound)
}
