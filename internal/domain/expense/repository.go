package expense

import (
	"context"

	"gophregister/internal/domain/shift"
)

type Repository interface {
	Create(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, id string) error
	ListByShift(ctx context.Context, shiftID string) ([]Expense, error)
}

type Shifts interface {
	Current(ctx context.Context, branchID string) (*shift.Shift, error)
}
