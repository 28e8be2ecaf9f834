package sale

import (
	"context"

	"gophregister/internal/domain/cart"
	"gophregister/internal/domain/shift"
)

type Repository interface {
	// Create пишет шапку и позиции продажи одной транзакцией
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, id string) (*Sale, error)
	ListByShift(ctx context.Context, shiftID string) ([]Sale, error)
}

// Carts источник корзины для оплаты
type Carts interface {
	// Claim закрепляет корзину за оплатой
	Claim(tableID string) (*cart.Cart, error)
	// Release снимает закрепление после неудачной оплаты
	Release(tableID string)
	Finalize(ctx context.Context, tableID string) error
}

// Shifts источник открытой смены
type Shifts interface {
	Current(ctx context.Context, branchID string) (*shift.Shift, error)
}
