package cart

import (
	"context"

	"gophregister/internal/domain/catalog"
)

type Repository interface {
	// CreateOrder создает черновик заказа и помечает стол занятым
	CreateOrder(ctx context.Context, o *PendingOrder) error
	// ApplyLine применяет движение склада и изменение строки атомарно
	ApplyLine(ctx context.Context, ch LineChange) error
	// DiscardOrder удаляет заказ, возвращает товар из Restock и освобождает стол
	DiscardOrder(ctx context.Context, d Discard) error
	MoveOrder(ctx context.Context, orderID, fromTable, toTable string) error
	// MoveTable только меняет статусы столов: fromTable свободен, toTable занят
	MoveTable(ctx context.Context, fromTable, toTable string) error
	TableStatus(ctx context.Context, tableID string) (string, error)
	ListPending(ctx context.Context, branchID string) ([]PendingOrder, error)
}

// ProductLookup источник цены и названия товара
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*catalog.Product, error)
}

// Locker блокировка кассы после чек-листа закрытия
type Locker interface {
	Locked() bool
}
