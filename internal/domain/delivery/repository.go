package delivery

import (
	"context"
	"time"

	"gophregister/internal/domain/shift"
)

type Repository interface {
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, id string) (*Client, error)
	ListClients(ctx context.Context) ([]Client, error)
	Create(ctx context.Context, d *Delivery) error
	GetByID(ctx context.Context, id string) (*Delivery, error)
	// UpdateStatus меняет статус и снимает флаг synced
	UpdateStatus(ctx context.Context, id string, status Status, at time.Time) error
	ListByShift(ctx context.Context, shiftID string) ([]Delivery, error)
	ListRappi(ctx context.Context, branchID string) ([]RappiDelivery, error)
}

type Shifts interface {
	Current(ctx context.Context, branchID string) (*shift.Shift, error)
}
