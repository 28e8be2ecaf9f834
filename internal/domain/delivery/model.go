package delivery

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusDispatched Status = "dispatched"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Final доставленные и отмененные заказы больше не меняют статус
func (s Status) Final() bool {
	return s == StatusDelivered || s == StatusCancelled
}

type Client struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	Synced    bool      `db:"synced" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type Delivery struct {
	ID        string          `db:"id" json:"id"`
	BranchID  string          `db:"branch_id" json:"branch_id"`
	ShiftID   string          `db:"shift_id" json:"shift_id"`
	ClientID  string          `db:"client_id" json:"client_id,omitempty"`
	Address   string          `db:"address" json:"address"`
	Status    Status          `db:"status" json:"status"`
	Fee       decimal.Decimal `db:"fee" json:"fee"`
	Total     decimal.Decimal `db:"total" json:"total"`
	Synced    bool            `db:"synced" json:"-"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// RappiDelivery заказ агрегатора, приходит только из облака
type RappiDelivery struct {
	ID        string          `db:"id" json:"id"`
	BranchID  string          `db:"branch_id" json:"branch_id"`
	OrderRef  string          `db:"order_ref" json:"order_ref"`
	Status    string          `db:"status" json:"status"`
	Total     decimal.Decimal `db:"total" json:"total"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time      `db:"updated_at" json:"updated_at,omitempty"`
}
