package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TableAvailable = "available"
	TableOccupied  = "occupied"
)

// Product позиция каталога со складским остатком.
// Stock уменьшается в момент добавления товара в корзину.
type Product struct {
	ID        string          `db:"id" json:"id"`
	BranchID  string          `db:"branch_id" json:"branch_id"`
	Name      string          `db:"name" json:"name"`
	Category  string          `db:"category" json:"category"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Stock     float64         `db:"stock" json:"stock"`
	Active    bool            `db:"active" json:"active"`
	UpdatedAt *time.Time      `db:"updated_at" json:"updated_at,omitempty"`
}

type Profile struct {
	ID        string     `db:"id" json:"id"`
	FullName  string     `db:"full_name" json:"full_name"`
	Role      string     `db:"role" json:"role"`
	BranchID  string     `db:"branch_id" json:"branch_id"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

type Branch struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Address   string     `db:"address" json:"address"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

type Table struct {
	ID        string     `db:"id" json:"id"`
	BranchID  string     `db:"branch_id" json:"branch_id"`
	Name      string     `db:"name" json:"name"`
	Status    string     `db:"status" json:"status"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
