package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalkInTable виртуальный стол для продаж на вынос
const WalkInTable = "walk-in"

const OrderPending = "pending"

type Line struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Note      string          `json:"note,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart корзина стола в памяти. OrderID пустой, если корзина не привязана к PendingOrder.
type Cart struct {
	TableID       string `json:"table_id"`
	OrderID       string `json:"order_id,omitempty"`
	BranchID      string `json:"branch_id,omitempty"`
	ShiftID       string `json:"shift_id,omitempty"`
	CustomerLabel string `json:"customer_label,omitempty"`
	Diners        int    `json:"diners"`
	Lines         []Line `json:"lines"`
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total())
	}
	return total
}

func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Units суммарное количество единиц в корзине
func (c *Cart) Units() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) clone() *Cart {
	out := *c
	out.Lines = append([]Line(nil), c.Lines...)
	return &out
}

func (c *Cart) find(lineID string) int {
	for i, l := range c.Lines {
		if l.ID == lineID {
			return i
		}
	}
	return -1
}

func (c *Cart) findProduct(productID, note string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID && l.Note == note {
			return i
		}
	}
	return -1
}

// PendingOrder черновик заказа стола, из которого корзина восстанавливается после сбоя
type PendingOrder struct {
	ID            string             `db:"id" json:"id"`
	TableID       string             `db:"table_id" json:"table_id"`
	ShiftID       string             `db:"shift_id" json:"shift_id,omitempty"`
	BranchID      string             `db:"branch_id" json:"branch_id"`
	CustomerLabel string             `db:"customer_label" json:"customer_label,omitempty"`
	Diners        int                `db:"diners" json:"diners"`
	Status        string             `db:"status" json:"status"`
	Total         decimal.Decimal    `db:"total" json:"total"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `db:"updated_at" json:"updated_at"`
	Lines         []PendingOrderLine `db:"-" json:"lines"`
}

type PendingOrderLine struct {
	ID        string          `db:"id" json:"id"`
	OrderID   string          `db:"order_id" json:"order_id"`
	ProductID string          `db:"product_id" json:"product_id"`
	Name      string          `db:"name" json:"name"`
	Note      string          `db:"note" json:"note,omitempty"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`
	Total     decimal.Decimal `db:"total" json:"total"`
	Position  int             `db:"position" json:"-"`
}

// LineChange изменение строки заказа вместе с движением склада.
// Пишется одной транзакцией. Пустой OrderID означает только движение склада.
type LineChange struct {
	OrderID    string
	Line       PendingOrderLine
	Delete     bool
	StockDelta float64
	At         time.Time
}

type StockDelta struct {
	ProductID string
	Delta     float64
}

// Discard удаление заказа стола с необязательным возвратом товара на склад
type Discard struct {
	OrderID  string
	TableID  string
	BranchID string
	Restock  []StockDelta
}
