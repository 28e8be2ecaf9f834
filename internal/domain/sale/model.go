package sale

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
)

// Sale завершенная продажа. После записи не изменяется,
// корректировки оформляются отдельными документами.
type Sale struct {
	ID             string          `db:"id" json:"id"`
	BranchID       string          `db:"branch_id" json:"branch_id"`
	ShiftID        string          `db:"shift_id" json:"shift_id"`
	OperatorID     string          `db:"operator_id" json:"operator_id"`
	TableID        string          `db:"table_id" json:"-"`
	TotalAmount    decimal.Decimal `db:"total_amount" json:"total_amount"`
	PaymentMethod  string          `db:"payment_method" json:"payment_method"`
	TipAmount      decimal.Decimal `db:"tip_amount" json:"tip_amount"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	Diners         int             `db:"diners" json:"diners"`
	Synced         bool            `db:"synced" json:"-"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	Items          []Item          `db:"-" json:"items"`
}

type Item struct {
	ID         string          `db:"id" json:"id"`
	SaleID     string          `db:"sale_id" json:"sale_id"`
	ProductID  string          `db:"product_id" json:"product_id"`
	Name       string          `db:"name" json:"name,omitempty"`
	Quantity   int             `db:"quantity" json:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price" json:"unit_price"`
	TotalPrice decimal.Decimal `db:"total_price" json:"total_price"`
}

// Subtotal сумма позиций до скидки
func (s *Sale) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.TotalPrice)
	}
	return total
}
