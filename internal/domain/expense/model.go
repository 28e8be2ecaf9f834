package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense выдача наличных из кассы в рамках смены
type Expense struct {
	ID          string          `db:"id" json:"id"`
	BranchID    string          `db:"branch_id" json:"branch_id"`
	ShiftID     string          `db:"shift_id" json:"shift_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Description string          `db:"description" json:"description"`
	Category    string          `db:"category" json:"category"`
	Voucher     string          `db:"voucher" json:"voucher,omitempty"`
	Synced      bool            `db:"synced" json:"-"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
