package expense

import "github.com/shopspring/decimal"

type CreateRequest struct {
	BranchID    string          `json:"branch_id" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Description string          `json:"description" validate:"required,max=255"`
	Category    string          `json:"category"`
	Voucher     string          `json:"voucher"`
}
