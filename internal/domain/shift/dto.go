package shift

import (
	"time"

	"github.com/shopspring/decimal"
)

type OpenRequest struct {
	BranchID    string          `json:"branch_id" validate:"required"`
	OperatorID  string          `json:"operator_id"`
	InitialCash decimal.Decimal `json:"initial_cash" validate:"gt=0"`
}

type OpenResult struct {
	Shift   *Shift `json:"shift"`
	Retaken bool   `json:"retaken"`
	Message string `json:"message,omitempty"`
}

type CloseRequest struct {
	ShiftID   string          `json:"shift_id" validate:"required"`
	FinalCash decimal.Decimal `json:"final_cash" validate:"gte=0"`
}

type CloseResult struct {
	Shift  *Shift `json:"shift"`
	Totals Totals `json:"totals"`
}

// Change событие изменения смены, пришедшее из облака
type Change struct {
	ID       string     `json:"id"`
	Status   Status     `json:"status"`
	ClosedBy ClosedBy   `json:"closed_by_method"`
	EndTime  *time.Time `json:"end_time,omitempty"`
}

// IsRemoteClose true, если смену закрыли на стороне облака
func (c Change) IsRemoteClose() bool {
	return c.Status == StatusClosed && c.ClosedBy == ClosedByRemote
}
