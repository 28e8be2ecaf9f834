package sale

import "github.com/shopspring/decimal"

type CheckoutRequest struct {
	BranchID      string          `json:"branch_id" validate:"required"`
	OperatorID    string          `json:"operator_id"`
	TableID       string          `json:"table_id" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=cash card transfer"`
	TipAmount     decimal.Decimal `json:"tip_amount" validate:"gte=0"`
	Discount      decimal.Decimal `json:"discount_amount" validate:"gte=0"`
	Diners        int             `json:"diners" validate:"gte=0"`
}

type CheckoutResult struct {
	Sale *Sale `json:"sale"`
	// FinalizeError заполнен, если продажа записана, а черновик заказа удалить не удалось
	FinalizeError string `json:"finalize_error,omitempty"`
}
