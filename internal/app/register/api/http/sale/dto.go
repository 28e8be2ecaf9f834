package sale

import "gophregister/internal/domain/sale"

type checkoutInput struct {
	Body checkoutRequest
}

type checkoutRequest struct {
	TableID       string `json:"table_id" minLength:"1" doc:"Стол, корзина которого оплачивается"`
	PaymentMethod string `json:"payment_method" enum:"cash,card,transfer" doc:"Способ оплаты"`
	TipAmount     string `json:"tip_amount,omitempty" example:"2000" doc:"Чаевые"`
	Discount      string `json:"discount_amount,omitempty" example:"0" doc:"Скидка, не больше суммы корзины"`
	Diners        int    `json:"diners,omitempty" minimum:"0"`
	OperatorID    string `json:"operator_id,omitempty"`
}

type checkoutOutput struct {
	Body checkoutResponse
}

type checkoutResponse struct {
	Status        string     `json:"status"`
	Sale          *sale.Sale `json:"sale"`
	FinalizeError string     `json:"finalize_error,omitempty"`
}

type idInput struct {
	ID string `path:"id" doc:"ID продажи"`
}

type saleOutput struct {
	Body saleResponse
}

type saleResponse struct {
	Status string     `json:"status"`
	Sale   *sale.Sale `json:"sale"`
}

type shiftInput struct {
	ShiftID string `path:"id" doc:"ID смены"`
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Status string      `json:"status"`
	Sales  []sale.Sale `json:"sales"`
}
