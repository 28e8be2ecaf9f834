package expense

import "gophregister/internal/domain/expense"

type createInput struct {
	Body createRequest
}

type createRequest struct {
	Amount      string `json:"amount" example:"15000" doc:"Сумма выдачи из кассы"`
	Description string `json:"description" minLength:"1" maxLength:"255"`
	Category    string `json:"category,omitempty"`
	Voucher     string `json:"voucher,omitempty" doc:"Номер чека или накладной"`
}

type expenseOutput struct {
	Body expenseResponse
}

type expenseResponse struct {
	Status  string           `json:"status"`
	Expense *expense.Expense `json:"expense"`
}

type idInput struct {
	ID string `path:"id" doc:"ID расхода"`
}

type shiftInput struct {
	ShiftID string `path:"id" doc:"ID смены"`
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Status   string            `json:"status"`
	Expenses []expense.Expense `json:"expenses"`
}

type output struct {
	Body response
}

type response struct {
	Status string `json:"status"`
}
