package cart

type OpenTableRequest struct {
	TableID       string `json:"table_id" validate:"required"`
	BranchID      string `json:"branch_id" validate:"required"`
	ShiftID       string `json:"shift_id"`
	CustomerLabel string `json:"customer_label"`
	Diners        int    `json:"diners" validate:"gte=0"`
}

type AddLineRequest struct {
	TableID   string `json:"table_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
	Note      string `json:"note"`
}

type UpdateQuantityRequest struct {
	TableID string `json:"table_id" validate:"required"`
	LineID  string `json:"line_id" validate:"required"`
	Delta   int    `json:"delta"`
}

type TransferRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}
