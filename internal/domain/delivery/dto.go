package delivery

import "github.com/shopspring/decimal"

type CreateClientRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"max=32"`
	Address string `json:"address"`
}

type CreateRequest struct {
	BranchID string          `json:"branch_id" validate:"required"`
	ClientID string          `json:"client_id"`
	Address  string          `json:"address" validate:"required"`
	Fee      decimal.Decimal `json:"fee" validate:"gte=0"`
	Total    decimal.Decimal `json:"total" validate:"gt=0"`
}

type UpdateStatusRequest struct {
	ID     string `json:"id" validate:"required"`
	Status Status `json:"status" validate:"required,oneof=pending dispatched delivered cancelled"`
}
