package delivery

import "gophregister/internal/domain/delivery"

type createClientInput struct {
	Body createClientRequest
}

type createClientRequest struct {
	Name    string `json:"name" minLength:"1" maxLength:"120"`
	Phone   string `json:"phone,omitempty" maxLength:"32"`
	Address string `json:"address,omitempty"`
}

type clientOutput struct {
	Body clientResponse
}

type clientResponse struct {
	Status string           `json:"status"`
	Client *delivery.Client `json:"client"`
}

type clientsOutput struct {
	Body clientsResponse
}

type clientsResponse struct {
	Status  string            `json:"status"`
	Clients []delivery.Client `json:"clients"`
}

type createInput struct {
	Body createRequest
}

type createRequest struct {
	ClientID string `json:"client_id,omitempty"`
	Address  string `json:"address" minLength:"1"`
	Fee      string `json:"fee,omitempty" example:"3000" doc:"Стоимость доставки"`
	Total    string `json:"total" example:"42000" doc:"Сумма заказа"`
}

type statusInput struct {
	ID   string `path:"id" doc:"ID доставки"`
	Body statusRequest
}

type statusRequest struct {
	Status string `json:"status" enum:"pending,dispatched,delivered,cancelled"`
}

type deliveryOutput struct {
	Body deliveryResponse
}

type deliveryResponse struct {
	Status   string             `json:"status"`
	Delivery *delivery.Delivery `json:"delivery"`
}

type shiftInput struct {
	ShiftID string `path:"id" doc:"ID смены"`
}

type listOutput struct {
	Body listResponse
}

type listResponse struct {
	Status     string              `json:"status"`
	Deliveries []delivery.Delivery `json:"deliveries"`
}

type rappiOutput struct {
	Body rappiResponse
}

type rappiResponse struct {
	Status string                   `json:"status"`
	Orders []delivery.RappiDelivery `json:"orders"`
}
