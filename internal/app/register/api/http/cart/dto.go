package cart

import "gophregister/internal/domain/cart"

type cartsOutput struct {
	Body cartsResponse
}

type cartsResponse struct {
	Status string      `json:"status"`
	Carts  []cart.Cart `json:"carts"`
}

type openInput struct {
	Body openRequest
}

type openRequest struct {
	TableID       string `json:"table_id" minLength:"1" doc:"Стол"`
	CustomerLabel string `json:"customer_label,omitempty" doc:"Подпись заказа"`
	Diners        int    `json:"diners,omitempty" minimum:"0" doc:"Количество гостей"`
}

type tableInput struct {
	Table string `path:"table" doc:"Стол"`
}

type cartOutput struct {
	Body cartResponse
}

type cartResponse struct {
	Status string     `json:"status"`
	Cart   *cart.Cart `json:"cart"`
	Total  string     `json:"total" doc:"Сумма корзины"`
}

type addLineInput struct {
	Table string `path:"table" doc:"Стол"`
	Body  addLineRequest
}

type addLineRequest struct {
	ProductID string `json:"product_id" minLength:"1"`
	Note      string `json:"note,omitempty" doc:"Комментарий к позиции, строки с разными комментариями не объединяются"`
}

type quantityInput struct {
	Table string `path:"table" doc:"Стол"`
	Line  string `path:"line" doc:"Строка корзины"`
	Body  quantityRequest
}

type quantityRequest struct {
	Delta int `json:"delta" doc:"Изменение количества, отрицательное уменьшает"`
}

type lineInput struct {
	Table string `path:"table" doc:"Стол"`
	Line  string `path:"line" doc:"Строка корзины"`
}

type transferInput struct {
	Table string `path:"table" doc:"Стол-источник"`
	Body  transferRequest
}

type transferRequest struct {
	To string `json:"to" minLength:"1" doc:"Свободный стол назначения"`
}

type output struct {
	Body response
}

type response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
