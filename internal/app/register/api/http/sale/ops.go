package sale

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) checkoutOp() huma.Operation {
	return huma.Operation{
		OperationID: "sales-checkout",
		Method:      http.MethodPost,
		Path:        "/api/v1/sales",
		Summary:     "Оплатить стол",
		Description: "Записывает продажу в открытую смену и удаляет черновик заказа стола.",
		Tags:        []string{"sales"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) getOp() huma.Operation {
	return huma.Operation{
		OperationID: "sales-get",
		Method:      http.MethodGet,
		Path:        "/api/v1/sales/{id}",
		Summary:     "Получить продажу",
		Tags:        []string{"sales"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "sales-by-shift",
		Method:      http.MethodGet,
		Path:        "/api/v1/shifts/{id}/sales",
		Summary:     "Продажи смены",
		Tags:        []string{"sales"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
