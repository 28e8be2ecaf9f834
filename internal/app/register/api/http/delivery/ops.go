package delivery

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) createClientOp() huma.Operation {
	return huma.Operation{
		OperationID: "clients-create",
		Method:      http.MethodPost,
		Path:        "/api/v1/clients",
		Summary:     "Новый клиент доставки",
		Tags:        []string{"deliveries"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) clientsOp() huma.Operation {
	return huma.Operation{
		OperationID: "clients-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/clients",
		Summary:     "Клиенты доставки",
		Tags:        []string{"deliveries"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID: "deliveries-create",
		Method:      http.MethodPost,
		Path:        "/api/v1/deliveries",
		Summary:     "Создать доставку",
		Tags:        []string{"deliveries"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) updateStatusOp() huma.Operation {
	return huma.Operation{
		OperationID: "deliveries-status",
		Method:      http.MethodPatch,
		Path:        "/api/v1/deliveries/{id}",
		Summary:     "Изменить статус доставки",
		Description: "Доставленные и отмененные заказы больше не меняются.",
		Tags:        []string{"deliveries"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "deliveries-by-shift",
		Method:      http.MethodGet,
		Path:        "/api/v1/shifts/{id}/deliveries",
		Summary:     "Доставки смены",
		Tags:        []string{"deliveries"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) rappiOp() huma.Operation {
	return huma.Operation{
		OperationID: "deliveries-rappi",
		Method:      http.MethodGet,
		Path:        "/api/v1/rappi",
		Summary:     "Заказы агрегатора",
		Description: "Только чтение, заказы приходят при загрузке из облака.",
		Tags:        []string{"deliveries"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
