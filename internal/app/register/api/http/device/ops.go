package device

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) statusOp() huma.Operation {
	return huma.Operation{
		OperationID: "device-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/device",
		Summary:     "Состояние устройства",
		Tags:        []string{"device"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) selectContextOp() huma.Operation {
	return huma.Operation{
		OperationID: "device-context",
		Method:      http.MethodPut,
		Path:        "/api/v1/device/context",
		Summary:     "Выбрать филиал и оператора",
		Description: "Сохраняет филиал кассы, восстанавливает корзины и запрашивает загрузку данных филиала.",
		Tags:        []string{"device"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) provisionOp() huma.Operation {
	return huma.Operation{
		OperationID: "device-provision",
		Method:      http.MethodPost,
		Path:        "/api/v1/device/provision",
		Summary:     "Начать привязку устройства",
		Description: "Открывает сессию привязки и возвращает ссылку для QR-кода. Подтверждение ожидается в фоне.",
		Tags:        []string{"device"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) signOutOp() huma.Operation {
	return huma.Operation{
		OperationID: "device-sign-out",
		Method:      http.MethodPost,
		Path:        "/api/v1/device/sign-out",
		Summary:     "Отвязать устройство",
		Tags:        []string{"device"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) noticesOp() huma.Operation {
	return huma.Operation{
		OperationID: "notices-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/notices",
		Summary:     "Сообщения оператору",
		Tags:        []string{"device"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) clearNoticesOp() huma.Operation {
	return huma.Operation{
		OperationID: "notices-clear",
		Method:      http.MethodDelete,
		Path:        "/api/v1/notices",
		Summary:     "Очистить сообщения",
		Tags:        []string{"device"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
