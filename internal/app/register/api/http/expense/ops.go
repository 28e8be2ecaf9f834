package expense

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) createOp() huma.Operation {
	return huma.Operation{
		OperationID: "expenses-create",
		Method:      http.MethodPost,
		Path:        "/api/v1/expenses",
		Summary:     "Выдача из кассы",
		Description: "Записывает расход в открытую смену филиала.",
		Tags:        []string{"expenses"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID: "expenses-delete",
		Method:      http.MethodDelete,
		Path:        "/api/v1/expenses/{id}",
		Summary:     "Удалить расход",
		Tags:        []string{"expenses"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "expenses-by-shift",
		Method:      http.MethodGet,
		Path:        "/api/v1/shifts/{id}/expenses",
		Summary:     "Расходы смены",
		Tags:        []string{"expenses"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
