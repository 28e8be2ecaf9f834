package shift

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) openOp() huma.Operation {
	return huma.Operation{
		OperationID: "shifts-open",
		Method:      http.MethodPost,
		Path:        "/api/v1/shifts/open",
		Summary:     "Открыть смену",
		Description: "Открывает смену филиала. Если смена уже открыта, возвращает ее с retaken=true.",
		Tags:        []string{"shifts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) currentOp() huma.Operation {
	return huma.Operation{
		OperationID: "shifts-current",
		Method:      http.MethodGet,
		Path:        "/api/v1/shifts/current",
		Summary:     "Открытая смена филиала",
		Tags:        []string{"shifts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) historyOp() huma.Operation {
	return huma.Operation{
		OperationID: "shifts-history",
		Method:      http.MethodGet,
		Path:        "/api/v1/shifts",
		Summary:     "Последние смены филиала",
		Tags:        []string{"shifts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) findOp() huma.Operation {
	return huma.Operation{
		OperationID: "shifts-find",
		Method:      http.MethodGet,
		Path:        "/api/v1/shifts/{id}",
		Summary:     "Получить смену",
		Tags:        []string{"shifts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) heartbeatOp() huma.Operation {
	return huma.Operation{
		OperationID: "shifts-heartbeat",
		Method:      http.MethodPost,
		Path:        "/api/v1/shifts/{id}/heartbeat",
		Summary:     "Отметить активность смены",
		Tags:        []string{"shifts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) closeOp() huma.Operation {
	return huma.Operation{
		OperationID: "shifts-close",
		Method:      http.MethodPost,
		Path:        "/api/v1/shifts/{id}/close",
		Summary:     "Закрыть смену",
		Description: "Считает ожидаемую наличность: размен + наличные продажи - расходы.",
		Tags:        []string{"shifts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) checklistOp() huma.Operation {
	return huma.Operation{
		OperationID: "checklist-get",
		Method:      http.MethodGet,
		Path:        "/api/v1/checklist",
		Summary:     "Чек-лист закрытия кассы",
		Tags:        []string{"checklist"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) markOp() huma.Operation {
	return huma.Operation{
		OperationID: "checklist-mark",
		Method:      http.MethodPut,
		Path:        "/api/v1/checklist/items/{item}",
		Summary:     "Отметить пункт чек-листа",
		Tags:        []string{"checklist"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) completeOp() huma.Operation {
	return huma.Operation{
		OperationID: "checklist-complete",
		Method:      http.MethodPost,
		Path:        "/api/v1/checklist/complete",
		Summary:     "Завершить чек-лист",
		Description: "Закрывает кассу до конца дня: добавление товаров блокируется до открытия новой смены.",
		Tags:        []string{"checklist"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
