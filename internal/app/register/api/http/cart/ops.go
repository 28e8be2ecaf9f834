package cart

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) op(id, method, path, summary string) huma.Operation {
	return huma.Operation{
		OperationID: id,
		Method:      method,
		Path:        path,
		Summary:     summary,
		Tags:        []string{"carts"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listOp() huma.Operation {
	return h.op("carts-list", http.MethodGet, "/api/v1/carts", "Открытые корзины")
}

func (h *Handler) openOp() huma.Operation {
	op := h.op("carts-open", http.MethodPost, "/api/v1/carts", "Открыть стол")
	op.Description = "Создает черновик заказа стола. Повторное открытие возвращает существующий заказ."
	return op
}

func (h *Handler) getOp() huma.Operation {
	return h.op("carts-get", http.MethodGet, "/api/v1/carts/{table}", "Корзина стола")
}

func (h *Handler) addLineOp() huma.Operation {
	op := h.op("carts-add-line", http.MethodPost, "/api/v1/carts/{table}/lines", "Добавить товар")
	op.Description = "Резервирует одну единицу товара на складе."
	return op
}

func (h *Handler) quantityOp() huma.Operation {
	return h.op("carts-update-quantity", http.MethodPatch, "/api/v1/carts/{table}/lines/{line}", "Изменить количество")
}

func (h *Handler) removeLineOp() huma.Operation {
	return h.op("carts-remove-line", http.MethodDelete, "/api/v1/carts/{table}/lines/{line}", "Удалить строку")
}

func (h *Handler) clearOp() huma.Operation {
	op := h.op("carts-clear", http.MethodDelete, "/api/v1/carts/{table}", "Отменить заказ стола")
	op.Description = "Удаляет черновик заказа и возвращает товар на склад."
	return op
}

func (h *Handler) transferOp() huma.Operation {
	return h.op("carts-transfer", http.MethodPost, "/api/v1/carts/{table}/transfer", "Перенести заказ на другой стол")
}

func (h *Handler) finalizeOp() huma.Operation {
	return h.op("carts-finalize", http.MethodPost, "/api/v1/carts/{table}/finalize", "Удалить оплаченный черновик")
}
