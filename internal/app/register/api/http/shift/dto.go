package shift

import (
	"gophregister/internal/domain/shift"
)

type openInput struct {
	Body openRequest
}

type openRequest struct {
	InitialCash string `json:"initial_cash" example:"50000" doc:"Размен в кассе на начало смены"`
	OperatorID  string `json:"operator_id,omitempty" doc:"Оператор, по умолчанию текущий"`
}

type openOutput struct {
	Body openResponse
}

type openResponse struct {
	Status  string       `json:"status"`
	Shift   *shift.Shift `json:"shift"`
	Retaken bool         `json:"retaken"`
	Message string       `json:"message,omitempty"`
}

type idInput struct {
	ID string `path:"id" doc:"ID смены"`
}

type closeInput struct {
	ID   string `path:"id" doc:"ID смены"`
	Body closeRequest
}

type closeRequest struct {
	FinalCash string `json:"final_cash" example:"125000" doc:"Пересчитанная наличность"`
}

type closeOutput struct {
	Body closeResponse
}

type closeResponse struct {
	Status string       `json:"status"`
	Shift  *shift.Shift `json:"shift"`
	Totals shift.Totals `json:"totals"`
}

type shiftOutput struct {
	Body shiftResponse
}

type shiftResponse struct {
	Status string       `json:"status"`
	Shift  *shift.Shift `json:"shift"`
}

type historyInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"200" doc:"Сколько последних смен вернуть"`
}

type historyOutput struct {
	Body historyResponse
}

type historyResponse struct {
	Status string        `json:"status"`
	Shifts []shift.Shift `json:"shifts"`
}

type output struct {
	Body response
}

type response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type checklistOutput struct {
	Body checklistResponse
}

type checklistResponse struct {
	Status string               `json:"status"`
	Items  []string             `json:"items" doc:"Все пункты чек-листа"`
	State  shift.ChecklistState `json:"state"`
	Locked bool                 `json:"locked" doc:"Касса закрыта до конца дня"`
}

type markInput struct {
	Item string `path:"item" doc:"Пункт чек-листа"`
	Body markRequest
}

type markRequest struct {
	Done bool `json:"done"`
}
