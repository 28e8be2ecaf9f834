package shift

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"gophregister/internal/app/register/api/http/middleware/auth"
	"gophregister/internal/app/register/api/http/respond"
	"gophregister/internal/domain/shift"
)

// Register контекст кассы: филиал и оператор по умолчанию
type Register interface {
	BranchID() string
	OperatorID() string
}

// Checklist чек-лист закрытия кассы
type Checklist interface {
	Mark(item string, done bool) (shift.ChecklistState, error)
	Complete() (shift.ChecklistState, error)
	State() shift.ChecklistState
	Locked() bool
}

type Handler struct {
	service    shift.Servicer
	checklist  Checklist
	register   Register
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service shift.Servicer, checklist Checklist, register Register, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		checklist:  checklist,
		register:   register,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.openOp(), h.open)
	huma.Register(api, h.currentOp(), h.current)
	huma.Register(api, h.historyOp(), h.history)
	huma.Register(api, h.findOp(), h.find)
	huma.Register(api, h.heartbeatOp(), h.heartbeat)
	huma.Register(api, h.closeOp(), h.close)

	huma.Register(api, h.checklistOp(), h.getChecklist)
	huma.Register(api, h.markOp(), h.mark)
	huma.Register(api, h.completeOp(), h.complete)
}

var shiftRules = []respond.Rule{
	{Target: shift.ErrBranchRequired, Code: http.StatusUnprocessableEntity},
	{Target: shift.ErrInvalidCash, Code: http.StatusUnprocessableEntity},
	{Target: shift.ErrInvalidRequest, Code: http.StatusUnprocessableEntity},
	{Target: shift.ErrShiftNotFound, Code: http.StatusNotFound},
	{Target: shift.ErrNoOpenShift, Code: http.StatusNotFound},
	{Target: shift.ErrShiftClosed, Code: http.StatusConflict},
	{Target: shift.ErrChecklistIncomplete, Code: http.StatusConflict},
	{Target: shift.ErrUnknownChecklist, Code: http.StatusNotFound},
}

func (h *Handler) open(ctx context.Context, input *openInput) (*openOutput, error) {
	cash, err := respond.Amount("initial_cash", input.Body.InitialCash)
	if err != nil {
		return nil, err
	}

	operatorID := input.Body.OperatorID
	if operatorID == "" {
		operatorID = h.register.OperatorID()
	}
	if operatorID == "" {
		operatorID, _ = auth.GetOperatorID(ctx)
	}

	res, err := h.service.Open(ctx, shift.OpenRequest{
		BranchID:    h.register.BranchID(),
		OperatorID:  operatorID,
		InitialCash: cash,
	})
	if err != nil {
		return nil, respond.Map(err, shiftRules...)
	}

	return &openOutput{
		Body: openResponse{
			Status:  respond.StatusOk,
			Shift:   res.Shift,
			Retaken: res.Retaken,
			Message: res.Message,
		},
	}, nil
}

func (h *Handler) current(ctx context.Context, _ *struct{}) (*shiftOutput, error) {
	sh, err := h.service.Current(ctx, h.register.BranchID())
	if err != nil {
		return nil, respond.Map(err, shiftRules...)
	}
	return &shiftOutput{Body: shiftResponse{Status: respond.StatusOk, Shift: sh}}, nil
}

func (h *Handler) history(ctx context.Context, input *historyInput) (*historyOutput, error) {
	shifts, err := h.service.History(ctx, h.register.BranchID(), input.Limit)
	if err != nil {
		return nil, respond.Map(err, shiftRules...)
	}
	return &historyOutput{Body: historyResponse{Status: respond.StatusOk, Shifts: shifts}}, nil
}

func (h *Handler) find(ctx context.Context, input *idInput) (*shiftOutput, error) {
	sh, err := h.service.Get(ctx, input.ID)
	if err != nil {
		return nil, respond.Map(err, shiftRules...)
	}
	return &shiftOutput{Body: shiftResponse{Status: respond.StatusOk, Shift: sh}}, nil
}

func (h *Handler) heartbeat(ctx context.Context, input *idInput) (*output, error) {
	if err := h.service.Heartbeat(ctx, input.ID); err != nil {
		return nil, respond.Map(err, shiftRules...)
	}
	return &output{Body: response{Status: respond.StatusOk}}, nil
}

func (h *Handler) close(ctx context.Context, input *closeInput) (*closeOutput, error) {
	cash, err := respond.Amount("final_cash", input.Body.FinalCash)
	if err != nil {
		return nil, err
	}

	res, err := h.service.Close(ctx, shift.CloseRequest{ShiftID: input.ID, FinalCash: cash})
	if err != nil {
		return nil, respond.Map(err, shiftRules...)
	}

	return &closeOutput{
		Body: closeResponse{
			Status: respond.StatusOk,
			Shift:  res.Shift,
			Totals: res.Totals,
		},
	}, nil
}

func (h *Handler) getChecklist(_ context.Context, _ *struct{}) (*checklistOutput, error) {
	return h.checklistOutput(h.checklist.State()), nil
}

func (h *Handler) mark(_ context.Context, input *markInput) (*checklistOutput, error) {
	st, err := h.checklist.Mark(input.Item, input.Body.Done)
	if err != nil {
		return nil, respond.Map(err, shiftRules...)
	}
	return h.checklistOutput(st), nil
}

func (h *Handler) complete(_ context.Context, _ *struct{}) (*checklistOutput, error) {
	st, err := h.checklist.Complete()
	if err != nil {
		if errors.Is(err, shift.ErrChecklistIncomplete) {
			h.log.Info("Попытка закрыть кассу с незавершенным чек-листом")
		}
		return nil, respond.Map(err, shiftRules...)
	}
	return h.checklistOutput(st), nil
}

func (h *Handler) checklistOutput(st shift.ChecklistState) *checklistOutput {
	return &checklistOutput{
		Body: checklistResponse{
			Status: respond.StatusOk,
			Items:  shift.Items(),
			State:  st,
			Locked: h.checklist.Locked(),
		},
	}
}
