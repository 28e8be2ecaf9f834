package expense

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"gophregister/internal/app/register/api/http/respond"
	"gophregister/internal/domain/expense"
)

// Register филиал кассы
type Register interface {
	BranchID() string
}

type Handler struct {
	service    expense.Servicer
	register   Register
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service expense.Servicer, register Register, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		register:   register,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.deleteOp(), h.delete)
	huma.Register(api, h.listOp(), h.list)
}

var expenseRules = []respond.Rule{
	{Target: expense.ErrNoBranch, Code: http.StatusUnprocessableEntity},
	{Target: expense.ErrNoOpenShift, Code: http.StatusConflict},
	{Target: expense.ErrInvalidAmount, Code: http.StatusUnprocessableEntity},
	{Target: expense.ErrInvalidRequest, Code: http.StatusUnprocessableEntity},
	{Target: expense.ErrExpenseNotFound, Code: http.StatusNotFound},
	{Target: expense.ErrExpenseSynced, Code: http.StatusConflict},
}

func (h *Handler) create(ctx context.Context, input *createInput) (*expenseOutput, error) {
	amount, err := respond.Amount("amount", input.Body.Amount)
	if err != nil {
		return nil, err
	}

	e, err := h.service.Create(ctx, expense.CreateRequest{
		BranchID:    h.register.BranchID(),
		Amount:      amount,
		Description: input.Body.Description,
		Category:    input.Body.Category,
		Voucher:     input.Body.Voucher,
	})
	if err != nil {
		return nil, respond.Map(err, expenseRules...)
	}
	return &expenseOutput{Body: expenseResponse{Status: respond.StatusOk, Expense: e}}, nil
}

func (h *Handler) delete(ctx context.Context, input *idInput) (*output, error) {
	if err := h.service.Delete(ctx, input.ID); err != nil {
		return nil, respond.Map(err, expenseRules...)
	}
	return &output{Body: response{Status: respond.StatusOk}}, nil
}

func (h *Handler) list(ctx context.Context, input *shiftInput) (*listOutput, error) {
	items, err := h.service.ListByShift(ctx, input.ShiftID)
	if err != nil {
		return nil, err
	}
	return &listOutput{Body: listResponse{Status: respond.StatusOk, Expenses: items}}, nil
}
