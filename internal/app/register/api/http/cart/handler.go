package cart

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"gophregister/internal/app/register/api/http/respond"
	"gophregister/internal/domain/cart"
	"gophregister/internal/domain/catalog"
	"gophregister/internal/domain/shift"
)

// Register филиал, к которому привязана касса
type Register interface {
	BranchID() string
}

// Shifts поиск открытой смены филиала
type Shifts interface {
	Current(ctx context.Context, branchID string) (*shift.Shift, error)
}

type Handler struct {
	carts      cart.Servicer
	shifts     Shifts
	register   Register
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(carts cart.Servicer, shifts Shifts, register Register, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		carts:      carts,
		shifts:     shifts,
		register:   register,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.openOp(), h.open)
	huma.Register(api, h.getOp(), h.get)
	huma.Register(api, h.addLineOp(), h.addLine)
	huma.Register(api, h.quantityOp(), h.quantity)
	huma.Register(api, h.removeLineOp(), h.removeLine)
	huma.Register(api, h.clearOp(), h.clear)
	huma.Register(api, h.transferOp(), h.transfer)
	huma.Register(api, h.finalizeOp(), h.finalize)
}

var cartRules = []respond.Rule{
	{Target: cart.ErrRegisterClosed, Code: http.StatusConflict},
	{Target: cart.ErrCartNotFound, Code: http.StatusNotFound},
	{Target: cart.ErrLineNotFound, Code: http.StatusNotFound},
	{Target: cart.ErrOrderNotFound, Code: http.StatusNotFound},
	{Target: cart.ErrTableOccupied, Code: http.StatusConflict},
	{Target: cart.ErrSameTable, Code: http.StatusUnprocessableEntity},
	{Target: cart.ErrTableRequired, Code: http.StatusUnprocessableEntity},
	{Target: catalog.ErrProductNotFound, Code: http.StatusNotFound},
}

func (h *Handler) list(_ context.Context, _ *struct{}) (*cartsOutput, error) {
	return &cartsOutput{Body: cartsResponse{Status: respond.StatusOk, Carts: h.carts.Carts()}}, nil
}

func (h *Handler) open(ctx context.Context, input *openInput) (*cartOutput, error) {
	branchID := h.register.BranchID()

	// стол можно открыть и без смены, заказ привяжется к смене при оплате
	var shiftID string
	current, err := h.shifts.Current(ctx, branchID)
	switch {
	case err == nil:
		shiftID = current.ID
	case !errors.Is(err, shift.ErrNoOpenShift):
		return nil, err
	}

	c, err := h.carts.OpenTable(ctx, cart.OpenTableRequest{
		TableID:       input.Body.TableID,
		BranchID:      branchID,
		ShiftID:       shiftID,
		CustomerLabel: input.Body.CustomerLabel,
		Diners:        input.Body.Diners,
	})
	if err != nil {
		return nil, respond.Map(err, cartRules...)
	}
	return cartResult(c), nil
}

func (h *Handler) get(_ context.Context, input *tableInput) (*cartOutput, error) {
	c, err := h.carts.Snapshot(input.Table)
	if err != nil {
		return nil, respond.Map(err, cartRules...)
	}
	return cartResult(c), nil
}

func (h *Handler) addLine(ctx context.Context, input *addLineInput) (*cartOutput, error) {
	c, err := h.carts.AddLine(ctx, cart.AddLineRequest{
		TableID:   input.Table,
		ProductID: input.Body.ProductID,
		Note:      input.Body.Note,
	})
	if err != nil {
		return nil, respond.Map(err, cartRules...)
	}
	return cartResult(c), nil
}

func (h *Handler) quantity(ctx context.Context, input *quantityInput) (*cartOutput, error) {
	c, err := h.carts.UpdateQuantity(ctx, cart.UpdateQuantityRequest{
		TableID: input.Table,
		LineID:  input.Line,
		Delta:   input.Body.Delta,
	})
	if err != nil {
		return nil, respond.Map(err, cartRules...)
	}
	return cartResult(c), nil
}

func (h *Handler) removeLine(ctx context.Context, input *lineInput) (*cartOutput, error) {
	c, err := h.carts.RemoveLine(ctx, input.Table, input.Line)
	if err != nil {
		return nil, respond.Map(err, cartRules...)
	}
	return cartResult(c), nil
}

func (h *Handler) clear(ctx context.Context, input *tableInput) (*output, error) {
	if err := h.carts.Clear(ctx, input.Table); err != nil {
		return nil, respond.Map(err, cartRules...)
	}
	return &output{Body: response{Status: respond.StatusOk, Message: "cart cleared, stock restored"}}, nil
}

func (h *Handler) transfer(ctx context.Context, input *transferInput) (*output, error) {
	err := h.carts.Transfer(ctx, cart.TransferRequest{From: input.Table, To: input.Body.To})
	if err != nil {
		return nil, respond.Map(err, cartRules...)
	}
	return &output{Body: response{Status: respond.StatusOk}}, nil
}

func (h *Handler) finalize(ctx context.Context, input *tableInput) (*output, error) {
	if err := h.carts.Finalize(ctx, input.Table); err != nil {
		return nil, respond.Map(err, cartRules...)
	}
	return &output{Body: response{Status: respond.StatusOk}}, nil
}

func cartResult(c *cart.Cart) *cartOutput {
	return &cartOutput{
		Body: cartResponse{
			Status: respond.StatusOk,
			Cart:   c,
			Total:  c.Total().StringFixed(2),
		},
	}
}
