package sale

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"gophregister/internal/app/register/api/http/middleware/auth"
	"gophregister/internal/app/register/api/http/respond"
	"gophregister/internal/domain/sale"
)

// Register контекст кассы
type Register interface {
	BranchID() string
	OperatorID() string
}

type Handler struct {
	service    sale.Servicer
	register   Register
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service sale.Servicer, register Register, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		register:   register,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.checkoutOp(), h.checkout)
	huma.Register(api, h.getOp(), h.get)
	huma.Register(api, h.listOp(), h.list)
}

var saleRules = []respond.Rule{
	{Target: sale.ErrNoBranch, Code: http.StatusUnprocessableEntity},
	{Target: sale.ErrNoOpenShift, Code: http.StatusConflict},
	{Target: sale.ErrCheckoutBusy, Code: http.StatusConflict},
	{Target: sale.ErrEmptyCart, Code: http.StatusUnprocessableEntity},
	{Target: sale.ErrInvalidDiscount, Code: http.StatusUnprocessableEntity},
	{Target: sale.ErrInvalidRequest, Code: http.StatusUnprocessableEntity},
	{Target: sale.ErrSaleNotFound, Code: http.StatusNotFound},
}

func (h *Handler) checkout(ctx context.Context, input *checkoutInput) (*checkoutOutput, error) {
	tip, err := respond.Amount("tip_amount", input.Body.TipAmount)
	if err != nil {
		return nil, err
	}
	discount, err := respond.Amount("discount_amount", input.Body.Discount)
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

	res, err := h.service.Checkout(ctx, sale.CheckoutRequest{
		BranchID:      h.register.BranchID(),
		OperatorID:    operatorID,
		TableID:       input.Body.TableID,
		PaymentMethod: input.Body.PaymentMethod,
		TipAmount:     tip,
		Discount:      discount,
		Diners:        input.Body.Diners,
	})
	if err != nil {
		return nil, respond.Map(err, saleRules...)
	}

	if res.FinalizeError != "" {
		h.log.Warn("Продажа записана, черновик заказа остался",
			slog.String("sale_id", res.Sale.ID),
			slog.String("error", res.FinalizeError),
		)
	}

	return &checkoutOutput{
		Body: checkoutResponse{
			Status:        respond.StatusOk,
			Sale:          res.Sale,
			FinalizeError: res.FinalizeError,
		},
	}, nil
}

func (h *Handler) get(ctx context.Context, input *idInput) (*saleOutput, error) {
	s, err := h.service.Get(ctx, input.ID)
	if err != nil {
		return nil, respond.Map(err, saleRules...)
	}
	return &saleOutput{Body: saleResponse{Status: respond.StatusOk, Sale: s}}, nil
}

func (h *Handler) list(ctx context.Context, input *shiftInput) (*listOutput, error) {
	sales, err := h.service.ListByShift(ctx, input.ShiftID)
	if err != nil {
		return nil, err
	}
	return &listOutput{Body: listResponse{Status: respond.StatusOk, Sales: sales}}, nil
}
