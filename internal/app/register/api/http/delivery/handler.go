package delivery

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"gophregister/internal/app/register/api/http/respond"
	"gophregister/internal/domain/delivery"
)

// Register филиал кассы
type Register interface {
	BranchID() string
}

type Handler struct {
	service    delivery.Servicer
	register   Register
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service delivery.Servicer, register Register, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		register:   register,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.createClientOp(), h.createClient)
	huma.Register(api, h.clientsOp(), h.clients)
	huma.Register(api, h.createOp(), h.create)
	huma.Register(api, h.updateStatusOp(), h.updateStatus)
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.rappiOp(), h.rappi)
}

var deliveryRules = []respond.Rule{
	{Target: delivery.ErrNoBranch, Code: http.StatusUnprocessableEntity},
	{Target: delivery.ErrNoOpenShift, Code: http.StatusConflict},
	{Target: delivery.ErrInvalidRequest, Code: http.StatusUnprocessableEntity},
	{Target: delivery.ErrDeliveryNotFound, Code: http.StatusNotFound},
	{Target: delivery.ErrClientNotFound, Code: http.StatusNotFound},
	{Target: delivery.ErrStatusFinal, Code: http.StatusConflict},
}

func (h *Handler) createClient(ctx context.Context, input *createClientInput) (*clientOutput, error) {
	c, err := h.service.CreateClient(ctx, delivery.CreateClientRequest{
		Name:    input.Body.Name,
		Phone:   input.Body.Phone,
		Address: input.Body.Address,
	})
	if err != nil {
		return nil, respond.Map(err, deliveryRules...)
	}
	return &clientOutput{Body: clientResponse{Status: respond.StatusOk, Client: c}}, nil
}

func (h *Handler) clients(ctx context.Context, _ *struct{}) (*clientsOutput, error) {
	items, err := h.service.Clients(ctx)
	if err != nil {
		return nil, err
	}
	return &clientsOutput{Body: clientsResponse{Status: respond.StatusOk, Clients: items}}, nil
}

func (h *Handler) create(ctx context.Context, input *createInput) (*deliveryOutput, error) {
	fee, err := respond.Amount("fee", input.Body.Fee)
	if err != nil {
		return nil, err
	}
	total, err := respond.Amount("total", input.Body.Total)
	if err != nil {
		return nil, err
	}

	d, err := h.service.Create(ctx, delivery.CreateRequest{
		BranchID: h.register.BranchID(),
		ClientID: input.Body.ClientID,
		Address:  input.Body.Address,
		Fee:      fee,
		Total:    total,
	})
	if err != nil {
		return nil, respond.Map(err, deliveryRules...)
	}
	return &deliveryOutput{Body: deliveryResponse{Status: respond.StatusOk, Delivery: d}}, nil
}

func (h *Handler) updateStatus(ctx context.Context, input *statusInput) (*deliveryOutput, error) {
	d, err := h.service.UpdateStatus(ctx, delivery.UpdateStatusRequest{
		ID:     input.ID,
		Status: delivery.Status(input.Body.Status),
	})
	if err != nil {
		return nil, respond.Map(err, deliveryRules...)
	}
	return &deliveryOutput{Body: deliveryResponse{Status: respond.StatusOk, Delivery: d}}, nil
}

func (h *Handler) list(ctx context.Context, input *shiftInput) (*listOutput, error) {
	items, err := h.service.ListByShift(ctx, input.ShiftID)
	if err != nil {
		return nil, err
	}
	return &listOutput{Body: listResponse{Status: respond.StatusOk, Deliveries: items}}, nil
}

func (h *Handler) rappi(ctx context.Context, _ *struct{}) (*rappiOutput, error) {
	orders, err := h.service.Rappi(ctx, h.register.BranchID())
	if err != nil {
		return nil, err
	}
	return &rappiOutput{Body: rappiResponse{Status: respond.StatusOk, Orders: orders}}, nil
}
