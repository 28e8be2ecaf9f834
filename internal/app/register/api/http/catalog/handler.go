package catalog

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"gophregister/internal/app/register/api/http/respond"
	"gophregister/internal/domain/catalog"
)

// Register филиал кассы
type Register interface {
	BranchID() string
}

// Handler справочники, загруженные из облака. Только чтение.
type Handler struct {
	service    catalog.Servicer
	register   Register
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service catalog.Servicer, register Register, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		register:   register,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.op("catalog-products", "/api/v1/products", "Товары филиала"), h.products)
	huma.Register(api, h.op("catalog-tables", "/api/v1/tables", "Столы филиала"), h.tables)
	huma.Register(api, h.op("catalog-branches", "/api/v1/branches", "Филиалы организации"), h.branches)
	huma.Register(api, h.op("catalog-profiles", "/api/v1/profiles", "Операторы филиала"), h.profiles)
}

func (h *Handler) op(id, path, summary string) huma.Operation {
	return huma.Operation{
		OperationID: id,
		Method:      http.MethodGet,
		Path:        path,
		Summary:     summary,
		Tags:        []string{"catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) products(ctx context.Context, _ *struct{}) (*productsOutput, error) {
	items, err := h.service.Products(ctx, h.register.BranchID())
	if err != nil {
		return nil, err
	}
	return &productsOutput{Body: productsResponse{Status: respond.StatusOk, Products: items}}, nil
}

func (h *Handler) tables(ctx context.Context, _ *struct{}) (*tablesOutput, error) {
	items, err := h.service.Tables(ctx, h.register.BranchID())
	if err != nil {
		return nil, err
	}
	return &tablesOutput{Body: tablesResponse{Status: respond.StatusOk, Tables: items}}, nil
}

func (h *Handler) branches(ctx context.Context, _ *struct{}) (*branchesOutput, error) {
	items, err := h.service.Branches(ctx)
	if err != nil {
		return nil, err
	}
	return &branchesOutput{Body: branchesResponse{Status: respond.StatusOk, Branches: items}}, nil
}

func (h *Handler) profiles(ctx context.Context, _ *struct{}) (*profilesOutput, error) {
	items, err := h.service.Profiles(ctx, h.register.BranchID())
	if err != nil {
		return nil, err
	}
	return &profilesOutput{Body: profilesResponse{Status: respond.StatusOk, Profiles: items}}, nil
}
