package device

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"gophregister/internal/app/register/api/http/respond"
	"gophregister/internal/domain/monitor"
	"gophregister/internal/domain/provision"
	domainsync "gophregister/internal/domain/sync"
)

// Device состояние привязки и контекст кассы
type Device interface {
	Provisioned() bool
	OrganizationID() string
	DeviceID() string
	BranchID() string
	OperatorID() string
	SelectBranch(ctx context.Context, branchID, operatorID string) error
	StartProvisioning(ctx context.Context) (*provision.Session, error)
	SignOut(ctx context.Context) error
}

// Notices журнал сообщений оператору
type Notices interface {
	List() []monitor.Notice
	Clear()
}

type Handler struct {
	device     Device
	notices    Notices
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(device Device, notices Notices, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		device:     device,
		notices:    notices,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.statusOp(), h.status)
	huma.Register(api, h.selectContextOp(), h.selectContext)
	huma.Register(api, h.provisionOp(), h.provision)
	huma.Register(api, h.signOutOp(), h.signOut)
	huma.Register(api, h.noticesOp(), h.listNotices)
	huma.Register(api, h.clearNoticesOp(), h.clearNotices)
}

func (h *Handler) status(_ context.Context, _ *struct{}) (*statusOutput, error) {
	return &statusOutput{
		Body: statusResponse{
			Status:         respond.StatusOk,
			Provisioned:    h.device.Provisioned(),
			OrganizationID: h.device.OrganizationID(),
			DeviceID:       h.device.DeviceID(),
			BranchID:       h.device.BranchID(),
			OperatorID:     h.device.OperatorID(),
		},
	}, nil
}

func (h *Handler) selectContext(ctx context.Context, input *contextInput) (*statusOutput, error) {
	if err := h.device.SelectBranch(ctx, input.Body.BranchID, input.Body.OperatorID); err != nil {
		return nil, respond.Map(err,
			respond.Rule{Target: domainsync.ErrUnknownBranch, Code: http.StatusNotFound},
			respond.Rule{Target: domainsync.ErrNoBranch, Code: http.StatusUnprocessableEntity},
		)
	}
	return h.status(ctx, nil)
}

func (h *Handler) provision(ctx context.Context, _ *struct{}) (*provisionOutput, error) {
	session, err := h.device.StartProvisioning(ctx)
	if err != nil {
		return nil, respond.Map(err,
			respond.Rule{Target: provision.ErrInvalidRequest, Code: http.StatusUnprocessableEntity},
		)
	}

	return &provisionOutput{
		Body: provisionResponse{
			Status:    respond.StatusOk,
			SessionID: session.ID,
			QRURL:     session.QRURL,
		},
	}, nil
}

func (h *Handler) signOut(ctx context.Context, _ *struct{}) (*output, error) {
	if err := h.device.SignOut(ctx); err != nil {
		return nil, err
	}
	return &output{Body: response{Status: respond.StatusOk, Message: "device credentials removed"}}, nil
}

func (h *Handler) listNotices(_ context.Context, _ *struct{}) (*noticesOutput, error) {
	return &noticesOutput{
		Body: noticesResponse{
			Status:  respond.StatusOk,
			Notices: h.notices.List(),
		},
	}, nil
}

func (h *Handler) clearNotices(_ context.Context, _ *struct{}) (*output, error) {
	h.notices.Clear()
	return &output{Body: response{Status: respond.StatusOk}}, nil
}
