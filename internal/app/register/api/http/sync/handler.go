package sync

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"gophregister/internal/app/register/api/http/respond"
	"gophregister/internal/domain/provision"
	domainsync "gophregister/internal/domain/sync"
)

// Runner внеочередная синхронизация в контексте кассы
type Runner interface {
	PullNow(ctx context.Context) (*domainsync.PullResult, error)
	PushNow(ctx context.Context) (*domainsync.PushResult, error)
	BranchID() string
}

type Handler struct {
	runner     Runner
	service    domainsync.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(runner Runner, service domainsync.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		runner:     runner,
		service:    service,
		log:        log,
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.pullOp(), h.pull)
	huma.Register(api, h.pushOp(), h.push)
	huma.Register(api, h.statusOp(), h.status)
	huma.Register(api, h.markOp(), h.mark)
	huma.Register(api, h.pruneOp(), h.prune)
}

var syncRules = []respond.Rule{
	{Target: domainsync.ErrNoBranch, Code: http.StatusUnprocessableEntity},
	{Target: domainsync.ErrUnknownBranch, Code: http.StatusConflict},
	{Target: domainsync.ErrUnknownEntity, Code: http.StatusUnprocessableEntity},
	{Target: provision.ErrNotProvisioned, Code: http.StatusConflict},
	// облако отклонило токен устройства, нужна повторная привязка
	{Target: domainsync.ErrUnauthorized, Code: http.StatusForbidden},
}

func (h *Handler) pull(ctx context.Context, _ *struct{}) (*pullOutput, error) {
	res, err := h.runner.PullNow(ctx)
	if err != nil {
		return nil, respond.Map(err, syncRules...)
	}
	return &pullOutput{Body: pullResponse{Status: respond.StatusOk, Result: res}}, nil
}

func (h *Handler) push(ctx context.Context, _ *struct{}) (*pushOutput, error) {
	res, err := h.runner.PushNow(ctx)
	if err != nil {
		return nil, respond.Map(err, syncRules...)
	}
	return &pushOutput{Body: pushResponse{Status: respond.StatusOk, Result: res}}, nil
}

func (h *Handler) status(ctx context.Context, _ *struct{}) (*statusOutput, error) {
	st, err := h.service.Status(ctx, h.runner.BranchID())
	if err != nil {
		return nil, respond.Map(err, syncRules...)
	}
	return &statusOutput{Body: statusResponse{Status: respond.StatusOk, Sync: st}}, nil
}

func (h *Handler) mark(ctx context.Context, input *markInput) (*markOutput, error) {
	n, err := h.service.MarkSynced(ctx, input.Body.Entity, input.Body.IDs)
	if err != nil {
		return nil, respond.Map(err, syncRules...)
	}
	return &markOutput{Body: markResponse{Status: respond.StatusOk, Marked: n}}, nil
}

func (h *Handler) prune(ctx context.Context, input *pruneInput) (*pruneOutput, error) {
	n, err := h.service.Prune(ctx, input.Body.Days)
	if err != nil {
		return nil, respond.Map(err, syncRules...)
	}
	return &pruneOutput{Body: pruneResponse{Status: respond.StatusOk, Removed: n}}, nil
}
