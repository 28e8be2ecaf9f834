package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

// Probe источник сведений о состоянии процесса
type Probe interface {
	Provisioned() bool
	QueueLen() int
}

type Handler struct {
	probe      Probe
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(probe Probe, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		probe:      probe,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(_ context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	return &Output{
		Body: Response{
			Status:      "OK",
			Provisioned: h.probe.Provisioned(),
			Writer:      h.probe.QueueLen(),
		},
	}, nil
}
