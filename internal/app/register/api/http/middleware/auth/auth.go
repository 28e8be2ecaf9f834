package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"gophregister/internal/app/register/api/http/respond"
	"gophregister/internal/domain/session"
)

type Auth struct {
	session session.Servicer
	log     *slog.Logger
}

func New(session session.Servicer, log *slog.Logger) *Auth {
	return &Auth{
		session: session,
		log:     log.With(slog.String("component", "auth_middleware")),
	}
}

type contextKey string

const OperatorIDKey contextKey = "operatorID"

// Middleware проверяет Bearer токен локального API
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			a.log.Warn("Запрос без Bearer токена", slog.String("path", ctx.URL().Path))
			a.unauthorized(ctx)
			return
		}

		operatorID, err := a.session.Validate(ctx.Context(), token)
		if err != nil {
			a.log.Warn("Токен отклонен", slog.Any("error", err))
			a.unauthorized(ctx)
			return
		}

		next(huma.WithContext(ctx, WithOperatorID(ctx.Context(), operatorID)))
	}
}

func (a *Auth) unauthorized(ctx huma.Context) {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.SetStatus(http.StatusUnauthorized)
	if err := json.NewEncoder(ctx.BodyWriter()).Encode(respond.New(http.StatusUnauthorized, "Unauthorized")); err != nil {
		a.log.Error("Ошибка записи ответа", slog.Any("error", err))
	}
}

func WithOperatorID(ctx context.Context, operatorID string) context.Context {
	return context.WithValue(ctx, OperatorIDKey, operatorID)
}

func GetOperatorID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(OperatorIDKey).(string)
	return id, ok
}
