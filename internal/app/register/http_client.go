package register

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/exp/slog"

	"gophregister/internal/app/register/config"
	"gophregister/internal/domain/provision"
	"gophregister/internal/domain/shift"
	domainsync "gophregister/internal/domain/sync"
)

// TokenSource отдает текущий токен устройства
type TokenSource interface {
	Token() (string, error)
}

// HTTPClient клиент облачного API: синхронизация, привязка устройства
// и опрос состояния смены
type HTTPClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	tokens    TokenSource
	userAgent string
	now       func() time.Time
}

// NewHTTPClient создает клиент облака
func NewHTTPClient(baseURL string, tokens TokenSource, log *slog.Logger) *HTTPClient {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 4,
		},
	}

	return &HTTPClient{
		client:    client,
		log:       log.With(slog.String("component", "http_client")),
		baseURL:   baseURL,
		tokens:    tokens,
		userAgent: "GophRegister/1.0",
		now:       time.Now,
	}
}

// BaseURL адрес облака с учетом TLS
func BaseURL(cfg *config.Config) string {
	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}
	return scheme + cfg.ServerAddress
}

// HealthCheck проверяет доступность облака
func (h *HTTPClient) HealthCheck(ctx context.Context) error {
	resp, err := h.doRequest(ctx, http.MethodGet, "/api/v1/health", nil, false)
	if err != nil {
		return err
	}
	return h.parseResponse(resp, nil)
}

func (h *HTTPClient) FetchSnapshot(ctx context.Context, branchID string, days int) (*domainsync.Snapshot, error) {
	q := url.Values{}
	q.Set("branch_id", branchID)
	q.Set("days", strconv.Itoa(days))

	resp, err := h.doRequest(ctx, http.MethodGet, "/sync?"+q.Encode(), nil, true)
	if err != nil {
		return nil, err
	}

	var snap domainsync.Snapshot
	if err := h.parseResponse(resp, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (h *HTTPClient) PushBatch(ctx context.Context, b *domainsync.Batch) (*domainsync.PushResponse, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/sync", b, true)
	if err != nil {
		return nil, err
	}

	var out domainsync.PushResponse
	if err := h.parseResponse(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTPClient) StartSession(ctx context.Context, req provision.StartRequest) (*provision.Session, error) {
	resp, err := h.doRequest(ctx, http.MethodPost, "/provision/session", req, false)
	if err != nil {
		return nil, err
	}

	var s provision.Session
	if err := h.parseResponse(resp, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (h *HTTPClient) Poll(ctx context.Context, sessionID string) (*provision.PollResult, error) {
	q := url.Values{}
	q.Set("session_id", sessionID)

	resp, err := h.doRequest(ctx, http.MethodGet, "/provision/poll?"+q.Encode(), nil, false)
	if err != nil {
		return nil, err
	}

	var res provision.PollResult
	if err := h.parseResponse(resp, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (h *HTTPClient) FetchShift(ctx context.Context, shiftID string) (*shift.Change, error) {
	resp, err := h.doRequest(ctx, http.MethodGet, "/shifts/"+url.PathEscape(shiftID), nil, true)
	if err != nil {
		return nil, err
	}

	var ch shift.Change
	if err := h.parseResponse(resp, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (h *HTTPClient) doRequest(ctx context.Context, method, path string, body interface{}, auth bool) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	if auth {
		token, err := h.bearer()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	h.log.Debug("Отправка запроса",
		slog.String("method", method),
		slog.String("url", req.URL.String()),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	return resp, nil
}

// bearer возвращает токен устройства. Просроченный JWT отклоняется до
// обращения к сети.
func (h *HTTPClient) bearer() (string, error) {
	if h.tokens == nil {
		return "", domainsync.ErrUnauthorized
	}
	token, err := h.tokens.Token()
	if err != nil || token == "" {
		return "", domainsync.ErrUnauthorized
	}
	if tokenExpired(token, h.now()) {
		return "", fmt.Errorf("%w: token expired", domainsync.ErrUnauthorized)
	}
	return token, nil
}

// tokenExpired проверяет exp без проверки подписи. Непрозрачный токен
// считается действительным, решение остается за облаком.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(now)
}

func (h *HTTPClient) parseResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	h.log.Debug("Получен ответ", slog.Int("status", resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized {
		return domainsync.ErrUnauthorized
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
			return &StatusError{Code: resp.StatusCode, Message: errResp.Error}
		}
		return &StatusError{Code: resp.StatusCode}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}
	return nil
}

// StatusError ответ облака с кодом ошибки
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server error %d", e.Code)
}
