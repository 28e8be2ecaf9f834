package operator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"gophregister/internal/app/register/config"
)

var ErrNoAPIToken = errors.New("local api token not found, is the register daemon running?")

// APIError ответ локального API с ошибкой
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("local api error %d", e.Code)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// Client клиент локального API кассы для интерфейса оператора
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	printer *message.Printer
}

func New(cfg *config.Config) (*Client, error) {
	token, err := os.ReadFile(cfg.APITokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoAPIToken
		}
		return nil, fmt.Errorf("ошибка чтения токена локального API: %w", err)
	}

	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		tag = language.Spanish
	}

	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: "http://" + cfg.APIAddress,
		token:   strings.TrimSpace(string(token)),
		printer: message.NewPrinter(tag),
	}, nil
}

// Do выполняет запрос и разбирает тело ответа в out
func (c *Client) Do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("ошибка маршалинга тела запроса: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("касса недоступна: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &errResp)
		return &APIError{Code: resp.StatusCode, Message: errResp.Error}
	}

	if out != nil {
		if raw, ok := out.(*json.RawMessage); ok {
			*raw = append((*raw)[:0], data...)
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("ошибка парсинга ответа: %w", err)
		}
	}
	return nil
}

// Money форматирует сумму по локали кассы
func (c *Client) Money(d decimal.Decimal) string {
	return c.printer.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

type clientKey struct{}

func WithClient(ctx context.Context, c *Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

func FromContext(ctx context.Context) (*Client, error) {
	c, ok := ctx.Value(clientKey{}).(*Client)
	if !ok || c == nil {
		return nil, errors.New("клиент локального API не инициализирован")
	}
	return c, nil
}
