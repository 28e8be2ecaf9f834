package respond

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"
)

const (
	StatusOk    = "Ok"
	StatusError = "Error"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"error"`
	code    int
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

func (e *ErrorResponse) GetStatus() int {
	return e.code
}

func New(code int, msg string) *ErrorResponse {
	return &ErrorResponse{Status: StatusError, Message: msg, code: code}
}

// Install подменяет формат ошибок huma на {"status":"Error","error":...}
func Install() {
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		details := make([]string, 0, len(errs))
		for _, err := range errs {
			if err != nil {
				details = append(details, err.Error())
			}
		}
		if len(details) > 0 {
			msg = msg + ": " + strings.Join(details, "; ")
		}
		return New(status, msg)
	}
}

// Rule сопоставление доменной ошибки и HTTP статуса
type Rule struct {
	Target error
	Code   int
}

// Map переводит доменную ошибку в ответ по первому подходящему правилу.
// Неизвестные ошибки возвращаются как есть и становятся 500.
func Map(err error, rules ...Rule) error {
	if err == nil {
		return nil
	}
	for _, r := range rules {
		if errors.Is(err, r.Target) {
			return New(r.Code, err.Error())
		}
	}
	return err
}

// Amount разбирает денежную сумму из строки запроса. Пустая строка дает ноль.
func Amount(field, value string) (decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, New(http.StatusUnprocessableEntity, fmt.Sprintf("%s: invalid amount %q", field, value))
	}
	return d, nil
}
