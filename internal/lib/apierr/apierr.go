// Package apierr описывает таксономию ошибок, которые клиент получает от backend.
//
// Каждая ошибка HTTP-ответа превращается в *APIError с видом (Kind),
// по которому вызывающий код решает, как показать её пользователю.
// Сравнение выполняется через errors.Is с сентинелами ErrAuth, ErrQuotaExceeded,
// ErrValidation и ErrNetwork.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind вид ошибки backend.
type Kind int

const (
	// KindServer — прочие ошибки backend (5xx и неизвестные статусы).
	KindServer Kind = iota
	// KindAuth — неверные учётные данные, истёкший или невалидный токен.
	KindAuth
	// KindQuota — исчерпан лимит сообщений подписки.
	KindQuota
	// KindValidation — backend отклонил данные формы.
	KindValidation
	// KindNotFound — ресурс не найден.
	KindNotFound
	// KindNetwork — backend недоступен или транспорт оборвался.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindQuota:
		return "quota_exceeded"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindNetwork:
		return "network"
	default:
		return "server"
	}
}

var (
	// ErrAuth сентинел для KindAuth.
	ErrAuth = errors.New("authentication failed")
	// ErrQuotaExceeded сентинел для KindQuota.
	ErrQuotaExceeded = errors.New("subscription limit reached")
	// ErrValidation сентинел для KindValidation.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound сентинел для KindNotFound.
	ErrNotFound = errors.New("not found")
	// ErrNetwork сентинел для KindNetwork.
	ErrNetwork = errors.New("backend unavailable")
	// ErrServer сентинел для KindServer.
	ErrServer = errors.New("backend error")
)

// APIError ошибка ответа backend.
type APIError struct {
	Status int    // HTTP статус, 0 для сетевых ошибок
	Detail string // Текст ошибки для пользователя
	Kind   Kind
	Err    error // Исходная ошибка транспорта, если есть
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Detail)
}

// Unwrap возвращает исходную ошибку транспорта.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is сопоставляет ошибку с сентинелом её вида.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuth:
		return e.Kind == KindAuth
	case ErrQuotaExceeded:
		return e.Kind == KindQuota
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrServer:
		return e.Kind == KindServer
	}
	return false
}

// Classify определяет вид ошибки по статусу и тексту.
// Текст, упоминающий лимит, считается исчерпанием подписки при любом статусе.
func Classify(status int, detail string) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusForbidden:
		return KindQuota
	case strings.Contains(strings.ToLower(detail), "limit"):
		return KindQuota
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusNotFound:
		return KindNotFound
	default:
		return KindServer
	}
}

// FromResponse собирает APIError из статуса и тела ответа.
func FromResponse(status int, body []byte) *APIError {
	detail := ParseDetail(body)
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &APIError{
		Status: status,
		Detail: detail,
		Kind:   Classify(status, detail),
	}
}

// Network оборачивает ошибку транспорта.
func Network(err error) *APIError {
	return &APIError{
		Detail: "backend is unavailable",
		Kind:   KindNetwork,
		Err:    err,
	}
}

// Validation создаёт ошибку валидации, обнаруженную на стороне клиента.
func Validation(detail string) *APIError {
	return &APIError{
		Status: http.StatusUnprocessableEntity,
		Detail: detail,
		Kind:   KindValidation,
	}
}

// ParseDetail достаёт текст ошибки из тела ответа.
// Поддерживаются {"detail": "..."}, {"detail": [{"msg": "..."}]} и {"error": "..."}.
func ParseDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil && len(items) > 0 {
			return items[0].Msg
		}
	}
	return payload.Error
}

// As возвращает *APIError из цепочки err.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Message возвращает текст ошибки для показа пользователю.
func Message(err error, fallback string) string {
	if apiErr, ok := As(err); ok && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}

// StatusOf возвращает HTTP статус ошибки или 0.
func StatusOf(err error) int {
	if apiErr, ok := As(err); ok {
		return apiErr.Status
	}
	return 0
}
