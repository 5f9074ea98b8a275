// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов web-оболочки. Кроме успешных ответов и ошибок
// пакет описывает ответы-переходы: клиент получает 303 и страницу, на которую
// его перевели.
package response

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/lib/apierr"
	"github.com/magabrotheeeer/bookchat/internal/lib/validation"
	"github.com/magabrotheeeer/bookchat/internal/navigation"
)

// Response описывает стандартную структуру JSON‑ответа.
// Поле Status принимает значения "OK", "Error", "Redirect" или "Loading".
// Redirect содержит страницу перехода, From страницу, с которой пришёл клиент.
type Response struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Data     any    `json:"data,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	From     string `json:"from,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — успешный ответ.
	StatusOK = "OK"
	// StatusError — ответ с ошибкой.
	StatusError = "Error"
	// StatusRedirect — клиент переведён на другую страницу.
	StatusRedirect = "Redirect"
	// StatusLoading — сессия ещё загружается.
	StatusLoading = "Loading"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает ErrorResponse с переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует ответ по ошибкам валидатора.
func ValidationError(err error) ErrorResponse {
	return Error(validation.Message(err))
}

// Loading ответ-заглушка на время проверки сессии.
func Loading() Response {
	return Response{Status: StatusLoading}
}

// Redirect пишет ответ 303 с переходом на target.
func Redirect(w http.ResponseWriter, r *http.Request, target, from string) {
	w.Header().Set("Location", target)
	render.Status(r, http.StatusSeeOther)
	render.JSON(w, r, Response{
		Status:   StatusRedirect,
		Redirect: target,
		From:     from,
	})
}

// StatusFor HTTP статус ответа web-оболочки для ошибки backend.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apierr.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, apierr.ErrQuotaExceeded):
		return http.StatusForbidden
	case errors.Is(err, apierr.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apierr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apierr.ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FromError пишет ответ для ошибки backend. Отклонённая сессия превращается
// в переход на страницу входа; остальные ошибки отдаются с текстом backend.
func FromError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if errors.Is(err, apierr.ErrAuth) && !navigation.IsLogin(r.URL.Path) {
		Redirect(w, r, navigation.PathLogin, r.URL.Path)
		return
	}
	render.Status(r, StatusFor(err))
	render.JSON(w, r, Error(apierr.Message(err, fallback)))
}
