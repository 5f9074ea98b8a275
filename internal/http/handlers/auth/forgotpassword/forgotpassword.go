// Package forgotpassword реализует HTTP-обработчик запроса сброса пароля.
package forgotpassword

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/services/authforms"
)

// Handler обрабатывает запрос письма для сброса пароля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает запрос сброса пароля.
type Service interface {
	ForgotPassword(ctx context.Context, form authforms.ForgotForm) (*authforms.Result, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Запрос сброса пароля
// @Description Просит backend отправить письмо со ссылкой для сброса. Клиент остается на странице.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body authforms.ForgotForm true "Email"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /forgot-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.forgotpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var form authforms.ForgotForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	res, err := h.service.ForgotPassword(r.Context(), form)
	if err != nil {
		log.Info("password reset request failed", sl.Err(err))
		response.FromError(w, r, err, "Failed to send the reset email.")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(res))
}
