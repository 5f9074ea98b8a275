// Package resetpassword реализует HTTP-обработчик установки нового пароля по токену из письма.
package resetpassword

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/models"
	"github.com/magabrotheeeer/bookchat/internal/services/authforms"
)

// Handler обрабатывает сброс пароля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает сброс пароля.
type Service interface {
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*authforms.Result, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сброс пароля
// @Description Задает новый пароль по токену из письма и переводит клиент на страницу входа.
// Токен можно передать в теле или в query-параметре token.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.ResetPasswordRequest true "Токен и новый пароль"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неверный токен"
// @Router /reset-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resetpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if req.Token == "" {
		req.Token = r.URL.Query().Get("token")
	}

	res, err := h.service.ResetPassword(r.Context(), req)
	if err != nil {
		log.Info("password reset failed", sl.Err(err))
		response.FromError(w, r, err, "Failed to reset the password.")
		return
	}

	log.Info("password reset")
	render.JSON(w, r, response.StatusOKWithData(res))
}
