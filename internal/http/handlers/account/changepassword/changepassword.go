// Package changepassword реализует HTTP-обработчик смены пароля.
//
// Результат всегда описывается сообщением для показа под формой;
// неудача отдаётся статусом 400 с этим сообщением.
package changepassword

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
	"github.com/magabrotheeeer/bookchat/internal/services/account"
)

// Handler обрабатывает смену пароля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service смена пароля.
type Service interface {
	ChangePassword(ctx context.Context, oldPassword, newPassword string) account.Feedback
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сменить пароль
// @Tags Account
// @Accept  json
// @Produce  json
// @Param request body models.PasswordChange true "Текущий и новый пароль"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Пароль не изменен"
// @Router /account/password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.changepassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.PasswordChange
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	fb := h.service.ChangePassword(r.Context(), req.OldPassword, req.NewPassword)
	if !fb.OK {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(fb.Message))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(fb))
}
