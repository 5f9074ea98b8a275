// Package logout реализует HTTP-обработчик выхода.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/navigation"
)

// Handler обрабатывает выход пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает выход из сессии.
type Service interface {
	Logout(ctx context.Context)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выход
// @Description Очищает сохранённые учетные данные без обращения к backend и сбрасывает клиент на страницу входа.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Router /logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	h.service.Logout(r.Context())

	log.Info("user signed out")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"target": navigation.PathLogin,
	}))
}
