// Package show реализует HTTP-обработчик страницы аккаунта.
package show

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/services/account"
)

// Handler отдает профиль, подписку и расход сообщений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service страница аккаунта.
type Service interface {
	Load(ctx context.Context) (*account.Page, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Страница аккаунта
// @Description Загружает профиль и обзор подписки параллельно. Если не удалась хотя бы одна загрузка, страница не показывается.
// @Tags Account
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.ErrorResponse "Не удалось загрузить данные"
// @Router /account [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.show"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	page, err := h.service.Load(r.Context())
	if err != nil {
		log.Error("failed to load account", sl.Err(err))
		response.FromError(w, r, err, "Failed to load account data.")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(page))
}
