// Package show реализует HTTP-обработчик страницы чата.
package show

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/services/chat"
)

// Handler отдает транскрипт текущего диалога.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service страница чата.
type Service interface {
	Snapshot(ctx context.Context) chat.Snapshot
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Страница чата
// @Description Возвращает транскрипт, идентификатор активного диалога и флаги блокировки и загрузки.
// @Tags Chat
// @Produce  json
// @Success 200 {object} response.Response
// @Success 202 {object} response.Response "Сессия загружается"
// @Failure 303 {object} response.Response "Нужен вход"
// @Router /chat [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(h.service.Snapshot(r.Context())))
}
