// Package dashboard реализует HTTP-обработчик панели администратора.
//
// Первый запрос к панели запускает периодический опрос backend; опрос
// останавливается, когда клиент уходит со страницы панели.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/services/admin"
)

// Handler отдает данные панели.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service страница панели администратора.
type Service interface {
	Open(ctx context.Context) admin.Snapshot
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Панель администратора
// @Description Возвращает пользователей, журнал действий и статистику. Данные обновляются опросом каждые 30 секунд.
// @Tags Admin
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 303 {object} response.Response "Нет роли admin"
// @Router /admin [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(h.service.Open(r.Context())))
}
