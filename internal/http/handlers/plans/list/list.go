// Package list реализует HTTP-обработчик страницы тарифных планов.
package list

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/middlewarectx"
	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/models"
)

// Handler отдает каталог планов и текущий план пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service каталог планов.
type Service interface {
	Plans() []models.Plan
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Тарифные планы
// @Description Возвращает каталог планов; текущий план пользователя отмечен признаком active.
// @Tags Plans
// @Produce  json
// @Success 200 {object} response.Response
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var current string
	if st, ok := middlewarectx.StateFrom(r.Context()); ok {
		current = st.Plan()
	}

	plans := h.service.Plans()
	for i := range plans {
		plans[i].Active = plans[i].Code == current
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plans":   plans,
		"current": current,
	}))
}
