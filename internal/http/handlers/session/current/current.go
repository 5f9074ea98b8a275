// Package current реализует HTTP-обработчик состояния сессии.
//
// Обработчик не обращается к backend: он отдаёт снимок сессии,
// загруженный при старте или последнем входе.
package current

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/lib/usage"
	"github.com/magabrotheeeer/bookchat/internal/models"
	"github.com/magabrotheeeer/bookchat/internal/services/session"
)

// Response данные о текущей сессии.
type Response struct {
	Status   string           `json:"status"`
	User     *models.User     `json:"user,omitempty"`
	Overview *models.Overview `json:"overview,omitempty"`
	Plan     string           `json:"plan,omitempty"`
	Usage    *usage.Stats     `json:"usage,omitempty"`
}

// Handler отдает состояние сессии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service источник состояния сессии.
type Service interface {
	Snapshot() session.State
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущая сессия
// @Description Возвращает статус сессии, профиль, обзор подписки и расход сообщений.
// @Tags Session
// @Produce  json
// @Success 200 {object} response.Response
// @Router /session [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	st := h.service.Snapshot()

	out := Response{
		Status:   st.Status.String(),
		User:     st.User,
		Overview: st.Overview,
		Plan:     st.Plan(),
	}
	if st.Authenticated() {
		stats := usage.FromOverview(st.Overview)
		out.Usage = &stats
	}
	render.JSON(w, r, response.StatusOKWithData(out))
}
