// Package plans реализует HTTP-обработчик списка планов backend для администратора.
package plans

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/models"
)

// Handler отдает планы backend.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service список планов.
type Service interface {
	Plans(ctx context.Context) ([]models.Plan, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Планы backend
// @Tags Admin
// @Produce  json
// @Success 200 {object} response.Response
// @Router /admin/plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.plans"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.service.Plans(r.Context())
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		response.FromError(w, r, err, "could not list plans")
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plans": plans,
	}))
}
