// Package deleteuser реализует HTTP-обработчик удаления пользователя администратором.
package deleteuser

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/services/admin"
)

// Handler обрабатывает удаление пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service операции панели.
type Service interface {
	DeleteUser(ctx context.Context, id string) error
	Snapshot() admin.Snapshot
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить пользователя
// @Tags Admin
// @Produce  json
// @Param id path string true "ID пользователя"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /admin/users/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.deleteuser"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		log.Error("failed to delete user", slog.String("id", id), sl.Err(err))
		response.FromError(w, r, err, "Failed to delete.")
		return
	}

	log.Info("user deleted", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(h.service.Snapshot()))
}
