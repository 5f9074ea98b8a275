// Package updateuser реализует HTTP-обработчик изменения пользователя администратором.
package updateuser

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/models"
	"github.com/magabrotheeeer/bookchat/internal/services/admin"
)

// Handler обрабатывает изменение пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service операции панели.
type Service interface {
	UpdateUser(ctx context.Context, id string, req models.AdminUserUpdate) error
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
// @Summary Изменить пользователя
// @Description Меняет имя, роль и (необязательно) пароль, затем перезагружает список.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "ID пользователя"
// @Param request body models.AdminUserUpdate true "Изменения"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/users/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.updateuser"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	var req models.AdminUserUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.service.UpdateUser(r.Context(), id, req); err != nil {
		log.Error("failed to update user", slog.String("id", id), sl.Err(err))
		response.FromError(w, r, err, "Failed to save.")
		return
	}

	log.Info("user updated", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(h.service.Snapshot()))
}
