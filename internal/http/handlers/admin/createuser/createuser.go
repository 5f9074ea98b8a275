// Package createuser реализует HTTP-обработчик создания пользователя администратором.
package createuser

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
	"github.com/magabrotheeeer/bookchat/internal/services/admin"
)

// Handler обрабатывает создание пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service операции панели.
type Service interface {
	CreateUser(ctx context.Context, req models.AdminUserCreate) error
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
// @Summary Создать пользователя
// @Description Создает пользователя и перезагружает список. Роль по умолчанию user.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body models.AdminUserCreate true "Новый пользователь"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или email занят"
// @Router /admin/users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.createuser"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.AdminUserCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.service.CreateUser(r.Context(), req); err != nil {
		log.Error("failed to create user", sl.Err(err))
		response.FromError(w, r, err, "Failed to create user.")
		return
	}

	log.Info("user created", slog.String("email", req.Email))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(h.service.Snapshot()))
}
