// Package register реализует HTTP-обработчик регистрации.
//
// Новый пользователь всегда получает роль user. После регистрации клиент
// переходит на страницу входа, ответ содержит сообщение для неё.
package register

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
	"github.com/magabrotheeeer/bookchat/internal/services/authforms"
)

// Request — структура входных данных для регистрации.
type Request struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handler обрабатывает HTTP-запросы на регистрацию.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service      // Сервис публичных форм
}

// Service описывает интерфейс регистрации.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*authforms.Result, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создает аккаунт с ролью user и переводит клиент на страницу входа.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 200 {object} response.Response "Аккаунт создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или email уже занят"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	res, err := h.service.Register(r.Context(), models.RegisterRequest{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		log.Info("registration failed", sl.Err(err))
		response.FromError(w, r, err, "Registration failed.")
		return
	}

	log.Info("user registered")
	render.JSON(w, r, response.StatusOKWithData(res))
}
