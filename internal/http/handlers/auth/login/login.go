// Package login реализует HTTP-обработчик формы входа.
//
// Обработчик декодирует учётные данные и страницу, с которой пользователя
// отправили на вход, и передаёт их сервису форм. При успехе возвращается
// страница, на которую перешёл клиент; отказ backend возвращается с его текстом.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/services/authforms"
)

// Request — структура входных данных для входа.
type Request struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	From     string `json:"from,omitempty"`
}

// Handler обрабатывает HTTP-запросы на вход.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service      // Сервис публичных форм
}

// Service описывает интерфейс входа.
type Service interface {
	Login(ctx context.Context, form authforms.LoginForm, from string) (*authforms.Result, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Вход пользователя
// @Description Обменивает email и пароль на токен и переводит клиент на страницу роли или на from.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	res, err := h.service.Login(r.Context(), authforms.LoginForm{Email: req.Email, Password: req.Password}, req.From)
	if err != nil {
		log.Info("login failed", sl.Err(err))
		response.FromError(w, r, err, authforms.LoginError(err))
		return
	}

	log.Info("login success", slog.String("target", res.Target))
	render.JSON(w, r, response.StatusOKWithData(res))
}
