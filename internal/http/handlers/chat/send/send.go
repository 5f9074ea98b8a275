// Package send реализует HTTP-обработчик отправки сообщения ассистенту.
//
// Ошибки backend не возвращаются как ошибки запроса: они попадают в транскрипт
// репликой ассистента. Ошибкой запроса считается только отказ принять
// сообщение, когда чат заблокирован или предыдущее сообщение ещё в обработке.
package send

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/services/chat"
)

// Request — сообщение пользователя.
type Request struct {
	Message string `json:"message"`
}

// Handler обрабатывает отправку сообщения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service страница чата.
type Service interface {
	Send(ctx context.Context, text string) error
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
// @Summary Отправить сообщение
// @Description Проверяет остаток сообщений, списывает попытку и отправляет сообщение ассистенту. Возвращает обновленный транскрипт.
// @Tags Chat
// @Accept  json
// @Produce  json
// @Param request body Request true "Сообщение"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Лимит исчерпан, ввод заблокирован"
// @Failure 409 {object} response.ErrorResponse "Предыдущее сообщение еще обрабатывается"
// @Router /chat [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.send"

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

	if err := h.service.Send(r.Context(), req.Message); err != nil {
		log.Info("message rejected", sl.Err(err))
		switch {
		case errors.Is(err, chat.ErrLocked):
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("Message limit reached for your plan. Choose another plan to continue."))
		case errors.Is(err, chat.ErrBusy):
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("The previous message is still being processed."))
		default:
			response.FromError(w, r, err, "Failed to process the request.")
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(h.service.Snapshot(r.Context())))
}
