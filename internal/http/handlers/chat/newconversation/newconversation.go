// Package newconversation реализует HTTP-обработчик начала нового диалога.
package newconversation

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/services/chat"
)

// Handler сбрасывает активный диалог.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service страница чата.
type Service interface {
	NewConversation(ctx context.Context) error
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
// @Summary Новый диалог
// @Description Забывает сохраненный идентификатор диалога и начинает транскрипт с приветствия.
// @Tags Chat
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 409 {object} response.ErrorResponse "Сообщение еще обрабатывается"
// @Router /chat/new [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chat.newconversation"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.service.NewConversation(r.Context()); err != nil {
		log.Error("failed to start a new conversation", sl.Err(err))
		if errors.Is(err, chat.ErrBusy) {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, response.Error("The previous message is still being processed."))
			return
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not start a new conversation"))
		return
	}

	log.Info("new conversation started")
	render.JSON(w, r, response.StatusOKWithData(h.service.Snapshot(r.Context())))
}
