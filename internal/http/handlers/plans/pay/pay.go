// Package pay реализует HTTP-обработчик симулированной оплаты плана.
package pay

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/services/plans"
)

// Handler обрабатывает оплату.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service оплата плана.
type Service interface {
	Pay(ctx context.Context, code string, form plans.PaymentForm) (*plans.Result, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Оплатить план
// @Description Проверяет данные карты, проводит оплату и активирует план.
// @Tags Plans
// @Accept  json
// @Produce  json
// @Param code path string true "Код плана"
// @Param request body plans.PaymentForm true "Данные карты"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или бесплатный план"
// @Failure 404 {object} response.ErrorResponse "Неизвестный план"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /plans/{code}/pay [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.pay"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var form plans.PaymentForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	code := chi.URLParam(r, "code")
	res, err := h.service.Pay(r.Context(), code, form)
	if err != nil {
		log.Error("payment failed", slog.String("plan", code), sl.Err(err))
		switch {
		case errors.Is(err, plans.ErrUnknownPlan):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("unknown plan"))
		case errors.Is(err, plans.ErrFreePlan):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("the free plan requires no payment"))
		default:
			response.FromError(w, r, err, "Payment failed.")
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(res))
}
