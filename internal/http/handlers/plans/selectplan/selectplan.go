// Package selectplan реализует HTTP-обработчик выбора тарифного плана.
//
// Бесплатный план активируется сразу. Для платного плана ответ сообщает,
// что нужна форма оплаты, и в backend ничего не отправляется.
package selectplan

import (
	"context"
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

// Handler обрабатывает выбор плана.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service выбор плана.
type Service interface {
	Select(ctx context.Context, code string) (*plans.Result, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выбрать план
// @Description FREE активируется сразу; для платного плана возвращается payment_required.
// @Tags Plans
// @Produce  json
// @Param code path string true "Код плана"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Неизвестный план"
// @Router /plans/{code} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.selectplan"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	code := chi.URLParam(r, "code")
	res, err := h.service.Select(r.Context(), code)
	if err != nil {
		log.Error("failed to select plan", slog.String("plan", code), sl.Err(err))
		if errors.Is(err, plans.ErrUnknownPlan) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("unknown plan"))
			return
		}
		response.FromError(w, r, err, "Failed to activate the plan.")
		return
	}

	log.Info("plan selected", slog.String("plan", res.Plan.Code), slog.Bool("payment_required", res.PaymentRequired))
	render.JSON(w, r, response.StatusOKWithData(res))
}
