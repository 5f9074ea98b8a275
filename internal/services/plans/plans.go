// Package plans реализует выбор тарифного плана и симуляцию оплаты.
package plans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/bookchat/internal/lib/apierr"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/lib/validation"
	"github.com/magabrotheeeer/bookchat/internal/models"
)

// ErrUnknownPlan план отсутствует в каталоге.
var ErrUnknownPlan = errors.New("unknown plan")

// ErrFreePlan оплата бесплатного плана не нужна.
var ErrFreePlan = errors.New("free plan requires no payment")

const period = "month"

func limit(v int) *int { return &v }

// Catalog тарифные планы, которые видит пользователь.
var Catalog = []models.Plan{
	{
		ID:            1,
		Code:          models.PlanFree,
		Name:          "Free",
		Currency:      "EUR",
		Period:        period,
		MessagesLimit: limit(5),
		Features:      []string{"5 recommendations per month", "Access to the base catalogue", "Standard response time"},
	},
	{
		ID:            2,
		Code:          models.PlanStandard,
		Name:          "Standard",
		PriceCents:    499,
		Currency:      "EUR",
		Period:        period,
		MessagesLimit: limit(100),
		Features:      []string{"100 recommendations per month", "Priority AI access", "Saved conversation history", "Email support"},
	},
	{
		ID:         3,
		Code:       models.PlanPremium,
		Name:       "Premium",
		PriceCents: 1499,
		Currency:   "EUR",
		Period:     period,
		Features:   []string{"Unlimited attempts", "Ultra-personalised recommendations", "Advanced context analysis", "24/7 support"},
	},
}

// Find ищет план по коду.
func Find(code string) (models.Plan, bool) {
	code = strings.ToUpper(code)
	for _, p := range Catalog {
		if p.Code == code {
			return p, true
		}
	}
	return models.Plan{}, false
}

// Backend вызовы backend, нужные странице планов.
type Backend interface {
	Checkout(ctx context.Context, amount int, currency string) (*models.CheckoutResult, error)
	CreateSubscription(ctx context.Context, planCode string) (*models.SubscriptionResult, error)
}

// OverviewRefresher перезапрашивает обзор подписки после смены плана.
type OverviewRefresher interface {
	RefreshOverview(ctx context.Context)
}

// PaymentForm данные симулированной карты. Пробелы в номере допускаются.
type PaymentForm struct {
	CardNumber string `json:"card_number" validate:"required,numeric,len=16"`
	Expiry     string `json:"expiry" validate:"required,expiry"`
	CVV        string `json:"cvv" validate:"required,numeric,len=3"`
}

// Result итог выбора плана.
type Result struct {
	Plan            models.Plan `json:"plan"`
	PaymentRequired bool        `json:"payment_required"`
	Activated       bool        `json:"activated"`
	Message         string      `json:"message,omitempty"`
}

// Service сервис страницы планов.
type Service struct {
	api      Backend
	session  OverviewRefresher
	validate *validator.Validate
	log      *slog.Logger
}

// New создаёт Service.
func New(api Backend, session OverviewRefresher, log *slog.Logger) *Service {
	return &Service{
		api:      api,
		session:  session,
		validate: validation.New(),
		log:      log,
	}
}

// Plans каталог планов.
func (s *Service) Plans() []models.Plan {
	out := make([]models.Plan, len(Catalog))
	copy(out, Catalog)
	return out
}

// Select выбирает план. Бесплатный план активируется сразу, для платного
// возвращается признак PaymentRequired и ничего не отправляется в backend.
func (s *Service) Select(ctx context.Context, code string) (*Result, error) {
	const op = "plans.Select"

	plan, ok := Find(code)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownPlan, code)
	}
	if !plan.Free() {
		return &Result{Plan: plan, PaymentRequired: true}, nil
	}

	if _, err := s.api.CreateSubscription(ctx, plan.Code); err != nil {
		s.log.Error("failed to activate free plan", sl.Op(op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.session.RefreshOverview(ctx)
	return &Result{Plan: plan, Activated: true, Message: "✅ The Free plan has been activated!"}, nil
}

// Pay проверяет форму карты, проводит оплату и активирует план code.
func (s *Service) Pay(ctx context.Context, code string, form PaymentForm) (*Result, error) {
	const op = "plans.Pay"
	log := s.log.With(sl.Op(op), slog.String("plan", code))

	plan, ok := Find(code)
	if !ok {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownPlan, code)
	}
	if plan.Free() {
		return nil, fmt.Errorf("%s: %w", op, ErrFreePlan)
	}

	form.CardNumber = strings.ReplaceAll(form.CardNumber, " ", "")
	if err := s.validate.Struct(form); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apierr.Validation(validation.Message(err)))
	}

	if _, err := s.api.Checkout(ctx, plan.PriceCents, plan.Currency); err != nil {
		log.Error("checkout failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.api.CreateSubscription(ctx, plan.Code); err != nil {
		log.Error("failed to activate plan after payment", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.session.RefreshOverview(ctx)

	log.Info("plan activated")
	return &Result{
		Plan:      plan,
		Activated: true,
		Message:   fmt.Sprintf("Payment for %s was simulated successfully!", plan.Name),
	}, nil
}
