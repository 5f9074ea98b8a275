// Package account реализует страницу аккаунта: профиль, расход сообщений
// и смену пароля.
package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator"
	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/bookchat/internal/lib/apierr"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/lib/usage"
	"github.com/magabrotheeeer/bookchat/internal/lib/validation"
	"github.com/magabrotheeeer/bookchat/internal/models"
)

const (
	msgPasswordChanged = "✅ Password changed successfully."
	msgPasswordFailed  = "❌ Failed to change the password."
)

// Backend вызовы backend, нужные странице аккаунта.
type Backend interface {
	Me(ctx context.Context) (*models.User, error)
	Overview(ctx context.Context) (*models.Overview, error)
	ChangePassword(ctx context.Context, req models.PasswordChange) (*models.MessageResponse, error)
}

// Page данные страницы аккаунта.
type Page struct {
	User        *models.User     `json:"user"`
	Overview    *models.Overview `json:"overview"`
	Usage       usage.Stats      `json:"usage"`
	LimitLabel  string           `json:"limit_label"`
	ShowUpgrade bool             `json:"show_upgrade"`
}

// Feedback результат смены пароля для показа под формой.
type Feedback struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Service сервис страницы аккаунта.
type Service struct {
	api      Backend
	validate *validator.Validate
	log      *slog.Logger
}

// New создаёт Service.
func New(api Backend, log *slog.Logger) *Service {
	return &Service{
		api:      api,
		validate: validation.New(),
		log:      log,
	}
}

// Load загружает профиль и обзор подписки параллельно.
// Если не удалась хотя бы одна загрузка, ошибкой завершается вся загрузка.
func (s *Service) Load(ctx context.Context) (*Page, error) {
	const op = "account.Load"

	var (
		user     *models.User
		overview *models.Overview
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.api.Me(gctx)
		user = u
		return err
	})
	g.Go(func() error {
		o, err := s.api.Overview(gctx)
		overview = o
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("failed to load account", sl.Op(op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats := usage.FromOverview(overview)
	return &Page{
		User:        user,
		Overview:    overview,
		Usage:       stats,
		LimitLabel:  stats.LimitLabel(),
		ShowUpgrade: ShowUpgrade(overview),
	}, nil
}

// ShowUpgrade предлагать ли сменить план. Предлагается всем, кроме PREMIUM.
func ShowUpgrade(o *models.Overview) bool {
	if o == nil || o.Subscription == nil {
		return true
	}
	return o.Subscription.Plan != models.PlanPremium
}

// ChangePassword меняет пароль. Результат всегда возвращается как Feedback;
// ошибка валидации или backend превращается в текст сообщения.
func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword string) Feedback {
	const op = "account.ChangePassword"
	log := s.log.With(sl.Op(op))

	req := models.PasswordChange{OldPassword: oldPassword, NewPassword: newPassword}
	if err := s.validate.Struct(req); err != nil {
		return Feedback{Message: validation.Message(err)}
	}

	if _, err := s.api.ChangePassword(ctx, req); err != nil {
		log.Info("password change rejected", sl.Err(err))
		return Feedback{Message: apierr.Message(err, msgPasswordFailed)}
	}
	log.Info("password changed")
	return Feedback{OK: true, Message: msgPasswordChanged}
}
