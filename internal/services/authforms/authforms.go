// Package authforms реализует формы входа, регистрации и восстановления пароля.
package authforms

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/bookchat/internal/lib/apierr"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/lib/validation"
	"github.com/magabrotheeeer/bookchat/internal/models"
	"github.com/magabrotheeeer/bookchat/internal/navigation"
	"github.com/magabrotheeeer/bookchat/internal/services/session"
)

const (
	msgRegistered  = "Account created successfully! You can sign in now."
	msgLoginFailed = "Authentication failed."
)

// Backend вызовы backend для публичных форм.
type Backend interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) (*models.MessageResponse, error)
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*models.MessageResponse, error)
}

// Authenticator вход через сессию.
type Authenticator interface {
	Login(ctx context.Context, identifier, secret string) (models.Role, error)
}

// LoginForm форма входа.
type LoginForm struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ForgotForm форма запроса сброса пароля.
type ForgotForm struct {
	Email string `json:"email" validate:"required,email"`
}

// Result итог отправки формы: сообщение и страница, на которую перешёл клиент.
type Result struct {
	Target  string `json:"target,omitempty"`
	Message string `json:"message,omitempty"`
}

// Service сервис публичных форм.
type Service struct {
	api      Backend
	auth     Authenticator
	nav      *navigation.Navigator
	validate *validator.Validate
	log      *slog.Logger
}

// New создаёт Service.
func New(api Backend, auth Authenticator, nav *navigation.Navigator, log *slog.Logger) *Service {
	return &Service{
		api:      api,
		auth:     auth,
		nav:      nav,
		validate: validation.New(),
		log:      log,
	}
}

// Login выполняет вход и переводит клиент на from, если эта страница
// доступна роли, иначе на стартовую страницу роли.
func (s *Service) Login(ctx context.Context, form LoginForm, from string) (*Result, error) {
	const op = "authforms.Login"

	if err := s.validate.Struct(form); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apierr.Validation(validation.Message(err)))
	}
	role, err := s.auth.Login(ctx, strings.TrimSpace(form.Email), form.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	target := returnTarget(role, from)
	s.nav.Redirect(target)
	s.log.Info("user signed in", sl.Op(op), slog.String("target", target))
	return &Result{Target: target}, nil
}

// returnTarget выбирает страницу после входа.
func returnTarget(role models.Role, from string) string {
	switch from {
	case navigation.PathChat, navigation.PathPlans, navigation.PathAccount:
		return from
	case navigation.PathAdmin:
		if role.IsAdmin() {
			return from
		}
	}
	return session.LandingFor(role)
}

// LoginError текст ошибки входа для пользователя.
func LoginError(err error) string {
	return apierr.Message(err, msgLoginFailed)
}

// Register регистрирует пользователя и переводит клиент на страницу входа.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*Result, error) {
	const op = "authforms.Register"

	req.Email = strings.TrimSpace(req.Email)
	req.Role = models.RoleUser
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apierr.Validation(validation.Message(err)))
	}
	if _, err := s.api.Register(ctx, req); err != nil {
		s.log.Info("registration rejected", sl.Op(op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.nav.Redirect(navigation.PathLogin)
	return &Result{Target: navigation.PathLogin, Message: msgRegistered}, nil
}

// ForgotPassword запрашивает письмо для сброса. Клиент остаётся на странице.
func (s *Service) ForgotPassword(ctx context.Context, form ForgotForm) (*Result, error) {
	const op = "authforms.ForgotPassword"

	form.Email = strings.TrimSpace(form.Email)
	if err := s.validate.Struct(form); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apierr.Validation(validation.Message(err)))
	}
	res, err := s.api.ForgotPassword(ctx, form.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Result{Message: res.Message}, nil
}

// ResetPassword задаёт новый пароль по токену из письма и переводит
// клиент на страницу входа.
func (s *Service) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (*Result, error) {
	const op = "authforms.ResetPassword"

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apierr.Validation(validation.Message(err)))
	}
	res, err := s.api.ResetPassword(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.nav.Redirect(navigation.PathLogin)
	return &Result{Target: navigation.PathLogin, Message: res.Message}, nil
}
