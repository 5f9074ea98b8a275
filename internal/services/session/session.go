// Package session хранит состояние аутентификации клиента: статус сессии,
// профиль текущего пользователя и обзор его подписки.
//
// Store единственный, кто пишет пару токен/роль в хранилище. HTTP-клиент
// сообщает о каждом ответе 401 через HandleUnauthorized, и сессия
// сворачивается ровно один раз за период аутентификации.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/bookchat/internal/lib/apierr"
	"github.com/magabrotheeeer/bookchat/internal/lib/jwt"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/models"
	"github.com/magabrotheeeer/bookchat/internal/navigation"
)

// Status статус сессии.
type Status int

const (
	// StatusLoading — сохранённый токен ещё не проверен.
	StatusLoading Status = iota
	// StatusAuthenticated — профиль загружен.
	StatusAuthenticated
	// StatusUnauthenticated — токена нет или он отклонён.
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

// Backend описывает вызовы backend, нужные сессии.
type Backend interface {
	Login(ctx context.Context, identifier, secret string) (*models.LoginResult, error)
	Me(ctx context.Context) (*models.User, error)
	Overview(ctx context.Context) (*models.Overview, error)
}

// CredentialStore постоянное хранилище токена и роли.
type CredentialStore interface {
	Token(ctx context.Context) (string, error)
	Role(ctx context.Context) (string, error)
	Save(ctx context.Context, token, role string) error
	Clear(ctx context.Context) error
}

// State неизменяемый снимок сессии.
type State struct {
	Status   Status
	User     *models.User
	Overview *models.Overview
}

// Authenticated сообщает, что пользователь вошёл.
func (s State) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// Role роль текущего пользователя или "".
func (s State) Role() models.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Plan код текущего плана или "".
func (s State) Plan() string {
	if s.Overview == nil || s.Overview.Subscription == nil {
		return ""
	}
	return s.Overview.Subscription.Plan
}

// Store сессия клиента.
type Store struct {
	api   Backend
	creds CredentialStore
	nav   *navigation.Navigator
	log   *slog.Logger
	now   func() time.Time

	mu    sync.RWMutex
	state State
	// collapsed выставляется первым 401 и сбрасывается успешным входом.
	collapsed bool
}

// New создаёт сессию в статусе StatusLoading.
func New(api Backend, creds CredentialStore, nav *navigation.Navigator, log *slog.Logger) *Store {
	s := &Store{
		api:   api,
		creds: creds,
		nav:   nav,
		log:   log,
		now:   time.Now,
		state: State{Status: StatusLoading},
	}
	// До первой успешной проверки токена 401 обрабатывает сам Refresh.
	s.collapsed = true
	return s
}

// Snapshot возвращает текущее состояние.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Login обменивает учётные данные на токен, сохраняет токен и роль,
// затем загружает профиль и обзор подписки.
// При отказе в учётных данных сохранённое состояние не меняется.
// Если профиль не загрузился после успешного обмена, свежие учётные
// данные откатываются.
func (s *Store) Login(ctx context.Context, identifier, secret string) (models.Role, error) {
	const op = "session.Login"
	log := s.log.With(sl.Op(op))

	res, err := s.api.Login(ctx, identifier, secret)
	if err != nil {
		log.Info("login rejected", sl.Err(err))
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if res.AccessToken == "" {
		return "", fmt.Errorf("%s: %w", op, apierr.Validation("backend returned an empty token"))
	}

	prevToken, err := s.creds.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	prevRole, err := s.creds.Role(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.creds.Save(ctx, res.AccessToken, string(res.Role)); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		log.Error("failed to load profile after login", sl.Err(err))
		s.rollback(ctx, prevToken, prevRole)
		return "", fmt.Errorf("%s: %w", op, err)
	}

	role := res.Role
	if role == "" {
		role = user.Role
	}

	s.mu.Lock()
	s.state = State{Status: StatusAuthenticated, User: user}
	s.collapsed = false
	s.mu.Unlock()

	s.RefreshOverview(ctx)

	log.Info("logged in", slog.String("role", string(role)))
	return role, nil
}

// rollback возвращает хранилище к состоянию до Login.
func (s *Store) rollback(ctx context.Context, prevToken, prevRole string) {
	var err error
	if prevToken == "" {
		err = s.creds.Clear(ctx)
	} else {
		err = s.creds.Save(ctx, prevToken, prevRole)
	}
	if err != nil {
		s.log.Error("failed to roll back credentials", sl.Err(err))
	}
}

// Logout завершает сессию без обращения к backend и полностью
// сбрасывает клиент на страницу входа.
func (s *Store) Logout(ctx context.Context) {
	const op = "session.Logout"
	if err := s.creds.Clear(ctx); err != nil {
		s.log.Error("failed to clear credentials", sl.Op(op), sl.Err(err))
	}
	s.mu.Lock()
	s.state = State{Status: StatusUnauthenticated}
	s.collapsed = true
	s.mu.Unlock()

	s.nav.Reload(navigation.PathLogin)
}

// Refresh проверяет сохранённый токен и загружает профиль.
// Никогда не возвращает ошибку: любой сбой приводит к StatusUnauthenticated.
// Без токена и с истёкшим токеном запросов к backend нет.
func (s *Store) Refresh(ctx context.Context) {
	const op = "session.Refresh"
	log := s.log.With(sl.Op(op))

	token, err := s.creds.Token(ctx)
	if err != nil {
		log.Error("failed to read credentials", sl.Err(err))
		s.unauthenticate(ctx)
		return
	}
	if token == "" {
		s.setUnauthenticated()
		return
	}
	if jwt.Expired(token, s.now()) {
		log.Info("stored token expired")
		s.unauthenticate(ctx)
		return
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		log.Info("stored token rejected", sl.Err(err))
		s.unauthenticate(ctx)
		return
	}

	s.mu.Lock()
	s.state = State{Status: StatusAuthenticated, User: user}
	s.collapsed = false
	s.mu.Unlock()

	s.RefreshOverview(ctx)
}

// RefreshOverview перезапрашивает обзор подписки. Ошибка не пробрасывается:
// при сбое считается, что плана нет.
func (s *Store) RefreshOverview(ctx context.Context) {
	const op = "session.RefreshOverview"

	overview, err := s.api.Overview(ctx)
	if err != nil {
		s.log.Warn("failed to load overview", sl.Op(op), sl.Err(err))
		overview = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status != StatusAuthenticated {
		return
	}
	s.state.Overview = overview
}

// HandleUnauthorized реакция на ответ 401. Очищает учётные данные и
// переводит клиент на страницу входа; повторные вызовы до следующего
// входа ничего не делают.
func (s *Store) HandleUnauthorized(ctx context.Context) {
	s.mu.Lock()
	if s.collapsed {
		s.mu.Unlock()
		return
	}
	s.collapsed = true
	s.state = State{Status: StatusUnauthenticated}
	s.mu.Unlock()

	if err := s.creds.Clear(ctx); err != nil {
		s.log.Error("failed to clear credentials", sl.Op("session.HandleUnauthorized"), sl.Err(err))
	}
	if s.nav.RedirectToLogin() {
		s.log.Info("session expired, redirected to login")
	}
}

func (s *Store) unauthenticate(ctx context.Context) {
	if err := s.creds.Clear(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Error("failed to clear credentials", sl.Err(err))
	}
	s.setUnauthenticated()
}

func (s *Store) setUnauthenticated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{Status: StatusUnauthenticated}
	s.collapsed = true
}

// LandingFor страница, на которую попадает пользователь с ролью role после входа.
func LandingFor(role models.Role) string {
	if role.IsAdmin() {
		return navigation.PathAdmin
	}
	return navigation.PathChat
}
