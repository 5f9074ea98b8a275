package middlewarectx_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/bookchat/internal/http/middlewarectx"
	"github.com/magabrotheeeer/bookchat/internal/models"
	"github.com/magabrotheeeer/bookchat/internal/navigation"
	"github.com/magabrotheeeer/bookchat/internal/services/guard"
	"github.com/magabrotheeeer/bookchat/internal/services/session"
)

type staticSession session.State

func (s staticSession) Snapshot() session.State { return session.State(s) }

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func authenticated(role models.Role) staticSession {
	return staticSession{
		Status: session.StatusAuthenticated,
		User:   &models.User{Email: "reader@example.com", Role: role},
	}
}

func TestGuard(t *testing.T) {
	tests := []struct {
		name         string
		state        staticSession
		req          guard.Requirement
		path         string
		wantStatus   int
		wantCalled   bool
		wantLocation string
		wantBody     string
	}{
		{
			name:       "публичная страница без сессии",
			state:      staticSession{Status: session.StatusUnauthenticated},
			req:        guard.None,
			path:       "/register",
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "сессия загружается",
			state:      staticSession{Status: session.StatusLoading},
			req:        guard.RequireAuthenticated,
			path:       "/account",
			wantStatus: http.StatusAccepted,
			wantBody:   `{"status":"Loading"}`,
		},
		{
			name:         "нет входа",
			state:        staticSession{Status: session.StatusUnauthenticated},
			req:          guard.RequireAuthenticated,
			path:         "/account",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/login",
			wantBody:     `{"status":"Redirect","redirect":"/login","from":"/account"}`,
		},
		{
			name:         "пользователь на странице администратора",
			state:        authenticated(models.RoleUser),
			req:          guard.RequireAdmin,
			path:         "/admin",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/chat",
			wantBody:     `{"status":"Redirect","redirect":"/chat"}`,
		},
		{
			name:       "администратор",
			state:      authenticated(models.RoleAdmin),
			req:        guard.RequireAdmin,
			path:       "/admin",
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "чат без плана",
			state:      authenticated(models.RoleUser),
			req:        guard.RequirePlan,
			path:       "/chat",
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nav := navigation.New(navigation.PathRoot)
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				st, ok := middlewarectx.StateFrom(r.Context())
				assert.True(t, ok)
				assert.Equal(t, session.State(tt.state), st)
				w.WriteHeader(http.StatusOK)
			})

			h := middlewarectx.Guard(newNoopLogger(), tt.state, nav, tt.req)(next)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, rec.Header().Get("Location"))
				assert.Equal(t, tt.wantLocation, nav.Location())
				require.Len(t, nav.Redirects(), 1)
			}
			if tt.wantCalled {
				assert.Equal(t, tt.path, nav.Location())
				assert.Empty(t, nav.Redirects())
			}
		})
	}
}

func TestGuard_PostDoesNotMoveNavigator(t *testing.T) {
	nav := navigation.New(navigation.PathChat)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := middlewarectx.Guard(newNoopLogger(), authenticated(models.RoleUser), nav, guard.RequirePlan)(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat/new", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, navigation.PathChat, nav.Location())
	assert.Empty(t, nav.History())
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0), 1)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := middlewarectx.RateLimitMiddleware(newNoopLogger(), limiter)(next)

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/chat", nil))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/chat", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.JSONEq(t, `{"status":"Error","error":"too many requests"}`, second.Body.String())
}
