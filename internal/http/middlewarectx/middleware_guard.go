// Package middlewarectx содержит HTTP middleware web-оболочки.
//
// Guard применяет требование страницы к текущему состоянию сессии.
// Пока сессия загружается, клиент получает заглушку 202 со статусом "Loading".
// Если страница недоступна, клиент переводится на другую страницу ответом 303,
// а переход записывается в навигатор. В остальных случаях состояние сессии
// кладётся в контекст запроса для обработчиков.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/navigation"
	"github.com/magabrotheeeer/bookchat/internal/services/guard"
	"github.com/magabrotheeeer/bookchat/internal/services/session"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// State — ключ для снимка сессии в контексте.
const State Key = "session_state"

// SessionSource источник состояния сессии.
type SessionSource interface {
	Snapshot() session.State
}

// Guard возвращает middleware, который пропускает запрос к странице только
// при выполненном требовании req.
func Guard(log *slog.Logger, sessions SessionSource, nav *navigation.Navigator, req guard.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Guard"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			st := sessions.Snapshot()
			decision := guard.Decide(st, req, r.URL.Path)

			switch decision.Action {
			case guard.Placeholder:
				log.Debug("session is loading", slog.String("path", r.URL.Path))
				render.Status(r, http.StatusAccepted)
				render.JSON(w, r, response.Loading())
				return
			case guard.Redirect:
				log.Info("access denied, redirecting",
					slog.String("path", r.URL.Path),
					slog.String("target", decision.Target),
					slog.String("requirement", req.String()),
				)
				nav.Redirect(decision.Target)
				response.Redirect(w, r, decision.Target, decision.From)
				return
			}

			if r.Method == http.MethodGet && nav.Location() != r.URL.Path {
				nav.Visit(r.URL.Path)
			}
			ctx := context.WithValue(r.Context(), State, st)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StateFrom достаёт снимок сессии, положенный Guard.
func StateFrom(ctx context.Context) (session.State, bool) {
	st, ok := ctx.Value(State).(session.State)
	return st, ok
}
