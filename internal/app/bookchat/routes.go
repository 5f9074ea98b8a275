package bookchat

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	accountshow "github.com/magabrotheeeer/bookchat/internal/http/handlers/account/show"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/account/changepassword"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/admin/createuser"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/admin/dashboard"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/admin/deleteuser"
	adminplans "github.com/magabrotheeeer/bookchat/internal/http/handlers/admin/plans"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/admin/updateuser"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/chat/newconversation"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/chat/send"
	chatshow "github.com/magabrotheeeer/bookchat/internal/http/handlers/chat/show"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/health"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/plans/list"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/plans/pay"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/plans/selectplan"
	"github.com/magabrotheeeer/bookchat/internal/http/handlers/session/current"
	"github.com/magabrotheeeer/bookchat/internal/http/middlewarectx"
	"github.com/magabrotheeeer/bookchat/internal/http/response"
	"github.com/magabrotheeeer/bookchat/internal/navigation"
	"github.com/magabrotheeeer/bookchat/internal/services/guard"
)

// RegisterRoutes регистрирует все маршруты web-оболочки.
func (a *App) RegisterRoutes(r chi.Router) {
	logger := a.logger

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	guarded := func(req guard.Requirement) func(http.Handler) http.Handler {
		return middlewarectx.Guard(logger, a.session, a.nav, req)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		a.nav.Redirect(navigation.PathChat)
		response.Redirect(w, r, navigation.PathChat, "")
	})

	sessionHandler := current.New(logger, a.session)
	// Состояние сессии не является страницей и не меняет расположение.
	r.Get("/session", sessionHandler.ServeHTTP)

	// Публичные страницы
	r.Group(func(r chi.Router) {
		r.Use(guarded(guard.None))
		r.Get(navigation.PathLogin, sessionHandler.ServeHTTP)
		r.Get(navigation.PathRegister, sessionHandler.ServeHTTP)
		r.Get(navigation.PathForgotPassword, sessionHandler.ServeHTTP)
		r.Get(navigation.PathResetPassword, sessionHandler.ServeHTTP)

		r.Post(navigation.PathLogin, login.New(logger, a.forms).ServeHTTP)
		r.Post("/logout", logout.New(logger, a.session).ServeHTTP)
		r.Post(navigation.PathRegister, register.New(logger, a.forms).ServeHTTP)
		r.Post(navigation.PathForgotPassword, forgotpassword.New(logger, a.forms).ServeHTTP)
		r.Post(navigation.PathResetPassword, resetpassword.New(logger, a.forms).ServeHTTP)
	})

	r.Group(func(r chi.Router) {
		r.Use(guarded(guard.RequirePlan))
		r.Get(navigation.PathChat, chatshow.New(logger, a.chat).ServeHTTP)
		r.With(middlewarectx.RateLimitMiddleware(logger, rate.NewLimiter(1, 3))).
			Post(navigation.PathChat, send.New(logger, a.chat).ServeHTTP)
		r.Post("/chat/new", newconversation.New(logger, a.chat).ServeHTTP)
	})

	r.Group(func(r chi.Router) {
		r.Use(guarded(guard.RequireAuthenticated))
		r.Get(navigation.PathPlans, list.New(logger, a.plans).ServeHTTP)
		r.Post("/plans/{code}", selectplan.New(logger, a.plans).ServeHTTP)
		r.Post("/plans/{code}/pay", pay.New(logger, a.plans).ServeHTTP)
		r.Get(navigation.PathAccount, accountshow.New(logger, a.account).ServeHTTP)
		r.Post("/account/password", changepassword.New(logger, a.account).ServeHTTP)
	})

	r.Group(func(r chi.Router) {
		r.Use(guarded(guard.RequireAdmin))
		r.Get(navigation.PathAdmin, dashboard.New(logger, a.admin).ServeHTTP)
		r.Post("/admin/users", createuser.New(logger, a.admin).ServeHTTP)
		r.Put("/admin/users/{id}", updateuser.New(logger, a.admin).ServeHTTP)
		r.Delete("/admin/users/{id}", deleteuser.New(logger, a.admin).ServeHTTP)
		r.Get("/admin/plans", adminplans.New(logger, a.admin).ServeHTTP)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("page not found"))
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
