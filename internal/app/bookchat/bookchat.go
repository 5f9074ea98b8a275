// Package bookchat собирает web-оболочку клиента: одна сессия на процесс,
// страницы приложения доступны как JSON-маршруты.
package bookchat

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/bookchat/internal/apiclient"
	"github.com/magabrotheeeer/bookchat/internal/config"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
	"github.com/magabrotheeeer/bookchat/internal/navigation"
	"github.com/magabrotheeeer/bookchat/internal/services/account"
	"github.com/magabrotheeeer/bookchat/internal/services/admin"
	"github.com/magabrotheeeer/bookchat/internal/services/authforms"
	"github.com/magabrotheeeer/bookchat/internal/services/plans"
	"github.com/magabrotheeeer/bookchat/internal/services/session"
	"github.com/magabrotheeeer/bookchat/internal/storage"
)

// App web-оболочка клиента.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	store    storage.Store
	registry *prometheus.Registry

	nav     *navigation.Navigator
	session *session.Store
	forms   *authforms.Service
	chat    *chatPage
	plans   *plans.Service
	account *account.Service
	admin   *adminPage
}

// New собирает приложение. ctx ограничивает жизнь фоновых задач,
// в том числе опроса панели администратора.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	creds := storage.NewCredentials(store)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	api := apiclient.New(cfg.API, creds, logger, apiclient.WithMetrics(apiclient.NewMetrics(registry)))
	nav := navigation.New(navigation.PathRoot)
	sess := session.New(api, creds, nav, logger)
	api.OnUnauthorized(sess.HandleUnauthorized)

	a := &App{
		logger:   logger,
		store:    store,
		registry: registry,
		nav:      nav,
		session:  sess,
		forms:    authforms.New(api, sess, nav, logger),
		chat:     &chatPage{api: api, convs: creds, overview: sess, log: logger},
		plans:    plans.New(api, sess, logger),
		account:  account.New(api, logger),
		admin:    &adminPage{Dashboard: admin.New(api, cfg.PollInterval, logger), ctx: ctx},
	}
	nav.OnChange(a.onNavigate)

	router := chi.NewRouter()
	a.RegisterRoutes(router)

	a.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return a, nil
}

// Handler корневой обработчик оболочки.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run проверяет сохранённую сессию и обслуживает запросы до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	go a.session.Refresh(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	a.admin.Stop()
	if c, ok := a.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.logger.Error("failed to close storage", sl.Err(err))
		}
	}
}
