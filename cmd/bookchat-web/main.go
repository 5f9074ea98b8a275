// Package main BookChat web shell
//
// @title           BookChat web shell
// @version         1.0
// @description     Локальная web-оболочка клиента книжного ассистента: страницы приложения как JSON-маршруты.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:5173
// @BasePath  /
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/magabrotheeeer/bookchat/docs"
	"github.com/magabrotheeeer/bookchat/internal/app/bookchat"
	"github.com/magabrotheeeer/bookchat/internal/config"
	"github.com/magabrotheeeer/bookchat/internal/lib/logger"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	log.Info("starting bookchat web shell", slog.String("env", cfg.Env), slog.String("api", cfg.BaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bookchat.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("bookchat web shell stopped gracefully")
}
