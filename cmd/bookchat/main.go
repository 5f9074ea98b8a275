// Package main терминальный клиент BookChat.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/bookchat/internal/app/terminal"
	"github.com/magabrotheeeer/bookchat/internal/config"
	"github.com/magabrotheeeer/bookchat/internal/lib/logger"
	"github.com/magabrotheeeer/bookchat/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	// stdout занят диалогом.
	log := logger.NewWithWriter(cfg.Env, os.Stderr)

	log.Debug("starting bookchat", slog.String("env", cfg.Env), slog.String("api", cfg.BaseURL))

	if err := run(cfg, log); err != nil {
		log.Error("client stopped with error", sl.Err(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shell, err := terminal.New(ctx, cfg, log, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := shell.Close(); err != nil {
			log.Error("failed to close storage", sl.Err(err))
		}
	}()

	if err := shell.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
