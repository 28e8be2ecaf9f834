package main

import (
	"context"
	"os"

	"golang.org/x/exp/slog"

	"gophregister/internal/app/register"
	"gophregister/internal/app/register/config"
	"gophregister/internal/utils/logger"
)

func main() {
	cfg := config.MustLoad()
	log := logger.NewWithFile(cfg.Env, cfg.LogFile)

	app, err := register.New(cfg, log)
	if err != nil {
		log.Error("Не удалось запустить кассу", slog.Any("error", err))
		os.Exit(1)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Error("Касса остановлена с ошибкой", slog.Any("error", err))
		os.Exit(1)
	}
}
