package logger

import (
	"io"
	"os"

	"golang.org/x/exp/slog"
	"gopkg.in/natefinch/lumberjack.v2"

	"gophregister/internal/app/register/config"
)

const (
	logFileMaxSizeMB  = 20
	logFileMaxBackups = 5
	logFileMaxAgeDays = 14
)

// New создает логгер для указанного окружения с выводом в stdout
func New(env string) *slog.Logger {
	return newLogger(env, os.Stdout)
}

// NewWithFile создает логгер, который дополнительно пишет в файл с ротацией.
// Пустой путь эквивалентен New.
func NewWithFile(env, path string) *slog.Logger {
	if path == "" {
		return New(env)
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		MaxAge:     logFileMaxAgeDays,
		Compress:   true,
	}

	if env == config.EnvLocal {
		// в файл пишем JSON, цветной вывод остается в консоли
		return slog.New(fanout{
			setupPrettySlog().Handler(),
			slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: slog.LevelDebug}),
		})
	}

	return newLogger(env, io.MultiWriter(os.Stdout, rotator))
}

func newLogger(env string, w io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = setupPrettySlog()
	case config.EnvDev:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case config.EnvProd:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
