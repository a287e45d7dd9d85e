package logger

import (
	"log/slog"
	"os"
	"strings"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
}

type appLogger struct {
	l *slog.Logger
}

func New(level string) Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return &appLogger{l: slog.New(handler)}
}

func (a *appLogger) Debug(msg string, args ...any) { a.l.Debug(msg, args...) }
func (a *appLogger) Info(msg string, args ...any)  { a.l.Info(msg, args...) }
func (a *appLogger) Warn(msg string, args ...any)  { a.l.Warn(msg, args...) }
func (a *appLogger) Error(msg string, args ...any) { a.l.Error(msg, args...) }

func (a *appLogger) Fatal(msg string, args ...any) {
	a.l.Error(msg, args...)
	os.Exit(1)
}
