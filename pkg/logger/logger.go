// Package logger provides the service-wide structured logger built on log/slog.
//
// WithCtx returns the request-scoped logger that middleware.Logger injects, so
// every line written while handling a request carries its request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("invoice completed", "invoice_id", inv.ID)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/Shreehariballakkuraya/ScanPOS/config"
)

var L *slog.Logger

func init() {
	Setup(os.Stdout, config.AppEnv())
}

// Setup rebuilds the base logger. Production uses JSON, everything else the
// text handler. Extra handlers (e.g. a MongoHandler) receive every record too.
func Setup(w io.Writer, env string, extra ...slog.Handler) {
	var handler slog.Handler
	switch env {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	if len(extra) > 0 {
		handler = NewMultiHandler(append([]slog.Handler{handler}, extra...)...)
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

type ctxKey struct{}

// WithCtx returns the logger stored in ctx, or the base logger.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a request-scoped logger in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }

func Info(msg string, args ...any) { L.Info(msg, args...) }

func Warn(msg string, args ...any) { L.Warn(msg, args...) }

func Error(msg string, args ...any) { L.Error(msg, args...) }
