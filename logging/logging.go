package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Component names used as the "component" attribute.
const (
	ComponentHTTP    = "http"
	ComponentService = "service"
	ComponentLive    = "live"
	ComponentRates   = "rates"
	ComponentStore   = "store"
	ComponentMQ      = "mq"
	ComponentCLI     = "cli"
)

type Config struct {
	Level  string
	Format string
	Output io.Writer
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds the process logger. It does not install it as the default.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

// Discard is a logger that drops everything, for tests and library
// defaults.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func For(l *slog.Logger, component string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", component)
}

type ctxKey struct{}

func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// GinMiddleware attaches a request scoped logger and logs each request
// once it completes.
func GinMiddleware(base *slog.Logger) gin.HandlerFunc {
	base = For(base, ComponentHTTP)
	return func(c *gin.Context) {
		start := time.Now()
		reqLogger := base.With("method", c.Request.Method, "path", c.FullPath())
		c.Request = c.Request.WithContext(WithContext(c.Request.Context(), reqLogger))

		c.Next()

		status := c.Writer.Status()
		attrs := []any{"status", status, "duration_ms", time.Since(start).Milliseconds()}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}
		switch {
		case status >= 500:
			reqLogger.Error("request failed", attrs...)
		case status >= 400:
			reqLogger.Warn("request rejected", attrs...)
		default:
			reqLogger.Debug("request served", attrs...)
		}
	}
}
