package middleware

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger is the global structured logger instance used throughout the application.
var Logger *slog.Logger

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TraceIDKey   contextKey = "trace_id"
)

// ctxHandler decorates records with the request, user and trace ids found in the context.
type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if rid, ok := ctx.Value(RequestIDKey).(string); ok && rid != "" {
		r.AddAttrs(slog.String("request_id", rid))
	}
	if uid, ok := ctx.Value(UserIDKey).(string); ok && uid != "" {
		r.AddAttrs(slog.String("user_id", uid))
	}
	if tid, ok := ctx.Value(TraceIDKey).(string); ok && tid != "" {
		r.AddAttrs(slog.String("trace_id", tid))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

func init() {
	Logger = NewLogger(os.Getenv("APP_ENV"))
}

// NewLogger builds the context-aware logger. Production gets JSON, everything else text.
func NewLogger(env string) *slog.Logger {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if env == "production" || env == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(&ctxHandler{handler})
}

// ContextMiddleware copies request id, user id and trace id from fiber locals into the
// request context so service-layer logs carry them.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		if rid, ok := c.Locals("requestid").(string); ok {
			ctx = context.WithValue(ctx, RequestIDKey, rid)
		}
		if uid, ok := c.Locals("userID").(string); ok {
			ctx = context.WithValue(ctx, UserIDKey, uid)
		}
		if tid, ok := c.Locals("traceID").(string); ok {
			ctx = context.WithValue(ctx, TraceIDKey, tid)
		}

		c.SetUserContext(ctx)
		return c.Next()
	}
}

// StructuredLogger returns a Fiber middleware for logging requests using slog
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		fields := []any{
			slog.Int("status", c.Response().StatusCode()),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
			slog.String("user_agent", c.Get("User-Agent")),
		}

		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
			Logger.ErrorContext(c.UserContext(), "request failed", fields...)
		} else {
			Logger.InfoContext(c.UserContext(), "request processed", fields...)
		}

		return err
	}
}
