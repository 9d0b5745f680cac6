package middleware

import (
	"fmt"

	"vidtube/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware starts a server span per request and exposes the trace id to logs and clients.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))

		spanName := fmt.Sprintf("%s %s", c.Method(), c.Route().Path)
		ctx, span := observability.Tracer.Start(ctx, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.path", c.Path()),
				attribute.String("http.ip", c.IP()),
				attribute.String("http.user_agent", c.Get("User-Agent")),
			),
		)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		c.Locals("traceID", traceID)
		if rid, ok := c.Locals("requestid").(string); ok {
			span.SetAttributes(attribute.String("request.id", rid))
		}
		c.Set("X-Trace-ID", traceID)
		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
		}

		if uid, ok := c.Locals("userID").(string); ok {
			span.SetAttributes(attribute.String("user.id", uid))
		}

		return err
	}
}
