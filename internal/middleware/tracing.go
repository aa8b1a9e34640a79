package middleware

import (
	"strings"

	"collabnexus/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// entityParams maps route parameters to span attribute keys. A bare ":id"
// is resolved from the collection segment that precedes it.
var entityParams = map[string]string{
	"projectId": "collabnexus.project.id",
	"taskId":    "collabnexus.task.id",
	"userId":    "collabnexus.user.id",
}

var collectionEntities = map[string]string{
	"users":      "collabnexus.user.id",
	"projects":   "collabnexus.project.id",
	"milestones": "collabnexus.milestone.id",
}

// TracingMiddleware starts a server span per request, continuing any trace
// propagated by the caller, and tags it with the users, projects, tasks or
// milestones the route addresses.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		parent := otel.GetTextMapPropagator().Extract(c.UserContext(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := observability.Tracer.Start(parent, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.path", c.Path()),
				attribute.String("http.client_ip", c.IP()),
				attribute.String("http.user_agent", c.Get(fiber.HeaderUserAgent)),
			),
		)
		defer span.End()

		sc := span.SpanContext()
		c.Locals("traceID", sc.TraceID().String())
		c.Locals("spanID", sc.SpanID().String())
		c.Set("X-Trace-ID", sc.TraceID().String())
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			span.SetAttributes(attribute.String("request.id", rid))
		}
		c.SetUserContext(ctx)

		err := c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Response().StatusCode()))
		if route := c.Route(); route != nil {
			span.SetAttributes(attribute.String("http.route", route.Path))
			span.SetAttributes(routeEntities(route, c.Params)...)
		}
		if err != nil {
			span.RecordError(err)
		}
		return err
	}
}

// routeEntities returns one attribute per entity id in the matched route.
func routeEntities(route *fiber.Route, param func(string, ...string) string) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	for _, name := range route.Params {
		key, ok := entityParams[name]
		if !ok && name == "id" {
			key, ok = collectionEntities[collectionOf(route.Path)]
		}
		if !ok {
			continue
		}
		if v := param(name); v != "" {
			attrs = append(attrs, attribute.String(key, v))
		}
	}
	return attrs
}

// collectionOf returns the path segment before the first ":id", e.g.
// "projects" for /api/projects/:id/progress.
func collectionOf(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if seg == ":id" && i > 0 {
			return segments[i-1]
		}
	}
	return ""
}
