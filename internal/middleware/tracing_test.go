package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestRouteEntities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		route  fiber.Route
		values map[string]string
		want   []attribute.KeyValue
	}{
		{
			name:   "task route",
			route:  fiber.Route{Path: "/api/projects/:projectId/tasks/:taskId", Params: []string{"projectId", "taskId"}},
			values: map[string]string{"projectId": "p-1", "taskId": "t-9"},
			want: []attribute.KeyValue{
				attribute.String("collabnexus.project.id", "p-1"),
				attribute.String("collabnexus.task.id", "t-9"),
			},
		},
		{
			name:   "bare id resolves from collection",
			route:  fiber.Route{Path: "/api/users/:id/xp", Params: []string{"id"}},
			values: map[string]string{"id": "u-3"},
			want:   []attribute.KeyValue{attribute.String("collabnexus.user.id", "u-3")},
		},
		{
			name:   "member removal",
			route:  fiber.Route{Path: "/api/projects/:id/members/:userId", Params: []string{"id", "userId"}},
			values: map[string]string{"id": "p-2", "userId": "u-4"},
			want: []attribute.KeyValue{
				attribute.String("collabnexus.project.id", "p-2"),
				attribute.String("collabnexus.user.id", "u-4"),
			},
		},
		{
			name:  "no params",
			route: fiber.Route{Path: "/api/health"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := routeEntities(&tt.route, func(key string, _ ...string) string { return tt.values[key] })
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTracingMiddleware_SetsTraceHeader(t *testing.T) {
	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Get("/api/projects/:id", func(c *fiber.Ctx) error {
		return c.SendString(c.Params("id"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/projects/p-7", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, resp.Header.Get("X-Trace-ID"), 32)
}
