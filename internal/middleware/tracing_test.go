package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := observability.Tracer
	observability.Tracer = tp.Tracer("middleware-test")
	t.Cleanup(func() {
		observability.Tracer = previous
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func TestTracingMiddleware(t *testing.T) {
	recorder := recordSpans(t)

	app := fiber.New()
	app.Use(TracingMiddleware())
	app.Put("/posts/:id", func(c *fiber.Ctx) error {
		c.Locals("userID", uint(5))
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/posts", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusInternalServerError)
	})
	app.Get("/profile", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "User not found")
	})
	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	do := func(method, target string) *http.Response {
		resp, err := app.Test(httptest.NewRequest(method, target, nil))
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	resp := do(http.MethodPut, "/posts/42")
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))
	do(http.MethodGet, "/posts")
	do(http.MethodGet, "/profile")
	do(http.MethodGet, "/health/live")

	ended := recorder.Ended()
	require.Len(t, ended, 3, "health probes are not traced")

	byName := map[string]sdktrace.ReadOnlySpan{}
	for _, span := range ended {
		byName[span.Name()] = span
	}

	update, ok := byName["PUT /posts/:id"]
	require.True(t, ok, "span is named after the route, not the concrete path")
	assert.Equal(t, resp.Header.Get("X-Trace-ID"), update.SpanContext().TraceID().String())
	assert.NotEqual(t, codes.Error, update.Status().Code)

	var userID int64
	for _, kv := range update.Attributes() {
		if kv.Key == "user.id" {
			userID = kv.Value.AsInt64()
		}
	}
	assert.Equal(t, int64(5), userID)

	assert.Equal(t, codes.Error, byName["GET /posts"].Status().Code)
	assert.NotEqual(t, codes.Error, byName["GET /profile"].Status().Code)
}
