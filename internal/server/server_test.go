package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"collabnexus/internal/config"
	"collabnexus/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:        "8375",
		Env:         "test",
		StoreDriver: config.DriverMemory,
	}
}

// newTestApp wires a full app, middleware included, over a fresh memory store.
func newTestApp(t *testing.T, cfg *config.Config) (*fiber.App, *Server) {
	t.Helper()
	s := NewServerWithDeps(cfg, repository.NewMemoryStore(), nil)
	app := fiber.New()
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app, s
}

// doJSON sends body as JSON and decodes the response into out when out is non-nil.
func doJSON(t *testing.T, app *fiber.App, method, path string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func signup(t *testing.T, app *fiber.App, username string, skills ...string) map[string]any {
	t.Helper()
	var user map[string]any
	status := doJSON(t, app, http.MethodPost, "/api/signup", fiber.Map{
		"username":       username,
		"email":          username + "@example.com",
		"externalAuthId": "ext-" + username,
		"skills":         skills,
	}, &user)
	require.Equal(t, http.StatusCreated, status)
	return user
}
