package middleware

import (
	"net/http/httptest"
	"testing"

	"backend-helpqueue/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	api := app.Group("/api", JWTAuth())
	api.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": c.Locals("user_id"),
			"role":    c.Locals("role"),
		})
	})
	api.Delete("/staff-only", RoleAuth("mentor"), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})
	return app
}

func TestJWTAuth_TokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newTestApp()

	token, err := config.GenerateToken("alice", "Alice Liddell", "alice@example.com", "member")
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/whoami", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestJWTAuth_MalformedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newTestApp()

	req := httptest.NewRequest("GET", "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func newWSTestApp() *fiber.App {
	app := fiber.New()
	app.Use("/ws", WSAuth())
	app.Get("/ws/sessions/:id", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("user_id")})
	})
	return app
}

func TestWSAuth_RejectsPlainRequests(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newWSTestApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/ws/sessions/sec1", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestWSAuth_RejectsMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newWSTestApp()

	req := httptest.NewRequest("GET", "/ws/sessions/sec1", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWSAuth_RejectsInvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newWSTestApp()

	req := httptest.NewRequest("GET", "/ws/sessions/sec1?token=not-a-token", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWSAuth_AcceptsQueryToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newWSTestApp()

	token, err := config.GenerateToken("alice", "Alice Liddell", "alice@example.com", "member")
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/ws/sessions/sec1?token="+token, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRoleAuth_RejectsMembers(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newTestApp()

	token, err := config.GenerateToken("alice", "Alice Liddell", "alice@example.com", "member")
	assert.NoError(t, err)

	req := httptest.NewRequest("DELETE", "/api/staff-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRoleAuth_AllowsMentors(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newTestApp()

	token, err := config.GenerateToken("taria", "Taria", "taria@example.com", "mentor")
	assert.NoError(t, err)

	req := httptest.NewRequest("DELETE", "/api/staff-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
