package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"glimpse/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-middleware-tests"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":      "42",
		"username": "alice",
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(time.Hour).Unix(),
	}
}

func authTestApp() *fiber.App {
	InitMiddleware(&config.Config{JWTSecret: testSecret})

	app := fiber.New()
	app.Get("/protected", AuthRequired, func(c *fiber.Ctx) error {
		return c.SendString(fmt.Sprintf("%v:%v", c.Locals("userID"), c.Locals("username")))
	})
	app.Get("/open", Identify, func(c *fiber.Ctx) error {
		if username, ok := c.Locals("username").(string); ok {
			return c.SendString(username)
		}
		return c.SendString("anonymous")
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	app := authTestApp()

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + signToken(t, testSecret, validClaims()), http.StatusOK},
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc123", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "some-other-secret", validClaims()), http.StatusUnauthorized},
		{
			"expired token",
			"Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"sub": "42", "username": "alice",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
			http.StatusUnauthorized,
		},
		{
			"missing username claim",
			"Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"sub": "42", "exp": time.Now().Add(time.Hour).Unix(),
			}),
			http.StatusUnauthorized,
		},
		{
			"non-numeric subject",
			"Bearer " + signToken(t, testSecret, jwt.MapClaims{
				"sub": "not-a-number", "username": "alice",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestIdentifyIsOptional(t *testing.T) {
	app := authTestApp()

	// Anonymous requests pass straight through.
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// So do requests with a broken credential.
	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// A valid credential attaches the identity.
	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims()))
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
