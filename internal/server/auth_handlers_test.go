package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestSignupAndLogin(t *testing.T) {
	s, _ := newTestServer(t)
	app := routedApp(s)

	resp := postJSON(t, app, "/api/auth/signup",
		`{"username":"carol","fullName":"Carol Jones","password":"supersecret"}`)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var auth struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
			Password string `json:"password"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(data, &auth))
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "carol", auth.User.Username)
	// The password hash must never serialize.
	assert.Empty(t, auth.User.Password)

	// The issued token works against a protected route.
	req := httptest.NewRequest(http.MethodPost, "/api/posts/", strings.NewReader("content=via+token"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	postResp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = postResp.Body.Close() }()
	assert.Equal(t, http.StatusCreated, postResp.StatusCode)

	resp = postJSON(t, app, "/api/auth/login", `{"username":"carol","password":"supersecret"}`)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/api/auth/login", `{"username":"carol","password":"wrong-password"}`)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	env = decodeEnvelope(t, resp)
	assert.Equal(t, "invalid credentials", env.Message)
}

func TestSignupValidation(t *testing.T) {
	s, db := newTestServer(t)
	app := routedApp(s)
	createTestUser(t, db, "taken")

	tests := []struct {
		name string
		body string
	}{
		{"missing password", `{"username":"dave"}`},
		{"short password", `{"username":"dave","password":"short"}`},
		{"short username", `{"username":"ab","password":"supersecret"}`},
		{"duplicate username", `{"username":"taken","password":"supersecret"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/api/auth/signup", tt.body)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestProtectedRoutesRejectBadTokens(t *testing.T) {
	s, _ := newTestServer(t)
	app := routedApp(s)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"malformed header", "token-without-scheme"},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/posts/", strings.NewReader("content=x"))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestUpdatePasswordFlow(t *testing.T) {
	s, db := newTestServer(t)
	app := routedApp(s)
	alice := createTestUser(t, db, "alice")
	token := tokenFor(t, s, alice)

	patch := func(body string) *http.Response {
		t.Helper()
		req := httptest.NewRequest(http.MethodPatch, "/api/users/password", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := patch(`{"currentPassword":"wrong","newPassword":"replacement1"}`)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = patch(`{"currentPassword":"password123","newPassword":"short"}`)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = patch(`{"currentPassword":"password123","newPassword":"replacement1"}`)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The new password logs in, the old one does not.
	loginResp := postJSON(t, app, "/api/auth/login", `{"username":"alice","password":"replacement1"}`)
	defer func() { _ = loginResp.Body.Close() }()
	assert.Equal(t, http.StatusOK, loginResp.StatusCode)

	loginResp = postJSON(t, app, "/api/auth/login", `{"username":"alice","password":"password123"}`)
	defer func() { _ = loginResp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, loginResp.StatusCode)
}
