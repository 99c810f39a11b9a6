package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"glimpse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserProfile(t *testing.T) {
	s, db := newTestServer(t)
	app := routedApp(s)
	createTestUser(t, db, "alice")

	req := httptest.NewRequest(http.MethodGet, "/api/users/alice", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var user models.User
	require.NoError(t, json.Unmarshal(data, &user))
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.Password)

	req = httptest.NewRequest(http.MethodGet, "/api/users/nobody", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateUserInfo(t *testing.T) {
	s, db := newTestServer(t)
	app := routedApp(s)
	alice := createTestUser(t, db, "alice")
	token := tokenFor(t, s, alice)

	req := httptest.NewRequest(http.MethodPatch, "/api/users/info",
		strings.NewReader("fullName=Alice+Cooper&bio=rock+legend"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.User
	require.NoError(t, db.Where("username = ?", "alice").First(&stored).Error)
	assert.Equal(t, "Alice Cooper", stored.FullName)
	assert.Equal(t, "rock legend", stored.Bio)

	// No fields at all is a validation error.
	req = httptest.NewRequest(http.MethodPatch, "/api/users/info", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
