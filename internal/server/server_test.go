package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"glimpse/internal/config"
	"glimpse/internal/database"
	"glimpse/internal/middleware"
	"glimpse/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:       "0",
		JWTSecret:  "test-secret-key-for-handler-tests",
		StaticRoot: t.TempDir(),
		Env:        "test",
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	cfg := testConfig(t)
	middleware.InitMiddleware(cfg)
	db := setupTestDB(t)
	return NewServerWithDeps(cfg, db, nil), db
}

// routedApp registers the full route table with real JWT middleware.
func routedApp(s *Server) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: models.ErrorHandler})
	s.SetupRoutes(app)
	return app
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Username: username, FullName: "Test User", Password: string(hashed)}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func tokenFor(t *testing.T, s *Server, user *models.User) string {
	t.Helper()
	token, err := s.generateToken(user)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// TestGlobalRateLimitEnvelope drives the app-wide per-IP limiter past
// its budget and checks the 429 uses the shared response envelope.
func TestGlobalRateLimitEnvelope(t *testing.T) {
	s, _ := newTestServer(t)
	app := fiber.New(fiber.Config{ErrorHandler: models.ErrorHandler})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	var last *http.Response
	for i := 0; i < 101; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		if last != nil {
			_ = last.Body.Close()
		}
		last = resp
	}
	defer func() { _ = last.Body.Close() }()

	if last.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after exhausting the budget, got %d", last.StatusCode)
	}
	env := decodeEnvelope(t, last)
	if env.Status != "fail" {
		t.Fatalf("expected fail envelope, got %q", env.Status)
	}
	if env.Message != "too many requests, please try again later" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func decodeEnvelope(t *testing.T, resp *http.Response) models.Envelope {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var env models.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope %q: %v", body, err)
	}
	return env
}
