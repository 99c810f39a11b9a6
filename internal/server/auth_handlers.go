package server

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"glimpse/internal/middleware"
	"glimpse/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type signupRequest struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Signup registers a new account and returns a signed token.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("invalid request body"))
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return models.RespondWithError(c, models.NewValidationError("missing parameters"))
	}
	if len(req.Username) < 3 || len(req.Username) > 32 {
		return models.RespondWithError(c, models.NewValidationError("username must be between 3 and 32 characters"))
	}
	if len(req.Password) < 8 {
		return models.RespondWithError(c, models.NewValidationError("password must be at least 8 characters"))
	}

	existing, err := s.userRepo.GetForAuth(c.Context(), req.Username)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	if existing != nil {
		return models.RespondWithError(c, models.NewValidationError("username already taken"))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	user := &models.User{
		Username: req.Username,
		FullName: req.FullName,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(c.Context(), user); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.Context(), "user signed up",
		slog.String("username", user.Username))
	return models.Respond(c, fiber.StatusCreated, authResponse{Token: token, User: user})
}

// Login verifies credentials and returns a signed token.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("invalid request body"))
	}
	if req.Username == "" || req.Password == "" {
		return models.RespondWithError(c, models.NewValidationError("missing parameters"))
	}

	user, err := s.userRepo.GetForAuth(c.Context(), req.Username)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return models.RespondWithError(c, models.NewAuthError("invalid credentials"))
	}

	token, err := s.generateToken(user)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	middleware.Logger.InfoContext(c.Context(), "user logged in",
		slog.String("username", user.Username))
	return models.Respond(c, fiber.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      fmt.Sprint(user.ID),
		"username": user.Username,
		"jti":      uuid.NewString(),
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
