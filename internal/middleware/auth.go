// Package middleware provides authentication, logging and rate limiting
// middleware for the application.
package middleware

import (
	"strconv"
	"strings"

	"glimpse/internal/config"
	"glimpse/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// identity is the caller's resolved identity extracted from a JWT.
type identity struct {
	UserID   uint
	Username string
}

// AuthRequired enforces authentication for protected routes. It attaches
// userID and username to Locals and the request context on success.
func AuthRequired(c *fiber.Ctx) error {
	id, err := resolveIdentity(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	attachIdentity(c, id)
	return c.Next()
}

// Identify resolves the caller's identity when a credential is present
// but proceeds anonymously otherwise. Used on public read endpoints
// where an optional identity affects response shaping.
func Identify(c *fiber.Ctx) error {
	if id, err := resolveIdentity(c); err == nil {
		attachIdentity(c, id)
	}
	return c.Next()
}

func attachIdentity(c *fiber.Ctx, id *identity) {
	c.Locals("userID", id.UserID)
	c.Locals("username", id.Username)
}

func resolveIdentity(c *fiber.Ctx) (*identity, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, models.NewAuthError("authorization header required")
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, models.NewAuthError("invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewAuthError("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewAuthError("invalid token claims")
	}

	// User ID lives in the "sub" claim (RFC 7519), username alongside it.
	subClaim, ok := claims["sub"].(string)
	if !ok {
		return nil, models.NewAuthError("invalid token structure - missing subject")
	}
	userID, err := strconv.ParseUint(subClaim, 10, 32)
	if err != nil {
		return nil, models.NewAuthError("invalid user ID in token")
	}

	username, ok := claims["username"].(string)
	if !ok || username == "" {
		return nil, models.NewAuthError("invalid token structure - missing username")
	}

	return &identity{UserID: uint(userID), Username: username}, nil
}
