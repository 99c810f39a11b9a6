package server

import (
	"glimpse/internal/models"
	"glimpse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUser returns a public profile by username.
func (s *Server) GetUser(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.Context(), c.Params("username"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, user)
}

// UpdateUser applies profile changes for the caller: "fullName" and
// "bio" form fields plus an optional "avatar" upload.
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	var avatar *service.UploadedFile
	avatars, err := readUploadedFiles(c, "avatar")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if len(avatars) > 0 {
		avatar = &avatars[0]
	}

	user, err := s.userService.UpdateInfo(c.Context(), service.UpdateInfoInput{
		Username: currentUsername(c),
		FullName: c.FormValue("fullName"),
		Bio:      c.FormValue("bio"),
		Avatar:   avatar,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, user)
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdatePassword verifies the caller's current password and stores a
// new hash.
func (s *Server) UpdatePassword(c *fiber.Ctx) error {
	var req updatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("invalid request body"))
	}

	err := s.userService.UpdatePassword(c.Context(), service.UpdatePasswordInput{
		Username:        currentUsername(c),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "password updated")
}
