package service

import (
	"context"

	"glimpse/internal/models"
	"glimpse/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// UserService implements profile reads and updates.
type UserService struct {
	userRepo repository.UserRepository
	images   *ImageService
}

type UpdateInfoInput struct {
	Username string
	FullName string
	Bio      string
	// Avatar, when set, replaces the user's avatar image.
	Avatar *UploadedFile
}

type UpdatePasswordInput struct {
	Username        string
	CurrentPassword string
	NewPassword     string
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, images *ImageService) *UserService {
	return &UserService{userRepo: userRepo, images: images}
}

// GetProfile fetches a public profile by username.
func (s *UserService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if user == nil {
		return nil, models.NewNotFoundError("user not found")
	}
	return user, nil
}

// UpdateInfo applies profile fields and an optional avatar upload. The
// avatar is transcoded and written before the row is updated; the old
// avatar file is unlinked best-effort afterwards.
func (s *UserService) UpdateInfo(ctx context.Context, in UpdateInfoInput) (*models.User, error) {
	if in.FullName == "" && in.Bio == "" && in.Avatar == nil {
		return nil, models.NewValidationError("missing parameters")
	}

	user, err := s.userRepo.GetForAuth(ctx, in.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if user == nil {
		return nil, models.NewNotFoundError("user not found")
	}

	oldAvatar := ""
	if in.Avatar != nil {
		rel, err := s.images.Transcode(in.Avatar.Content, AvatarDir)
		if err != nil {
			return nil, err
		}
		oldAvatar = user.Avatar
		user.Avatar = rel
	}
	if in.FullName != "" {
		user.FullName = in.FullName
	}
	if in.Bio != "" {
		user.Bio = in.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if in.Avatar != nil {
			s.images.Remove(user.Avatar)
		}
		return nil, models.NewInternalError(err)
	}
	if oldAvatar != "" {
		s.images.Remove(oldAvatar)
	}

	return user, nil
}

// UpdatePassword verifies the current password and persists a new hash.
func (s *UserService) UpdatePassword(ctx context.Context, in UpdatePasswordInput) error {
	if in.CurrentPassword == "" || in.NewPassword == "" {
		return models.NewValidationError("missing parameters")
	}
	if len(in.NewPassword) < 8 {
		return models.NewValidationError("password must be at least 8 characters")
	}

	user, err := s.userRepo.GetForAuth(ctx, in.Username)
	if err != nil {
		return models.NewInternalError(err)
	}
	if user == nil {
		return models.NewNotFoundError("user not found")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
		return models.NewAuthError("invalid credentials")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}

	user.Password = string(hashed)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
