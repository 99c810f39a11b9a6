package server

import (
	"glimpse/internal/models"
	"glimpse/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	likesPageMin = 20
	likesPageMax = 200
)

// CreatePost creates a post from the multipart "content" field and
// optional "files" uploads.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	files, err := readUploadedFiles(c, "files")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		Username: currentUsername(c),
		Content:  c.FormValue("content"),
		Files:    files,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, post)
}

// GetPost returns the post loaded by the pipeline, photos included.
func (s *Server) GetPost(c *fiber.Ctx) error {
	return models.Respond(c, fiber.StatusOK, postFromLocals(c))
}

// UpdatePost applies new content, photo removals ("removePhotos" as a
// comma-separated id list) and new uploads to the caller's post.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	files, err := readUploadedFiles(c, "files")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		Post:         postFromLocals(c),
		Content:      c.FormValue("content"),
		RemovePhotos: parsePhotoIDs(c.FormValue("removePhotos")),
		Files:        files,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, post)
}

// DeletePost removes the caller's post and everything hanging off it.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.Context(), postFromLocals(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "deleted")
}

// LikePost toggles the caller's like on the post and reports the
// resulting state.
func (s *Server) LikePost(c *fiber.Ctx) error {
	state, err := s.postService.ToggleLike(c.Context(), currentUsername(c), postFromLocals(c).ID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, state)
}

// GetPostLikes returns a page of the post's likers.
func (s *Server) GetPostLikes(c *fiber.Ctx) error {
	window := parseRange(c, likesPageMin, likesPageMax)
	likes, err := s.postService.ListLikers(c.Context(), postFromLocals(c).ID, window.From, window.Limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, likes)
}
