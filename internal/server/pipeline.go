package server

import (
	"strconv"
	"strings"

	"glimpse/internal/models"

	"github.com/gofiber/fiber/v2"
)

// The request pipeline splits resource access into small stages that
// routes compose: finders load the resource (or nil) into Locals and
// never fail the request themselves, checkers turn absence into 404,
// and the status/ownership stages enforce 403s. Later stages and the
// handlers can then assume the resource is present and permitted.

// FindPost resolves the :postId parameter and stores the result (which
// may be nil) under Locals("post"). Lookup failures other than absence
// surface as 500s.
func (s *Server) FindPost(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("postId"), 10, 32)
	if err != nil {
		// Malformed ids fall through as "not found" at the check stage.
		return c.Next()
	}

	post, err := s.postRepo.GetByID(c.Context(), uint(id), currentUsername(c))
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	if post != nil {
		c.Locals("post", post)
	}
	return c.Next()
}

// CheckPostExists rejects requests whose finder stage found no post.
func (s *Server) CheckPostExists(c *fiber.Ctx) error {
	if postFromLocals(c) == nil {
		return models.RespondWithError(c, models.NewNotFoundError("post not found"))
	}
	return c.Next()
}

// CheckPostStatus enforces the post's interaction policy: a locked post
// only admits its owner.
func (s *Server) CheckPostStatus(c *fiber.Ctx) error {
	post := postFromLocals(c)
	if post.Status == models.PostStatusLocked && post.CreatedBy != currentUsername(c) {
		return models.RespondWithError(c, models.NewPermissionError("post is locked"))
	}
	return c.Next()
}

// RequirePostOwner rejects callers that do not own the post.
func (s *Server) RequirePostOwner(c *fiber.Ctx) error {
	post := postFromLocals(c)
	if post.CreatedBy != currentUsername(c) {
		return models.RespondWithError(c, models.NewPermissionError("not the owner of this post"))
	}
	return c.Next()
}

// FindComment resolves the :commentId parameter, scoped to the post the
// earlier stages loaded. A comment hanging off a different post is
// treated as absent.
func (s *Server) FindComment(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("commentId"), 10, 32)
	if err != nil {
		return c.Next()
	}

	comment, err := s.commentRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	if comment != nil && comment.PostID == postFromLocals(c).ID {
		c.Locals("comment", comment)
	}
	return c.Next()
}

// CheckCommentExists rejects requests whose finder stage found no comment.
func (s *Server) CheckCommentExists(c *fiber.Ctx) error {
	if commentFromLocals(c) == nil {
		return models.RespondWithError(c, models.NewNotFoundError("comment not found"))
	}
	return c.Next()
}

// RequireCommentOwner rejects callers that did not write the comment.
func (s *Server) RequireCommentOwner(c *fiber.Ctx) error {
	comment := commentFromLocals(c)
	if comment.Commenter != currentUsername(c) {
		return models.RespondWithError(c, models.NewPermissionError("not the owner of this comment"))
	}
	return c.Next()
}

// ValidateImageUploads rejects multipart uploads whose declared type is
// not an image before any bytes are processed. The transcoder sniffs
// the actual content again later.
func (s *Server) ValidateImageUploads(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return c.Next()
	}
	for _, headers := range form.File {
		for _, fh := range headers {
			if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
				return models.RespondWithError(c, models.NewValidationError("invalid filetype"))
			}
		}
	}
	return c.Next()
}
