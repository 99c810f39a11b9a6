package server

import (
	"glimpse/internal/models"
	"glimpse/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	commentsPageMin = 20
	commentsPageMax = 50
)

type commentRequest struct {
	Content string `json:"content"`
}

// CreateComment adds a top-level comment to the post.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		PostID:    postFromLocals(c).ID,
		Commenter: currentUsername(c),
		Content:   req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, comment)
}

// GetComments returns a page of the post's top-level comments.
func (s *Server) GetComments(c *fiber.Ctx) error {
	window := parseRange(c, commentsPageMin, commentsPageMax)
	comments, err := s.commentService.ListComments(c.Context(), postFromLocals(c).ID, window.From, window.Limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, comments)
}

// UpdateComment replaces the caller's comment content.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(c.Context(), commentFromLocals(c), req.Content)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, comment)
}

// DeleteComment removes the caller's comment along with its replies and
// likes.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	if err := s.commentService.DeleteComment(c.Context(), commentFromLocals(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "deleted")
}

// ReplyComment adds a one-level reply to the comment. Replies to replies
// are flattened onto the original parent.
func (s *Server) ReplyComment(c *fiber.Ctx) error {
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("invalid request body"))
	}

	parent := commentFromLocals(c)
	parentID := parent.ID
	if parent.ParentID != nil {
		parentID = *parent.ParentID
	}

	reply, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		PostID:    postFromLocals(c).ID,
		Commenter: currentUsername(c),
		Content:   req.Content,
		ParentID:  &parentID,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, reply)
}

// GetReplies returns a page of the comment's replies.
func (s *Server) GetReplies(c *fiber.Ctx) error {
	window := parseRange(c, commentsPageMin, commentsPageMax)
	replies, err := s.commentService.ListReplies(c.Context(), commentFromLocals(c).ID, window.From, window.Limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, replies)
}

// LikeComment toggles the caller's like on the comment.
func (s *Server) LikeComment(c *fiber.Ctx) error {
	state, err := s.commentService.ToggleLike(c.Context(), currentUsername(c), commentFromLocals(c).ID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, state)
}

// GetCommentLikes returns a page of the comment's likers.
func (s *Server) GetCommentLikes(c *fiber.Ctx) error {
	window := parseRange(c, likesPageMin, likesPageMax)
	likes, err := s.commentService.ListLikers(c.Context(), commentFromLocals(c).ID, window.From, window.Limit)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, likes)
}
