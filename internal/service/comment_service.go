package service

import (
	"context"

	"glimpse/internal/models"
	"glimpse/internal/observability"
	"glimpse/internal/repository"
)

const maxCommentLen = 10000

// CommentService implements comment CRUD, one-level replies and
// comment likes. Post existence, status and ownership are verified by
// the request pipeline before any of these run.
type CommentService struct {
	commentRepo repository.CommentRepository
}

type CreateCommentInput struct {
	PostID    uint
	Commenter string
	Content   string
	// ParentID is set when the comment replies to another comment.
	ParentID *uint
}

// NewCommentService creates a new comment service.
func NewCommentService(commentRepo repository.CommentRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.Content == "" {
		return nil, models.NewValidationError("missing parameters")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("comment too long")
	}

	comment := &models.Comment{
		PostID:    in.PostID,
		Commenter: in.Commenter,
		Content:   in.Content,
		ParentID:  in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return created, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, comment *models.Comment, content string) (*models.Comment, error) {
	if content == "" {
		return nil, models.NewValidationError("missing parameters")
	}
	if len(content) > maxCommentLen {
		return nil, models.NewValidationError("comment too long")
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}

	updated, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return updated, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, comment *models.Comment) error {
	if err := s.commentRepo.Delete(ctx, comment.ID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *CommentService) ListComments(ctx context.Context, postID uint, from, limit int) ([]models.Comment, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID, from, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (s *CommentService) ListReplies(ctx context.Context, commentID uint, from, limit int) ([]models.Comment, error) {
	replies, err := s.commentRepo.ListReplies(ctx, commentID, from, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return replies, nil
}

// ToggleLike flips the caller's like on the comment and reports the
// resulting state as "liked" or "unliked".
func (s *CommentService) ToggleLike(ctx context.Context, liker string, commentID uint) (string, error) {
	liked, err := s.commentRepo.ToggleLike(ctx, liker, commentID)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	state := "unliked"
	if liked {
		state = "liked"
	}
	observability.LikeToggles.WithLabelValues("comment", state).Inc()
	return state, nil
}

func (s *CommentService) ListLikers(ctx context.Context, commentID uint, from, limit int) ([]models.CommentLike, error) {
	likes, err := s.commentRepo.ListLikes(ctx, commentID, from, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return likes, nil
}
