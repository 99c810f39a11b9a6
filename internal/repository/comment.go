package repository

import (
	"context"
	"errors"

	"glimpse/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines the interface for comment data operations.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	// ListByPost returns a page of a post's top-level comments ordered by
	// id ascending (ids correlate with creation order).
	ListByPost(ctx context.Context, postID uint, from, limit int) ([]models.Comment, error)
	ListReplies(ctx context.Context, commentID uint, from, limit int) ([]models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	// Delete removes the comment together with its replies and likes.
	Delete(ctx context.Context, id uint) error
	// ToggleLike mirrors PostRepository.ToggleLike for comments.
	ToggleLike(ctx context.Context, liker string, commentID uint) (bool, error)
	ListLikes(ctx context.Context, commentID uint, from, limit int) ([]models.CommentLike, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint, from, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ? AND parent_id IS NULL", postID).
		Order("id ASC").
		Offset(from).
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListReplies(ctx context.Context, commentID uint, from, limit int) ([]models.Comment, error) {
	var replies []models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("parent_id = ?", commentID).
		Order("id ASC").
		Offset(from).
		Limit(limit).
		Find(&replies).Error
	return replies, err
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit("User", "Replies").Save(comment).Error
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var replyIDs []uint
		if err := tx.Model(&models.Comment{}).Where("parent_id = ?", id).
			Pluck("id", &replyIDs).Error; err != nil {
			return err
		}

		targets := append(replyIDs, id)
		if err := tx.Where("comment_id IN ?", targets).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if len(replyIDs) > 0 {
			if err := tx.Unscoped().Where("id IN ?", replyIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&models.Comment{}, id).Error
	})
}

func (r *commentRepository) ToggleLike(ctx context.Context, liker string, commentID uint) (bool, error) {
	var liked bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("liker = ? AND comment_id = ?", liker, commentID).Delete(&models.CommentLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return tx.Model(&models.Comment{}).Where("id = ?", commentID).
				UpdateColumn("like_count", gorm.Expr("like_count - ?", res.RowsAffected)).Error
		}

		ins := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.CommentLike{Liker: liker, CommentID: commentID})
		if ins.Error != nil {
			return ins.Error
		}
		liked = true
		if ins.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", ins.RowsAffected)).Error
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}

func (r *commentRepository) ListLikes(ctx context.Context, commentID uint, from, limit int) ([]models.CommentLike, error) {
	var likes []models.CommentLike
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("comment_id = ?", commentID).
		Order("created_at ASC").
		Offset(from).
		Limit(limit).
		Find(&likes).Error
	return likes, err
}
