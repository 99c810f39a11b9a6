package repository

import (
	"context"
	"errors"

	"glimpse/internal/cache"
	"glimpse/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewer string) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	// Delete removes the post along with its photos, comments and likes
	// and returns the deleted photo rows so their files can be unlinked.
	Delete(ctx context.Context, id uint) ([]models.PostPhoto, error)
	AddPhotos(ctx context.Context, postID uint, photos []models.PostPhoto) error
	// RemovePhotos deletes the post's photos whose ids appear in ids.
	// Ids not belonging to the post are silently ignored. Returns the
	// rows actually removed.
	RemovePhotos(ctx context.Context, postID uint, ids []uint) ([]models.PostPhoto, error)
	// ToggleLike flips the (liker, post) like row and adjusts the
	// denormalized counter in the same transaction, so the counter always
	// equals the number of existing like rows. Returns the new state.
	ToggleLike(ctx context.Context, liker string, postID uint) (bool, error)
	ListLikes(ctx context.Context, postID uint, from, limit int) ([]models.Like, error)
	IsLiked(ctx context.Context, liker string, postID uint) (bool, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	// Photos attached to the struct are inserted in the same transaction.
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewer string) (*models.Post, error) {
	var post models.Post

	var err error
	if viewer == "" {
		// Anonymous reads share a cached shape; identified reads carry
		// the per-viewer likedByMe flag and skip the cache.
		err = cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
			return r.db.WithContext(ctx).Preload("Photos").First(&post, id).Error
		})
	} else {
		err = r.db.WithContext(ctx).Preload("Photos").First(&post, id).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if viewer != "" {
		liked, likedErr := r.IsLiked(ctx, viewer, post.ID)
		if likedErr != nil {
			return nil, likedErr
		}
		post.LikedByMe = liked
	}

	if post.Photos == nil {
		post.Photos = []models.PostPhoto{}
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("Photos", "User").Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) ([]models.PostPhoto, error) {
	var photos []models.PostPhoto

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Find(&photos).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostPhoto{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}

		// Comment likes hang off the comments, not the post, so their
		// ids have to be collected before the comments go.
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", id).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, id)
	return photos, nil
}

func (r *postRepository) AddPhotos(ctx context.Context, postID uint, photos []models.PostPhoto) error {
	if len(photos) == 0 {
		return nil
	}
	for i := range photos {
		photos[i].PostID = postID
	}
	if err := r.db.WithContext(ctx).Create(&photos).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, postID)
	return nil
}

func (r *postRepository) RemovePhotos(ctx context.Context, postID uint, ids []uint) ([]models.PostPhoto, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var removed []models.PostPhoto
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ? AND id IN ?", postID, ids).Find(&removed).Error; err != nil {
			return err
		}
		if len(removed) == 0 {
			return nil
		}
		removedIDs := make([]uint, 0, len(removed))
		for _, p := range removed {
			removedIDs = append(removedIDs, p.ID)
		}
		return tx.Where("id IN ?", removedIDs).Delete(&models.PostPhoto{}).Error
	})
	if err != nil {
		return nil, err
	}

	cache.InvalidatePost(ctx, postID)
	return removed, nil
}

func (r *postRepository) ToggleLike(ctx context.Context, liker string, postID uint) (bool, error) {
	var liked bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("liker = ? AND post_id = ?", liker, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("like_count", gorm.Expr("like_count - ?", res.RowsAffected)).Error
		}

		// ON CONFLICT DO NOTHING guards against a concurrent toggle
		// inserting the same (liker, post) row first.
		ins := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Like{Liker: liker, PostID: postID})
		if ins.Error != nil {
			return ins.Error
		}
		liked = true
		if ins.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", ins.RowsAffected)).Error
	})
	if err != nil {
		return false, err
	}

	cache.InvalidatePost(ctx, postID)
	return liked, nil
}

func (r *postRepository) ListLikes(ctx context.Context, postID uint, from, limit int) ([]models.Like, error) {
	var likes []models.Like
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Offset(from).
		Limit(limit).
		Find(&likes).Error
	return likes, err
}

func (r *postRepository) IsLiked(ctx context.Context, liker string, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("liker = ? AND post_id = ?", liker, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
