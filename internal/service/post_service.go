package service

import (
	"context"

	"glimpse/internal/models"
	"glimpse/internal/observability"
	"glimpse/internal/repository"
)

// UploadedFile is one multipart file already read into memory.
type UploadedFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// PostService implements post CRUD, the like toggle and liker listings.
type PostService struct {
	postRepo repository.PostRepository
	images   *ImageService
}

type CreatePostInput struct {
	Username string
	Content  string
	Files    []UploadedFile
}

type UpdatePostInput struct {
	Post         *models.Post
	Content      string
	RemovePhotos []uint
	Files        []UploadedFile
}

// NewPostService creates a new post service.
func NewPostService(postRepo repository.PostRepository, images *ImageService) *PostService {
	return &PostService{postRepo: postRepo, images: images}
}

// CreatePost creates a post owned by in.Username. Every upload is
// transcoded and written to disk before its PostPhoto row is committed;
// on a store failure the already-written files are cleaned up again.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if len(in.Files) == 0 && in.Content == "" {
		return nil, models.NewValidationError("missing parameters")
	}

	photos, err := s.transcodeAll(in.Files)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		CreatedBy: in.Username,
		Content:   in.Content,
		Status:    models.PostStatusPublic,
		Photos:    photos,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		for _, p := range photos {
			s.images.Remove(p.Photo)
		}
		return nil, models.NewInternalError(err)
	}

	return s.postRepo.GetByID(ctx, post.ID, in.Username)
}

// UpdatePost applies content, photo removals and new uploads to the
// already-verified post. RemovePhotos ids that do not belong to the
// post are silently ignored.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	if in.Content == "" && len(in.RemovePhotos) == 0 && len(in.Files) == 0 {
		return nil, models.NewValidationError("missing parameters")
	}

	// Content is persisted before photo removals so a failure here
	// leaves the photo set untouched.
	if in.Content != "" {
		in.Post.Content = in.Content
		if err := s.postRepo.Update(ctx, in.Post); err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	if len(in.RemovePhotos) > 0 {
		removed, err := s.postRepo.RemovePhotos(ctx, in.Post.ID, in.RemovePhotos)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		for _, p := range removed {
			s.images.Remove(p.Photo)
		}
	}

	if len(in.Files) > 0 {
		photos, err := s.transcodeAll(in.Files)
		if err != nil {
			return nil, err
		}
		if err := s.postRepo.AddPhotos(ctx, in.Post.ID, photos); err != nil {
			for _, p := range photos {
				s.images.Remove(p.Photo)
			}
			return nil, models.NewInternalError(err)
		}
	}

	return s.postRepo.GetByID(ctx, in.Post.ID, in.Post.CreatedBy)
}

// DeletePost removes the post, its photos, comments and likes, then
// unlinks the photo files best-effort.
func (s *PostService) DeletePost(ctx context.Context, post *models.Post) error {
	photos, err := s.postRepo.Delete(ctx, post.ID)
	if err != nil {
		return models.NewInternalError(err)
	}
	for _, p := range photos {
		s.images.Remove(p.Photo)
	}
	return nil
}

// ToggleLike flips the caller's like on the post and reports the
// resulting state as "liked" or "unliked".
func (s *PostService) ToggleLike(ctx context.Context, liker string, postID uint) (string, error) {
	liked, err := s.postRepo.ToggleLike(ctx, liker, postID)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	state := "unliked"
	if liked {
		state = "liked"
	}
	observability.LikeToggles.WithLabelValues("post", state).Inc()
	return state, nil
}

// ListLikers returns a page of the post's likers ordered by like
// creation time ascending.
func (s *PostService) ListLikers(ctx context.Context, postID uint, from, limit int) ([]models.Like, error) {
	likes, err := s.postRepo.ListLikes(ctx, postID, from, limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return likes, nil
}

// GetPost fetches a post with photos eagerly loaded.
func (s *PostService) GetPost(ctx context.Context, id uint, viewer string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, viewer)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if post == nil {
		return nil, models.NewNotFoundError("post not found")
	}
	return post, nil
}

func (s *PostService) transcodeAll(files []UploadedFile) ([]models.PostPhoto, error) {
	photos := make([]models.PostPhoto, 0, len(files))
	for _, f := range files {
		rel, err := s.images.Transcode(f.Content, PostPhotoDir)
		if err != nil {
			for _, p := range photos {
				s.images.Remove(p.Photo)
			}
			return nil, err
		}
		photos = append(photos, models.PostPhoto{Photo: rel})
	}
	return photos, nil
}
