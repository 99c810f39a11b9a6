package models

import (
	"time"

	"gorm.io/gorm"
)

// Post status flags. A locked post can only be read, commented on or
// liked by its owner.
const (
	PostStatusPublic = "public"
	PostStatusLocked = "locked"
)

// Post represents a post in the Glimpse application. A post must carry
// at least one photo or non-empty content; the creating service
// enforces this, not the store.
type Post struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CreatedBy string `gorm:"not null;index" json:"createdBy"`
	Content   string `gorm:"type:text" json:"content"`
	Status    string `gorm:"not null;default:public" json:"status"`
	// LikeCount is the denormalized counter kept in lockstep with the
	// likes table inside the toggle transaction.
	LikeCount int         `gorm:"column:like_count;not null;default:0" json:"like"`
	Photos    []PostPhoto `gorm:"foreignKey:PostID" json:"photos"`
	User      User        `gorm:"foreignKey:CreatedBy;references:Username" json:"user,omitempty"`
	// LikedByMe indicates whether the requesting identity liked this post.
	// Computed at query time for identified readers, never persisted.
	LikedByMe bool           `gorm:"-" json:"likedByMe"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PostPhoto is one photo belonging to a post. Photo holds the storage
// path relative to the static root (e.g. "posts/169...-42871.jpg").
type PostPhoto struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	PostID uint   `gorm:"not null;index" json:"postId"`
	Photo  string `gorm:"not null" json:"photo"`
}
