package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. A comment may reply to
// another comment via ParentID; replies nest a single level.
type Comment struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PostID    uint           `gorm:"not null;index" json:"postId"`
	Commenter string         `gorm:"not null;index" json:"commenter"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	ParentID  *uint          `gorm:"index" json:"parentId,omitempty"`
	LikeCount int            `gorm:"column:like_count;not null;default:0" json:"like"`
	User      User           `gorm:"foreignKey:Commenter;references:Username" json:"user,omitempty"`
	Replies   []Comment      `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
