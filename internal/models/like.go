package models

import "time"

// Like marks that a user liked a post. The (liker, post) pair is
// unique; toggling deletes or recreates the row.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Liker     string    `gorm:"not null;uniqueIndex:idx_liker_post" json:"liker"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_liker_post" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`

	User User `gorm:"foreignKey:Liker;references:Username" json:"user,omitempty"`
}

// CommentLike mirrors Like for comments.
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Liker     string    `gorm:"not null;uniqueIndex:idx_liker_comment" json:"liker"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_liker_comment" json:"commentId"`
	CreatedAt time.Time `json:"createdAt"`

	User User `gorm:"foreignKey:Liker;references:Username" json:"user,omitempty"`
}
