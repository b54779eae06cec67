package models

import (
	"time"
)

// Like defines a user's "like" of a post based on the 'likes' table.
// At most one like exists per (user, post) pair, enforced by the
// unique_like constraint.
type Like struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	UserID    int64     `json:"userId" db:"user_id" example:"1"`
	PostID    int64     `json:"postId" db:"post_id" example:"1"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	User *User `json:"user,omitempty"` // Relation, no db tag
	Post *Post `json:"post,omitempty"` // Relation, no db tag
}
