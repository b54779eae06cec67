package models

import (
	"time"
)

// Post defines a dated content entry based on the 'posts' table. Every post
// belongs to exactly one user and one branch; the branch row cascades its
// deletion onto posts, so a live post always has a branch.
type Post struct {
	ID            int64     `json:"id" db:"id" example:"1"`
	UserID        int64     `json:"userId" db:"user_id" example:"1"` // Author of the post
	BranchID      int64     `json:"branch" db:"branch_id" example:"1"`
	Title         string    `json:"title" db:"title" example:"Read the Raft paper"`
	Content       string    `json:"content" db:"content"`
	EventDate     time.Time `json:"eventDate" db:"event_date"` // Calendar date the post is pinned to; never in the future
	PostType      PostType  `json:"postType" db:"post_type" example:"text"`
	IsDraft       bool      `json:"isDraft" db:"is_draft" example:"false"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
	LikesCount    int64     `json:"likesCount" db:"likes_count"`       // Derived, recomputed from likes rows
	CommentsCount int64     `json:"commentsCount" db:"comments_count"` // Derived; stays 0 until a comment model exists

	User        *User   `json:"user,omitempty"`        // Relation, no db tag
	Branch      *Branch `json:"-"`                     // Relation, loaded for visibility checks
	BranchTitle string  `json:"branchTitle,omitempty"` // Loaded alongside for display
}

// CanView reports whether the viewer may see this post. Drafts are visible
// only to the author and staff regardless of the branch; otherwise visibility
// is inherited from the containing branch. Branch must be loaded for
// non-draft posts.
func (p *Post) CanView(viewer *Viewer) bool {
	if p.IsDraft {
		if viewer == nil {
			return false
		}
		return viewer.ID == p.UserID || viewer.IsStaff
	}
	return p.Branch.CanView(viewer)
}
