package models

import (
	"time"
)

// Branch defines a user-owned topical thread based on the 'branches' table.
// Titles are unique per owner; a branch may reference a parent branch owned
// by the same user.
type Branch struct {
	ID               int64       `json:"id" db:"id" example:"1"`
	UserID           int64       `json:"userId" db:"user_id" example:"1"`               // Owner of the branch
	ParentBranchID   *int64      `json:"parentBranch,omitempty" db:"parent_branch_id"`  // Optional parent branch (same owner)
	Title            string      `json:"title" db:"title" example:"Distributed systems"`
	Color            BranchColor `json:"color" db:"color" example:"blue"`
	Description      *string     `json:"description,omitempty" db:"description"`
	IsPrivate        bool        `json:"isPrivate" db:"is_private" example:"false"`
	CreatedAt        time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time   `json:"updatedAt" db:"updated_at"`
	PostsCount       int64       `json:"postsCount" db:"posts_count"`             // Derived, recomputed from posts rows
	SubscribersCount int64       `json:"subscribersCount" db:"subscribers_count"` // Derived, recomputed from subscriptions rows

	User              *User   `json:"user,omitempty"`              // Relation, no db tag
	ParentBranchTitle *string `json:"parentBranchTitle,omitempty"` // Loaded alongside for display
}

// CanView reports whether the viewer may see this branch. Public branches are
// visible to everyone, including anonymous viewers; private branches only to
// their owner and staff.
func (b *Branch) CanView(viewer *Viewer) bool {
	if !b.IsPrivate {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.ID == b.UserID || viewer.IsStaff
}
