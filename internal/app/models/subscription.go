package models

import (
	"time"
)

// Subscription defines a follow relationship based on the 'subscriptions'
// table. Exactly one of TargetUserID and TargetBranchID is set: a user
// subscription follows every branch of the target user, a branch subscription
// follows a single branch. Uniqueness per (subscriber, target) is enforced by
// the unique_user_subscription and unique_branch_subscription constraints.
type Subscription struct {
	ID             int64     `json:"id" db:"id" example:"1"`
	SubscriberID   int64     `json:"subscriberId" db:"subscriber_id" example:"1"`
	TargetUserID   *int64    `json:"targetUser,omitempty" db:"target_user_id"`
	TargetBranchID *int64    `json:"targetBranch,omitempty" db:"target_branch_id"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`

	Subscriber   *User   `json:"subscriber,omitempty"`       // Relation, no db tag
	TargetUser   *User   `json:"targetUserInfo,omitempty"`   // Relation, no db tag
	TargetBranch *Branch `json:"targetBranchInfo,omitempty"` // Relation, no db tag
}
