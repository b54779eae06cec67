package dto

import (
	"time"

	"github.com/kmapteam/knowledgemap/internal/app/models"
)

// CreateSubscriptionRequest represents the data for creating a subscription.
// Exactly one of TargetUser and TargetBranch must be set; the subscriber is
// always the authenticated user.
type CreateSubscriptionRequest struct {
	TargetUser   *int64 `json:"targetUser" binding:"omitempty,min=1"`
	TargetBranch *int64 `json:"targetBranch" binding:"omitempty,min=1"`
}

// SubscriptionResponse represents a subscription as returned by the API
type SubscriptionResponse struct {
	ID                int64     `json:"id"`
	SubscriberID      int64     `json:"subscriberId"`
	TargetUser        *int64    `json:"targetUser,omitempty"`
	TargetUsername    string    `json:"targetUsername,omitempty"`
	TargetBranch      *int64    `json:"targetBranch,omitempty"`
	TargetBranchTitle string    `json:"targetBranchTitle,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// FromSubscription converts a model.Subscription to a SubscriptionResponse
func FromSubscription(sub *models.Subscription) SubscriptionResponse {
	resp := SubscriptionResponse{
		ID:           sub.ID,
		SubscriberID: sub.SubscriberID,
		TargetUser:   sub.TargetUserID,
		TargetBranch: sub.TargetBranchID,
		CreatedAt:    sub.CreatedAt,
	}
	if sub.TargetUser != nil {
		resp.TargetUsername = sub.TargetUser.Username
	}
	if sub.TargetBranch != nil {
		resp.TargetBranchTitle = sub.TargetBranch.Title
	}
	return resp
}

// FromSubscriptions converts a slice of subscriptions
func FromSubscriptions(subs []*models.Subscription) []SubscriptionResponse {
	out := make([]SubscriptionResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, FromSubscription(s))
	}
	return out
}

// SubscriptionListResponse represents the response for a paginated list of subscriptions
type SubscriptionListResponse struct {
	Subscriptions []SubscriptionResponse `json:"subscriptions"`
	Pagination    PaginationInfo         `json:"pagination"`
}
