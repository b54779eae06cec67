package dto

import (
	"time"

	"github.com/kmapteam/knowledgemap/internal/app/models"
)

// CreateBranchRequest represents the data for creating a branch
type CreateBranchRequest struct {
	Title        string  `json:"title" binding:"required,max=200"`
	Color        string  `json:"color" binding:"omitempty,oneof=blue green red yellow purple pink indigo gray"`
	Description  *string `json:"description" binding:"omitempty,max=1000"`
	IsPrivate    bool    `json:"isPrivate"`
	ParentBranch *int64  `json:"parentBranch"`
}

// UpdateBranchRequest represents the data for updating a branch. Nil fields
// are left untouched.
type UpdateBranchRequest struct {
	Title        *string `json:"title" binding:"omitempty,max=200"`
	Color        *string `json:"color" binding:"omitempty,oneof=blue green red yellow purple pink indigo gray"`
	Description  *string `json:"description" binding:"omitempty,max=1000"`
	IsPrivate    *bool   `json:"isPrivate"`
	ParentBranch *int64  `json:"parentBranch"`
}

// BranchResponse represents a branch as returned by the API
type BranchResponse struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"userId"`
	Username          string    `json:"username,omitempty"`
	ParentBranch      *int64    `json:"parentBranch,omitempty"`
	ParentBranchTitle *string   `json:"parentBranchTitle,omitempty"`
	Title             string    `json:"title"`
	Color             string    `json:"color"`
	Description       *string   `json:"description,omitempty"`
	IsPrivate         bool      `json:"isPrivate"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
	PostsCount        int64     `json:"postsCount"`
	SubscribersCount  int64     `json:"subscribersCount"`
}

// FromBranch converts a model.Branch to a BranchResponse
func FromBranch(branch *models.Branch) BranchResponse {
	resp := BranchResponse{
		ID:                branch.ID,
		UserID:            branch.UserID,
		ParentBranch:      branch.ParentBranchID,
		ParentBranchTitle: branch.ParentBranchTitle,
		Title:             branch.Title,
		Color:             string(branch.Color),
		Description:       branch.Description,
		IsPrivate:         branch.IsPrivate,
		CreatedAt:         branch.CreatedAt,
		UpdatedAt:         branch.UpdatedAt,
		PostsCount:        branch.PostsCount,
		SubscribersCount:  branch.SubscribersCount,
	}
	if branch.User != nil {
		resp.Username = branch.User.Username
	}
	return resp
}

// FromBranches converts a slice of branches
func FromBranches(branches []*models.Branch) []BranchResponse {
	out := make([]BranchResponse, 0, len(branches))
	for _, b := range branches {
		out = append(out, FromBranch(b))
	}
	return out
}

// BranchListResponse represents the response for a paginated list of branches
type BranchListResponse struct {
	Branches   []BranchResponse `json:"branches"`
	Pagination PaginationInfo   `json:"pagination"`
}
