package dto

import (
	"time"

	"github.com/kmapteam/knowledgemap/internal/app/models"
)

// UserResponse represents a user together with its query-time aggregate counts
type UserResponse struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email,omitempty"`
	FirstName      string     `json:"firstName,omitempty"`
	LastName       string     `json:"lastName,omitempty"`
	Bio            *string    `json:"bio,omitempty"`
	Avatar         *string    `json:"avatar,omitempty"`
	Website        *string    `json:"website,omitempty"`
	Location       *string    `json:"location,omitempty"`
	BirthDate      *time.Time `json:"birthDate,omitempty"`
	IsPublic       bool       `json:"isPublic"`
	IsVerified     bool       `json:"isVerified"`
	DateJoined     time.Time  `json:"dateJoined"`
	FollowersCount int64      `json:"followersCount"`
	FollowingCount int64      `json:"followingCount"`
	BranchesCount  int64      `json:"branchesCount"`
	PostsCount     int64      `json:"postsCount"`
}

// FromUser converts a user and its aggregates into a UserResponse
func FromUser(user *models.User, counts models.UserCounts) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Bio:            user.Bio,
		Avatar:         user.AvatarURL,
		Website:        user.Website,
		Location:       user.Location,
		BirthDate:      user.BirthDate,
		IsPublic:       user.IsPublic,
		IsVerified:     user.IsVerified,
		DateJoined:     user.DateJoined,
		FollowersCount: counts.Followers,
		FollowingCount: counts.Following,
		BranchesCount:  counts.Branches,
		PostsCount:     counts.Posts,
	}
}

// UpdateProfileRequest represents profile update data
type UpdateProfileRequest struct {
	FirstName *string    `json:"firstName"`
	LastName  *string    `json:"lastName"`
	Bio       *string    `json:"bio" binding:"omitempty,max=500"`
	Avatar    *string    `json:"avatar"`
	Website   *string    `json:"website"`
	Location  *string    `json:"location"`
	BirthDate *time.Time `json:"birthDate"`
	IsPublic  *bool      `json:"isPublic"`
}

// UserListResponse represents the response for a paginated list of users
type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination PaginationInfo `json:"pagination"`
}
