package dto

import (
	"time"

	"github.com/kmapteam/knowledgemap/internal/app/models"
)

// CreatePostRequest represents the data for creating a post.
// EventDate is a calendar date in YYYY-MM-DD form.
type CreatePostRequest struct {
	Branch    int64  `json:"branch" binding:"required,min=1"`
	Title     string `json:"title" binding:"required,max=200"`
	Content   string `json:"content" binding:"required"`
	EventDate string `json:"eventDate" binding:"required"`
	PostType  string `json:"postType" binding:"omitempty,oneof=text link image video code achievement milestone"`
	IsDraft   bool   `json:"isDraft"`
}

// UpdatePostRequest represents the data for updating a post. Nil fields are
// left untouched.
type UpdatePostRequest struct {
	Branch    *int64  `json:"branch" binding:"omitempty,min=1"`
	Title     *string `json:"title" binding:"omitempty,max=200"`
	Content   *string `json:"content"`
	EventDate *string `json:"eventDate"`
	PostType  *string `json:"postType" binding:"omitempty,oneof=text link image video code achievement milestone"`
	IsDraft   *bool   `json:"isDraft"`
}

// PostResponse represents a post as returned by the API
type PostResponse struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	Username      string    `json:"username,omitempty"`
	Branch        int64     `json:"branch"`
	BranchTitle   string    `json:"branchTitle,omitempty"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	EventDate     string    `json:"eventDate" example:"2024-03-15"`
	PostType      string    `json:"postType"`
	IsDraft       bool      `json:"isDraft"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	LikesCount    int64     `json:"likesCount"`
	CommentsCount int64     `json:"commentsCount"`
}

// FromPost converts a model.Post to a PostResponse
func FromPost(post *models.Post) PostResponse {
	resp := PostResponse{
		ID:            post.ID,
		UserID:        post.UserID,
		Branch:        post.BranchID,
		BranchTitle:   post.BranchTitle,
		Title:         post.Title,
		Content:       post.Content,
		EventDate:     post.EventDate.Format(time.DateOnly),
		PostType:      string(post.PostType),
		IsDraft:       post.IsDraft,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
		LikesCount:    post.LikesCount,
		CommentsCount: post.CommentsCount,
	}
	if post.User != nil {
		resp.Username = post.User.Username
	}
	return resp
}

// FromPosts converts a slice of posts
func FromPosts(posts []*models.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, FromPost(p))
	}
	return out
}

// PostListResponse represents the response for a paginated list of posts
type PostListResponse struct {
	Posts      []PostResponse `json:"posts"`
	Pagination PaginationInfo `json:"pagination"`
}

// LikeToggleResponse reports the outcome of a like toggle together with the
// post's freshly recomputed counter
type LikeToggleResponse struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

// LikeResponse represents a like row as returned by the API
type LikeResponse struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username,omitempty"`
	PostID    int64     `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromLike converts a model.Like to a LikeResponse
func FromLike(like *models.Like) LikeResponse {
	resp := LikeResponse{
		ID:        like.ID,
		UserID:    like.UserID,
		PostID:    like.PostID,
		CreatedAt: like.CreatedAt,
	}
	if like.User != nil {
		resp.Username = like.User.Username
	}
	return resp
}

// FromLikes converts a slice of likes
func FromLikes(likes []*models.Like) []LikeResponse {
	out := make([]LikeResponse, 0, len(likes))
	for _, l := range likes {
		out = append(out, FromLike(l))
	}
	return out
}

// LikeListResponse represents the response for a paginated list of likes
type LikeListResponse struct {
	Likes      []LikeResponse `json:"likes"`
	Pagination PaginationInfo `json:"pagination"`
}

// CreateLikeRequest represents the data for creating a like directly
type CreateLikeRequest struct {
	PostID int64 `json:"postId" binding:"required,min=1"`
}
