package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kmapteam/knowledgemap/internal/app/models"
	"github.com/kmapteam/knowledgemap/internal/app/models/dto"
	"github.com/kmapteam/knowledgemap/internal/app/repositories"
	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
	"github.com/kmapteam/knowledgemap/internal/pkg/validation"
)

// UserService defines the interface for user profile operations
type UserService interface {
	GetProfile(ctx context.Context, username string) (*dto.UserResponse, error)
	GetProfileByID(ctx context.Context, userID int64) (*dto.UserResponse, error)
	ListUsers(ctx context.Context, page, size int) (*dto.UserListResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	DeleteAccount(ctx context.Context, userID int64) error
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	userRepo *repositories.UserRepository
}

// NewUserService creates a new user service instance
func NewUserService(userRepo *repositories.UserRepository) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
	}
}

// GetProfile retrieves a user's public profile with aggregate counts
func (s *userServiceImpl) GetProfile(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.buildProfile(ctx, user)
}

// GetProfileByID retrieves a user's profile by ID with aggregate counts
func (s *userServiceImpl) GetProfileByID(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildProfile(ctx, user)
}

func (s *userServiceImpl) buildProfile(ctx context.Context, user *models.User) (*dto.UserResponse, error) {
	counts, err := s.userRepo.GetUserCounts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromUser(user, *counts)
	return &resp, nil
}

// ListUsers retrieves a page of users ordered by username, each with its
// aggregate counts. The count queries stay bounded by the page size.
func (s *userServiceImpl) ListUsers(ctx context.Context, page, size int) (*dto.UserListResponse, error) {
	users, total, err := s.userRepo.List(ctx, page, size)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		counts, err := s.userRepo.GetUserCounts(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, dto.FromUser(user, *counts))
	}

	return &dto.UserListResponse{
		Users:      responses,
		Pagination: newPagination(total, page, size),
	}, nil
}

// UpdateProfile applies the non-nil fields of the request to the user's
// profile and returns the updated profile.
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		if len(bio) > validation.BioMaxLength {
			return nil, apperrors.NewValidationError("bio",
				fmt.Sprintf("bio must be at most %d characters", validation.BioMaxLength))
		}
		user.Bio = &bio
	}
	if req.Avatar != nil {
		user.AvatarURL = req.Avatar
	}
	if req.Website != nil {
		user.Website = req.Website
	}
	if req.Location != nil {
		user.Location = req.Location
	}
	if req.BirthDate != nil {
		if req.BirthDate.After(time.Now()) {
			return nil, apperrors.NewValidationError("birthDate", "birth date cannot be in the future")
		}
		user.BirthDate = req.BirthDate
	}
	if req.IsPublic != nil {
		user.IsPublic = *req.IsPublic
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return s.buildProfile(ctx, user)
}

// DeleteAccount removes the user and, through database cascades, all of
// their branches, posts, likes and subscriptions.
func (s *userServiceImpl) DeleteAccount(ctx context.Context, userID int64) error {
	return s.userRepo.Delete(ctx, userID)
}
