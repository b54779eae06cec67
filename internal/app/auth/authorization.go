package auth

import (
	"context"

	"github.com/kmapteam/knowledgemap/internal/app/models"
	"github.com/kmapteam/knowledgemap/internal/app/repositories"
	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
)

// AuthorizationService handles visibility and ownership decisions
type AuthorizationService struct {
	userRepo   *repositories.UserRepository
	branchRepo *repositories.BranchRepository
	postRepo   *repositories.PostRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo *repositories.UserRepository, branchRepo *repositories.BranchRepository, postRepo *repositories.PostRepository) *AuthorizationService {
	return &AuthorizationService{
		userRepo:   userRepo,
		branchRepo: branchRepo,
		postRepo:   postRepo,
	}
}

// CanView reports whether the viewer may see the given resource. Pure
// capability dispatch; the resource decides, nothing is loaded here.
func (s *AuthorizationService) CanView(viewer *models.Viewer, resource models.Viewable) bool {
	return resource.CanView(viewer)
}

// RequireView returns ErrResourceNotFound when the viewer may not see the
// resource. Hidden resources are indistinguishable from missing ones, so
// their existence never leaks.
func (s *AuthorizationService) RequireView(viewer *models.Viewer, resource models.Viewable) error {
	if !resource.CanView(viewer) {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// RequireOwner returns ErrPermissionDenied unless the viewer owns the
// resource. Staff members pass the check.
func (s *AuthorizationService) RequireOwner(viewer *models.Viewer, ownerID int64) error {
	if viewer == nil {
		return apperrors.ErrPermissionDenied
	}
	if viewer.ID != ownerID && !viewer.IsStaff {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// RequireBranchOwner loads the branch and validates ownership in one step
func (s *AuthorizationService) RequireBranchOwner(ctx context.Context, viewer *models.Viewer, branchID int64) (*models.Branch, error) {
	branch, err := s.branchRepo.GetByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireOwner(viewer, branch.UserID); err != nil {
		return nil, err
	}
	return branch, nil
}

// CanViewProfileTimeline reports whether the viewer may see a user's
// aggregated timeline. Private profiles are visible only to the user
// themselves and staff.
func (s *AuthorizationService) CanViewProfileTimeline(viewer *models.Viewer, target *models.User) bool {
	if target.IsPublic {
		return true
	}
	if viewer == nil {
		return false
	}
	return viewer.ID == target.ID || viewer.IsStaff
}
