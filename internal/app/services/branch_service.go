package services

import (
	"context"
	"strings"

	appAuth "github.com/kmapteam/knowledgemap/internal/app/auth"
	"github.com/kmapteam/knowledgemap/internal/app/models"
	"github.com/kmapteam/knowledgemap/internal/app/models/dto"
	"github.com/kmapteam/knowledgemap/internal/app/repositories"
	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
)

// BranchService defines the interface for branch operations
type BranchService interface {
	CreateBranch(ctx context.Context, viewer *models.Viewer, req *dto.CreateBranchRequest) (*dto.BranchResponse, error)
	GetBranch(ctx context.Context, viewer *models.Viewer, id int64) (*dto.BranchResponse, error)
	ListBranches(ctx context.Context, viewer *models.Viewer, page, size int) (*dto.BranchListResponse, error)
	ListUserBranches(ctx context.Context, viewer *models.Viewer, username string, page, size int) (*dto.BranchListResponse, error)
	UpdateBranch(ctx context.Context, viewer *models.Viewer, id int64, req *dto.UpdateBranchRequest) (*dto.BranchResponse, error)
	DeleteBranch(ctx context.Context, viewer *models.Viewer, id int64) error
}

// branchServiceImpl implements the BranchService interface
type branchServiceImpl struct {
	branchRepo *repositories.BranchRepository
	userRepo   *repositories.UserRepository
	authz      *appAuth.AuthorizationService
}

// NewBranchService creates a new branch service instance
func NewBranchService(branchRepo *repositories.BranchRepository, userRepo *repositories.UserRepository, authz *appAuth.AuthorizationService) BranchService {
	return &branchServiceImpl{
		branchRepo: branchRepo,
		userRepo:   userRepo,
		authz:      authz,
	}
}

// resolveParent validates a parent branch reference. The parent must exist
// and belong to the same owner; a branch tree never spans users.
func (s *branchServiceImpl) resolveParent(ctx context.Context, ownerID int64, parentID *int64) error {
	if parentID == nil {
		return nil
	}

	parent, err := s.branchRepo.GetByID(ctx, *parentID)
	if err != nil {
		return err
	}
	if parent.UserID != ownerID {
		return apperrors.ErrForeignParent
	}

	return nil
}

// CreateBranch creates a new branch owned by the viewer
func (s *branchServiceImpl) CreateBranch(ctx context.Context, viewer *models.Viewer, req *dto.CreateBranchRequest) (*dto.BranchResponse, error) {
	if viewer == nil {
		return nil, apperrors.ErrPermissionDenied
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "title cannot be empty")
	}

	color := models.BranchColor(req.Color)
	if req.Color == "" {
		color = models.ColorBlue
	} else if !color.IsValid() {
		return nil, apperrors.NewValidationError("color", "unknown branch color")
	}

	if err := s.resolveParent(ctx, viewer.ID, req.ParentBranch); err != nil {
		return nil, err
	}

	branch := &models.Branch{
		UserID:         viewer.ID,
		ParentBranchID: req.ParentBranch,
		Title:          title,
		Color:          color,
		Description:    req.Description,
		IsPrivate:      req.IsPrivate,
	}

	if err := s.branchRepo.Create(ctx, branch); err != nil {
		return nil, err
	}

	return s.GetBranch(ctx, viewer, branch.ID)
}

// GetBranch retrieves a branch the viewer is allowed to see. A private
// branch of another user reads as not found.
func (s *branchServiceImpl) GetBranch(ctx context.Context, viewer *models.Viewer, id int64) (*dto.BranchResponse, error) {
	branch, err := s.branchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authz.RequireView(viewer, branch); err != nil {
		return nil, err
	}

	resp := dto.FromBranch(branch)
	return &resp, nil
}

// ListBranches retrieves a page of branches across all users, limited to
// what the viewer may see.
func (s *branchServiceImpl) ListBranches(ctx context.Context, viewer *models.Viewer, page, size int) (*dto.BranchListResponse, error) {
	branches, total, err := s.branchRepo.List(ctx, viewer, page, size)
	if err != nil {
		return nil, err
	}

	return &dto.BranchListResponse{
		Branches:   dto.FromBranches(branches),
		Pagination: newPagination(total, page, size),
	}, nil
}

// ListUserBranches retrieves a page of a user's branches. Private branches
// appear only when the viewer is the owner or staff.
func (s *branchServiceImpl) ListUserBranches(ctx context.Context, viewer *models.Viewer, username string, page, size int) (*dto.BranchListResponse, error) {
	owner, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	includePrivate := viewer != nil && (viewer.ID == owner.ID || viewer.IsStaff)

	branches, total, err := s.branchRepo.ListByUser(ctx, owner.ID, includePrivate, page, size)
	if err != nil {
		return nil, err
	}

	return &dto.BranchListResponse{
		Branches:   dto.FromBranches(branches),
		Pagination: newPagination(total, page, size),
	}, nil
}

// UpdateBranch applies the non-nil fields of the request to a branch owned
// by the viewer.
func (s *branchServiceImpl) UpdateBranch(ctx context.Context, viewer *models.Viewer, id int64, req *dto.UpdateBranchRequest) (*dto.BranchResponse, error) {
	branch, err := s.authz.RequireBranchOwner(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title", "title cannot be empty")
		}
		branch.Title = title
	}
	if req.Color != nil {
		color := models.BranchColor(*req.Color)
		if !color.IsValid() {
			return nil, apperrors.NewValidationError("color", "unknown branch color")
		}
		branch.Color = color
	}
	if req.Description != nil {
		branch.Description = req.Description
	}
	if req.IsPrivate != nil {
		branch.IsPrivate = *req.IsPrivate
	}
	if req.ParentBranch != nil {
		if *req.ParentBranch == branch.ID {
			return nil, apperrors.NewValidationError("parentBranch", "a branch cannot be its own parent")
		}
		if err := s.resolveParent(ctx, branch.UserID, req.ParentBranch); err != nil {
			return nil, err
		}
		branch.ParentBranchID = req.ParentBranch
	}

	if err := s.branchRepo.Update(ctx, branch); err != nil {
		return nil, err
	}

	return s.GetBranch(ctx, viewer, branch.ID)
}

// DeleteBranch deletes a branch owned by the viewer. Posts in the branch
// cascade at the database level.
func (s *branchServiceImpl) DeleteBranch(ctx context.Context, viewer *models.Viewer, id int64) error {
	if _, err := s.authz.RequireBranchOwner(ctx, viewer, id); err != nil {
		return err
	}
	return s.branchRepo.Delete(ctx, id)
}
