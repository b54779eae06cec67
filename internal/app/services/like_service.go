package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	appAuth "github.com/kmapteam/knowledgemap/internal/app/auth"
	"github.com/kmapteam/knowledgemap/internal/app/models"
	"github.com/kmapteam/knowledgemap/internal/app/models/dto"
	"github.com/kmapteam/knowledgemap/internal/app/repositories"
	"github.com/kmapteam/knowledgemap/internal/db"
	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
)

// LikeService defines the interface for like operations. Toggling lives on
// PostService, where it shares the post visibility checks; the operations
// here treat likes as a resource of their own.
type LikeService interface {
	CreateLike(ctx context.Context, viewer *models.Viewer, req *dto.CreateLikeRequest) (*dto.LikeResponse, error)
	DeleteLike(ctx context.Context, viewer *models.Viewer, id int64) error
	ListMyLikes(ctx context.Context, viewer *models.Viewer, page, size int) (*dto.LikeListResponse, error)
	ListPostLikes(ctx context.Context, viewer *models.Viewer, postID int64, page, size int) (*dto.LikeListResponse, error)
}

// likeServiceImpl implements the LikeService interface
type likeServiceImpl struct {
	database *db.PostgresDB
	likeRepo *repositories.LikeRepository
	postRepo *repositories.PostRepository
	authz    *appAuth.AuthorizationService
}

// NewLikeService creates a new like service instance
func NewLikeService(
	database *db.PostgresDB,
	likeRepo *repositories.LikeRepository,
	postRepo *repositories.PostRepository,
	authz *appAuth.AuthorizationService,
) LikeService {
	return &likeServiceImpl{
		database: database,
		likeRepo: likeRepo,
		postRepo: postRepo,
		authz:    authz,
	}
}

// CreateLike likes a post the viewer may see. The like row and the counter
// recompute commit together; a duplicate surfaces as a conflict.
func (s *likeServiceImpl) CreateLike(ctx context.Context, viewer *models.Viewer, req *dto.CreateLikeRequest) (*dto.LikeResponse, error) {
	if viewer == nil {
		return nil, apperrors.ErrPermissionDenied
	}

	post, err := s.postRepo.GetByID(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.RequireView(viewer, post); err != nil {
		return nil, err
	}

	like := &models.Like{UserID: viewer.ID, PostID: post.ID}

	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.likeRepo.CreateTx(ctx, tx, like); err != nil {
			if errors.Is(err, apperrors.ErrLikeExists) {
				return apperrors.ErrConflict
			}
			return err
		}
		_, err := s.likeRepo.RecomputeLikesCountTx(ctx, tx, post.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp := dto.FromLike(like)
	return &resp, nil
}

// DeleteLike removes a like owned by the viewer and refreshes the post's
// counter in the same transaction.
func (s *likeServiceImpl) DeleteLike(ctx context.Context, viewer *models.Viewer, id int64) error {
	if viewer == nil {
		return apperrors.ErrPermissionDenied
	}

	like, err := s.likeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authz.RequireOwner(viewer, like.UserID); err != nil {
		return err
	}

	return s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.likeRepo.DeleteTx(ctx, tx, like.UserID, like.PostID); err != nil {
			if errors.Is(err, apperrors.ErrLikeNotFound) {
				return apperrors.ErrConflict
			}
			return err
		}
		_, err := s.likeRepo.RecomputeLikesCountTx(ctx, tx, like.PostID)
		return err
	})
}

// ListMyLikes retrieves a page of the viewer's own likes, newest first
func (s *likeServiceImpl) ListMyLikes(ctx context.Context, viewer *models.Viewer, page, size int) (*dto.LikeListResponse, error) {
	if viewer == nil {
		return nil, apperrors.ErrPermissionDenied
	}

	likes, total, err := s.likeRepo.ListByUser(ctx, viewer.ID, page, size)
	if err != nil {
		return nil, err
	}

	return &dto.LikeListResponse{
		Likes:      dto.FromLikes(likes),
		Pagination: newPagination(total, page, size),
	}, nil
}

// ListPostLikes retrieves a page of likes on a post the viewer may see
func (s *likeServiceImpl) ListPostLikes(ctx context.Context, viewer *models.Viewer, postID int64, page, size int) (*dto.LikeListResponse, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.authz.RequireView(viewer, post); err != nil {
		return nil, err
	}

	likes, total, err := s.likeRepo.ListByPost(ctx, postID, page, size)
	if err != nil {
		return nil, err
	}

	return &dto.LikeListResponse{
		Likes:      dto.FromLikes(likes),
		Pagination: newPagination(total, page, size),
	}, nil
}
