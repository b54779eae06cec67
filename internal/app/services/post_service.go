package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	appAuth "github.com/kmapteam/knowledgemap/internal/app/auth"
	"github.com/kmapteam/knowledgemap/internal/app/models"
	"github.com/kmapteam/knowledgemap/internal/app/models/dto"
	"github.com/kmapteam/knowledgemap/internal/app/repositories"
	"github.com/kmapteam/knowledgemap/internal/db"
	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
	"github.com/kmapteam/knowledgemap/internal/pkg/helpers"
)

// PostService defines the interface for post operations
type PostService interface {
	CreatePost(ctx context.Context, viewer *models.Viewer, req *dto.CreatePostRequest) (*dto.PostResponse, error)
	GetPost(ctx context.Context, viewer *models.Viewer, id int64) (*dto.PostResponse, error)
	ListPosts(ctx context.Context, viewer *models.Viewer, branchID *int64, page, size int) (*dto.PostListResponse, error)
	UpdatePost(ctx context.Context, viewer *models.Viewer, id int64, req *dto.UpdatePostRequest) (*dto.PostResponse, error)
	DeletePost(ctx context.Context, viewer *models.Viewer, id int64) error
	ToggleLike(ctx context.Context, viewer *models.Viewer, postID int64) (*dto.LikeToggleResponse, error)
}

// postServiceImpl implements the PostService interface
type postServiceImpl struct {
	database   *db.PostgresDB
	postRepo   *repositories.PostRepository
	branchRepo *repositories.BranchRepository
	likeRepo   *repositories.LikeRepository
	authz      *appAuth.AuthorizationService
}

// NewPostService creates a new post service instance
func NewPostService(
	database *db.PostgresDB,
	postRepo *repositories.PostRepository,
	branchRepo *repositories.BranchRepository,
	likeRepo *repositories.LikeRepository,
	authz *appAuth.AuthorizationService,
) PostService {
	return &postServiceImpl{
		database:   database,
		postRepo:   postRepo,
		branchRepo: branchRepo,
		likeRepo:   likeRepo,
		authz:      authz,
	}
}

// parseEventDate parses and validates the event date of a post. The date
// anchors the post on the timeline and may not lie in the future.
func parseEventDate(value string) (time.Time, error) {
	eventDate, err := helpers.ParseDateOnly(value)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("eventDate", "event date must be in YYYY-MM-DD form")
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if eventDate.After(today) {
		return time.Time{}, apperrors.NewValidationError("eventDate", "event date cannot be in the future")
	}

	return eventDate, nil
}

// CreatePost creates a post in one of the viewer's branches
func (s *postServiceImpl) CreatePost(ctx context.Context, viewer *models.Viewer, req *dto.CreatePostRequest) (*dto.PostResponse, error) {
	if viewer == nil {
		return nil, apperrors.ErrPermissionDenied
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "title cannot be empty")
	}

	eventDate, err := parseEventDate(req.EventDate)
	if err != nil {
		return nil, err
	}

	postType := models.PostType(req.PostType)
	if req.PostType == "" {
		postType = models.PostTypeText
	} else if !postType.IsValid() {
		return nil, apperrors.NewValidationError("postType", "unknown post type")
	}

	// Posting is limited to the author's own branches
	branch, err := s.authz.RequireBranchOwner(ctx, viewer, req.Branch)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:    viewer.ID,
		BranchID:  branch.ID,
		Title:     title,
		Content:   req.Content,
		EventDate: eventDate,
		PostType:  postType,
		IsDraft:   req.IsDraft,
	}

	// The insert and the branch counter refresh commit together, so a
	// failure leaves neither a row nor a stale posts_count behind.
	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.postRepo.CreateTx(ctx, tx, post); err != nil {
			return err
		}
		return s.branchRepo.RecomputeCountsTx(ctx, tx, branch.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetPost(ctx, viewer, post.ID)
}

// GetPost retrieves a post the viewer is allowed to see. Drafts and posts
// in foreign private branches read as not found.
func (s *postServiceImpl) GetPost(ctx context.Context, viewer *models.Viewer, id int64) (*dto.PostResponse, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authz.RequireView(viewer, post); err != nil {
		return nil, err
	}

	resp := dto.FromPost(post)
	return &resp, nil
}

// ListPosts retrieves a page of posts visible to the viewer, optionally
// narrowed to one branch.
func (s *postServiceImpl) ListPosts(ctx context.Context, viewer *models.Viewer, branchID *int64, page, size int) (*dto.PostListResponse, error) {
	if branchID != nil {
		// The branch must itself be visible before its posts are listed
		branch, err := s.branchRepo.GetByID(ctx, *branchID)
		if err != nil {
			return nil, err
		}
		if err := s.authz.RequireView(viewer, branch); err != nil {
			return nil, err
		}
	}

	posts, total, err := s.postRepo.List(ctx, viewer, branchID, page, size)
	if err != nil {
		return nil, err
	}

	return &dto.PostListResponse{
		Posts:      dto.FromPosts(posts),
		Pagination: newPagination(total, page, size),
	}, nil
}

// UpdatePost applies the non-nil fields of the request to a post authored
// by the viewer. Moving the post between branches refreshes the counters of
// both branches.
func (s *postServiceImpl) UpdatePost(ctx context.Context, viewer *models.Viewer, id int64, req *dto.UpdatePostRequest) (*dto.PostResponse, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authz.RequireOwner(viewer, post.UserID); err != nil {
		return nil, err
	}

	previousBranchID := post.BranchID

	if req.Branch != nil && *req.Branch != post.BranchID {
		branch, err := s.authz.RequireBranchOwner(ctx, viewer, *req.Branch)
		if err != nil {
			return nil, err
		}
		if branch.UserID != post.UserID {
			return nil, apperrors.ErrForeignParent
		}
		post.BranchID = branch.ID
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title", "title cannot be empty")
		}
		post.Title = title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.EventDate != nil {
		eventDate, err := parseEventDate(*req.EventDate)
		if err != nil {
			return nil, err
		}
		post.EventDate = eventDate
	}
	if req.PostType != nil {
		postType := models.PostType(*req.PostType)
		if !postType.IsValid() {
			return nil, apperrors.NewValidationError("postType", "unknown post type")
		}
		post.PostType = postType
	}
	if req.IsDraft != nil {
		post.IsDraft = *req.IsDraft
	}

	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.postRepo.UpdateTx(ctx, tx, post); err != nil {
			return err
		}
		if post.BranchID != previousBranchID {
			if err := s.branchRepo.RecomputeCountsTx(ctx, tx, previousBranchID); err != nil {
				return err
			}
			return s.branchRepo.RecomputeCountsTx(ctx, tx, post.BranchID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetPost(ctx, viewer, post.ID)
}

// DeletePost deletes a post authored by the viewer and refreshes its
// branch counter.
func (s *postServiceImpl) DeletePost(ctx context.Context, viewer *models.Viewer, id int64) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.authz.RequireOwner(viewer, post.UserID); err != nil {
		return err
	}

	return s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.postRepo.DeleteTx(ctx, tx, id); err != nil {
			return err
		}
		return s.branchRepo.RecomputeCountsTx(ctx, tx, post.BranchID)
	})
}

// ToggleLike flips the viewer's like on a post. The like row and the
// counter recompute commit in one transaction, so the stored count always
// matches the rows. A concurrent duplicate insert loses against the
// unique_like constraint and surfaces as a conflict.
func (s *postServiceImpl) ToggleLike(ctx context.Context, viewer *models.Viewer, postID int64) (*dto.LikeToggleResponse, error) {
	if viewer == nil {
		return nil, apperrors.ErrPermissionDenied
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.authz.RequireView(viewer, post); err != nil {
		return nil, err
	}

	liked, err := s.likeRepo.Exists(ctx, viewer.ID, postID)
	if err != nil {
		return nil, err
	}

	result := &dto.LikeToggleResponse{Liked: !liked}

	err = s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if liked {
			if err := s.likeRepo.DeleteTx(ctx, tx, viewer.ID, postID); err != nil {
				// The like vanished between the check and the delete
				if errors.Is(err, apperrors.ErrLikeNotFound) {
					return apperrors.ErrConflict
				}
				return err
			}
		} else {
			like := &models.Like{UserID: viewer.ID, PostID: postID}
			if err := s.likeRepo.CreateTx(ctx, tx, like); err != nil {
				if errors.Is(err, apperrors.ErrLikeExists) {
					return apperrors.ErrConflict
				}
				return err
			}
		}

		count, err := s.likeRepo.RecomputeLikesCountTx(ctx, tx, postID)
		if err != nil {
			return err
		}
		result.LikesCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
