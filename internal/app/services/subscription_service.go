package services

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/kmapteam/knowledgemap/internal/app/models"
	"github.com/kmapteam/knowledgemap/internal/app/models/dto"
	"github.com/kmapteam/knowledgemap/internal/app/repositories"
	"github.com/kmapteam/knowledgemap/internal/db"
	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
)

// SubscriptionService defines the interface for subscription operations
type SubscriptionService interface {
	Subscribe(ctx context.Context, viewer *models.Viewer, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	Unsubscribe(ctx context.Context, viewer *models.Viewer, id int64) error
	ListSubscriptions(ctx context.Context, viewer *models.Viewer, page, size int) (*dto.SubscriptionListResponse, error)
}

// subscriptionServiceImpl implements the SubscriptionService interface
type subscriptionServiceImpl struct {
	database   *db.PostgresDB
	subRepo    *repositories.SubscriptionRepository
	userRepo   *repositories.UserRepository
	branchRepo *repositories.BranchRepository
}

// NewSubscriptionService creates a new subscription service instance
func NewSubscriptionService(
	database *db.PostgresDB,
	subRepo *repositories.SubscriptionRepository,
	userRepo *repositories.UserRepository,
	branchRepo *repositories.BranchRepository,
) SubscriptionService {
	return &subscriptionServiceImpl{
		database:   database,
		subRepo:    subRepo,
		userRepo:   userRepo,
		branchRepo: branchRepo,
	}
}

// ValidateSubscriptionTarget checks the structural rules of a subscription:
// exactly one target, no self-follow, no own branch, no private branch.
// Pure, everything it needs arrives as arguments.
func ValidateSubscriptionTarget(subscriberID int64, targetUserID *int64, targetBranch *models.Branch) error {
	if targetUserID != nil && targetBranch != nil {
		return apperrors.NewValidationError("target", "a subscription targets either a user or a branch, not both")
	}
	if targetUserID == nil && targetBranch == nil {
		return apperrors.NewValidationError("target", "a subscription needs a target user or a target branch")
	}
	if targetUserID != nil && *targetUserID == subscriberID {
		return apperrors.NewValidationError("targetUser", "you cannot subscribe to yourself")
	}
	if targetBranch != nil {
		if targetBranch.UserID == subscriberID {
			return apperrors.NewValidationError("targetBranch", "you cannot subscribe to your own branch")
		}
		if targetBranch.IsPrivate {
			return apperrors.NewValidationError("targetBranch", "you cannot subscribe to a private branch")
		}
	}
	return nil
}

// Subscribe creates a subscription for the viewer after validating the
// target. Duplicates surface as ErrSubscriptionExists.
func (s *subscriptionServiceImpl) Subscribe(ctx context.Context, viewer *models.Viewer, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if viewer == nil {
		return nil, apperrors.ErrPermissionDenied
	}

	var targetBranch *models.Branch
	if req.TargetBranch != nil {
		branch, err := s.branchRepo.GetByID(ctx, *req.TargetBranch)
		if err != nil {
			return nil, err
		}
		targetBranch = branch
	}

	if req.TargetUser != nil {
		if _, err := s.userRepo.GetByID(ctx, *req.TargetUser); err != nil {
			return nil, err
		}
	}

	if err := ValidateSubscriptionTarget(viewer.ID, req.TargetUser, targetBranch); err != nil {
		return nil, err
	}

	// Friendly pre-checks; the unique constraints stay authoritative under
	// concurrent subscribes.
	if req.TargetUser != nil {
		exists, err := s.subRepo.UserSubscriptionExists(ctx, viewer.ID, *req.TargetUser)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.ErrSubscriptionExists
		}
	}
	if req.TargetBranch != nil {
		exists, err := s.subRepo.BranchSubscriptionExists(ctx, viewer.ID, *req.TargetBranch)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.ErrSubscriptionExists
		}
	}

	sub := &models.Subscription{
		SubscriberID:   viewer.ID,
		TargetUserID:   req.TargetUser,
		TargetBranchID: req.TargetBranch,
	}

	// Branch subscriptions move subscribers_count; the insert and the
	// counter refresh commit together.
	err := s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.subRepo.CreateTx(ctx, tx, sub); err != nil {
			return err
		}
		if targetBranch != nil {
			return s.branchRepo.RecomputeCountsTx(ctx, tx, targetBranch.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := dto.FromSubscription(sub)
	return &resp, nil
}

// Unsubscribe removes a subscription owned by the viewer
func (s *subscriptionServiceImpl) Unsubscribe(ctx context.Context, viewer *models.Viewer, id int64) error {
	if viewer == nil {
		return apperrors.ErrPermissionDenied
	}

	sub, err := s.subRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if sub.SubscriberID != viewer.ID && !viewer.IsStaff {
		return apperrors.ErrPermissionDenied
	}

	return s.database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.subRepo.DeleteTx(ctx, tx, id); err != nil {
			return err
		}
		if sub.TargetBranchID != nil {
			return s.branchRepo.RecomputeCountsTx(ctx, tx, *sub.TargetBranchID)
		}
		return nil
	})
}

// ListSubscriptions retrieves a page of the viewer's subscriptions
func (s *subscriptionServiceImpl) ListSubscriptions(ctx context.Context, viewer *models.Viewer, page, size int) (*dto.SubscriptionListResponse, error) {
	if viewer == nil {
		return nil, apperrors.ErrPermissionDenied
	}

	subs, total, err := s.subRepo.ListBySubscriber(ctx, viewer.ID, page, size)
	if err != nil {
		return nil, err
	}

	return &dto.SubscriptionListResponse{
		Subscriptions: dto.FromSubscriptions(subs),
		Pagination:    newPagination(total, page, size),
	}, nil
}
