package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kmapteam/knowledgemap/internal/app/models"
	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
	"github.com/kmapteam/knowledgemap/internal/pkg/dberrors"
	"github.com/kmapteam/knowledgemap/internal/pkg/helpers"
)

// SubscriptionRepository handles database operations for subscriptions
type SubscriptionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateTx inserts a subscription within a transaction and fills in the
// generated ID. Duplicates against either uniqueness constraint surface as
// ErrSubscriptionExists, so a concurrent double-subscribe loses cleanly.
func (r *SubscriptionRepository) CreateTx(ctx context.Context, tx pgx.Tx, sub *models.Subscription) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO subscriptions (subscriber_id, target_user_id, target_branch_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		sub.SubscriberID, helpers.GetNullInt64(sub.TargetUserID),
		helpers.GetNullInt64(sub.TargetBranchID)).Scan(&sub.ID, &sub.CreatedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "unique_user_subscription") ||
			dberrors.IsDuplicateConstraintError(err, "unique_branch_subscription") {
			return apperrors.ErrSubscriptionExists
		}
		return fmt.Errorf("error creating subscription: %w", err)
	}

	return nil
}

// GetByID retrieves a subscription by ID
func (r *SubscriptionRepository) GetByID(ctx context.Context, id int64) (*models.Subscription, error) {
	sub := &models.Subscription{}
	err := r.db.QueryRow(ctx, `
		SELECT id, subscriber_id, target_user_id, target_branch_id, created_at
		FROM subscriptions
		WHERE id = $1`,
		id).Scan(&sub.ID, &sub.SubscriberID, &sub.TargetUserID, &sub.TargetBranchID, &sub.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("error retrieving subscription: %w", err)
	}

	return sub, nil
}

// UserSubscriptionExists checks for an existing user-targeted subscription
func (r *SubscriptionRepository) UserSubscriptionExists(ctx context.Context, subscriberID, targetUserID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM subscriptions
			WHERE subscriber_id = $1 AND target_user_id = $2 AND target_branch_id IS NULL)`,
		subscriberID, targetUserID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking user subscription: %w", err)
	}

	return exists, nil
}

// BranchSubscriptionExists checks for an existing branch-targeted subscription
func (r *SubscriptionRepository) BranchSubscriptionExists(ctx context.Context, subscriberID, targetBranchID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM subscriptions
			WHERE subscriber_id = $1 AND target_branch_id = $2)`,
		subscriberID, targetBranchID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking branch subscription: %w", err)
	}

	return exists, nil
}

// ListBySubscriber retrieves a page of a user's subscriptions, newest first,
// with target user and branch titles loaded for display.
func (r *SubscriptionRepository) ListBySubscriber(ctx context.Context, subscriberID int64, page, size int) ([]*models.Subscription, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	var total int64
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`,
		subscriberID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting subscriptions: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT s.id, s.subscriber_id, s.target_user_id, s.target_branch_id, s.created_at,
			u.username, b.title
		FROM subscriptions s
		LEFT JOIN users u ON u.id = s.target_user_id
		LEFT JOIN branches b ON b.id = s.target_branch_id
		WHERE s.subscriber_id = $1
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $2 OFFSET $3`,
		subscriberID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub := &models.Subscription{}
		var targetUsername, targetBranchTitle *string
		if err := rows.Scan(
			&sub.ID, &sub.SubscriberID, &sub.TargetUserID, &sub.TargetBranchID,
			&sub.CreatedAt, &targetUsername, &targetBranchTitle); err != nil {
			return nil, 0, fmt.Errorf("error scanning subscription row: %w", err)
		}
		if targetUsername != nil {
			sub.TargetUser = &models.User{Username: *targetUsername}
			if sub.TargetUserID != nil {
				sub.TargetUser.ID = *sub.TargetUserID
			}
		}
		if targetBranchTitle != nil {
			sub.TargetBranch = &models.Branch{Title: *targetBranchTitle}
			if sub.TargetBranchID != nil {
				sub.TargetBranch.ID = *sub.TargetBranchID
			}
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return subs, total, nil
}

// DeleteTx deletes a subscription by ID within a transaction
func (r *SubscriptionRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	cmdTag, err := tx.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting subscription: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSubscriptionNotFound
	}

	return nil
}
