package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kmapteam/knowledgemap/internal/app/models"
	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
	"github.com/kmapteam/knowledgemap/internal/pkg/dberrors"
	"github.com/kmapteam/knowledgemap/internal/pkg/helpers"
)

// LikeRepository handles database operations for likes
type LikeRepository struct {
	db *pgxpool.Pool
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{
		db: db,
	}
}

// Exists reports whether the user has liked the post
func (r *LikeRepository) Exists(ctx context.Context, userID, postID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND post_id = $2)`,
		userID, postID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking like existence: %w", err)
	}

	return exists, nil
}

// CreateTx inserts a like within a transaction. A concurrent duplicate
// surfaces as ErrLikeExists through the unique_like constraint.
func (r *LikeRepository) CreateTx(ctx context.Context, tx pgx.Tx, like *models.Like) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO likes (user_id, post_id)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		like.UserID, like.PostID).Scan(&like.ID, &like.CreatedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "unique_like") {
			return apperrors.ErrLikeExists
		}
		return fmt.Errorf("error creating like: %w", err)
	}

	return nil
}

// DeleteTx removes a like within a transaction
func (r *LikeRepository) DeleteTx(ctx context.Context, tx pgx.Tx, userID, postID int64) error {
	cmdTag, err := tx.Exec(ctx, `
		DELETE FROM likes WHERE user_id = $1 AND post_id = $2`,
		userID, postID)

	if err != nil {
		return fmt.Errorf("error deleting like: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrLikeNotFound
	}

	return nil
}

// RecomputeLikesCountTx refreshes the post's stored likes_count from live
// rows within the same transaction as the like write, so a failed toggle
// leaves neither a row nor a stale counter behind.
func (r *LikeRepository) RecomputeLikesCountTx(ctx context.Context, tx pgx.Tx, postID int64) (int64, error) {
	var count int64
	err := tx.QueryRow(ctx, `
		UPDATE posts p
		SET likes_count = src.lc
		FROM (SELECT COUNT(*) AS lc FROM likes WHERE post_id = $1) src
		WHERE p.id = $1
		RETURNING p.likes_count`,
		postID).Scan(&count)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrPostNotFound
		}
		return 0, fmt.Errorf("error recomputing likes count: %w", err)
	}

	return count, nil
}

// GetByID retrieves a like by ID
func (r *LikeRepository) GetByID(ctx context.Context, id int64) (*models.Like, error) {
	like := &models.Like{}
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, post_id, created_at
		FROM likes
		WHERE id = $1`,
		id).Scan(&like.ID, &like.UserID, &like.PostID, &like.CreatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLikeNotFound
		}
		return nil, fmt.Errorf("error retrieving like: %w", err)
	}

	return like, nil
}

// ListByUser retrieves a page of a user's likes, newest first
func (r *LikeRepository) ListByUser(ctx context.Context, userID int64, page, size int) ([]*models.Like, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	var total int64
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM likes WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting likes: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, post_id, created_at
		FROM likes
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing likes: %w", err)
	}
	defer rows.Close()

	var likes []*models.Like
	for rows.Next() {
		like := &models.Like{}
		if err := rows.Scan(&like.ID, &like.UserID, &like.PostID, &like.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning like row: %w", err)
		}
		likes = append(likes, like)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return likes, total, nil
}

// ListByPost retrieves a page of likes on a post, newest first, with the
// liking user loaded for display.
func (r *LikeRepository) ListByPost(ctx context.Context, postID int64, page, size int) ([]*models.Like, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	var total int64
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting likes: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT l.id, l.user_id, l.post_id, l.created_at,
			u.id, u.username, u.first_name, u.last_name, u.avatar_url
		FROM likes l
		JOIN users u ON u.id = l.user_id
		WHERE l.post_id = $1
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT $2 OFFSET $3`,
		postID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing likes: %w", err)
	}
	defer rows.Close()

	var likes []*models.Like
	for rows.Next() {
		like := &models.Like{User: &models.User{}}
		if err := rows.Scan(
			&like.ID, &like.UserID, &like.PostID, &like.CreatedAt,
			&like.User.ID, &like.User.Username, &like.User.FirstName,
			&like.User.LastName, &like.User.AvatarURL); err != nil {
			return nil, 0, fmt.Errorf("error scanning like row: %w", err)
		}
		likes = append(likes, like)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return likes, total, nil
}
