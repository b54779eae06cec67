package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kmapteam/knowledgemap/internal/app/models"
	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
	"github.com/kmapteam/knowledgemap/internal/pkg/dberrors"
	"github.com/kmapteam/knowledgemap/internal/pkg/helpers"
	"github.com/kmapteam/knowledgemap/internal/pkg/logger"
)

// BranchRepository handles database operations for branches
type BranchRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewBranchRepository creates a new BranchRepository
func NewBranchRepository(db *pgxpool.Pool) *BranchRepository {
	return &BranchRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create creates a new branch and fills in the generated ID
func (r *BranchRepository) Create(ctx context.Context, branch *models.Branch) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO branches (user_id, parent_branch_id, title, color, description, is_private)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		branch.UserID, helpers.GetNullInt64(branch.ParentBranchID), branch.Title,
		branch.Color, helpers.GetNullString(branch.Description), branch.IsPrivate).
		Scan(&branch.ID, &branch.CreatedAt, &branch.UpdatedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "unique_branch_title_per_owner") {
			return apperrors.ErrBranchTitleExists
		}
		return fmt.Errorf("error creating branch: %w", err)
	}

	return nil
}

// GetByID retrieves a branch by ID, including the owner row needed for
// visibility checks.
func (r *BranchRepository) GetByID(ctx context.Context, id int64) (*models.Branch, error) {
	branch := &models.Branch{User: &models.User{}}
	var parentTitle *string

	err := r.db.QueryRow(ctx, `
		SELECT b.id, b.user_id, b.parent_branch_id, b.title, b.color, b.description,
			b.is_private, b.posts_count, b.subscribers_count, b.created_at, b.updated_at,
			u.id, u.username, u.is_public, u.is_staff,
			p.title
		FROM branches b
		JOIN users u ON u.id = b.user_id
		LEFT JOIN branches p ON p.id = b.parent_branch_id
		WHERE b.id = $1`,
		id).Scan(
		&branch.ID, &branch.UserID, &branch.ParentBranchID, &branch.Title, &branch.Color,
		&branch.Description, &branch.IsPrivate, &branch.PostsCount, &branch.SubscribersCount,
		&branch.CreatedAt, &branch.UpdatedAt,
		&branch.User.ID, &branch.User.Username, &branch.User.IsPublic, &branch.User.IsStaff,
		&parentTitle)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBranchNotFound
		}
		return nil, fmt.Errorf("error retrieving branch: %w", err)
	}

	branch.ParentBranchTitle = parentTitle
	return branch, nil
}

// branchVisibleTo builds the SQL predicate matching Branch.CanView for the
// given viewer.
func branchVisibleTo(viewer *models.Viewer) squirrel.Sqlizer {
	public := squirrel.Eq{"b.is_private": false}
	if viewer == nil {
		return public
	}
	if viewer.IsStaff {
		return squirrel.Expr("TRUE")
	}
	return squirrel.Or{public, squirrel.Eq{"b.user_id": viewer.ID}}
}

// List retrieves a page of branches visible to the viewer, across all users,
// ordered by title.
func (r *BranchRepository) List(ctx context.Context, viewer *models.Viewer, page, size int) ([]*models.Branch, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	where := branchVisibleTo(viewer)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("branches b").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build branch count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting branches: %w", err)
	}

	sql, args, err := r.sb.Select(
		"b.id", "b.user_id", "b.parent_branch_id", "b.title", "b.color", "b.description",
		"b.is_private", "b.posts_count", "b.subscribers_count", "b.created_at", "b.updated_at",
		"p.title AS parent_title").
		From("branches b").
		LeftJoin("branches p ON p.id = b.parent_branch_id").
		Where(where).
		OrderBy("b.title ASC", "b.id ASC").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build branch list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing branches: %w", err)
	}
	defer rows.Close()

	var branches []*models.Branch
	for rows.Next() {
		branch := &models.Branch{}
		if err := rows.Scan(
			&branch.ID, &branch.UserID, &branch.ParentBranchID, &branch.Title, &branch.Color,
			&branch.Description, &branch.IsPrivate, &branch.PostsCount, &branch.SubscribersCount,
			&branch.CreatedAt, &branch.UpdatedAt, &branch.ParentBranchTitle); err != nil {
			return nil, 0, fmt.Errorf("error scanning branch row: %w", err)
		}
		branches = append(branches, branch)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return branches, total, nil
}

// ListByUser retrieves a page of a user's branches. When includePrivate is
// false, private branches are filtered out at the query level.
func (r *BranchRepository) ListByUser(ctx context.Context, userID int64, includePrivate bool, page, size int) ([]*models.Branch, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	where := squirrel.And{squirrel.Eq{"b.user_id": userID}}
	if !includePrivate {
		where = append(where, squirrel.Eq{"b.is_private": false})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("branches b").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build branch count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting branches: %w", err)
	}

	sql, args, err := r.sb.Select(
		"b.id", "b.user_id", "b.parent_branch_id", "b.title", "b.color", "b.description",
		"b.is_private", "b.posts_count", "b.subscribers_count", "b.created_at", "b.updated_at",
		"p.title AS parent_title").
		From("branches b").
		LeftJoin("branches p ON p.id = b.parent_branch_id").
		Where(where).
		OrderBy("b.title ASC").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build branch list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing branches: %w", err)
	}
	defer rows.Close()

	var branches []*models.Branch
	for rows.Next() {
		branch := &models.Branch{}
		if err := rows.Scan(
			&branch.ID, &branch.UserID, &branch.ParentBranchID, &branch.Title, &branch.Color,
			&branch.Description, &branch.IsPrivate, &branch.PostsCount, &branch.SubscribersCount,
			&branch.CreatedAt, &branch.UpdatedAt, &branch.ParentBranchTitle); err != nil {
			return nil, 0, fmt.Errorf("error scanning branch row: %w", err)
		}
		branches = append(branches, branch)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return branches, total, nil
}

// Update updates the editable fields of a branch
func (r *BranchRepository) Update(ctx context.Context, branch *models.Branch) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE branches
		SET parent_branch_id = $1, title = $2, color = $3, description = $4,
			is_private = $5, updated_at = $6
		WHERE id = $7`,
		helpers.GetNullInt64(branch.ParentBranchID), branch.Title, branch.Color,
		helpers.GetNullString(branch.Description), branch.IsPrivate, time.Now(), branch.ID)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "unique_branch_title_per_owner") {
			return apperrors.ErrBranchTitleExists
		}
		return fmt.Errorf("error updating branch: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrBranchNotFound
	}

	return nil
}

// Delete deletes a branch by ID. Posts cascade; child branches keep existing
// with their parent reference cleared.
func (r *BranchRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM branches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting branch: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrBranchNotFound
	}

	return nil
}

// RecomputeCountsTx refreshes the stored posts_count and subscribers_count of
// a branch from live rows, within the same transaction as the row write that
// moved them. The write only happens when a value actually changed, so
// repeated calls are harmless.
func (r *BranchRepository) RecomputeCountsTx(ctx context.Context, tx pgx.Tx, branchID int64) error {
	cmdTag, err := tx.Exec(ctx, `
		UPDATE branches b
		SET posts_count = src.pc, subscribers_count = src.sc
		FROM (
			SELECT
				(SELECT COUNT(*) FROM posts WHERE branch_id = $1) AS pc,
				(SELECT COUNT(*) FROM subscriptions WHERE target_branch_id = $1) AS sc
		) src
		WHERE b.id = $1
			AND (b.posts_count IS DISTINCT FROM src.pc
				OR b.subscribers_count IS DISTINCT FROM src.sc)`,
		branchID)

	if err != nil {
		return fmt.Errorf("error recomputing branch counts: %w", err)
	}

	if cmdTag.RowsAffected() > 0 {
		logger.Debug().Int64("branchID", branchID).Msg("Branch counters refreshed")
	}

	return nil
}
