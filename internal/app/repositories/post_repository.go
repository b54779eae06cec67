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
	"github.com/kmapteam/knowledgemap/internal/pkg/helpers"
)

// PostRepository handles database operations for posts
type PostRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateTx inserts a post within a transaction and fills in the generated
// ID. Callers pair it with a branch counter recompute in the same
// transaction.
func (r *PostRepository) CreateTx(ctx context.Context, tx pgx.Tx, post *models.Post) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO posts (user_id, branch_id, title, content, event_date, post_type, is_draft)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		post.UserID, post.BranchID, post.Title, post.Content,
		post.EventDate, post.PostType, post.IsDraft).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)

	if err != nil {
		return fmt.Errorf("error creating post: %w", err)
	}

	return nil
}

// GetByID retrieves a post by ID with its branch loaded, so callers can run
// visibility checks without a second query.
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	post := &models.Post{Branch: &models.Branch{}}

	err := r.db.QueryRow(ctx, `
		SELECT p.id, p.user_id, p.branch_id, p.title, p.content, p.event_date,
			p.post_type, p.is_draft, p.likes_count, p.comments_count,
			p.created_at, p.updated_at,
			b.id, b.user_id, b.title, b.color, b.is_private
		FROM posts p
		JOIN branches b ON b.id = p.branch_id
		WHERE p.id = $1`,
		id).Scan(
		&post.ID, &post.UserID, &post.BranchID, &post.Title, &post.Content,
		&post.EventDate, &post.PostType, &post.IsDraft, &post.LikesCount,
		&post.CommentsCount, &post.CreatedAt, &post.UpdatedAt,
		&post.Branch.ID, &post.Branch.UserID, &post.Branch.Title,
		&post.Branch.Color, &post.Branch.IsPrivate)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPostNotFound
		}
		return nil, fmt.Errorf("error retrieving post: %w", err)
	}

	post.BranchTitle = post.Branch.Title
	return post, nil
}

// visibleTo builds the predicate for posts a viewer may see in list
// endpoints: published posts in public branches, plus everything the viewer
// authored. Staff viewers see all rows.
func visibleTo(viewer *models.Viewer) squirrel.Sqlizer {
	public := squirrel.And{
		squirrel.Eq{"p.is_draft": false},
		squirrel.Eq{"b.is_private": false},
	}
	if viewer == nil {
		return public
	}
	if viewer.IsStaff {
		return squirrel.Expr("TRUE")
	}
	return squirrel.Or{
		public,
		squirrel.Eq{"p.user_id": viewer.ID},
	}
}

// List retrieves a page of posts visible to the viewer, newest event first.
// An optional branchID narrows the listing to one branch.
func (r *PostRepository) List(ctx context.Context, viewer *models.Viewer, branchID *int64, page, size int) ([]*models.Post, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	where := squirrel.And{visibleTo(viewer)}
	if branchID != nil {
		where = append(where, squirrel.Eq{"p.branch_id": *branchID})
	}

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").
		From("posts p").
		Join("branches b ON b.id = p.branch_id").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build post count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting posts: %w", err)
	}

	sql, args, err := r.sb.Select(
		"p.id", "p.user_id", "p.branch_id", "p.title", "p.content", "p.event_date",
		"p.post_type", "p.is_draft", "p.likes_count", "p.comments_count",
		"p.created_at", "p.updated_at",
		"b.title", "b.color", "b.is_private", "b.user_id AS branch_user_id").
		From("posts p").
		Join("branches b ON b.id = p.branch_id").
		Where(where).
		OrderBy("p.event_date DESC", "p.id DESC").
		Limit(uint64(limit)).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build post list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing posts: %w", err)
	}
	defer rows.Close()

	posts, err := collectPostRows(rows)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// ListForTimeline retrieves every timeline-relevant post of a user in
// ascending event order. With includeHidden the caller gets drafts and
// private-branch posts too; otherwise only published posts in public
// branches are returned.
func (r *PostRepository) ListForTimeline(ctx context.Context, userID int64, includeHidden bool) ([]*models.Post, error) {
	where := squirrel.And{squirrel.Eq{"p.user_id": userID}}
	if !includeHidden {
		where = append(where,
			squirrel.Eq{"p.is_draft": false},
			squirrel.Eq{"b.is_private": false})
	}

	sql, args, err := r.sb.Select(
		"p.id", "p.user_id", "p.branch_id", "p.title", "p.content", "p.event_date",
		"p.post_type", "p.is_draft", "p.likes_count", "p.comments_count",
		"p.created_at", "p.updated_at",
		"b.title", "b.color", "b.is_private", "b.user_id AS branch_user_id").
		From("posts p").
		Join("branches b ON b.id = p.branch_id").
		Where(where).
		OrderBy("p.event_date ASC", "p.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build timeline query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing timeline posts: %w", err)
	}
	defer rows.Close()

	return collectPostRows(rows)
}

func collectPostRows(rows pgx.Rows) ([]*models.Post, error) {
	var posts []*models.Post
	for rows.Next() {
		post := &models.Post{Branch: &models.Branch{}}
		if err := rows.Scan(
			&post.ID, &post.UserID, &post.BranchID, &post.Title, &post.Content,
			&post.EventDate, &post.PostType, &post.IsDraft, &post.LikesCount,
			&post.CommentsCount, &post.CreatedAt, &post.UpdatedAt,
			&post.Branch.Title, &post.Branch.Color, &post.Branch.IsPrivate,
			&post.Branch.UserID); err != nil {
			return nil, fmt.Errorf("error scanning post row: %w", err)
		}
		post.Branch.ID = post.BranchID
		post.BranchTitle = post.Branch.Title
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

// UpdateTx updates the editable fields of a post within a transaction
func (r *PostRepository) UpdateTx(ctx context.Context, tx pgx.Tx, post *models.Post) error {
	cmdTag, err := tx.Exec(ctx, `
		UPDATE posts
		SET branch_id = $1, title = $2, content = $3, event_date = $4,
			post_type = $5, is_draft = $6, updated_at = $7
		WHERE id = $8`,
		post.BranchID, post.Title, post.Content, post.EventDate,
		post.PostType, post.IsDraft, time.Now(), post.ID)

	if err != nil {
		return fmt.Errorf("error updating post: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}

	return nil
}

// DeleteTx deletes a post by ID within a transaction. Likes cascade at the
// database level.
func (r *PostRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	cmdTag, err := tx.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting post: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrPostNotFound
	}

	return nil
}

// GetLikesCount returns the current stored likes_count of a post
func (r *PostRepository) GetLikesCount(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT likes_count FROM posts WHERE id = $1`, postID).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrPostNotFound
		}
		return 0, fmt.Errorf("error retrieving likes count: %w", err)
	}
	return count, nil
}
