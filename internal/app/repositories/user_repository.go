package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kmapteam/knowledgemap/internal/app/models"
	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
	"github.com/kmapteam/knowledgemap/internal/pkg/dberrors"
	"github.com/kmapteam/knowledgemap/internal/pkg/helpers"
)

const userColumns = `id, username, email, password, first_name, last_name, bio, avatar_url,
		website, location, birth_date, is_public, is_staff, is_verified, date_joined, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Password,
		&user.FirstName, &user.LastName, &user.Bio, &user.AvatarURL,
		&user.Website, &user.Location, &user.BirthDate,
		&user.IsPublic, &user.IsStaff, &user.IsVerified,
		&user.DateJoined, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create creates a new user and fills in the generated ID
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, password, first_name, last_name, is_public, is_staff)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, date_joined, updated_at`,
		user.Username, user.Email, user.Password, user.FirstName, user.LastName,
		user.IsPublic, user.IsStaff).Scan(&user.ID, &user.DateJoined, &user.UpdatedAt)

	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "unique_username") {
			return apperrors.ErrUsernameTaken
		}
		if dberrors.IsDuplicateConstraintError(err, "unique_email") {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1`,
		id))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1`,
		username))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1`,
		email))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	return user, nil
}

// List retrieves a page of users ordered by username
func (r *UserRepository) List(ctx context.Context, page, size int) ([]*models.User, int64, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY username ASC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}

	return users, total, nil
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`,
		email).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}

	return exists, nil
}

// UsernameExists checks if a username is already taken
func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`,
		username).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking username: %w", err)
	}

	return exists, nil
}

// UpdateProfile updates the editable profile fields of a user
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE users
		SET first_name = $1, last_name = $2, bio = $3, avatar_url = $4,
			website = $5, location = $6, birth_date = $7, is_public = $8, updated_at = $9
		WHERE id = $10`,
		user.FirstName, user.LastName,
		helpers.GetNullString(user.Bio), helpers.GetNullString(user.AvatarURL),
		helpers.GetNullString(user.Website), helpers.GetNullString(user.Location),
		user.BirthDate, user.IsPublic, time.Now(), user.ID)

	if err != nil {
		return fmt.Errorf("error updating user profile: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE users
		SET password = $1, updated_at = $2
		WHERE id = $3`,
		hashedPassword, time.Now(), userID)

	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// Delete deletes a user by ID. Branches, posts, likes and subscriptions
// cascade at the database level.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting user: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// GetUserCounts computes the aggregate counts shown on a profile. The counts
// come from live rows, not stored counters.
func (r *UserRepository) GetUserCounts(ctx context.Context, userID int64) (*models.UserCounts, error) {
	counts := &models.UserCounts{}
	err := r.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM subscriptions WHERE target_user_id = $1 AND target_branch_id IS NULL),
			(SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1),
			(SELECT COUNT(*) FROM branches WHERE user_id = $1),
			(SELECT COUNT(*) FROM posts WHERE user_id = $1 AND is_draft = FALSE)`,
		userID).Scan(&counts.Followers, &counts.Following, &counts.Branches, &counts.Posts)

	if err != nil {
		return nil, fmt.Errorf("error computing user counts: %w", err)
	}

	return counts, nil
}
