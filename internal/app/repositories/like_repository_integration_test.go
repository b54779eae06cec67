//go:build integration
// +build integration

package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kmapteam/knowledgemap/internal/app/migrations"
	"github.com/kmapteam/knowledgemap/internal/app/models"
	"github.com/kmapteam/knowledgemap/internal/app/repositories"
	"github.com/kmapteam/knowledgemap/internal/db"
	"github.com/kmapteam/knowledgemap/internal/pkg/apperrors"
)

// setupTestDB starts a throwaway PostgreSQL container and applies the
// project migrations to it.
func setupTestDB(t *testing.T) (*db.PostgresDB, func()) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	migrator := migrations.NewMigrator(pool)
	require.NoError(t, migrator.MigrateFromDirectory("../../../migrations"))

	cleanup := func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return &db.PostgresDB{Pool: pool}, cleanup
}

func createTestUser(t *testing.T, repos *repositories.Repositories, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		IsPublic: true,
	}
	require.NoError(t, repos.UserRepository.Create(context.Background(), user))
	return user
}

func createTestBranch(t *testing.T, repos *repositories.Repositories, ownerID int64, title string) *models.Branch {
	t.Helper()
	branch := &models.Branch{
		UserID: ownerID,
		Title:  title,
		Color:  models.ColorBlue,
	}
	require.NoError(t, repos.BranchRepository.Create(context.Background(), branch))
	return branch
}

func createTestPost(t *testing.T, database *db.PostgresDB, repos *repositories.Repositories, userID, branchID int64, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:    userID,
		BranchID:  branchID,
		Title:     title,
		EventDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		PostType:  models.PostTypeText,
	}
	err := database.WithTransaction(context.Background(), func(ctx context.Context, tx pgx.Tx) error {
		if err := repos.PostRepository.CreateTx(ctx, tx, post); err != nil {
			return err
		}
		return repos.BranchRepository.RecomputeCountsTx(ctx, tx, branchID)
	})
	require.NoError(t, err)
	return post
}

func storedBranchCounts(t *testing.T, database *db.PostgresDB, branchID int64) (posts, subscribers int64) {
	t.Helper()
	err := database.Pool.QueryRow(context.Background(),
		`SELECT posts_count, subscribers_count FROM branches WHERE id = $1`,
		branchID).Scan(&posts, &subscribers)
	require.NoError(t, err)
	return posts, subscribers
}

func TestLikeCreateTxDuplicateLosesCleanly(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	repos := repositories.NewRepositories(database.Pool)
	ctx := context.Background()

	author := createTestUser(t, repos, "author")
	reader := createTestUser(t, repos, "reader")
	branch := createTestBranch(t, repos, author.ID, "History")
	post := createTestPost(t, database, repos, author.ID, branch.ID, "First entry")

	err := database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return repos.LikeRepository.CreateTx(ctx, tx, &models.Like{UserID: reader.ID, PostID: post.ID})
	})
	require.NoError(t, err)

	err = database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return repos.LikeRepository.CreateTx(ctx, tx, &models.Like{UserID: reader.ID, PostID: post.ID})
	})
	assert.ErrorIs(t, err, apperrors.ErrLikeExists)

	var rows int64
	require.NoError(t, database.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM likes WHERE user_id = $1 AND post_id = $2`,
		reader.ID, post.ID).Scan(&rows))
	assert.Equal(t, int64(1), rows)
}

func TestRecomputeLikesCountIdempotent(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	repos := repositories.NewRepositories(database.Pool)
	ctx := context.Background()

	author := createTestUser(t, repos, "author")
	reader := createTestUser(t, repos, "reader")
	branch := createTestBranch(t, repos, author.ID, "History")
	post := createTestPost(t, database, repos, author.ID, branch.ID, "First entry")

	var first, second int64
	err := database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := repos.LikeRepository.CreateTx(ctx, tx, &models.Like{UserID: reader.ID, PostID: post.ID}); err != nil {
			return err
		}
		var err error
		first, err = repos.LikeRepository.RecomputeLikesCountTx(ctx, tx, post.ID)
		if err != nil {
			return err
		}
		second, err = repos.LikeRepository.RecomputeLikesCountTx(ctx, tx, post.ID)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, first, second)

	stored, err := repos.PostRepository.GetLikesCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored)
}

func TestConcurrentDuplicateLikeLeavesOneRow(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	repos := repositories.NewRepositories(database.Pool)
	ctx := context.Background()

	author := createTestUser(t, repos, "author")
	reader := createTestUser(t, repos, "reader")
	branch := createTestBranch(t, repos, author.ID, "History")
	post := createTestPost(t, database, repos, author.ID, branch.ID, "First entry")

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
				if err := repos.LikeRepository.CreateTx(ctx, tx, &models.Like{UserID: reader.ID, PostID: post.ID}); err != nil {
					return err
				}
				_, err := repos.LikeRepository.RecomputeLikesCountTx(ctx, tx, post.ID)
				return err
			})
		}(i)
	}
	wg.Wait()

	var winners, losers int
	for _, err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, apperrors.ErrLikeExists):
			losers++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, losers)

	var rows int64
	require.NoError(t, database.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_id = $1`, post.ID).Scan(&rows))
	assert.Equal(t, int64(1), rows)

	stored, err := repos.PostRepository.GetLikesCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored)
}

func TestBranchCountersFollowWrites(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	repos := repositories.NewRepositories(database.Pool)
	ctx := context.Background()

	author := createTestUser(t, repos, "author")
	subscriber := createTestUser(t, repos, "subscriber")
	branch := createTestBranch(t, repos, author.ID, "History")

	createTestPost(t, database, repos, author.ID, branch.ID, "First entry")
	posts, subscribers := storedBranchCounts(t, database, branch.ID)
	assert.Equal(t, int64(1), posts)
	assert.Equal(t, int64(0), subscribers)

	err := database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sub := &models.Subscription{SubscriberID: subscriber.ID, TargetBranchID: &branch.ID}
		if err := repos.SubscriptionRepository.CreateTx(ctx, tx, sub); err != nil {
			return err
		}
		return repos.BranchRepository.RecomputeCountsTx(ctx, tx, branch.ID)
	})
	require.NoError(t, err)

	posts, subscribers = storedBranchCounts(t, database, branch.ID)
	assert.Equal(t, int64(1), posts)
	assert.Equal(t, int64(1), subscribers)

	// A second recompute changes nothing
	err = database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return repos.BranchRepository.RecomputeCountsTx(ctx, tx, branch.ID)
	})
	require.NoError(t, err)

	posts, subscribers = storedBranchCounts(t, database, branch.ID)
	assert.Equal(t, int64(1), posts)
	assert.Equal(t, int64(1), subscribers)
}

func TestFailedPostWriteLeavesNoPartialState(t *testing.T) {
	database, cleanup := setupTestDB(t)
	defer cleanup()
	repos := repositories.NewRepositories(database.Pool)
	ctx := context.Background()

	author := createTestUser(t, repos, "author")
	branch := createTestBranch(t, repos, author.ID, "History")
	createTestPost(t, database, repos, author.ID, branch.ID, "First entry")

	boom := fmt.Errorf("storage failure after insert")
	err := database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		post := &models.Post{
			UserID:    author.ID,
			BranchID:  branch.ID,
			Title:     "Never lands",
			EventDate: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
			PostType:  models.PostTypeText,
		}
		if err := repos.PostRepository.CreateTx(ctx, tx, post); err != nil {
			return err
		}
		if err := repos.BranchRepository.RecomputeCountsTx(ctx, tx, branch.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var rows int64
	require.NoError(t, database.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM posts WHERE branch_id = $1`, branch.ID).Scan(&rows))
	assert.Equal(t, int64(1), rows, "rolled-back insert must not persist")

	posts, _ := storedBranchCounts(t, database, branch.ID)
	assert.Equal(t, int64(1), posts, "counter must match live rows after rollback")
}
