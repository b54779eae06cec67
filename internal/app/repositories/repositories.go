package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	BranchRepository       *BranchRepository
	PostRepository         *PostRepository
	LikeRepository         *LikeRepository
	SubscriptionRepository *SubscriptionRepository
	TokenRepository        *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		BranchRepository:       NewBranchRepository(db),
		PostRepository:         NewPostRepository(db),
		LikeRepository:         NewLikeRepository(db),
		SubscriptionRepository: NewSubscriptionRepository(db),
		TokenRepository:        NewTokenRepository(db),
	}
}
