package seed

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	appModels "github.com/kmapteam/knowledgemap/internal/app/models"
	appRepos "github.com/kmapteam/knowledgemap/internal/app/repositories"
)

const defaultAdminUsername = "admin"

// CreateDefaultData ensures a staff admin account exists. The password comes
// from ADMIN_PASSWORD when set; the fallback is only suitable for local
// development.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	exists, err := userRepo.UsernameExists(ctx, defaultAdminUsername)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking for default admin user")
		return err
	}
	if exists {
		lgr.Debug().Msg("Default admin user already exists, skipping seed")
		return nil
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin12345"
		lgr.Warn().Msg("ADMIN_PASSWORD not set, seeding admin with the default development password")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing default admin password")
		return err
	}

	admin := &appModels.User{
		Username:   defaultAdminUsername,
		Email:      "admin@knowledgemap.app",
		Password:   string(hashed),
		FirstName:  "Site",
		LastName:   "Admin",
		IsPublic:   false,
		IsStaff:    true,
		IsVerified: true,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		lgr.Error().Err(err).Msg("Error creating default admin user")
		return err
	}

	lgr.Info().Int64("userId", admin.ID).Msg("Default admin user created")
	return nil
}
