package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/kmapteam/knowledgemap/internal/app/auth"
	appControllers "github.com/kmapteam/knowledgemap/internal/app/controllers"
	appMigrations "github.com/kmapteam/knowledgemap/internal/app/migrations"
	appRepos "github.com/kmapteam/knowledgemap/internal/app/repositories"
	appRoutes "github.com/kmapteam/knowledgemap/internal/app/routes"
	appServices "github.com/kmapteam/knowledgemap/internal/app/services"
	"github.com/kmapteam/knowledgemap/internal/config"
	"github.com/kmapteam/knowledgemap/internal/db"
	appMiddleware "github.com/kmapteam/knowledgemap/internal/middleware"
	pkgAuth "github.com/kmapteam/knowledgemap/internal/pkg/auth"
	"github.com/kmapteam/knowledgemap/internal/pkg/helpers"
	"github.com/kmapteam/knowledgemap/internal/pkg/logger"
	"github.com/kmapteam/knowledgemap/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService            *appServices.AuthService
	UserService            appServices.UserService
	BranchService          appServices.BranchService
	PostService            appServices.PostService
	LikeService            appServices.LikeService
	SubscriptionService    appServices.SubscriptionService
	TimelineService        appServices.TimelineService
	AuthController         *appControllers.AuthController
	UserController         *appControllers.UserController
	BranchController       *appControllers.BranchController
	PostController         *appControllers.PostController
	SubscriptionController *appControllers.SubscriptionController
	LikeController         *appControllers.LikeController
	AuthMiddleware         *appMiddleware.AuthMiddleware
	Repos                  *appRepos.Repositories
	JWTService             *pkgAuth.JWTService
	AuthzService           *appAuth.AuthorizationService
	Logger                 zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), database.Pool, lgr); err != nil {
		// Log the error but don't fail the startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	deps.AuthzService = appAuth.NewAuthorizationService(
		deps.Repos.UserRepository,
		deps.Repos.BranchRepository,
		deps.Repos.PostRepository,
	)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.TokenRepository,
		deps.JWTService,
		lgr,
	)

	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository)
	deps.BranchService = appServices.NewBranchService(deps.Repos.BranchRepository, deps.Repos.UserRepository, deps.AuthzService)
	deps.PostService = appServices.NewPostService(
		database,
		deps.Repos.PostRepository,
		deps.Repos.BranchRepository,
		deps.Repos.LikeRepository,
		deps.AuthzService,
	)
	deps.LikeService = appServices.NewLikeService(
		database,
		deps.Repos.LikeRepository,
		deps.Repos.PostRepository,
		deps.AuthzService,
	)
	deps.SubscriptionService = appServices.NewSubscriptionService(
		database,
		deps.Repos.SubscriptionRepository,
		deps.Repos.UserRepository,
		deps.Repos.BranchRepository,
	)
	deps.TimelineService = appServices.NewTimelineService(deps.Repos.UserRepository, deps.Repos.PostRepository, deps.AuthzService)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, deps.Logger)
	deps.UserController = appControllers.NewUserController(deps.UserService, deps.BranchService, deps.TimelineService)
	deps.BranchController = appControllers.NewBranchController(deps.BranchService, deps.PostService)
	deps.PostController = appControllers.NewPostController(deps.PostService, deps.LikeService)
	deps.SubscriptionController = appControllers.NewSubscriptionController(deps.SubscriptionService)
	deps.LikeController = appControllers.NewLikeController(deps.LikeService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.UserController,
		deps.BranchController,
		deps.PostController,
		deps.SubscriptionController,
		deps.LikeController,
		deps.AuthMiddleware,
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
