package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/taskgrade/backend/internal/app/controllers"
	appMigrations "github.com/taskgrade/backend/internal/app/migrations"
	appModels "github.com/taskgrade/backend/internal/app/models"
	appRepos "github.com/taskgrade/backend/internal/app/repositories"
	appRoutes "github.com/taskgrade/backend/internal/app/routes"
	appServices "github.com/taskgrade/backend/internal/app/services"
	"github.com/taskgrade/backend/internal/config"
	"github.com/taskgrade/backend/internal/db"
	appMiddleware "github.com/taskgrade/backend/internal/middleware"
	pkgAuth "github.com/taskgrade/backend/internal/pkg/auth"
	"github.com/taskgrade/backend/internal/pkg/filestorage"
	"github.com/taskgrade/backend/internal/pkg/logger"
	"github.com/taskgrade/backend/internal/pkg/metrics"
	"github.com/taskgrade/backend/internal/pkg/observability"
	"github.com/taskgrade/backend/internal/seed"
)

// Release is reported to Sentry; overridden at build time with -ldflags
var Release = "dev"

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService         appServices.AuthService
	RegistrationService appServices.RegistrationService
	CatalogService      appServices.CatalogService
	TaskService         appServices.TaskService
	SubmissionService   appServices.SubmissionService
	GradingService      appServices.GradingService
	ReportService       appServices.ReportService
	Controllers         appRoutes.Controllers
	Repos               *appRepos.Repositories
	Hasher              *pkgAuth.PasswordHasher
	FileStorage         *filestorage.LocalStorage
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupSentry enables error reporting when a DSN is configured.
// The returned func flushes pending events.
func SetupSentry(cfg *config.Config, lgr zerolog.Logger) func() {
	flush, err := observability.InitSentry(cfg.Sentry.DSN, cfg.Sentry.Environment, Release)
	if err != nil {
		lgr.Warn().Err(err).Msg("Sentry initialization failed, continuing without error reporting")
		return flush
	}
	if cfg.Sentry.DSN != "" {
		lgr.Info().Str("environment", cfg.Sentry.Environment).Msg("Sentry error reporting enabled")
	}
	return flush
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, logger.With("migrations"))
	if err := migrator.Up(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// SeedDemoData loads the demonstration data set when enabled.
// Failures are logged and startup continues.
func SeedDemoData(cfg *config.Config, deps *Dependencies, database *db.PostgresDB) {
	if !cfg.Seed.Enabled {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := seed.CreateDefaultData(ctx, deps.Repos, database, deps.Hasher, deps.Logger); err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to create demo data, proceeding anyway...")
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)
	deps.Hasher = pkgAuth.NewPasswordHasher(cfg.Auth.BcryptCost)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.Path, cfg.Storage.DefaultContentType)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.Repos.CatalogRepository,
		deps.Hasher,
		cfg.Auth.NormalizeLoginEmail,
		logger.With("auth"),
	)
	deps.RegistrationService = appServices.NewRegistrationService(
		deps.Repos.UserRepository,
		database,
		deps.Hasher,
		appServices.ImportDefaults{
			Semester:     cfg.Import.Semester,
			Year:         appModels.AcademicYear(cfg.Import.Year),
			Division:     cfg.Import.Division,
			AcademicYear: cfg.Import.AcademicYear,
		},
		logger.With("registration"),
	)
	deps.CatalogService = appServices.NewCatalogService(deps.Repos.CatalogRepository, deps.Repos.UserRepository, logger.With("catalog"))
	deps.TaskService = appServices.NewTaskService(
		deps.Repos.TaskRepository,
		deps.Repos.CatalogRepository,
		deps.Repos.UserRepository,
		deps.Repos.SubmissionRepository,
		database,
		cfg.Tasks.FanoutBatchSize,
		logger.With("tasks"),
	)
	deps.SubmissionService = appServices.NewSubmissionService(deps.Repos.SubmissionRepository, deps.FileStorage, database, logger.With("submissions"))
	deps.GradingService = appServices.NewGradingService(
		deps.Repos.SubmissionRepository,
		deps.Repos.TaskRepository,
		deps.Repos.UserRepository,
		deps.Repos.MarkRepository,
		database,
		logger.With("grading"),
	)
	deps.ReportService = appServices.NewReportService(
		deps.Repos.ReportRepository,
		deps.Repos.TaskRepository,
		deps.Repos.UserRepository,
		logger.With("reports"),
	)

	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(deps.AuthService, deps.RegistrationService, lgr),
		Catalog:    appControllers.NewCatalogController(deps.CatalogService),
		Task:       appControllers.NewTaskController(deps.TaskService),
		Student:    appControllers.NewStudentController(deps.ReportService),
		Teacher:    appControllers.NewTeacherController(deps.ReportService, deps.GradingService),
		Submission: appControllers.NewSubmissionController(deps.SubmissionService),
		Health:     appControllers.NewHealthController(database),
	}

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
	// File paths are looked up as a single escaped segment
	router.UseRawPath = true
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(logger.With("http")))
	router.Use(metrics.Middleware())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins())))
	router.Use(appMiddleware.BodyLimit(cfg.MaxUploadBytes()))

	appRoutes.SetupRouter(router, deps.Controllers)

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	if len(c.AllowOrigins) == 0 {
		c.AllowAllOrigins = true
	}
	return c
}
