package routes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/depositflow/depositflow/internal/config"
	"github.com/depositflow/depositflow/internal/deposit"
	"github.com/depositflow/depositflow/internal/identity"
	"github.com/depositflow/depositflow/internal/middleware"
	"github.com/depositflow/depositflow/internal/notification"
	"github.com/depositflow/depositflow/internal/session"
	"github.com/depositflow/depositflow/internal/storage"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Sessions live in Redis, so the cache is not optional.
	if d.Cache == nil {
		return fmt.Errorf("redis client is required")
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))

	// Static pages (register/login/dashboard HTML).
	app.Static("/", d.Cfg.PublicDir)

	// Health
	RegisterHealthRoutes(app, d)

	// Repositories fall back to memory without a database (tests, local dev).
	var userRepo identity.Repository
	var depositRepo deposit.Repository
	if d.DB != nil {
		userRepo = identity.NewPostgresRepository(d.DB)
		depositRepo = deposit.NewPostgresRepository(d.DB)
	} else {
		userRepo = identity.NewMemoryRepository()
		depositRepo = deposit.NewMemoryRepository()
	}

	identitySvc := identity.NewService(userRepo)
	sessions := session.NewRedisStore(d.Cache, d.Cfg.SessionTTL)
	notifier := notification.NewLoggerNotifier(d.Logger)
	depositSvc := deposit.NewService(depositRepo, notifier)

	files, err := newDocumentationStore(d.Cfg)
	if err != nil {
		return err
	}
	depositHandler := deposit.NewHandler(depositSvc, files)

	api := app.Group("/api")

	// Public routes must be wired before the session guard enters the stack.
	rateLimiter := middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit)
	RegisterIdentityRoutes(api, identitySvc, sessions, rateLimiter, d.Logger)

	authed := api.Group("", middleware.SessionAuth(sessions))
	RegisterLogoutRoute(authed, sessions)
	RegisterDepositRoutes(authed, depositHandler)

	return nil
}

func newDocumentationStore(cfg config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageS3:
		return storage.NewS3Store(context.Background(), storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return storage.NewDiskStore(cfg.UploadDir)
	}
}
