package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"lumo/internal/config"
	"lumo/internal/domain/photo"
	"lumo/internal/domain/plan"
	"lumo/internal/domain/token"
	"lumo/internal/domain/user"
	"lumo/internal/handler"
	"lumo/internal/metrics"
	"lumo/internal/quota"
	lumoredis "lumo/internal/redis"
	"lumo/internal/repository"
	"lumo/internal/repository/postgres"
	"lumo/internal/repository/redisstore"
	"lumo/internal/server"
	"lumo/internal/services"
	"lumo/internal/storage"
	"lumo/pkg/database"
	"lumo/pkg/logger"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l := logger.New(cfg.Server.Environment)
	logger.SetGlobalLogger(l)
	defer l.Logger.Sync()

	redisClient, err := lumoredis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}

	store, healthCheck, err := buildStore(cfg, redisClient)
	if err != nil {
		log.Fatalf("Failed to set up metadata store: %v", err)
	}

	staging, err := storage.NewStaging(cfg.Upload.StagingDir)
	if err != nil {
		log.Fatalf("Failed to set up staging directory: %v", err)
	}

	blobs, err := buildBlobStore(cfg)
	if err != nil {
		log.Fatalf("Failed to set up blob store: %v", err)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	hub := server.NewHub(l)
	hub.Run()
	defer hub.Stop()

	evaluator := quota.NewEvaluator(store.Plans)
	tokenService := services.NewTokenService(store.Tokens, []byte(cfg.Upload.TokenSecret))
	admissionService := services.NewAdmissionService(store, evaluator, staging, cfg.Upload.MaxFileSize, l).
		WithMetrics(m).
		WithFeed(hub)

	sessions := lumoredis.NewSessionStore(redisClient, cfg.Auth.AccessTTL)
	authService := services.NewAuthService(store.Users, sessions, cfg)

	relayWorker := services.NewRelayWorker(
		store.Photos,
		staging,
		blobs,
		cfg.Relay.Container,
		cfg.Relay.Interval,
		cfg.Relay.PerFileTimeout,
		l,
	).WithMetrics(m)
	relayWorker.Start()
	defer relayWorker.Stop()

	limiter := lumoredis.NewRateLimiter(redisClient, lumoredis.DefaultRateLimitConfig())

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Auth:   handler.NewAuthHandler(authService),
		Token:  handler.NewTokenHandler(tokenService),
		Upload: handler.NewUploadHandler(admissionService, cfg.Upload.MaxFileSize),
		Relay:  handler.NewRelayHandler(relayWorker),
		WS:     server.NewWebSocketHandler(hub, tokenService, l),
	}, authService, limiter, m, registry, healthCheck)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}

// buildStore selects the metadata backend. Postgres owns schema
// migration; the redis backend needs none.
func buildStore(cfg *config.Config, redisClient *goredis.Client) (repository.Store, func(ctx context.Context) error, error) {
	switch cfg.Store.Backend {
	case "redis":
		store := redisstore.New(redisClient)
		check := func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
		return store, check, nil
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			return repository.Store{}, nil, err
		}
		if err := migrate(db); err != nil {
			return repository.Store{}, nil, err
		}
		store := repository.Store{
			Tokens: postgres.NewTokenRepository(db),
			Photos: postgres.NewPhotoRepository(db),
			Plans:  postgres.NewPlanRepository(db),
			Users:  postgres.NewUserRepository(db),
		}
		check := func(ctx context.Context) error {
			return database.HealthCheck(db)
		}
		return store, check, nil
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&token.UploadToken{},
		&photo.Photo{},
		&plan.Subscription{},
		&plan.Usage{},
	)
}

func buildBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.Relay.Backend {
	case "minio":
		return storage.NewMinIOStore(cfg.MinIO)
	default:
		return storage.NewS3Store(context.Background(), cfg.S3)
	}
}
