package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"blogit/internal/config"
	"blogit/internal/db"
	apihttp "blogit/internal/http"
	"blogit/internal/repository"
	"blogit/internal/service"
	"blogit/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if err := db.Migrate(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)

	var (
		limiter     service.LoginRateLimiter = service.NewLoginRateLimiter(cfg.LoginRateWindow, cfg.LoginRateMax)
		revocations service.RevocationStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			limiter = service.NewRedisLoginRateLimiter(redisClient, cfg.LoginRateWindow, cfg.LoginRateMax)
			revocations = service.NewRedisRevocationStore(redisClient)
		}
		cancel()
	}

	var (
		blobs    storage.BlobStore
		photoDir string
	)
	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			logger.Fatal("s3 store init", zap.Error(err))
		}
		blobs = s3Store
	} else {
		local, err := storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			logger.Fatal("local store init", zap.Error(err))
		}
		blobs = local
		photoDir = local.Dir()
	}

	if cfg.SessionTTL == 0 {
		logger.Warn("session tokens are issued without expiry")
	}
	sessions := service.NewSessionServiceWithStore(cfg.JWTSecret, cfg.SessionTTL, revocations)
	hasher := service.NewBcryptHasher(cfg.BcryptCost)
	policy := service.NewStrengthPolicy(cfg.PasswordMinScore)
	userSvc := service.NewUserService(logger, userRepo, hasher, policy, blobs)

	metrics := apihttp.NewAuthMetrics()
	cookie := apihttp.CookieConfig{Name: cfg.SessionCookieName, Secure: cfg.SessionCookieSecure}
	userHandler := apihttp.NewUserHandler(logger, userSvc, sessions, limiter, metrics, cookie)
	profileHandler := apihttp.NewProfileHandler(logger, userSvc, cfg.UploadMaxBytes)
	router := apihttp.NewRouter(logger, sessions, userHandler, profileHandler, metrics, apihttp.RouterOptions{
		CookieName:  cfg.SessionCookieName,
		CORSOrigins: cfg.CORSOrigins,
		PhotoDir:    photoDir,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
