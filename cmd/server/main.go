package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/renovation-tracker-api/internal/auth"
	"github.com/yukikurage/renovation-tracker-api/internal/config"
	"github.com/yukikurage/renovation-tracker-api/internal/database"
	"github.com/yukikurage/renovation-tracker-api/internal/logging"
	"github.com/yukikurage/renovation-tracker-api/internal/metrics"
	"github.com/yukikurage/renovation-tracker-api/internal/routes"
	"github.com/yukikurage/renovation-tracker-api/internal/services"
	"github.com/yukikurage/renovation-tracker-api/internal/storage"
)

const defaultJWTSecret = "default-secret-key-change-me"

func main() {
	// Load configuration
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.IsRelease())

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	if cfg.JWTSecret == defaultJWTSecret {
		if cfg.IsRelease() {
			logrus.Fatal("JWT_SECRET must be set in release mode")
		}
		logrus.Warn("Using the default JWT secret, set JWT_SECRET before deploying")
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close(db)

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Token revocation needs Redis; without it logout is not offered
	var revocations auth.RevocationStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := client.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logrus.WithError(err).WithField("addr", cfg.RedisAddr).Fatal("Failed to connect to Redis")
		}
		revocations = auth.NewRedisRevocationStore(client)
		logrus.WithField("addr", cfg.RedisAddr).Info("Token revocation enabled")
	} else {
		logrus.Info("REDIS_ADDR not set, logout is disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	store, links, err := newBlobStore(ctx, cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize blob store")
	}

	r := routes.Setup(routes.Dependencies{
		DB:          db,
		Tokens:      auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Revocations: revocations,
		BlobStore:   storage.Instrument(store, m),
		Links:       links,
		Metrics:     m,
		Gatherer:    registry,
		BcryptCost:  cfg.BcryptCost,
		Documents: services.DocumentServiceConfig{
			MaxUploadBytes: cfg.MaxUploadBytes,
			DownloadURLTTL: cfg.DownloadURLTTL,
		},
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.Infof("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logrus.Info("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server forced to shutdown")
		os.Exit(1)
	}

	logrus.Info("Server exited")
}

// newBlobStore returns the configured backend. The link resolver is nil unless
// download links are served by this process.
func newBlobStore(ctx context.Context, cfg *config.Config) (storage.BlobStore, storage.LinkResolver, error) {
	switch cfg.BlobBackend {
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, nil, errors.New("S3_BUCKET is required for the s3 blob backend")
		}
		store, err := storage.NewS3Store(ctx, storage.S3Options{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			ForcePathStyle:  cfg.S3ForcePathStyle,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, nil, err
		}
		logrus.WithField("bucket", cfg.S3Bucket).Info("Using S3 blob store")
		return store, nil, nil
	case "local":
		store, err := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL, cfg.JWTSecret+":download-links")
		if err != nil {
			return nil, nil, err
		}
		logrus.WithField("dir", cfg.UploadDir).Info("Using local blob store")
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown BLOB_BACKEND %q", cfg.BlobBackend)
	}
}
