package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

func bootLogger(cfg config.Config) *slog.Logger {
	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	return logger
}

func bootDB(cfg config.Config) (*gorm.DB, error) {
	if err := config.Require(map[string]string{"DATABASE_URL": cfg.DatabaseURL}); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	return db, nil
}

// bootIndex returns nil when ES_URL is not set.
func bootIndex(cfg config.Config) (*search.Index, error) {
	if cfg.ESURL == "" {
		return nil, nil
	}
	client, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
	if err != nil {
		return nil, err
	}
	return &search.Index{ES: client, Name: cfg.ESIndex}, nil
}

// bootBucket returns nil when S3_BUCKET is not set.
func bootBucket(ctx context.Context, cfg config.Config) (*storage.S3, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}
	return storage.NewS3(ctx, storage.S3Config{
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		Key:      cfg.S3Key,
		Secret:   cfg.S3Secret,
		Endpoint: cfg.S3Endpoint,
	})
}
