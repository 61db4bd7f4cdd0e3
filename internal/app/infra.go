package app

import (
	"context"
	"database/sql"
	"errors"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/lib/pq"

	"github.com/chrisbudnik/cloud-run-jumpstart/internal/config"
	"github.com/chrisbudnik/cloud-run-jumpstart/internal/logger"
	"github.com/chrisbudnik/cloud-run-jumpstart/internal/redis"
)

// Infra holds the process-wide sink clients. All of them are safe for
// concurrent use and constructed exactly once, at startup.
type Infra struct {
	DB    *sql.DB
	S3    *s3.Client
	Redis *redis.Client // nil when no cache is configured
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	if cfg.WarehouseDSN == "" {
		return nil, errors.New("WAREHOUSE_DSN is required")
	}
	if cfg.StorageBucket == "" {
		return nil, errors.New("STORAGE_BUCKET is required")
	}

	sqlDB, err := sql.Open("postgres", cfg.WarehouseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	logger.Info("warehouse ready", nil)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	s3Client := s3.NewFromConfig(awsCfg)

	logger.Info("object store ready", map[string]any{
		"bucket": cfg.StorageBucket,
	})

	infra := &Infra{
		DB: sqlDB,
		S3: s3Client,
	}

	// The existence cache is optional; without Redis every existence
	// check goes straight to the warehouse.
	if cfg.RedisAddr != "" {
		redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		infra.Redis = redisClient
		logger.Info("existence cache ready", nil)
	}

	return infra, nil
}
