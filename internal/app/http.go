package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/chrisbudnik/cloud-run-jumpstart/internal/auth/verifier"
	"github.com/chrisbudnik/cloud-run-jumpstart/internal/auth/verifier/idtoken"
	"github.com/chrisbudnik/cloud-run-jumpstart/internal/auth/verifier/sharedkey"
	"github.com/chrisbudnik/cloud-run-jumpstart/internal/blob"
	"github.com/chrisbudnik/cloud-run-jumpstart/internal/config"
	"github.com/chrisbudnik/cloud-run-jumpstart/internal/handler"
	"github.com/chrisbudnik/cloud-run-jumpstart/internal/ingest"
	"github.com/chrisbudnik/cloud-run-jumpstart/internal/logger"
	"github.com/chrisbudnik/cloud-run-jumpstart/internal/middleware"
	"github.com/chrisbudnik/cloud-run-jumpstart/internal/sink/objectstore"
	"github.com/chrisbudnik/cloud-run-jumpstart/internal/sink/warehouse"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	tableSink := warehouse.New(infra.DB, cfg.WarehouseProject)
	if err := tableSink.EnsureMetadata(ctx); err != nil {
		return nil, nil, err
	}

	objectSink, err := objectstore.New(infra.S3, cfg.StorageBucket)
	if err != nil {
		return nil, nil, err
	}

	var cache ingest.ExistenceCache
	if infra.Redis != nil {
		cache = ingest.NewRedisCache(infra.Redis.Client)
	}

	ingestGateway := ingest.NewGateway(tableSink, cache, cfg.SinkTimeout)
	blobGateway := blob.NewGateway(objectSink, cfg.SinkTimeout)

	requestVerifier, err := buildVerifier(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("admission verifier configured", map[string]any{
		"verifier": requestVerifier.Name(),
	})

	admission := middleware.NewAdmission(requestVerifier)

	apiHandler := handler.NewHandler(ingestGateway, blobGateway, cfg.DefaultTableID)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// The auditor sits ahead of admission so rejected requests are
	// recorded too.
	router.Use(middleware.Auditor())

	// ----------------------------
	// Public Routes
	// ----------------------------

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected Routes
	// ----------------------------

	api := router.Group("/")
	api.Use(middleware.GinRequireAdmission(admission))

	apiHandler.RegisterRoutes(api)

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}

// buildVerifier selects the single verification strategy this deployment
// runs with. The two schemes are alternatives, never combined.
func buildVerifier(ctx context.Context, cfg config.Config) (verifier.Verifier, error) {
	switch cfg.AuthMode {
	case config.AuthModeSharedKey:
		return sharedkey.New(cfg.AccessKeyHeader, cfg.AccessKey)
	case config.AuthModeGoogleOIDC:
		return idtoken.New(ctx, cfg.GoogleAudience)
	default:
		return nil, fmt.Errorf("unknown auth mode: %q", cfg.AuthMode)
	}
}
