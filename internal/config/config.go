package config

import (
	"os"
	"time"
)

const (
	AuthModeSharedKey  = "shared-key"
	AuthModeGoogleOIDC = "google-oidc"
)

type Config struct {
	AppPort string

	// Exactly one auth scheme is active per deployment.
	AuthMode        string
	AccessKey       string
	AccessKeyHeader string
	GoogleAudience  string

	WarehouseDSN     string
	WarehouseProject string
	DefaultTableID   string

	StorageBucket string

	RedisAddr     string
	RedisPassword string

	SinkTimeout time.Duration
}

func Load() Config {

	cfg := Config{

		AppPort: getenv("APP_PORT", "8080"),

		AuthMode:        getenv("AUTH_MODE", AuthModeSharedKey),
		AccessKey:       os.Getenv("ACCESS_KEY"),
		AccessKeyHeader: getenv("ACCESS_KEY_HEADER", "access-key"),
		GoogleAudience:  os.Getenv("GOOGLE_AUDIENCE"),

		WarehouseDSN:     os.Getenv("WAREHOUSE_DSN"),
		WarehouseProject: os.Getenv("WAREHOUSE_PROJECT"),
		DefaultTableID:   os.Getenv("DEFAULT_TABLE_ID"),

		StorageBucket: os.Getenv("STORAGE_BUCKET"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		SinkTimeout: getenvDuration("SINK_TIMEOUT", 60*time.Second),
	}

	return cfg

}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
