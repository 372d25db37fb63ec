// Package config centralizes the environment-variable surface the server
// reads at startup, per spec.md §6's configuration surface.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the fully-resolved set of runtime options.
type Config struct {
	HTTPAddr    string
	DatabaseURL string
	Env         string

	JWTHS256Secret string
	JWTIssuer      string
	JWTJWKSURL     string
	JWTAudience    string

	AssetStorage AssetStorageConfig
	Sync         SyncConfig
}

// AssetStorageConfig groups the Asset Upload Orchestrator's configurable
// options (spec.md §6).
type AssetStorageConfig struct {
	ContainerName       string
	MaxFileSizeBytes    int64
	DownloadURLValidity time.Duration

	AccountName string
	AccountKey  string
	ServiceURL  string
}

// SyncConfig groups the Pull Engine's configurable options.
type SyncConfig struct {
	DefaultPullMaxItemsPerEntity int
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt64(k string, def int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// Load reads Config from the process environment, applying spec.md §6's
// documented defaults wherever a variable is unset.
func Load() Config {
	return Config{
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		DatabaseURL: env("DATABASE_URL", ""),
		Env:         env("ENV", ""),

		JWTHS256Secret: env("JWT_HS256_SECRET", "dev-secret-change-in-production"),
		JWTIssuer:      env("JWT_ISSUER", ""),
		JWTJWKSURL:     env("JWT_JWKS_URL", ""),
		JWTAudience:    env("JWT_AUDIENCE", ""),

		AssetStorage: AssetStorageConfig{
			ContainerName:       env("ASSET_STORAGE_CONTAINER_NAME", "user-assets"),
			MaxFileSizeBytes:    envInt64("ASSET_STORAGE_MAX_FILE_SIZE_BYTES", 50*1024*1024),
			DownloadURLValidity: envDuration("ASSET_STORAGE_DOWNLOAD_URL_VALIDITY", time.Hour),
			AccountName:         env("AZURE_STORAGE_ACCOUNT_NAME", ""),
			AccountKey:          env("AZURE_STORAGE_ACCOUNT_KEY", ""),
			ServiceURL:          env("AZURE_STORAGE_SERVICE_URL", ""),
		},
		Sync: SyncConfig{
			DefaultPullMaxItemsPerEntity: envInt("SYNC_DEFAULT_PULL_MAX_ITEMS_PER_ENTITY", 500),
		},
	}
}
