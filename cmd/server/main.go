package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erauner12/syncore/internal/assetupload"
	"github.com/erauner12/syncore/internal/auth"
	"github.com/erauner12/syncore/internal/blobstore"
	"github.com/erauner12/syncore/internal/config"
	"github.com/erauner12/syncore/internal/db"
	"github.com/erauner12/syncore/internal/httpapi"
	"github.com/erauner12/syncore/internal/outbox"
	"github.com/erauner12/syncore/internal/repo"
	"github.com/erauner12/syncore/internal/syncengine"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = log.With().Str("service", "syncore").Logger()

	cfg := config.Load()

	if cfg.Env == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	isDevMode := cfg.Env == "dev"

	// JWKS URL and issuer must be set together: accepting one without the
	// other either validates signatures against no issuer, or trusts an
	// issuer without a key source.
	if (cfg.JWTJWKSURL != "" && cfg.JWTIssuer == "") || (cfg.JWTJWKSURL == "" && cfg.JWTIssuer != "") {
		log.Fatal().
			Str("issuer", cfg.JWTIssuer).
			Str("jwks_url", cfg.JWTJWKSURL).
			Msg("JWT_ISSUER and JWT_JWKS_URL must both be set or both be empty")
	}

	jwtCfg := auth.JWTCfg{
		HS256Secret: cfg.JWTHS256Secret,
		DevMode:     isDevMode,
		Issuer:      cfg.JWTIssuer,
		JWKSURL:     cfg.JWTJWKSURL,
		Audience:    cfg.JWTAudience,
	}

	// Defense in depth: even with upstream OIDC configured, the middleware
	// still accepts HS256 tokens, so production must not run with the
	// default secret.
	if !isDevMode && (cfg.JWTHS256Secret == "" || cfg.JWTHS256Secret == "dev-secret-change-in-production") {
		log.Fatal().Msg("cannot start in production mode with default or missing JWT_HS256_SECRET")
	}

	if err := auth.InitJWKSCache(jwtCfg); err != nil {
		log.Warn().Err(err).Msg("failed to pre-fetch JWKS (will retry on first request)")
	}

	blobs, err := newBlobStore(cfg.AssetStorage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct blob store")
	}

	tasks := repo.NewPgTaskRepo(pool)
	notes := repo.NewPgNoteRepo(pool)
	blocks := repo.NewPgBlockRepo(pool)
	assets := repo.NewPgAssetRepo(pool)
	devices := repo.NewPgDeviceRepo(pool)
	ob := outbox.NewPgAppender()

	srv := &httpapi.Server{
		DB:                           pool,
		Pusher:                       syncengine.NewPusher(tasks, notes, blocks, devices, ob),
		Puller:                       syncengine.NewPuller(tasks, notes, blocks, assets, devices, blobs, cfg.AssetStorage.DownloadURLValidity),
		Resolver:                     syncengine.NewResolver(tasks, notes, blocks, ob),
		AssetUpload:                  assetupload.NewOrchestrator(blocks, assets, ob, blobs, cfg.AssetStorage.ContainerName, cfg.AssetStorage.MaxFileSizeBytes, cfg.AssetStorage.DownloadURLValidity),
		JWTCfg:                       jwtCfg,
		RateLimitConfig:              httpapi.DefaultRateLimitConfig,
		DefaultPullMaxItemsPerEntity: cfg.Sync.DefaultPullMaxItemsPerEntity,
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Routes(jwtCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("server stopped")
}

// newBlobStore constructs the Azure-backed blob store from the resolved
// asset storage config. A missing ServiceURL is fatal: the Asset Upload
// Orchestrator has no in-process fallback for production use.
func newBlobStore(cfg config.AssetStorageConfig) (*blobstore.AzureBlobStore, error) {
	return blobstore.NewAzureBlobStore(cfg.ServiceURL, cfg.AccountName, cfg.AccountKey)
}
