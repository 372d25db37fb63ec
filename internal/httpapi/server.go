package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/erauner12/syncore/internal/assetupload"
	"github.com/erauner12/syncore/internal/auth"
	"github.com/erauner12/syncore/internal/syncengine"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Server holds the dependencies every sync-core HTTP handler needs: the
// three engines (C1/C2/C3), the asset upload orchestrator (C4), the
// connection pool for the per-request transaction, and the rate limit
// configuration for the sync route group.
type Server struct {
	DB *pgxpool.Pool

	Pusher       *syncengine.Pusher
	Puller       *syncengine.Puller
	Resolver     *syncengine.Resolver
	AssetUpload  *assetupload.Orchestrator

	JWTCfg          auth.JWTCfg
	RateLimitConfig RateLimitInfo

	DefaultPullMaxItemsPerEntity int
}

// DefaultRateLimitConfig is the baseline rate limit applied to the sync
// route group.
var DefaultRateLimitConfig = RateLimitInfo{
	WindowSeconds: 60,
	MaxRequests:   600,
	Burst:         120,
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode json response")
	}
}

// parseLimit parses a limit query param with default and max.
func parseLimit(q string, def, max int) int {
	if q == "" {
		return def
	}
	n, err := strconv.Atoi(q)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
