package httpapi

import (
	"net/http"

	"github.com/erauner12/syncore/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Routes creates the HTTP router for the sync core's four endpoints: push,
// pull, resolve, and asset upload (spec.md §6).
func (s *Server) Routes(jwt auth.JWTCfg) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(CorrelationMiddleware)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(s.DB, jwt))
		r.Use(RateLimitMiddleware(s.RateLimitConfig))

		r.Post("/v1/sync/push", s.PushSync)
		r.Get("/v1/sync/pull", s.PullSync)
		r.Post("/v1/sync/resolve", s.ResolveSync)
		r.Post("/v1/sync/assets", s.UploadAsset)
	})

	log.Info().Msg("HTTP routes registered")
	return r
}
