package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/erauner12/syncore/internal/auth"
	"github.com/erauner12/syncore/internal/syncengine"
	"github.com/rs/zerolog/log"
)

// ResolveSync handles POST /v1/sync/resolve (spec.md §4.3/§6).
func (s *Server) ResolveSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	var body resolveRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeStructuredError(w, r, http.StatusBadRequest, "Request.Malformed", "invalid request body")
		return
	}

	items := make([]syncengine.ResolveItem, 0, len(body.Items))
	for _, dto := range body.Items {
		item, err := resolveItemToEngine(dto)
		if err != nil {
			writeStructuredError(w, r, http.StatusBadRequest, "Request.Malformed", err.Error())
			return
		}
		items = append(items, item)
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to begin resolve transaction")
		writeStructuredError(w, r, http.StatusInternalServerError, "Internal.Error", "internal server error")
		return
	}
	defer tx.Rollback(ctx)

	results, err := s.Resolver.Resolve(ctx, tx, userID, items, time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("resolve failed")
		writeStructuredError(w, r, http.StatusInternalServerError, "Internal.Error", "internal server error")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error().Err(err).Msg("failed to commit resolve transaction")
		writeStructuredError(w, r, http.StatusInternalServerError, "Internal.Error", "internal server error")
		return
	}

	out := make([]resolveResultDTO, 0, len(results))
	for _, res := range results {
		out = append(out, resolveResultToDTO(res))
	}
	writeJSON(w, http.StatusOK, resolveResponseDTO{Results: out})
}
