package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/erauner12/syncore/internal/auth"
	"github.com/rs/zerolog/log"
)

// PushSync handles POST /v1/sync/push (spec.md §4.1/§6).
func (s *Server) PushSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	var body pushRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeStructuredError(w, r, http.StatusBadRequest, "Request.Malformed", "invalid request body")
		return
	}

	req, err := pushRequestToEngine(body)
	if err != nil {
		writeStructuredError(w, r, http.StatusBadRequest, "Request.Malformed", err.Error())
		return
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to begin push transaction")
		writeStructuredError(w, r, http.StatusInternalServerError, "Internal.Error", "internal server error")
		return
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	result, err := s.Pusher.Push(ctx, tx, userID, req, now)
	if err != nil {
		if isDeviceGateErr(err) {
			writeDeviceGateError(w, r)
			return
		}
		log.Error().Err(err).Msg("push failed")
		writeStructuredError(w, r, http.StatusInternalServerError, "Internal.Error", "internal server error")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error().Err(err).Msg("failed to commit push transaction")
		writeStructuredError(w, r, http.StatusInternalServerError, "Internal.Error", "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, pushResultToDTO(result))
}
