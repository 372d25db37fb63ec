package httpapi

import (
	"net/http"
	"time"

	"github.com/erauner12/syncore/internal/auth"
	"github.com/erauner12/syncore/internal/syncengine"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PullSync handles GET /v1/sync/pull (spec.md §4.2/§6).
func (s *Server) PullSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)
	q := r.URL.Query()

	var deviceID *uuid.UUID
	if raw := q.Get("DeviceId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeStructuredError(w, r, http.StatusBadRequest, "Request.Malformed", "DeviceId is not a valid uuid")
			return
		}
		deviceID = &id
	}

	var sinceUtc *time.Time
	if raw := q.Get("SinceUtc"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeStructuredError(w, r, http.StatusBadRequest, "Request.Malformed", "SinceUtc is not a valid ISO-8601 timestamp")
			return
		}
		t = t.UTC()
		sinceUtc = &t
	}

	maxItems := parseLimit(q.Get("MaxItemsPerEntity"), s.DefaultPullMaxItemsPerEntity, s.DefaultPullMaxItemsPerEntity)

	req := syncengine.PullRequest{
		DeviceID:          deviceID,
		SinceUtc:          sinceUtc,
		MaxItemsPerEntity: maxItems,
	}

	result, err := s.Puller.Pull(ctx, userID, req, time.Now().UTC())
	if err != nil {
		if isDeviceGateErr(err) {
			writeDeviceGateError(w, r)
			return
		}
		log.Error().Err(err).Msg("pull failed")
		writeStructuredError(w, r, http.StatusInternalServerError, "Internal.Error", "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, pullResultToDTO(result))
}
