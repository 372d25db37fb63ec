package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/erauner12/syncore/internal/assetupload"
	"github.com/erauner12/syncore/internal/repo"
	"github.com/erauner12/syncore/internal/syncengine"
)

func encodeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// apiError is the {Code, Message} shape spec.md §6/§7 requires for every
// structured error response.
type apiError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

type apiErrorResponse struct {
	Error         apiError `json:"error"`
	CorrelationID string   `json:"correlation_id"`
}

// writeDeviceGateError translates the request-level device gate failure
// (spec.md §3 invariant 7) into Device.NotFound, per §6's standard codes.
func writeDeviceGateError(w http.ResponseWriter, r *http.Request) {
	writeStructuredError(w, r, http.StatusForbidden, "Device.NotFound", "device is not a valid sync principal for this user")
}

// writeStructuredError is the single encode path for apiErrorResponse.
func writeStructuredError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = encodeJSON(w, apiErrorResponse{
		Error:         apiError{Code: code, Message: message},
		CorrelationID: GetCorrelationID(r.Context()),
	})
}

// mapAssetUploadError maps assetupload sentinel errors onto spec.md §6's
// standard error codes.
func mapAssetUploadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, assetupload.ErrBlockNotFound):
		writeStructuredError(w, r, http.StatusNotFound, "Block.NotFound", err.Error())
	case errors.Is(err, assetupload.ErrBlockTypeInvalid):
		writeStructuredError(w, r, http.StatusBadRequest, "Block.Type.Invalid", err.Error())
	case errors.Is(err, assetupload.ErrBlockUploadInvalidStatus):
		writeStructuredError(w, r, http.StatusConflict, "Block.Upload.InvalidStatus", err.Error())
	case errors.Is(err, assetupload.ErrAssetClientIDMismatch):
		writeStructuredError(w, r, http.StatusBadRequest, "Asset.ClientId.Mismatch", err.Error())
	case errors.Is(err, assetupload.ErrAssetSizeInvalid):
		writeStructuredError(w, r, http.StatusBadRequest, "Asset.Size.Invalid", err.Error())
	case errors.Is(err, assetupload.ErrAssetSizeTooLarge):
		writeStructuredError(w, r, http.StatusBadRequest, "Asset.Size.TooLarge", err.Error())
	case errors.Is(err, assetupload.ErrUploadFailed):
		writeStructuredError(w, r, http.StatusBadGateway, "Asset.Upload.Failed", err.Error())
	case errors.Is(err, repo.ErrNotFound):
		writeStructuredError(w, r, http.StatusNotFound, "Block.NotFound", err.Error())
	default:
		writeStructuredError(w, r, http.StatusInternalServerError, "Internal.Error", "internal server error")
	}
}

// isDeviceGateErr reports whether err is the sync engines' device gate
// sentinel, across push/pull.
func isDeviceGateErr(err error) bool {
	return errors.Is(err, syncengine.ErrDeviceGateFailed)
}

// commitDespiteUploadError reports whether err is assetupload's
// ErrBlockMarkedFailed, meaning Upload already wrote a Block.Failed
// transition into tx that the caller must commit despite the request as a
// whole failing (spec.md §4.4 phase 3).
func commitDespiteUploadError(err error) bool {
	return errors.Is(err, assetupload.ErrBlockMarkedFailed)
}
