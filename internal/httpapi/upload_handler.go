package httpapi

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/erauner12/syncore/internal/assetupload"
	"github.com/erauner12/syncore/internal/auth"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// maxMultipartMemory bounds how much of an uploaded multipart body is
// buffered in memory before spilling to a temp file; it is independent of
// (and smaller than) AssetStorage.MaxFileSizeBytes.
const maxMultipartMemory = 32 << 20

// UploadAsset handles the asset upload endpoint (spec.md §4.4/§6):
// multipart/form-data with a "file" part plus BlockId/AssetClientId form
// fields, or a raw streaming body with the same metadata carried as query
// parameters.
func (s *Server) UploadAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	var (
		body        io.Reader
		fileName    string
		contentType string
		sizeBytes   int64
		blockID     uuid.UUID
		assetClient string
	)

	if ct := r.Header.Get("Content-Type"); len(ct) >= 19 && ct[:19] == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			writeStructuredError(w, r, http.StatusBadRequest, "Request.Malformed", "invalid multipart body")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeStructuredError(w, r, http.StatusBadRequest, "Request.Malformed", "missing file part")
			return
		}
		defer file.Close()

		body = file
		fileName = header.Filename
		contentType = header.Header.Get("Content-Type")
		sizeBytes = header.Size
		blockID, err = uuid.Parse(r.FormValue("BlockId"))
		if err != nil {
			writeStructuredError(w, r, http.StatusBadRequest, "Request.Malformed", "BlockId is not a valid uuid")
			return
		}
		assetClient = r.FormValue("AssetClientId")
		if v := r.FormValue("FileName"); v != "" {
			fileName = v
		}
		if v := r.FormValue("ContentType"); v != "" {
			contentType = v
		}
		if v := r.FormValue("SizeBytes"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				sizeBytes = n
			}
		}
	} else {
		q := r.URL.Query()
		var err error
		blockID, err = uuid.Parse(q.Get("BlockId"))
		if err != nil {
			writeStructuredError(w, r, http.StatusBadRequest, "Request.Malformed", "BlockId is not a valid uuid")
			return
		}
		assetClient = q.Get("AssetClientId")
		fileName = q.Get("FileName")
		contentType = q.Get("ContentType")
		sizeBytes, err = strconv.ParseInt(q.Get("SizeBytes"), 10, 64)
		if err != nil {
			writeStructuredError(w, r, http.StatusBadRequest, "Request.Malformed", "SizeBytes is not a valid integer")
			return
		}
		body = r.Body
	}

	req := assetupload.UploadRequest{
		BlockID:       blockID,
		AssetClientID: assetClient,
		Body:          body,
		FileName:      fileName,
		ContentType:   contentType,
		SizeBytes:     sizeBytes,
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to begin upload transaction")
		writeStructuredError(w, r, http.StatusInternalServerError, "Internal.Error", "internal server error")
		return
	}
	defer tx.Rollback(ctx)

	result, err := s.AssetUpload.Upload(ctx, tx, userID, req, time.Now().UTC())
	if err != nil {
		if commitDespiteUploadError(err) {
			// Upload already wrote the Block's Failed transition into tx;
			// that write must persist even though the request itself failed.
			if commitErr := tx.Commit(ctx); commitErr != nil {
				log.Error().Err(commitErr).Msg("failed to commit block-failed transaction")
				writeStructuredError(w, r, http.StatusInternalServerError, "Internal.Error", "internal server error")
				return
			}
		}
		mapAssetUploadError(w, r, err)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error().Err(err).Msg("failed to commit upload transaction")
		writeStructuredError(w, r, http.StatusInternalServerError, "Internal.Error", "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, uploadResponseDTO{
		AssetID:     result.AssetID,
		BlockID:     result.BlockID,
		DownloadURL: result.DownloadURL,
	})
}
