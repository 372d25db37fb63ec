// Package assetupload implements the Asset Upload Orchestrator (C4): the
// five-phase workflow that turns a content stream into a committed Asset
// entity and an Uploaded Block, with a blob PUT as the clearly marked point
// of no return (spec.md §4.4).
package assetupload

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/erauner12/syncore/internal/blobstore"
	"github.com/erauner12/syncore/internal/domain"
	"github.com/erauner12/syncore/internal/outbox"
	"github.com/erauner12/syncore/internal/repo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// UploadRequest is the orchestrator's input (spec.md §4.4's Upload operation).
type UploadRequest struct {
	BlockID       uuid.UUID
	AssetClientID string
	Body          io.Reader
	FileName      string
	ContentType   string
	SizeBytes     int64
}

// UploadResult mirrors the {AssetId, BlockId, DownloadUrl?} response shape.
type UploadResult struct {
	AssetID     uuid.UUID
	BlockID     uuid.UUID
	DownloadURL *string
}

// Orchestrator wires together the repositories, blob store, and outbox
// appender the five-phase workflow depends on.
type Orchestrator struct {
	Blocks repo.BlockRepo
	Assets repo.AssetRepo
	Outbox outbox.Appender
	Blobs  blobstore.BlobStore

	ContainerName       string
	MaxFileSizeBytes    int64
	DownloadURLValidity time.Duration
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(blocks repo.BlockRepo, assets repo.AssetRepo, ob outbox.Appender, blobs blobstore.BlobStore, containerName string, maxFileSizeBytes int64, downloadURLValidity time.Duration) *Orchestrator {
	return &Orchestrator{
		Blocks:              blocks,
		Assets:              assets,
		Outbox:              ob,
		Blobs:               blobs,
		ContainerName:       containerName,
		MaxFileSizeBytes:    maxFileSizeBytes,
		DownloadURLValidity: downloadURLValidity,
	}
}

// Upload runs the five-phase workflow inside tx. The caller owns tx's
// lifetime the same way it does for Push: begin before calling, commit once
// Upload returns successfully. The one exception is a Phase 3 blob-PUT
// failure: Upload writes the Block's Failed transition into tx and returns
// ErrBlockMarkedFailed rather than committing tx itself (tx's lifetime stays
// with the caller throughout) — the caller must check for that error and
// commit instead of rolling back, or the Failed transition spec.md §4.4
// phase 3 requires is silently discarded.
func (o *Orchestrator) Upload(ctx context.Context, tx pgx.Tx, userID uuid.UUID, req UploadRequest, now time.Time) (*UploadResult, error) {
	// Phase 1: input validation.
	if req.SizeBytes <= 0 {
		return nil, ErrAssetSizeInvalid
	}
	if req.SizeBytes > o.MaxFileSizeBytes {
		return nil, ErrAssetSizeTooLarge
	}
	if req.Body == nil {
		return nil, fmt.Errorf("assetupload: %w", ErrAssetSizeInvalid)
	}

	// Phase 2: state validation (reads only).
	block, err := o.Blocks.GetByID(ctx, tx, userID, req.BlockID)
	if err != nil {
		if err == repo.ErrNotFound {
			return nil, ErrBlockNotFound
		}
		return nil, err
	}
	if !block.Type.IsAssetType() {
		return nil, ErrBlockTypeInvalid
	}
	if block.AssetClientID != req.AssetClientID {
		return nil, ErrAssetClientIDMismatch
	}
	if existing, err := o.Assets.GetByBlockID(ctx, tx, userID, req.BlockID); err == nil {
		return o.idempotentRetryResult(ctx, existing)
	}
	if block.UploadStatus != domain.UploadStatusPending {
		return nil, ErrBlockUploadInvalidStatus
	}

	sanitized := sanitizeFileName(req.FileName)
	blobPath := fmt.Sprintf("%s/%s/%s/%s/%s", o.ContainerName, userID, block.ParentID, block.ID, sanitized)

	// Phase 3: blob upload, the point of no return.
	if err := o.Blobs.Put(ctx, blobPath, req.Body, req.SizeBytes, req.ContentType); err != nil {
		if failErr := block.SetUploadFailed(now); failErr != nil {
			return nil, failErr
		}
		if updateErr := o.Blocks.Update(ctx, tx, block); updateErr != nil {
			return nil, updateErr
		}
		appendOutboxBestEffort(ctx, tx, o.Outbox, outbox.AggregateTypeBlock, outbox.MessageTypeBlockUpdated, block.ID, userID, block, now)
		return nil, ErrBlockMarkedFailed
	}

	// Phase 4: entity assembly (all-or-nothing, in memory).
	asset, err := domain.NewAsset(userID, block.ID, sanitized, req.ContentType, req.SizeBytes, blobPath, now)
	if err != nil {
		o.cleanupOrphanedBlob(ctx, blobPath)
		return nil, err
	}
	if err := block.SetAssetUploaded(asset.ID, now); err != nil {
		o.cleanupOrphanedBlob(ctx, blobPath)
		return nil, err
	}

	// Phase 5: commit (persist Asset + Block + both outbox messages in tx),
	// then mint a download URL.
	if err := o.Assets.Insert(ctx, tx, asset); err != nil {
		o.cleanupOrphanedBlob(ctx, blobPath)
		return nil, err
	}
	if err := o.Blocks.Update(ctx, tx, block); err != nil {
		o.cleanupOrphanedBlob(ctx, blobPath)
		return nil, err
	}
	appendOutboxBestEffort(ctx, tx, o.Outbox, outbox.AggregateTypeAsset, outbox.MessageTypeAssetCreated, asset.ID, userID, asset, now)
	appendOutboxBestEffort(ctx, tx, o.Outbox, outbox.AggregateTypeBlock, outbox.MessageTypeBlockUpdated, block.ID, userID, block, now)

	result := &UploadResult{AssetID: asset.ID, BlockID: block.ID}
	if url, err := o.Blobs.SignURL(ctx, blobPath, o.DownloadURLValidity); err != nil {
		log.Warn().Err(err).Str("assetId", asset.ID.String()).Msg("failed to sign asset download url after commit")
	} else {
		result.DownloadURL = &url
	}
	return result, nil
}

func (o *Orchestrator) idempotentRetryResult(ctx context.Context, asset *domain.Asset) (*UploadResult, error) {
	result := &UploadResult{AssetID: asset.ID, BlockID: asset.BlockID}
	if url, err := o.Blobs.SignURL(ctx, asset.BlobPath, o.DownloadURLValidity); err == nil {
		result.DownloadURL = &url
	}
	return result, nil
}

// cleanupOrphanedBlob is best-effort per spec.md §4.4 phase 4: if deletion
// itself fails the blob is orphaned, left for an out-of-scope reaper.
func (o *Orchestrator) cleanupOrphanedBlob(ctx context.Context, blobPath string) {
	if err := o.Blobs.Delete(ctx, blobPath); err != nil {
		log.Error().Err(err).Str("blobPath", blobPath).Msg("failed to clean up orphaned blob after entity assembly failure")
	}
}

func appendOutboxBestEffort(ctx context.Context, tx pgx.Tx, appender outbox.Appender, aggregateType outbox.AggregateType, messageType outbox.MessageType, aggregateID, userID uuid.UUID, snapshot any, now time.Time) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		log.Error().Err(err).Str("aggregateId", aggregateID.String()).Msg("failed to marshal outbox payload")
		return
	}
	msg := outbox.New(aggregateID, aggregateType, messageType, payload, userID, nil, now)
	if err := appender.Append(ctx, tx, msg); err != nil {
		log.Error().Err(err).Str("aggregateId", aggregateID.String()).Str("messageType", string(messageType)).Msg("outbox append failed, mutation stands")
	}
}
