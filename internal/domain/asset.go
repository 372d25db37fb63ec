package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AssetBase carries the shared identity/audit fields for Asset, the one
// entity spec.md §3 excludes from the Version scheme every other entity
// uses: "Assets have no Version; 'modified' means created or soft-deleted."
// It is Base minus Version, rather than Asset embedding Base and ignoring
// the field, so an Asset row (and its wire representation) never carries a
// version column that no mutation ever legitimately changes.
type AssetBase struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	CreatedAtUtc time.Time
	UpdatedAtUtc time.Time
	IsDeleted    bool
}

func newAssetBase(userID uuid.UUID, now time.Time) AssetBase {
	return AssetBase{
		ID:           uuid.New(),
		UserID:       userID,
		CreatedAtUtc: now,
		UpdatedAtUtc: now,
		IsDeleted:    false,
	}
}

// checkMutable rejects mutation of a soft-deleted asset (invariant 3).
func (b *AssetBase) checkMutable() error {
	if b.IsDeleted {
		return ErrAlreadyDeleted
	}
	return nil
}

// softDelete flips IsDeleted and refreshes UpdatedAtUtc, with no Version
// bump. Terminal: once set, a second soft-delete is rejected.
func (b *AssetBase) softDelete(now time.Time) error {
	if b.IsDeleted {
		return ErrAlreadyDeleted
	}
	b.IsDeleted = true
	b.UpdatedAtUtc = now
	return nil
}

// Asset is an immutable descriptor of a stored binary. Assets have no
// Version — "modified" means created or soft-deleted (spec.md §3).
type Asset struct {
	AssetBase

	BlockID     uuid.UUID
	FileName    string
	ContentType string
	SizeBytes   int64
	BlobPath    string
}

// NewAsset constructs an Asset. Entry point for Asset.Create.
func NewAsset(userID, blockID uuid.UUID, fileName, contentType string, sizeBytes int64, blobPath string, now time.Time) (*Asset, error) {
	var msgs []string
	if strings.TrimSpace(fileName) == "" {
		msgs = append(msgs, "file name must not be empty")
	}
	if sizeBytes <= 0 {
		msgs = append(msgs, "size must be greater than zero")
	}
	if strings.TrimSpace(blobPath) == "" {
		msgs = append(msgs, "blob path must not be empty")
	}
	if len(msgs) > 0 {
		return nil, newValidationError(msgs...)
	}
	return &Asset{
		AssetBase:   newAssetBase(userID, now),
		BlockID:     blockID,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   sizeBytes,
		BlobPath:    blobPath,
	}, nil
}

// SoftDelete marks the Asset deleted. Terminal per invariant 3.
func (a *Asset) SoftDelete(now time.Time) error {
	return a.softDelete(now)
}
