package repo

import (
	"context"
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AssetRepo is the persistence capability for domain.Asset. Assets have no
// Version (spec.md §3); "modified" means created or soft-deleted.
type AssetRepo interface {
	// GetByBlockID returns the Asset linked to a Block, if one exists. Used
	// by the upload orchestrator to detect an idempotent retry (spec.md
	// §4.4 phase 2). Returns ErrNotFound if none exists.
	GetByBlockID(ctx context.Context, tx pgx.Tx, userID, blockID uuid.UUID) (*domain.Asset, error)
	Insert(ctx context.Context, tx pgx.Tx, a *domain.Asset) error
	// ListForPull returns assets for the pull delta. Not capped by
	// maxItemsPerEntity (spec.md §4.2 — the data set is small).
	ListForPull(ctx context.Context, userID uuid.UUID, sinceUtc *time.Time) ([]domain.Asset, error)
}
