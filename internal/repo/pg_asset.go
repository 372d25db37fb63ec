package repo

import (
	"context"
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgAssetRepo is the pgx-backed AssetRepo.
type PgAssetRepo struct {
	db *pgxpool.Pool
}

// NewPgAssetRepo constructs a PgAssetRepo.
func NewPgAssetRepo(db *pgxpool.Pool) *PgAssetRepo {
	return &PgAssetRepo{db: db}
}

// assetColumns deliberately has no version column: Asset.AssetBase carries
// no Version (spec.md §3).
const assetColumns = `id, user_id, created_at_utc, updated_at_utc, is_deleted, block_id, file_name, content_type, size_bytes, blob_path`

func scanAsset(row pgx.Row) (*domain.Asset, error) {
	var a domain.Asset
	if err := row.Scan(&a.ID, &a.UserID, &a.CreatedAtUtc, &a.UpdatedAtUtc, &a.IsDeleted, &a.BlockID, &a.FileName, &a.ContentType, &a.SizeBytes, &a.BlobPath); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PgAssetRepo) GetByBlockID(ctx context.Context, tx pgx.Tx, userID, blockID uuid.UUID) (*domain.Asset, error) {
	row := tx.QueryRow(ctx, `SELECT `+assetColumns+` FROM assets WHERE block_id = $1 AND user_id = $2`, blockID, userID)
	return scanAsset(row)
}

func (r *PgAssetRepo) Insert(ctx context.Context, tx pgx.Tx, a *domain.Asset) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO assets (id, user_id, created_at_utc, updated_at_utc, is_deleted, block_id, file_name, content_type, size_bytes, blob_path)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, a.ID, a.UserID, a.CreatedAtUtc, a.UpdatedAtUtc, a.IsDeleted, a.BlockID, a.FileName, a.ContentType, a.SizeBytes, a.BlobPath)
	return err
}

func (r *PgAssetRepo) ListForPull(ctx context.Context, userID uuid.UUID, sinceUtc *time.Time) ([]domain.Asset, error) {
	var rows pgx.Rows
	var err error
	if sinceUtc == nil {
		rows, err = r.db.Query(ctx, `SELECT `+assetColumns+` FROM assets WHERE user_id = $1 AND is_deleted = false ORDER BY updated_at_utc ASC`, userID)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+assetColumns+` FROM assets WHERE user_id = $1 AND updated_at_utc > $2 ORDER BY updated_at_utc ASC`, userID, *sinceUtc)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
