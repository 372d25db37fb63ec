package repo

import (
	"context"
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgBlockRepo is the pgx-backed BlockRepo.
type PgBlockRepo struct {
	db *pgxpool.Pool
}

// NewPgBlockRepo constructs a PgBlockRepo.
func NewPgBlockRepo(db *pgxpool.Pool) *PgBlockRepo {
	return &PgBlockRepo{db: db}
}

const blockColumns = `
	id, user_id, created_at_utc, updated_at_utc, is_deleted, version,
	parent_id, parent_type, type, position, text_content,
	asset_client_id, asset_file_name, asset_content_type, asset_size_bytes, asset_id, upload_status
`

func scanBlock(row pgx.Row) (*domain.Block, error) {
	var b domain.Block
	var parentType, blockType, uploadStatus string
	if err := row.Scan(
		&b.ID, &b.UserID, &b.CreatedAtUtc, &b.UpdatedAtUtc, &b.IsDeleted, &b.Version,
		&b.ParentID, &parentType, &blockType, &b.Position, &b.TextContent,
		&b.AssetClientID, &b.AssetFileName, &b.AssetContentType, &b.AssetSizeBytes, &b.AssetID, &uploadStatus,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	b.ParentType = domain.ParentType(parentType)
	b.Type = domain.BlockType(blockType)
	b.UploadStatus = domain.UploadStatus(uploadStatus)
	return &b, nil
}

func (r *PgBlockRepo) GetByID(ctx context.Context, tx pgx.Tx, userID, id uuid.UUID) (*domain.Block, error) {
	row := tx.QueryRow(ctx, `SELECT `+blockColumns+` FROM blocks WHERE id = $1 AND user_id = $2`, id, userID)
	return scanBlock(row)
}

func (r *PgBlockRepo) Insert(ctx context.Context, tx pgx.Tx, b *domain.Block) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO blocks (id, user_id, created_at_utc, updated_at_utc, is_deleted, version,
			parent_id, parent_type, type, position, text_content,
			asset_client_id, asset_file_name, asset_content_type, asset_size_bytes, asset_id, upload_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`, b.ID, b.UserID, b.CreatedAtUtc, b.UpdatedAtUtc, b.IsDeleted, b.Version,
		b.ParentID, string(b.ParentType), string(b.Type), b.Position, b.TextContent,
		b.AssetClientID, b.AssetFileName, b.AssetContentType, b.AssetSizeBytes, b.AssetID, string(b.UploadStatus))
	return err
}

func (r *PgBlockRepo) Update(ctx context.Context, tx pgx.Tx, b *domain.Block) error {
	_, err := tx.Exec(ctx, `
		UPDATE blocks SET
			updated_at_utc = $2, is_deleted = $3, version = $4, position = $5, text_content = $6,
			asset_id = $7, upload_status = $8
		WHERE id = $1
	`, b.ID, b.UpdatedAtUtc, b.IsDeleted, b.Version, b.Position, b.TextContent, b.AssetID, string(b.UploadStatus))
	return err
}

func (r *PgBlockRepo) ListForPull(ctx context.Context, userID uuid.UUID, sinceUtc *time.Time) ([]domain.Block, error) {
	var rows pgx.Rows
	var err error
	if sinceUtc == nil {
		rows, err = r.db.Query(ctx, `SELECT `+blockColumns+` FROM blocks WHERE user_id = $1 AND is_deleted = false ORDER BY updated_at_utc ASC`, userID)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+blockColumns+` FROM blocks WHERE user_id = $1 AND updated_at_utc > $2 ORDER BY updated_at_utc ASC`, userID, *sinceUtc)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}
