package repo

import (
	"context"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgDeviceRepo is the pgx-backed DeviceRepo.
type PgDeviceRepo struct {
	db *pgxpool.Pool
}

// NewPgDeviceRepo constructs a PgDeviceRepo.
func NewPgDeviceRepo(db *pgxpool.Pool) *PgDeviceRepo {
	return &PgDeviceRepo{db: db}
}

func (r *PgDeviceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserDevice, error) {
	var d domain.UserDevice
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, created_at_utc, updated_at_utc, is_deleted, version, device_token, platform, display_name, is_active
		FROM user_devices WHERE id = $1
	`, id).Scan(&d.ID, &d.UserID, &d.CreatedAtUtc, &d.UpdatedAtUtc, &d.IsDeleted, &d.Version, &d.DeviceToken, &d.Platform, &d.DisplayName, &d.IsActive)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}
