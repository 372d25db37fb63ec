package repo

import (
	"context"
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BlockRepo is the persistence capability for domain.Block.
type BlockRepo interface {
	GetByID(ctx context.Context, tx pgx.Tx, userID, id uuid.UUID) (*domain.Block, error)
	Insert(ctx context.Context, tx pgx.Tx, b *domain.Block) error
	Update(ctx context.Context, tx pgx.Tx, b *domain.Block) error
	ListForPull(ctx context.Context, userID uuid.UUID, sinceUtc *time.Time) ([]domain.Block, error)
}
