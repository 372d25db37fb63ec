package repo

import (
	"context"
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// NoteRepo is the persistence capability for domain.Note.
type NoteRepo interface {
	GetByID(ctx context.Context, tx pgx.Tx, userID, id uuid.UUID) (*domain.Note, error)
	Insert(ctx context.Context, tx pgx.Tx, n *domain.Note) error
	Update(ctx context.Context, tx pgx.Tx, n *domain.Note) error
	ListForPull(ctx context.Context, userID uuid.UUID, sinceUtc *time.Time) ([]domain.Note, error)
}
