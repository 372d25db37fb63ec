package repo

import (
	"context"
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TaskRepo is the persistence capability for domain.Task.
type TaskRepo interface {
	// GetByID loads a Task owned by userID. Returns ErrNotFound if absent or
	// owned by a different user.
	GetByID(ctx context.Context, tx pgx.Tx, userID, id uuid.UUID) (*domain.Task, error)
	// Insert persists a newly created Task.
	Insert(ctx context.Context, tx pgx.Tx, t *domain.Task) error
	// Update persists the current in-memory state of an existing Task.
	Update(ctx context.Context, tx pgx.Tx, t *domain.Task) error
	// ListForPull returns every Task visible to a pull: all non-deleted tasks
	// if sinceUtc is nil, else every task with UpdatedAtUtc > *sinceUtc
	// (including soft-deleted ones), ordered by UpdatedAtUtc ascending.
	ListForPull(ctx context.Context, userID uuid.UUID, sinceUtc *time.Time) ([]domain.Task, error)
}
