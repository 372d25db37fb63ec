package repo

import (
	"context"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/google/uuid"
)

// DeviceRepo is the persistence capability for domain.UserDevice, used by
// the request-level device gate (spec.md §3 invariant 7, §4.1).
type DeviceRepo interface {
	// GetByID returns the device regardless of active/deleted state; callers
	// apply domain.UserDevice.IsValidPrincipal to decide gate outcome.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserDevice, error)
}
