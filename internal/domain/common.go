// Package domain holds the entity model of the sync core: Task, Note, Block,
// Asset, and UserDevice, plus the invariants and state transitions every
// mutation enforces. Every state-changing method refreshes UpdatedAtUtc and
// bumps Version by exactly one (Asset has no Version); no method succeeds
// against a soft-deleted entity, a second soft-delete included: soft-delete
// is terminal.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Base carries the fields every persistent entity shares.
type Base struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	CreatedAtUtc time.Time
	UpdatedAtUtc time.Time
	IsDeleted    bool
	Version      int
}

func newBase(userID uuid.UUID, now time.Time) Base {
	return Base{
		ID:           uuid.New(),
		UserID:       userID,
		CreatedAtUtc: now,
		UpdatedAtUtc: now,
		IsDeleted:    false,
		Version:      1,
	}
}

// touch bumps Version and UpdatedAtUtc; called by every mutation method
// after its domain checks pass.
func (b *Base) touch(now time.Time) {
	b.UpdatedAtUtc = now
	b.Version++
}

// checkMutable rejects mutation of a soft-deleted entity (invariant 3).
func (b *Base) checkMutable() error {
	if b.IsDeleted {
		return ErrAlreadyDeleted
	}
	return nil
}

// softDelete flips IsDeleted and bumps Version/UpdatedAtUtc. Terminal: once
// set, no mutation (including a second soft-delete) can change it back.
func (b *Base) softDelete(now time.Time) error {
	if b.IsDeleted {
		return ErrAlreadyDeleted
	}
	b.IsDeleted = true
	b.touch(now)
	return nil
}
