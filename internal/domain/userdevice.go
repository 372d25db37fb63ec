package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserDevice identifies a replica of the owning user's data. A device
// belongs to exactly one user; deactivation is a soft state — the device
// row is still looked up by token, but it is no longer a valid sync
// principal (spec.md §3 invariant 7).
type UserDevice struct {
	Base

	DeviceToken string
	Platform    string
	DisplayName string
	IsActive    bool
}

// NewUserDevice constructs a UserDevice. Entry point for UserDevice.Create.
func NewUserDevice(userID uuid.UUID, token, platform, displayName string, now time.Time) (*UserDevice, error) {
	if strings.TrimSpace(token) == "" {
		return nil, newValidationError("device token must not be empty")
	}
	return &UserDevice{
		Base:        newBase(userID, now),
		DeviceToken: token,
		Platform:    platform,
		DisplayName: displayName,
		IsActive:    true,
	}, nil
}

// Deactivate flips IsActive false. Unlike soft-delete, this is not
// necessarily terminal at the domain level, but re-activation is not part
// of this core's exposed operations (spec.md §4.6).
func (d *UserDevice) Deactivate(now time.Time) error {
	if err := d.checkMutable(); err != nil {
		return err
	}
	d.IsActive = false
	d.touch(now)
	return nil
}

// IsValidPrincipal reports whether this device may act as a sync principal
// for the given user — spec.md §3 invariant 7.
func (d *UserDevice) IsValidPrincipal(userID uuid.UUID) bool {
	return d.UserID == userID && d.IsActive && !d.IsDeleted
}

// SoftDelete marks the UserDevice deleted. Terminal per invariant 3.
func (d *UserDevice) SoftDelete(now time.Time) error {
	return d.softDelete(now)
}
