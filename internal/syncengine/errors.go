package syncengine

import "errors"

// ErrDeviceGateFailed is returned by Push and Pull when the device fails
// the principal check (spec.md §3 invariant 7): it does not exist, belongs
// to a different user, is inactive, or is soft-deleted. The whole request
// fails — no partial application.
var ErrDeviceGateFailed = errors.New("syncengine: device is not a valid sync principal")
