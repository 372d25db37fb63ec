package domain

import "errors"

// Sentinel errors returned by entity mutation methods. Callers (the sync
// engines) map these onto the per-item conflict taxonomy of the push/pull
// protocol rather than propagating them as request-level failures.
var (
	ErrAlreadyDeleted   = errors.New("entity is already soft-deleted")
	ErrValidationFailed = errors.New("validation failed")
)

// ValidationError carries one or more human-readable validation messages,
// matching the teacher's pattern of returning a slice of error strings in
// push/REST responses (the sync engines copy them into the Errors field of
// ItemResult and ResolveResult).
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "validation failed"
	}
	msg := e.Messages[0]
	for _, m := range e.Messages[1:] {
		msg += "; " + m
	}
	return msg
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

func newValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}
