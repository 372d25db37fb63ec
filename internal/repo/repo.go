// Package repo defines the repository capabilities the sync engines depend
// on, plus pgx-backed implementations and in-memory fakes for engine-level
// tests. All reads are untracked by default (spec.md §9): callers mutate an
// entity in memory via its domain methods, then call Update explicitly.
// Loading an entity owned by a different user is indistinguishable from
// ErrNotFound (spec.md §3 invariant 5), so IDs never leak across users.
package repo

import "errors"

// ErrNotFound is returned when an entity does not exist, or exists but is
// owned by a different user — those two cases are collapsed deliberately.
var ErrNotFound = errors.New("repo: not found")
