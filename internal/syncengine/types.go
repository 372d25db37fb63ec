// Package syncengine implements the Push Engine (C1), Pull Engine (C2), and
// Conflict Resolver (C3): the reconciliation core that lets many devices of
// one user converge on a shared replica of Tasks, Notes, and Blocks.
package syncengine

import (
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/google/uuid"
)

// Item outcome statuses (spec.md §4.1 per-item outcome table).
type Status string

const (
	StatusCreated        Status = "Created"
	StatusUpdated        Status = "Updated"
	StatusDeleted        Status = "Deleted"
	StatusFailed         Status = "Failed"
	StatusAlreadyDeleted Status = "AlreadyDeleted"
	StatusNotFound       Status = "NotFound"
)

// ConflictType enumerates the reasons a per-item operation failed.
type ConflictType string

const (
	ConflictValidationFailed ConflictType = "ValidationFailed"
	ConflictParentNotFound   ConflictType = "ParentNotFound"
	ConflictNotFound         ConflictType = "NotFound"
	ConflictDeletedOnServer  ConflictType = "DeletedOnServer"
	ConflictVersionMismatch  ConflictType = "VersionMismatch"
	ConflictOutboxFailed     ConflictType = "OutboxFailed"
)

// Conflict carries the detail attached to a Failed item result. ServerTask/
// ServerNote/ServerBlock hold the authoritative snapshot on VersionMismatch,
// per spec.md §6.
type Conflict struct {
	ConflictType  ConflictType
	ClientVersion *int
	ServerVersion *int
	ServerTask    *domain.Task
	ServerNote    *domain.Note
	ServerBlock   *domain.Block
}

// ItemResult is the per-item outcome of a push. Resolve reports its outcome
// as a ResolveResult instead.
type ItemResult struct {
	ClientID *uuid.UUID
	ServerID uuid.UUID
	Status   Status
	Version  int
	Conflict *Conflict
	Errors   []string
}

// --- Task request DTOs ---

type TaskCreate struct {
	ClientID    uuid.UUID
	Date        time.Time
	Title       string
	Description string
	StartTime   *time.Time
	EndTime     *time.Time
	Location    string
	TravelTime  *time.Duration
}

type TaskUpdate struct {
	ID              uuid.UUID
	ExpectedVersion int
	Date            time.Time
	Title           string
	Description     string
	StartTime       *time.Time
	EndTime         *time.Time
	Location        string
	TravelTime      *time.Duration
}

type TaskDelete struct {
	ID uuid.UUID
}

// --- Note request DTOs ---

type NoteCreate struct {
	ClientID uuid.UUID
	Date     time.Time
	Title    string
	Summary  string
	Tags     []string
}

type NoteUpdate struct {
	ID              uuid.UUID
	ExpectedVersion int
	Date            time.Time
	Title           string
	Summary         string
	Tags            []string
}

type NoteDelete struct {
	ID uuid.UUID
}

// --- Block request DTOs ---

type BlockCreate struct {
	ClientID       uuid.UUID
	ParentID       *uuid.UUID
	ParentClientID *uuid.UUID
	ParentType     domain.ParentType
	Type           domain.BlockType
	Position       string

	TextContent string

	AssetClientID    string
	AssetFileName    string
	AssetContentType string
	AssetSizeBytes   int64
}

type BlockUpdate struct {
	ID              uuid.UUID
	ExpectedVersion int
	Position        *string
	TextContent     *string
}

type BlockDelete struct {
	ID uuid.UUID
}

// --- Batches ---

type TaskBatch struct {
	Created []TaskCreate
	Updated []TaskUpdate
	Deleted []TaskDelete
}

type NoteBatch struct {
	Created []NoteCreate
	Updated []NoteUpdate
	Deleted []NoteDelete
}

type BlockBatch struct {
	Created []BlockCreate
	Updated []BlockUpdate
	Deleted []BlockDelete
}

// PushRequest is the engine-level (transport-agnostic) push payload.
type PushRequest struct {
	DeviceID               uuid.UUID
	ClientSyncTimestampUtc time.Time
	Tasks                  TaskBatch
	Notes                  NoteBatch
	Blocks                 BlockBatch
}

type TaskResultBatch struct {
	Created []ItemResult
	Updated []ItemResult
	Deleted []ItemResult
}

type NoteResultBatch struct {
	Created []ItemResult
	Updated []ItemResult
	Deleted []ItemResult
}

type BlockResultBatch struct {
	Created []ItemResult
	Updated []ItemResult
	Deleted []ItemResult
}

// PushResult is the engine-level push response.
type PushResult struct {
	Tasks  TaskResultBatch
	Notes  NoteResultBatch
	Blocks BlockResultBatch
}
