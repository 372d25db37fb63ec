// Package outbox implements the transactional-outbox (claim-check) pattern:
// one immutable event row per accepted mutation, co-committed with the
// entity write it describes. The dispatcher that drains this table and
// forwards events downstream is out of scope for this core — this package
// only appends rows; it has no query for reading them back.
package outbox

import (
	"time"

	"github.com/google/uuid"
)

// AggregateType tags which entity kind a Message describes.
type AggregateType string

const (
	AggregateTypeTask       AggregateType = "Task"
	AggregateTypeNote       AggregateType = "Note"
	AggregateTypeBlock      AggregateType = "Block"
	AggregateTypeAsset      AggregateType = "Asset"
	AggregateTypeUserDevice AggregateType = "UserDevice"
)

// MessageType is the event name recorded in the row, e.g. "Task.Created".
type MessageType string

const (
	MessageTypeTaskCreated   MessageType = "Task.Created"
	MessageTypeTaskUpdated  MessageType = "Task.Updated"
	MessageTypeTaskDeleted  MessageType = "Task.Deleted"
	MessageTypeNoteCreated  MessageType = "Note.Created"
	MessageTypeNoteUpdated  MessageType = "Note.Updated"
	MessageTypeNoteDeleted  MessageType = "Note.Deleted"
	MessageTypeBlockCreated MessageType = "Block.Created"
	MessageTypeBlockUpdated MessageType = "Block.Updated"
	MessageTypeBlockDeleted MessageType = "Block.Deleted"
	MessageTypeAssetCreated MessageType = "Asset.Created"
	MessageTypeAssetDeleted MessageType = "Asset.Deleted"
)

// Message is a durable event record (spec.md §3 OutboxMessage, §4.5).
// Payload is an opaque, self-describing snapshot of the aggregate's
// post-mutation state; consumers reconstruct visible state from it without
// needing to know the producer's internal types.
type Message struct {
	ID            uuid.UUID
	AggregateID   uuid.UUID
	AggregateType AggregateType
	MessageType   MessageType
	Payload       []byte
	UserID        uuid.UUID
	OriginDeviceID *uuid.UUID
	CreatedAtUtc  time.Time
	ProcessedAtUtc *time.Time
	AttemptCount  int
}

// New constructs a Message ready to append. OriginDeviceId is nil when the
// mutation did not originate from a device (e.g. a non-sync CRUD path).
func New(aggregateID uuid.UUID, aggregateType AggregateType, messageType MessageType, payload []byte, userID uuid.UUID, originDeviceID *uuid.UUID, now time.Time) Message {
	return Message{
		ID:             uuid.New(),
		AggregateID:    aggregateID,
		AggregateType:  aggregateType,
		MessageType:    messageType,
		Payload:        payload,
		UserID:         userID,
		OriginDeviceID: originDeviceID,
		CreatedAtUtc:   now,
		AttemptCount:   0,
	}
}
