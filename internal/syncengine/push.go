package syncengine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/erauner12/syncore/internal/outbox"
	"github.com/erauner12/syncore/internal/repo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// Pusher implements the Push Engine (C1).
type Pusher struct {
	Tasks   repo.TaskRepo
	Notes   repo.NoteRepo
	Blocks  repo.BlockRepo
	Devices repo.DeviceRepo
	Outbox  outbox.Appender
}

// NewPusher constructs a Pusher from its repository and outbox dependencies.
func NewPusher(tasks repo.TaskRepo, notes repo.NoteRepo, blocks repo.BlockRepo, devices repo.DeviceRepo, ob outbox.Appender) *Pusher {
	return &Pusher{Tasks: tasks, Notes: notes, Blocks: blocks, Devices: devices, Outbox: ob}
}

// Push applies a batch of per-entity operations inside tx, in the fixed
// processing order required by intra-batch parent resolution (spec.md
// §4.1). The caller owns tx's lifetime: it should begin it before calling
// Push and commit it once Push returns successfully, so that every entity
// write and outbox row lands in one transaction.
//
// Push returns ErrDeviceGateFailed if the device fails the principal check
// (spec.md §3 invariant 7); the caller must roll back and write nothing.
// Any other returned error indicates an infrastructure failure deep enough
// that the whole push should abort (e.g. the database connection died
// mid-batch) — per-item domain/conflict failures never surface this way,
// they are carried in the returned PushResult instead.
func (p *Pusher) Push(ctx context.Context, tx pgx.Tx, userID uuid.UUID, req PushRequest, now time.Time) (*PushResult, error) {
	device, err := p.Devices.GetByID(ctx, req.DeviceID)
	if err != nil || !device.IsValidPrincipal(userID) {
		return nil, ErrDeviceGateFailed
	}

	result := &PushResult{}
	idMap := map[uuid.UUID]uuid.UUID{}

	if err := p.pushTaskCreates(ctx, tx, userID, req.DeviceID, req.Tasks.Created, idMap, result, now); err != nil {
		return nil, err
	}
	if err := p.pushTaskUpdates(ctx, tx, userID, req.DeviceID, req.Tasks.Updated, result, now); err != nil {
		return nil, err
	}
	if err := p.pushTaskDeletes(ctx, tx, userID, req.DeviceID, req.Tasks.Deleted, result, now); err != nil {
		return nil, err
	}

	if err := p.pushNoteCreates(ctx, tx, userID, req.DeviceID, req.Notes.Created, idMap, result, now); err != nil {
		return nil, err
	}
	if err := p.pushNoteUpdates(ctx, tx, userID, req.DeviceID, req.Notes.Updated, result, now); err != nil {
		return nil, err
	}
	if err := p.pushNoteDeletes(ctx, tx, userID, req.DeviceID, req.Notes.Deleted, result, now); err != nil {
		return nil, err
	}

	if err := p.pushBlockCreates(ctx, tx, userID, req.DeviceID, req.Blocks.Created, idMap, result, now); err != nil {
		return nil, err
	}
	if err := p.pushBlockUpdates(ctx, tx, userID, req.DeviceID, req.Blocks.Updated, result, now); err != nil {
		return nil, err
	}
	if err := p.pushBlockDeletes(ctx, tx, userID, req.DeviceID, req.Blocks.Deleted, result, now); err != nil {
		return nil, err
	}

	return result, nil
}

func failedResult(clientID *uuid.UUID, conflictType ConflictType, messages ...string) ItemResult {
	return ItemResult{
		ClientID: clientID,
		Status:   StatusFailed,
		Conflict: &Conflict{ConflictType: conflictType},
		Errors:   messages,
	}
}

// appendOutboxBestEffort is used for create/update mutations: per spec.md
// §7/§4.1, outbox failures on create/update are logged but never fail the
// already-accepted item.
func appendOutboxBestEffort(ctx context.Context, tx pgx.Tx, appender outbox.Appender, aggregateType outbox.AggregateType, messageType outbox.MessageType, aggregateID, userID uuid.UUID, deviceID *uuid.UUID, snapshot any, now time.Time) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		log.Error().Err(err).Str("aggregateId", aggregateID.String()).Msg("failed to marshal outbox payload")
		return
	}
	msg := outbox.New(aggregateID, aggregateType, messageType, payload, userID, deviceID, now)
	if err := appender.Append(ctx, tx, msg); err != nil {
		log.Error().Err(err).Str("aggregateId", aggregateID.String()).Str("messageType", string(messageType)).Msg("outbox append failed, mutation stands")
	}
}

// appendOutboxOrFail is used for delete mutations: per spec.md §7, an
// outbox failure on delete is surfaced as Failed/OutboxFailed.
func appendOutboxOrFail(ctx context.Context, tx pgx.Tx, appender outbox.Appender, aggregateType outbox.AggregateType, messageType outbox.MessageType, aggregateID, userID uuid.UUID, deviceID *uuid.UUID, snapshot any, now time.Time) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	msg := outbox.New(aggregateID, aggregateType, messageType, payload, userID, deviceID, now)
	return appender.Append(ctx, tx, msg)
}

func asValidationError(err error) ([]string, bool) {
	var ve *domain.ValidationError
	if e, ok := err.(*domain.ValidationError); ok {
		ve = e
		return ve.Messages, true
	}
	return nil, false
}
