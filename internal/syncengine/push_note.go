package syncengine

import (
	"context"
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/erauner12/syncore/internal/outbox"
	"github.com/erauner12/syncore/internal/repo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (p *Pusher) pushNoteCreates(ctx context.Context, tx pgx.Tx, userID, deviceID uuid.UUID, items []NoteCreate, idMap map[uuid.UUID]uuid.UUID, result *PushResult, now time.Time) error {
	for _, c := range items {
		c := c
		n, err := domain.NewNote(userID, c.Date, c.Title, c.Summary, c.Tags, now)
		if err != nil {
			msgs, _ := asValidationError(err)
			result.Notes.Created = append(result.Notes.Created, failedResult(&c.ClientID, ConflictValidationFailed, msgs...))
			continue
		}
		if err := p.Notes.Insert(ctx, tx, n); err != nil {
			return err
		}
		idMap[c.ClientID] = n.ID
		appendOutboxBestEffort(ctx, tx, p.Outbox, outbox.AggregateTypeNote, outbox.MessageTypeNoteCreated, n.ID, userID, &deviceID, n, now)
		result.Notes.Created = append(result.Notes.Created, ItemResult{ClientID: &c.ClientID, ServerID: n.ID, Status: StatusCreated, Version: n.Version})
	}
	return nil
}

func (p *Pusher) pushNoteUpdates(ctx context.Context, tx pgx.Tx, userID, deviceID uuid.UUID, items []NoteUpdate, result *PushResult, now time.Time) error {
	for _, u := range items {
		n, err := p.Notes.GetByID(ctx, tx, userID, u.ID)
		if err != nil {
			if err == repo.ErrNotFound {
				result.Notes.Updated = append(result.Notes.Updated, failedResult(nil, ConflictNotFound))
				continue
			}
			return err
		}
		if n.IsDeleted {
			result.Notes.Updated = append(result.Notes.Updated, ItemResult{
				ServerID: n.ID, Status: StatusFailed,
				Conflict: &Conflict{ConflictType: ConflictDeletedOnServer},
			})
			continue
		}
		if n.Version != u.ExpectedVersion {
			clientV, serverV := u.ExpectedVersion, n.Version
			result.Notes.Updated = append(result.Notes.Updated, ItemResult{
				ServerID: n.ID, Status: StatusFailed,
				Conflict: &Conflict{ConflictType: ConflictVersionMismatch, ClientVersion: &clientV, ServerVersion: &serverV, ServerNote: n},
			})
			continue
		}
		if err := n.Update(u.Title, u.Summary, u.Tags, u.Date, now); err != nil {
			msgs, _ := asValidationError(err)
			result.Notes.Updated = append(result.Notes.Updated, failedResult(nil, ConflictValidationFailed, msgs...))
			continue
		}
		if err := p.Notes.Update(ctx, tx, n); err != nil {
			return err
		}
		appendOutboxBestEffort(ctx, tx, p.Outbox, outbox.AggregateTypeNote, outbox.MessageTypeNoteUpdated, n.ID, userID, &deviceID, n, now)
		result.Notes.Updated = append(result.Notes.Updated, ItemResult{ServerID: n.ID, Status: StatusUpdated, Version: n.Version})
	}
	return nil
}

func (p *Pusher) pushNoteDeletes(ctx context.Context, tx pgx.Tx, userID, deviceID uuid.UUID, items []NoteDelete, result *PushResult, now time.Time) error {
	for _, d := range items {
		n, err := p.Notes.GetByID(ctx, tx, userID, d.ID)
		if err != nil {
			if err == repo.ErrNotFound {
				result.Notes.Deleted = append(result.Notes.Deleted, ItemResult{ServerID: d.ID, Status: StatusNotFound})
				continue
			}
			return err
		}
		if n.IsDeleted {
			result.Notes.Deleted = append(result.Notes.Deleted, ItemResult{ServerID: n.ID, Status: StatusAlreadyDeleted})
			continue
		}
		if err := n.SoftDelete(now); err != nil {
			return err
		}
		if err := p.Notes.Update(ctx, tx, n); err != nil {
			return err
		}
		if err := appendOutboxOrFail(ctx, tx, p.Outbox, outbox.AggregateTypeNote, outbox.MessageTypeNoteDeleted, n.ID, userID, &deviceID, n, now); err != nil {
			result.Notes.Deleted = append(result.Notes.Deleted, ItemResult{
				ServerID: n.ID, Status: StatusFailed,
				Conflict: &Conflict{ConflictType: ConflictOutboxFailed},
			})
			continue
		}
		result.Notes.Deleted = append(result.Notes.Deleted, ItemResult{ServerID: n.ID, Status: StatusDeleted})
	}
	return nil
}
