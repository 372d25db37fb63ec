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

func (p *Pusher) pushTaskCreates(ctx context.Context, tx pgx.Tx, userID, deviceID uuid.UUID, items []TaskCreate, idMap map[uuid.UUID]uuid.UUID, result *PushResult, now time.Time) error {
	for _, c := range items {
		c := c
		t, err := domain.NewTask(userID, c.Date, c.Title, c.Description, c.StartTime, c.EndTime, c.Location, c.TravelTime, now)
		if err != nil {
			msgs, _ := asValidationError(err)
			result.Tasks.Created = append(result.Tasks.Created, failedResult(&c.ClientID, ConflictValidationFailed, msgs...))
			continue
		}
		if err := p.Tasks.Insert(ctx, tx, t); err != nil {
			return err
		}
		idMap[c.ClientID] = t.ID
		appendOutboxBestEffort(ctx, tx, p.Outbox, outbox.AggregateTypeTask, outbox.MessageTypeTaskCreated, t.ID, userID, &deviceID, t, now)
		result.Tasks.Created = append(result.Tasks.Created, ItemResult{ClientID: &c.ClientID, ServerID: t.ID, Status: StatusCreated, Version: t.Version})
	}
	return nil
}

func (p *Pusher) pushTaskUpdates(ctx context.Context, tx pgx.Tx, userID, deviceID uuid.UUID, items []TaskUpdate, result *PushResult, now time.Time) error {
	for _, u := range items {
		u := u
		t, err := p.Tasks.GetByID(ctx, tx, userID, u.ID)
		if err != nil {
			if err == repo.ErrNotFound {
				result.Tasks.Updated = append(result.Tasks.Updated, failedResult(nil, ConflictNotFound))
				continue
			}
			return err
		}
		if t.IsDeleted {
			result.Tasks.Updated = append(result.Tasks.Updated, ItemResult{
				ServerID: t.ID, Status: StatusFailed,
				Conflict: &Conflict{ConflictType: ConflictDeletedOnServer},
			})
			continue
		}
		if t.Version != u.ExpectedVersion {
			clientV, serverV := u.ExpectedVersion, t.Version
			result.Tasks.Updated = append(result.Tasks.Updated, ItemResult{
				ServerID: t.ID, Status: StatusFailed,
				Conflict: &Conflict{ConflictType: ConflictVersionMismatch, ClientVersion: &clientV, ServerVersion: &serverV, ServerTask: t},
			})
			continue
		}
		if err := t.Update(u.Title, u.Date, u.Description, u.StartTime, u.EndTime, u.Location, u.TravelTime, now); err != nil {
			msgs, _ := asValidationError(err)
			result.Tasks.Updated = append(result.Tasks.Updated, failedResult(nil, ConflictValidationFailed, msgs...))
			continue
		}
		if err := p.Tasks.Update(ctx, tx, t); err != nil {
			return err
		}
		appendOutboxBestEffort(ctx, tx, p.Outbox, outbox.AggregateTypeTask, outbox.MessageTypeTaskUpdated, t.ID, userID, &deviceID, t, now)
		result.Tasks.Updated = append(result.Tasks.Updated, ItemResult{ServerID: t.ID, Status: StatusUpdated, Version: t.Version})
	}
	return nil
}

func (p *Pusher) pushTaskDeletes(ctx context.Context, tx pgx.Tx, userID, deviceID uuid.UUID, items []TaskDelete, result *PushResult, now time.Time) error {
	for _, d := range items {
		t, err := p.Tasks.GetByID(ctx, tx, userID, d.ID)
		if err != nil {
			if err == repo.ErrNotFound {
				result.Tasks.Deleted = append(result.Tasks.Deleted, ItemResult{ServerID: d.ID, Status: StatusNotFound})
				continue
			}
			return err
		}
		if t.IsDeleted {
			result.Tasks.Deleted = append(result.Tasks.Deleted, ItemResult{ServerID: t.ID, Status: StatusAlreadyDeleted})
			continue
		}
		if err := t.SoftDelete(now); err != nil {
			return err
		}
		if err := p.Tasks.Update(ctx, tx, t); err != nil {
			return err
		}
		if err := appendOutboxOrFail(ctx, tx, p.Outbox, outbox.AggregateTypeTask, outbox.MessageTypeTaskDeleted, t.ID, userID, &deviceID, t, now); err != nil {
			result.Tasks.Deleted = append(result.Tasks.Deleted, ItemResult{
				ServerID: t.ID, Status: StatusFailed,
				Conflict: &Conflict{ConflictType: ConflictOutboxFailed},
			})
			continue
		}
		result.Tasks.Deleted = append(result.Tasks.Deleted, ItemResult{ServerID: t.ID, Status: StatusDeleted})
	}
	return nil
}
