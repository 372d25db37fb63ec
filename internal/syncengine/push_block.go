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

// resolveParent implements spec.md §4.1's resolution order: ParentId if set
// and non-empty, else ParentClientId via the intra-batch id map. Only Note
// is a supported parent type (spec.md §9 Open Question 4 — Task is
// rejected here, before the domain constructors run, so the caller reports
// it as ParentNotFound).
func (p *Pusher) resolveParent(ctx context.Context, tx pgx.Tx, userID uuid.UUID, parentID, parentClientID *uuid.UUID, parentType domain.ParentType, idMap map[uuid.UUID]uuid.UUID) (uuid.UUID, bool) {
	if parentType != domain.ParentTypeNote {
		return uuid.Nil, false
	}

	var resolvedID uuid.UUID
	switch {
	case parentID != nil && *parentID != uuid.Nil:
		resolvedID = *parentID
	case parentClientID != nil:
		mapped, ok := idMap[*parentClientID]
		if !ok {
			return uuid.Nil, false
		}
		resolvedID = mapped
	default:
		return uuid.Nil, false
	}

	note, err := p.Notes.GetByID(ctx, tx, userID, resolvedID)
	if err != nil || note.IsDeleted {
		return uuid.Nil, false
	}
	return resolvedID, true
}

func (p *Pusher) pushBlockCreates(ctx context.Context, tx pgx.Tx, userID, deviceID uuid.UUID, items []BlockCreate, idMap map[uuid.UUID]uuid.UUID, result *PushResult, now time.Time) error {
	for _, c := range items {
		c := c
		parentID, ok := p.resolveParent(ctx, tx, userID, c.ParentID, c.ParentClientID, c.ParentType, idMap)
		if !ok {
			result.Blocks.Created = append(result.Blocks.Created, failedResult(&c.ClientID, ConflictParentNotFound))
			continue
		}

		var block *domain.Block
		var err error
		if c.Type.IsAssetType() {
			block, err = domain.NewAssetBlock(userID, parentID, c.ParentType, c.Type, c.Position, c.AssetClientID, c.AssetFileName, c.AssetContentType, c.AssetSizeBytes, now)
		} else {
			block, err = domain.NewTextBlock(userID, parentID, c.ParentType, c.Type, c.Position, c.TextContent, now)
		}
		if err != nil {
			msgs, _ := asValidationError(err)
			result.Blocks.Created = append(result.Blocks.Created, failedResult(&c.ClientID, ConflictValidationFailed, msgs...))
			continue
		}

		if err := p.Blocks.Insert(ctx, tx, block); err != nil {
			return err
		}
		idMap[c.ClientID] = block.ID
		appendOutboxBestEffort(ctx, tx, p.Outbox, outbox.AggregateTypeBlock, outbox.MessageTypeBlockCreated, block.ID, userID, &deviceID, block, now)
		result.Blocks.Created = append(result.Blocks.Created, ItemResult{ClientID: &c.ClientID, ServerID: block.ID, Status: StatusCreated, Version: block.Version})
	}
	return nil
}

func (p *Pusher) pushBlockUpdates(ctx context.Context, tx pgx.Tx, userID, deviceID uuid.UUID, items []BlockUpdate, result *PushResult, now time.Time) error {
	for _, u := range items {
		b, err := p.Blocks.GetByID(ctx, tx, userID, u.ID)
		if err != nil {
			if err == repo.ErrNotFound {
				result.Blocks.Updated = append(result.Blocks.Updated, failedResult(nil, ConflictNotFound))
				continue
			}
			return err
		}
		if b.IsDeleted {
			result.Blocks.Updated = append(result.Blocks.Updated, ItemResult{
				ServerID: b.ID, Status: StatusFailed,
				Conflict: &Conflict{ConflictType: ConflictDeletedOnServer},
			})
			continue
		}
		if b.Version != u.ExpectedVersion {
			clientV, serverV := u.ExpectedVersion, b.Version
			result.Blocks.Updated = append(result.Blocks.Updated, ItemResult{
				ServerID: b.ID, Status: StatusFailed,
				Conflict: &Conflict{ConflictType: ConflictVersionMismatch, ClientVersion: &clientV, ServerVersion: &serverV, ServerBlock: b},
			})
			continue
		}
		if err := b.Update(u.Position, u.TextContent, now); err != nil {
			msgs, _ := asValidationError(err)
			result.Blocks.Updated = append(result.Blocks.Updated, failedResult(nil, ConflictValidationFailed, msgs...))
			continue
		}
		if err := p.Blocks.Update(ctx, tx, b); err != nil {
			return err
		}
		appendOutboxBestEffort(ctx, tx, p.Outbox, outbox.AggregateTypeBlock, outbox.MessageTypeBlockUpdated, b.ID, userID, &deviceID, b, now)
		result.Blocks.Updated = append(result.Blocks.Updated, ItemResult{ServerID: b.ID, Status: StatusUpdated, Version: b.Version})
	}
	return nil
}

func (p *Pusher) pushBlockDeletes(ctx context.Context, tx pgx.Tx, userID, deviceID uuid.UUID, items []BlockDelete, result *PushResult, now time.Time) error {
	for _, d := range items {
		b, err := p.Blocks.GetByID(ctx, tx, userID, d.ID)
		if err != nil {
			if err == repo.ErrNotFound {
				result.Blocks.Deleted = append(result.Blocks.Deleted, ItemResult{ServerID: d.ID, Status: StatusNotFound})
				continue
			}
			return err
		}
		if b.IsDeleted {
			result.Blocks.Deleted = append(result.Blocks.Deleted, ItemResult{ServerID: b.ID, Status: StatusAlreadyDeleted})
			continue
		}
		if err := b.SoftDelete(now); err != nil {
			return err
		}
		if err := p.Blocks.Update(ctx, tx, b); err != nil {
			return err
		}
		if err := appendOutboxOrFail(ctx, tx, p.Outbox, outbox.AggregateTypeBlock, outbox.MessageTypeBlockDeleted, b.ID, userID, &deviceID, b, now); err != nil {
			result.Blocks.Deleted = append(result.Blocks.Deleted, ItemResult{
				ServerID: b.ID, Status: StatusFailed,
				Conflict: &Conflict{ConflictType: ConflictOutboxFailed},
			})
			continue
		}
		result.Blocks.Deleted = append(result.Blocks.Deleted, ItemResult{ServerID: b.ID, Status: StatusDeleted})
	}
	return nil
}
