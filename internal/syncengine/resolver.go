package syncengine

import (
	"context"
	"time"

	"github.com/erauner12/syncore/internal/outbox"
	"github.com/erauner12/syncore/internal/repo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ResolveChoice is the client's chosen resolution for a conflicted entity.
type ResolveChoice string

const (
	ResolveKeepServer ResolveChoice = "KeepServer"
	ResolveKeepClient ResolveChoice = "KeepClient"
	ResolveMerge      ResolveChoice = "Merge"
)

// ResolveEntityType names which repository/domain type a ResolveItem targets.
type ResolveEntityType string

const (
	ResolveEntityTask  ResolveEntityType = "Task"
	ResolveEntityNote  ResolveEntityType = "Note"
	ResolveEntityBlock ResolveEntityType = "Block"
)

// ResolveStatus is the outcome of one resolve item (spec.md §4.3).
type ResolveStatus string

const (
	ResolveStatusKeptServer       ResolveStatus = "KeptServer"
	ResolveStatusUpdated          ResolveStatus = "Updated"
	ResolveStatusNotFound         ResolveStatus = "NotFound"
	ResolveStatusDeletedOnServer  ResolveStatus = "DeletedOnServer"
	ResolveStatusValidationFailed ResolveStatus = "ValidationFailed"
	ResolveStatusConflict         ResolveStatus = "Conflict"
	ResolveStatusInvalidEntity    ResolveStatus = "InvalidEntityType"
)

// TaskData, NoteData, and BlockData mirror the domain update surface used
// by KeepClient/Merge resolutions (spec.md §4.3).
type TaskData struct {
	Date        time.Time
	Title       string
	Description string
	StartTime   *time.Time
	EndTime     *time.Time
	Location    string
	TravelTime  *time.Duration
}

type NoteData struct {
	Date    time.Time
	Title   string
	Summary string
	Tags    []string
}

type BlockData struct {
	Position    *string
	TextContent *string
}

// ResolveItem is one entry in a Resolve request.
type ResolveItem struct {
	EntityType      ResolveEntityType
	EntityID        uuid.UUID
	Choice          ResolveChoice
	ExpectedVersion int

	TaskData  *TaskData
	NoteData  *NoteData
	BlockData *BlockData
}

// ResolveResult is the outcome of one ResolveItem.
type ResolveResult struct {
	EntityType ResolveEntityType
	EntityID   uuid.UUID
	Status     ResolveStatus
	NewVersion *int
	Errors     []string
}

// Resolver implements the Conflict Resolver (C3): the fallback path for
// rare races where a prior pull did not reflect the latest server state.
type Resolver struct {
	Tasks  repo.TaskRepo
	Notes  repo.NoteRepo
	Blocks repo.BlockRepo
	Outbox outbox.Appender
}

// NewResolver constructs a Resolver.
func NewResolver(tasks repo.TaskRepo, notes repo.NoteRepo, blocks repo.BlockRepo, ob outbox.Appender) *Resolver {
	return &Resolver{Tasks: tasks, Notes: notes, Blocks: blocks, Outbox: ob}
}

// Resolve applies each item's chosen resolution inside tx. Unlike Push,
// there is no device gate (spec.md §4.3's operation signature takes no
// deviceId); the caller is still responsible for the transaction boundary.
func (r *Resolver) Resolve(ctx context.Context, tx pgx.Tx, userID uuid.UUID, items []ResolveItem, now time.Time) ([]ResolveResult, error) {
	results := make([]ResolveResult, 0, len(items))
	for _, item := range items {
		var res ResolveResult
		var err error
		switch item.EntityType {
		case ResolveEntityTask:
			res, err = r.resolveTask(ctx, tx, userID, item, now)
		case ResolveEntityNote:
			res, err = r.resolveNote(ctx, tx, userID, item, now)
		case ResolveEntityBlock:
			res, err = r.resolveBlock(ctx, tx, userID, item, now)
		default:
			res = ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusInvalidEntity}
		}
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Resolver) resolveTask(ctx context.Context, tx pgx.Tx, userID uuid.UUID, item ResolveItem, now time.Time) (ResolveResult, error) {
	t, err := r.Tasks.GetByID(ctx, tx, userID, item.EntityID)
	if err != nil {
		if err == repo.ErrNotFound {
			return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusNotFound}, nil
		}
		return ResolveResult{}, err
	}
	if item.Choice == ResolveKeepServer {
		v := t.Version
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusKeptServer, NewVersion: &v}, nil
	}
	if t.IsDeleted {
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusDeletedOnServer}, nil
	}
	if item.TaskData == nil {
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusValidationFailed, Errors: []string{"data is required for KeepClient/Merge"}}, nil
	}
	if t.Version != item.ExpectedVersion {
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusConflict}, nil
	}
	d := item.TaskData
	if err := t.Update(d.Title, d.Date, d.Description, d.StartTime, d.EndTime, d.Location, d.TravelTime, now); err != nil {
		msgs, _ := asValidationError(err)
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusValidationFailed, Errors: msgs}, nil
	}
	if err := r.Tasks.Update(ctx, tx, t); err != nil {
		return ResolveResult{}, err
	}
	appendOutboxBestEffort(ctx, tx, r.Outbox, outbox.AggregateTypeTask, outbox.MessageTypeTaskUpdated, t.ID, userID, nil, t, now)
	v := t.Version
	return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusUpdated, NewVersion: &v}, nil
}

func (r *Resolver) resolveNote(ctx context.Context, tx pgx.Tx, userID uuid.UUID, item ResolveItem, now time.Time) (ResolveResult, error) {
	n, err := r.Notes.GetByID(ctx, tx, userID, item.EntityID)
	if err != nil {
		if err == repo.ErrNotFound {
			return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusNotFound}, nil
		}
		return ResolveResult{}, err
	}
	if item.Choice == ResolveKeepServer {
		v := n.Version
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusKeptServer, NewVersion: &v}, nil
	}
	if n.IsDeleted {
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusDeletedOnServer}, nil
	}
	if item.NoteData == nil {
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusValidationFailed, Errors: []string{"data is required for KeepClient/Merge"}}, nil
	}
	if n.Version != item.ExpectedVersion {
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusConflict}, nil
	}
	d := item.NoteData
	if err := n.Update(d.Title, d.Summary, d.Tags, d.Date, now); err != nil {
		msgs, _ := asValidationError(err)
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusValidationFailed, Errors: msgs}, nil
	}
	if err := r.Notes.Update(ctx, tx, n); err != nil {
		return ResolveResult{}, err
	}
	appendOutboxBestEffort(ctx, tx, r.Outbox, outbox.AggregateTypeNote, outbox.MessageTypeNoteUpdated, n.ID, userID, nil, n, now)
	v := n.Version
	return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusUpdated, NewVersion: &v}, nil
}

func (r *Resolver) resolveBlock(ctx context.Context, tx pgx.Tx, userID uuid.UUID, item ResolveItem, now time.Time) (ResolveResult, error) {
	b, err := r.Blocks.GetByID(ctx, tx, userID, item.EntityID)
	if err != nil {
		if err == repo.ErrNotFound {
			return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusNotFound}, nil
		}
		return ResolveResult{}, err
	}
	if item.Choice == ResolveKeepServer {
		v := b.Version
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusKeptServer, NewVersion: &v}, nil
	}
	if b.IsDeleted {
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusDeletedOnServer}, nil
	}
	if item.BlockData == nil {
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusValidationFailed, Errors: []string{"data is required for KeepClient/Merge"}}, nil
	}
	if b.Version != item.ExpectedVersion {
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusConflict}, nil
	}

	// Block-specific rule (spec.md §4.3): revalidate the parent still
	// exists and is non-deleted before applying.
	parent, err := r.Notes.GetByID(ctx, tx, userID, b.ParentID)
	if err != nil || parent.IsDeleted {
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusValidationFailed, Errors: []string{"parent no longer exists"}}, nil
	}

	d := item.BlockData
	if err := b.Update(d.Position, d.TextContent, now); err != nil {
		msgs, _ := asValidationError(err)
		return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusValidationFailed, Errors: msgs}, nil
	}
	if err := r.Blocks.Update(ctx, tx, b); err != nil {
		return ResolveResult{}, err
	}
	appendOutboxBestEffort(ctx, tx, r.Outbox, outbox.AggregateTypeBlock, outbox.MessageTypeBlockUpdated, b.ID, userID, nil, b, now)
	v := b.Version
	return ResolveResult{EntityType: item.EntityType, EntityID: item.EntityID, Status: ResolveStatusUpdated, NewVersion: &v}, nil
}
