package syncengine

import (
	"context"
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/erauner12/syncore/internal/repo"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AssetURLSigner mints a time-limited download URL for a blob path. It is
// the Pull Engine's only dependency on the blob-storage capability; a
// signing failure is non-fatal (spec.md §4.2) — the asset is still returned
// with a nil URL.
type AssetURLSigner interface {
	SignURL(ctx context.Context, blobPath string, validity time.Duration) (string, error)
}

// DeletedRef is the minimal shape returned for a soft-deleted entity in a
// pull delta: just enough for the client to retire its local copy.
type DeletedRef struct {
	ID           uuid.UUID
	DeletedAtUtc time.Time
}

type TaskDelta struct {
	Created []domain.Task
	Updated []domain.Task
	Deleted []DeletedRef
}

type NoteDelta struct {
	Created []domain.Note
	Updated []domain.Note
	Deleted []DeletedRef
}

type BlockDelta struct {
	Created []domain.Block
	Updated []domain.Block
	Deleted []DeletedRef
}

// AssetWithURL pairs an Asset with its freshly signed (or nil, on signing
// failure) download URL.
type AssetWithURL struct {
	Asset       domain.Asset
	DownloadURL *string
}

type AssetDelta struct {
	Created []AssetWithURL
	Deleted []DeletedRef
}

// PullRequest is the engine-level pull query.
type PullRequest struct {
	DeviceID          *uuid.UUID
	SinceUtc          *time.Time
	MaxItemsPerEntity int
}

// PullResult is the engine-level pull response (spec.md §4.2/§6).
type PullResult struct {
	ServerTimestampUtc time.Time
	Tasks               TaskDelta
	Notes                NoteDelta
	Blocks               BlockDelta
	Assets               AssetDelta
	HasMoreTasks         bool
	HasMoreNotes         bool
	HasMoreBlocks        bool
}

// Puller implements the Pull Engine (C2). It is read-only: no outbox
// messages are produced.
type Puller struct {
	Tasks   repo.TaskRepo
	Notes   repo.NoteRepo
	Blocks  repo.BlockRepo
	Assets  repo.AssetRepo
	Devices repo.DeviceRepo

	URLSigner           AssetURLSigner
	DownloadURLValidity time.Duration
}

// NewPuller constructs a Puller.
func NewPuller(tasks repo.TaskRepo, notes repo.NoteRepo, blocks repo.BlockRepo, assets repo.AssetRepo, devices repo.DeviceRepo, signer AssetURLSigner, downloadURLValidity time.Duration) *Puller {
	return &Puller{Tasks: tasks, Notes: notes, Blocks: blocks, Assets: assets, Devices: devices, URLSigner: signer, DownloadURLValidity: downloadURLValidity}
}

// Pull returns the delta for a user's replica since req.SinceUtc. If
// req.DeviceID is set, it is gated the same way Push gates its device
// (spec.md §3 invariant 7); a nil DeviceID skips the gate (the device
// scoping here is advisory, unlike Push where OriginDeviceId is recorded
// on every mutation).
func (p *Puller) Pull(ctx context.Context, userID uuid.UUID, req PullRequest, serverNow time.Time) (*PullResult, error) {
	if req.DeviceID != nil {
		device, err := p.Devices.GetByID(ctx, *req.DeviceID)
		if err != nil || !device.IsValidPrincipal(userID) {
			return nil, ErrDeviceGateFailed
		}
	}

	tasks, err := p.Tasks.ListForPull(ctx, userID, req.SinceUtc)
	if err != nil {
		return nil, err
	}
	notes, err := p.Notes.ListForPull(ctx, userID, req.SinceUtc)
	if err != nil {
		return nil, err
	}
	blocks, err := p.Blocks.ListForPull(ctx, userID, req.SinceUtc)
	if err != nil {
		return nil, err
	}
	assets, err := p.Assets.ListForPull(ctx, userID, req.SinceUtc)
	if err != nil {
		return nil, err
	}

	taskCreated, taskUpdated, taskDeleted := categorizeTasks(tasks, req.SinceUtc)
	noteCreated, noteUpdated, noteDeleted := categorizeNotes(notes, req.SinceUtc)
	blockCreated, blockUpdated, blockDeleted := categorizeBlocks(blocks, req.SinceUtc)

	max := req.MaxItemsPerEntity
	taskCreated, taskUpdated, taskDeleted, hasMoreTasks := truncateBuckets(taskCreated, taskUpdated, taskDeleted, max)
	noteCreated, noteUpdated, noteDeleted, hasMoreNotes := truncateBuckets(noteCreated, noteUpdated, noteDeleted, max)
	blockCreated, blockUpdated, blockDeleted, hasMoreBlocks := truncateBuckets(blockCreated, blockUpdated, blockDeleted, max)

	assetDelta := p.buildAssetDelta(ctx, assets)

	return &PullResult{
		ServerTimestampUtc: serverNow,
		Tasks:              TaskDelta{Created: taskCreated, Updated: taskUpdated, Deleted: taskDeleted},
		Notes:              NoteDelta{Created: noteCreated, Updated: noteUpdated, Deleted: noteDeleted},
		Blocks:             BlockDelta{Created: blockCreated, Updated: blockUpdated, Deleted: blockDeleted},
		Assets:             assetDelta,
		HasMoreTasks:       hasMoreTasks,
		HasMoreNotes:       hasMoreNotes,
		HasMoreBlocks:      hasMoreBlocks,
	}, nil
}

func categorizeTasks(tasks []domain.Task, sinceUtc *time.Time) (created, updated []domain.Task, deleted []DeletedRef) {
	for _, t := range tasks {
		switch {
		case t.IsDeleted:
			deleted = append(deleted, DeletedRef{ID: t.ID, DeletedAtUtc: t.UpdatedAtUtc})
		case sinceUtc == nil || t.CreatedAtUtc.After(*sinceUtc):
			created = append(created, t)
		default:
			updated = append(updated, t)
		}
	}
	return
}

func categorizeNotes(notes []domain.Note, sinceUtc *time.Time) (created, updated []domain.Note, deleted []DeletedRef) {
	for _, n := range notes {
		switch {
		case n.IsDeleted:
			deleted = append(deleted, DeletedRef{ID: n.ID, DeletedAtUtc: n.UpdatedAtUtc})
		case sinceUtc == nil || n.CreatedAtUtc.After(*sinceUtc):
			created = append(created, n)
		default:
			updated = append(updated, n)
		}
	}
	return
}

func categorizeBlocks(blocks []domain.Block, sinceUtc *time.Time) (created, updated []domain.Block, deleted []DeletedRef) {
	for _, b := range blocks {
		switch {
		case b.IsDeleted:
			deleted = append(deleted, DeletedRef{ID: b.ID, DeletedAtUtc: b.UpdatedAtUtc})
		case sinceUtc == nil || b.CreatedAtUtc.After(*sinceUtc):
			created = append(created, b)
		default:
			updated = append(updated, b)
		}
	}
	return
}

// truncateBuckets enforces the per-type maxItemsPerEntity cap: Created is
// consumed first, then Updated, then Deleted (spec.md §4.2).
func truncateBuckets[C any, U any, D any](created []C, updated []U, deleted []D, max int) ([]C, []U, []D, bool) {
	total := len(created) + len(updated) + len(deleted)
	if max <= 0 || total <= max {
		return created, updated, deleted, false
	}

	budget := max
	take := func(n int) int {
		if n > budget {
			n = budget
		}
		budget -= n
		return n
	}

	created = created[:take(len(created))]
	updated = updated[:take(len(updated))]
	deleted = deleted[:take(len(deleted))]
	return created, updated, deleted, true
}

// buildAssetDelta splits assets into Created/Deleted (Assets have no
// Version — "modified" means created or soft-deleted, spec.md §3) and signs
// a download URL for each non-deleted asset. Assets are not capped.
func (p *Puller) buildAssetDelta(ctx context.Context, assets []domain.Asset) AssetDelta {
	var delta AssetDelta
	for _, a := range assets {
		if a.IsDeleted {
			delta.Deleted = append(delta.Deleted, DeletedRef{ID: a.ID, DeletedAtUtc: a.UpdatedAtUtc})
			continue
		}
		entry := AssetWithURL{Asset: a}
		if p.URLSigner != nil {
			url, err := p.URLSigner.SignURL(ctx, a.BlobPath, p.DownloadURLValidity)
			if err != nil {
				log.Warn().Err(err).Str("assetId", a.ID.String()).Msg("failed to sign asset download url")
			} else {
				entry.DownloadURL = &url
			}
		}
		delta.Created = append(delta.Created, entry)
	}
	return delta
}
