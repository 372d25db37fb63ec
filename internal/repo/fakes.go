package repo

import (
	"context"
	"sort"
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// The Fake* repositories below are in-memory implementations of the repo
// interfaces, used by syncengine tests so Push/Pull/Resolve logic is
// exercised without a database. They ignore the tx argument entirely: there
// is no real transaction to participate in, so tests construct one fake set
// per test and read its state back through the repo methods afterward.

// FakeTaskRepo is an in-memory TaskRepo.
type FakeTaskRepo struct {
	byID map[uuid.UUID]domain.Task
}

// NewFakeTaskRepo constructs an empty FakeTaskRepo.
func NewFakeTaskRepo() *FakeTaskRepo {
	return &FakeTaskRepo{byID: map[uuid.UUID]domain.Task{}}
}

func (r *FakeTaskRepo) GetByID(_ context.Context, _ pgx.Tx, userID, id uuid.UUID) (*domain.Task, error) {
	t, ok := r.byID[id]
	if !ok || t.UserID != userID {
		return nil, ErrNotFound
	}
	cp := t
	return &cp, nil
}

func (r *FakeTaskRepo) Insert(_ context.Context, _ pgx.Tx, t *domain.Task) error {
	r.byID[t.ID] = *t
	return nil
}

func (r *FakeTaskRepo) Update(_ context.Context, _ pgx.Tx, t *domain.Task) error {
	r.byID[t.ID] = *t
	return nil
}

func (r *FakeTaskRepo) ListForPull(_ context.Context, userID uuid.UUID, sinceUtc *time.Time) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range r.byID {
		if t.UserID != userID {
			continue
		}
		if sinceUtc == nil {
			if !t.IsDeleted {
				out = append(out, t)
			}
			continue
		}
		if t.UpdatedAtUtc.After(*sinceUtc) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAtUtc.Before(out[j].UpdatedAtUtc) })
	return out, nil
}

// FakeNoteRepo is an in-memory NoteRepo.
type FakeNoteRepo struct {
	byID map[uuid.UUID]domain.Note
}

// NewFakeNoteRepo constructs an empty FakeNoteRepo.
func NewFakeNoteRepo() *FakeNoteRepo {
	return &FakeNoteRepo{byID: map[uuid.UUID]domain.Note{}}
}

func (r *FakeNoteRepo) GetByID(_ context.Context, _ pgx.Tx, userID, id uuid.UUID) (*domain.Note, error) {
	n, ok := r.byID[id]
	if !ok || n.UserID != userID {
		return nil, ErrNotFound
	}
	cp := n
	return &cp, nil
}

func (r *FakeNoteRepo) Insert(_ context.Context, _ pgx.Tx, n *domain.Note) error {
	r.byID[n.ID] = *n
	return nil
}

func (r *FakeNoteRepo) Update(_ context.Context, _ pgx.Tx, n *domain.Note) error {
	r.byID[n.ID] = *n
	return nil
}

func (r *FakeNoteRepo) ListForPull(_ context.Context, userID uuid.UUID, sinceUtc *time.Time) ([]domain.Note, error) {
	var out []domain.Note
	for _, n := range r.byID {
		if n.UserID != userID {
			continue
		}
		if sinceUtc == nil {
			if !n.IsDeleted {
				out = append(out, n)
			}
			continue
		}
		if n.UpdatedAtUtc.After(*sinceUtc) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAtUtc.Before(out[j].UpdatedAtUtc) })
	return out, nil
}

// FakeBlockRepo is an in-memory BlockRepo.
type FakeBlockRepo struct {
	byID map[uuid.UUID]domain.Block
}

// NewFakeBlockRepo constructs an empty FakeBlockRepo.
func NewFakeBlockRepo() *FakeBlockRepo {
	return &FakeBlockRepo{byID: map[uuid.UUID]domain.Block{}}
}

func (r *FakeBlockRepo) GetByID(_ context.Context, _ pgx.Tx, userID, id uuid.UUID) (*domain.Block, error) {
	b, ok := r.byID[id]
	if !ok || b.UserID != userID {
		return nil, ErrNotFound
	}
	cp := b
	return &cp, nil
}

func (r *FakeBlockRepo) Insert(_ context.Context, _ pgx.Tx, b *domain.Block) error {
	r.byID[b.ID] = *b
	return nil
}

func (r *FakeBlockRepo) Update(_ context.Context, _ pgx.Tx, b *domain.Block) error {
	r.byID[b.ID] = *b
	return nil
}

func (r *FakeBlockRepo) ListForPull(_ context.Context, userID uuid.UUID, sinceUtc *time.Time) ([]domain.Block, error) {
	var out []domain.Block
	for _, b := range r.byID {
		if b.UserID != userID {
			continue
		}
		if sinceUtc == nil {
			if !b.IsDeleted {
				out = append(out, b)
			}
			continue
		}
		if b.UpdatedAtUtc.After(*sinceUtc) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAtUtc.Before(out[j].UpdatedAtUtc) })
	return out, nil
}

// FakeAssetRepo is an in-memory AssetRepo.
type FakeAssetRepo struct {
	byID      map[uuid.UUID]domain.Asset
	byBlockID map[uuid.UUID]uuid.UUID
}

// NewFakeAssetRepo constructs an empty FakeAssetRepo.
func NewFakeAssetRepo() *FakeAssetRepo {
	return &FakeAssetRepo{byID: map[uuid.UUID]domain.Asset{}, byBlockID: map[uuid.UUID]uuid.UUID{}}
}

func (r *FakeAssetRepo) GetByBlockID(_ context.Context, _ pgx.Tx, userID, blockID uuid.UUID) (*domain.Asset, error) {
	id, ok := r.byBlockID[blockID]
	if !ok {
		return nil, ErrNotFound
	}
	a := r.byID[id]
	if a.UserID != userID {
		return nil, ErrNotFound
	}
	cp := a
	return &cp, nil
}

func (r *FakeAssetRepo) Insert(_ context.Context, _ pgx.Tx, a *domain.Asset) error {
	r.byID[a.ID] = *a
	r.byBlockID[a.BlockID] = a.ID
	return nil
}

func (r *FakeAssetRepo) ListForPull(_ context.Context, userID uuid.UUID, sinceUtc *time.Time) ([]domain.Asset, error) {
	var out []domain.Asset
	for _, a := range r.byID {
		if a.UserID != userID {
			continue
		}
		if sinceUtc == nil {
			if !a.IsDeleted {
				out = append(out, a)
			}
			continue
		}
		if a.UpdatedAtUtc.After(*sinceUtc) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAtUtc.Before(out[j].UpdatedAtUtc) })
	return out, nil
}

// FakeDeviceRepo is an in-memory DeviceRepo.
type FakeDeviceRepo struct {
	byID map[uuid.UUID]domain.UserDevice
}

// NewFakeDeviceRepo constructs an empty FakeDeviceRepo.
func NewFakeDeviceRepo() *FakeDeviceRepo {
	return &FakeDeviceRepo{byID: map[uuid.UUID]domain.UserDevice{}}
}

// Put seeds a device into the fake store, for test setup.
func (r *FakeDeviceRepo) Put(d domain.UserDevice) {
	r.byID[d.ID] = d
}

func (r *FakeDeviceRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.UserDevice, error) {
	d, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := d
	return &cp, nil
}
