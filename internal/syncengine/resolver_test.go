package syncengine

import (
	"testing"
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/erauner12/syncore/internal/outbox"
	"github.com/erauner12/syncore/internal/repo"
	"github.com/google/uuid"
)

func newTestResolver() (*Resolver, *repo.FakeTaskRepo, *repo.FakeNoteRepo, *repo.FakeBlockRepo, *outbox.FakeAppender) {
	tasks := repo.NewFakeTaskRepo()
	notes := repo.NewFakeNoteRepo()
	blocks := repo.NewFakeBlockRepo()
	ob := outbox.NewFakeAppender()
	return NewResolver(tasks, notes, blocks, ob), tasks, notes, blocks, ob
}

func TestResolve_KeepServerReturnsCurrentVersionUnchanged(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	resolver, tasks, _, _, ob := newTestResolver()

	task, _ := domain.NewTask(userID, now, "T", "", nil, nil, "", nil, now)
	tasks.Insert(nil, nil, task)

	items := []ResolveItem{{EntityType: ResolveEntityTask, EntityID: task.ID, Choice: ResolveKeepServer}}
	results, err := resolver.Resolve(nil, nil, userID, items, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Status != ResolveStatusKeptServer || *results[0].NewVersion != 1 {
		t.Fatalf("unexpected result: %+v", results[0])
	}
	if len(ob.Messages()) != 0 {
		t.Fatal("expected no outbox message for KeepServer")
	}
}

func TestResolve_KeepClientAppliesDataAndRecordsNilOriginDevice(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	resolver, tasks, _, _, ob := newTestResolver()

	task, _ := domain.NewTask(userID, now, "Original", "", nil, nil, "", nil, now)
	tasks.Insert(nil, nil, task)

	items := []ResolveItem{{
		EntityType:      ResolveEntityTask,
		EntityID:        task.ID,
		Choice:          ResolveKeepClient,
		ExpectedVersion: 1,
		TaskData:        &TaskData{Date: now, Title: "Client Wins"},
	}}
	results, err := resolver.Resolve(nil, nil, userID, items, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Status != ResolveStatusUpdated || *results[0].NewVersion != 2 {
		t.Fatalf("unexpected result: %+v", results[0])
	}

	stored, _ := tasks.GetByID(nil, nil, userID, task.ID)
	if stored.Title != "Client Wins" {
		t.Fatalf("expected title to be applied, got %q", stored.Title)
	}

	if len(ob.Messages()) != 1 {
		t.Fatalf("expected 1 outbox message, got %d", len(ob.Messages()))
	}
	if ob.Messages()[0].OriginDeviceID != nil {
		t.Fatalf("expected nil OriginDeviceID for a resolve-originated mutation, got %v", ob.Messages()[0].OriginDeviceID)
	}
}

func TestResolve_VersionMismatchReturnsConflict(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	resolver, tasks, _, _, _ := newTestResolver()

	task, _ := domain.NewTask(userID, now, "T", "", nil, nil, "", nil, now)
	tasks.Insert(nil, nil, task)

	items := []ResolveItem{{
		EntityType:      ResolveEntityTask,
		EntityID:        task.ID,
		Choice:          ResolveKeepClient,
		ExpectedVersion: 99,
		TaskData:        &TaskData{Date: now, Title: "X"},
	}}
	results, err := resolver.Resolve(nil, nil, userID, items, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Status != ResolveStatusConflict {
		t.Fatalf("expected Conflict, got %+v", results[0])
	}
}

func TestResolve_NotFoundEntity(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	resolver, _, _, _, _ := newTestResolver()

	items := []ResolveItem{{EntityType: ResolveEntityTask, EntityID: uuid.New(), Choice: ResolveKeepServer}}
	results, err := resolver.Resolve(nil, nil, userID, items, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Status != ResolveStatusNotFound {
		t.Fatalf("expected NotFound, got %+v", results[0])
	}
}

func TestResolve_BlockRevalidatesParentStillAlive(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	resolver, _, notes, blocks, _ := newTestResolver()

	note, _ := domain.NewNote(userID, now, "N", "", nil, now)
	notes.Insert(nil, nil, note)
	if err := note.SoftDelete(now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	notes.Update(nil, nil, note)

	block, _ := domain.NewTextBlock(userID, note.ID, domain.ParentTypeNote, domain.BlockTypeParagraph, "a0", "hi", now)
	blocks.Insert(nil, nil, block)

	items := []ResolveItem{{
		EntityType:      ResolveEntityBlock,
		EntityID:        block.ID,
		Choice:          ResolveKeepClient,
		ExpectedVersion: 1,
		BlockData:       &BlockData{TextContent: strPtr("new text")},
	}}
	results, err := resolver.Resolve(nil, nil, userID, items, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Status != ResolveStatusValidationFailed {
		t.Fatalf("expected ValidationFailed due to deleted parent, got %+v", results[0])
	}
}

func strPtr(s string) *string { return &s }
