package syncengine

import (
	"testing"
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/erauner12/syncore/internal/outbox"
	"github.com/erauner12/syncore/internal/repo"
	"github.com/google/uuid"
)

func newTestPusher(devices *repo.FakeDeviceRepo) (*Pusher, *repo.FakeTaskRepo, *repo.FakeNoteRepo, *repo.FakeBlockRepo, *outbox.FakeAppender) {
	tasks := repo.NewFakeTaskRepo()
	notes := repo.NewFakeNoteRepo()
	blocks := repo.NewFakeBlockRepo()
	ob := outbox.NewFakeAppender()
	return NewPusher(tasks, notes, blocks, devices, ob), tasks, notes, blocks, ob
}

func activeDevice(userID uuid.UUID, now time.Time) (*repo.FakeDeviceRepo, uuid.UUID) {
	devices := repo.NewFakeDeviceRepo()
	d, err := domain.NewUserDevice(userID, "tok", "ios", "phone", now)
	if err != nil {
		panic(err)
	}
	devices.Put(*d)
	return devices, d.ID
}

// S1 — single create.
func TestPush_SingleTaskCreate(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	devices, deviceID := activeDevice(userID, now)
	pusher, _, _, _, ob := newTestPusher(devices)

	clientID := uuid.New()
	req := PushRequest{
		DeviceID: deviceID,
		Tasks: TaskBatch{Created: []TaskCreate{
			{ClientID: clientID, Title: "T", Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
		}},
	}

	result, err := pusher.Push(nil, nil, userID, req, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Tasks.Created) != 1 {
		t.Fatalf("expected 1 created task result, got %d", len(result.Tasks.Created))
	}
	item := result.Tasks.Created[0]
	if item.Status != StatusCreated || item.Version != 1 || *item.ClientID != clientID {
		t.Fatalf("unexpected item result: %+v", item)
	}
	if len(ob.Messages()) != 1 {
		t.Fatalf("expected 1 outbox message, got %d", len(ob.Messages()))
	}
	if ob.Messages()[0].MessageType != outbox.MessageTypeTaskCreated {
		t.Fatalf("expected Task.Created, got %s", ob.Messages()[0].MessageType)
	}
}

// S2 — version mismatch conflict.
func TestPush_TaskUpdateVersionMismatch(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	devices, deviceID := activeDevice(userID, now)
	pusher, tasks, _, _, ob := newTestPusher(devices)

	task, err := domain.NewTask(userID, now, "Original", "", nil, nil, "", nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 4; i++ {
		if err := task.Update(task.Title, task.Date, task.Description, nil, nil, "", nil, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if task.Version != 5 {
		t.Fatalf("expected version 5, got %d", task.Version)
	}
	tasks.Insert(nil, nil, task)

	req := PushRequest{
		DeviceID: deviceID,
		Tasks: TaskBatch{Updated: []TaskUpdate{
			{ID: task.ID, ExpectedVersion: 1, Title: "X", Date: now},
		}},
	}

	result, err := pusher.Push(nil, nil, userID, req, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item := result.Tasks.Updated[0]
	if item.Status != StatusFailed || item.Conflict == nil || item.Conflict.ConflictType != ConflictVersionMismatch {
		t.Fatalf("expected VersionMismatch, got %+v", item)
	}
	if *item.Conflict.ClientVersion != 1 || *item.Conflict.ServerVersion != 5 {
		t.Fatalf("unexpected conflict versions: %+v", item.Conflict)
	}
	if item.Conflict.ServerTask == nil || item.Conflict.ServerTask.Version != 5 {
		t.Fatal("expected server snapshot with version 5")
	}
	if len(ob.Messages()) != 0 {
		t.Fatal("expected no outbox message on version mismatch")
	}
}

// S3 — idempotent delete.
func TestPush_IdempotentDelete(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	devices, deviceID := activeDevice(userID, now)
	pusher, tasks, _, _, ob := newTestPusher(devices)

	task, _ := domain.NewTask(userID, now, "T", "", nil, nil, "", nil, now)
	tasks.Insert(nil, nil, task)

	req := PushRequest{DeviceID: deviceID, Tasks: TaskBatch{Deleted: []TaskDelete{{ID: task.ID}}}}

	first, err := pusher.Push(nil, nil, userID, req, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Tasks.Deleted[0].Status != StatusDeleted {
		t.Fatalf("expected Deleted, got %s", first.Tasks.Deleted[0].Status)
	}

	second, err := pusher.Push(nil, nil, userID, req, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Tasks.Deleted[0].Status != StatusAlreadyDeleted {
		t.Fatalf("expected AlreadyDeleted, got %s", second.Tasks.Deleted[0].Status)
	}

	if len(ob.Messages()) != 1 {
		t.Fatalf("expected exactly 1 delete outbox message, got %d", len(ob.Messages()))
	}
}

// S4 — intra-batch parent reference.
func TestPush_IntraBatchParentReference(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	devices, deviceID := activeDevice(userID, now)
	pusher, _, _, blocks, _ := newTestPusher(devices)

	noteClientID := uuid.New()
	blockClientID := uuid.New()

	req := PushRequest{
		DeviceID: deviceID,
		Notes: NoteBatch{Created: []NoteCreate{
			{ClientID: noteClientID, Title: "N", Date: now},
		}},
		Blocks: BlockBatch{Created: []BlockCreate{
			{ClientID: blockClientID, ParentClientID: &noteClientID, ParentType: domain.ParentTypeNote, Type: domain.BlockTypeParagraph, Position: "a0", TextContent: "x"},
		}},
	}

	result, err := pusher.Push(nil, nil, userID, req, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Notes.Created[0].Status != StatusCreated {
		t.Fatalf("expected note created, got %+v", result.Notes.Created[0])
	}
	if result.Blocks.Created[0].Status != StatusCreated {
		t.Fatalf("expected block created, got %+v", result.Blocks.Created[0])
	}

	serverNoteID := result.Notes.Created[0].ServerID
	serverBlockID := result.Blocks.Created[0].ServerID
	stored, err := blocks.GetByID(nil, nil, userID, serverBlockID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.ParentID != serverNoteID {
		t.Fatalf("expected block ParentID %v, got %v", serverNoteID, stored.ParentID)
	}
}

// S5 — block with missing parent.
func TestPush_BlockMissingParent(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	devices, deviceID := activeDevice(userID, now)
	pusher, _, _, _, _ := newTestPusher(devices)

	req := PushRequest{
		DeviceID: deviceID,
		Blocks: BlockBatch{Created: []BlockCreate{
			{ClientID: uuid.New(), ParentType: domain.ParentTypeNote, Type: domain.BlockTypeParagraph, Position: "a0"},
		}},
	}

	result, err := pusher.Push(nil, nil, userID, req, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item := result.Blocks.Created[0]
	if item.Status != StatusFailed || item.Conflict == nil || item.Conflict.ConflictType != ConflictParentNotFound {
		t.Fatalf("expected ParentNotFound, got %+v", item)
	}
}

func TestPush_DeviceGateRejectsInactiveDevice(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	devices, deviceID := activeDevice(userID, now)
	device, _ := devices.GetByID(nil, deviceID)
	device.Deactivate(now)
	devices.Put(*device)

	pusher, _, _, _, _ := newTestPusher(devices)
	req := PushRequest{DeviceID: deviceID}

	if _, err := pusher.Push(nil, nil, userID, req, now); err != ErrDeviceGateFailed {
		t.Fatalf("expected ErrDeviceGateFailed, got %v", err)
	}
}

func TestPush_OutboxFailureOnDeleteSurfacesAsFailed(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	devices, deviceID := activeDevice(userID, now)
	pusher, tasks, _, _, ob := newTestPusher(devices)

	task, _ := domain.NewTask(userID, now, "T", "", nil, nil, "", nil, now)
	tasks.Insert(nil, nil, task)
	ob.FailNextAppend()

	req := PushRequest{DeviceID: deviceID, Tasks: TaskBatch{Deleted: []TaskDelete{{ID: task.ID}}}}
	result, err := pusher.Push(nil, nil, userID, req, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	item := result.Tasks.Deleted[0]
	if item.Status != StatusFailed || item.Conflict == nil || item.Conflict.ConflictType != ConflictOutboxFailed {
		t.Fatalf("expected OutboxFailed, got %+v", item)
	}

	stored, err := tasks.GetByID(nil, nil, userID, task.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.IsDeleted {
		t.Fatal("expected the soft-delete to stand despite the outbox failure")
	}
}

func TestPush_OutboxFailureOnCreateIsBestEffortAndDoesNotFailItem(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	devices, deviceID := activeDevice(userID, now)
	pusher, _, _, _, ob := newTestPusher(devices)
	ob.FailNextAppend()

	req := PushRequest{DeviceID: deviceID, Tasks: TaskBatch{Created: []TaskCreate{
		{ClientID: uuid.New(), Title: "T", Date: now},
	}}}
	result, err := pusher.Push(nil, nil, userID, req, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Tasks.Created[0].Status != StatusCreated {
		t.Fatalf("expected the create to stand despite the outbox failure, got %+v", result.Tasks.Created[0])
	}
	if len(ob.Messages()) != 0 {
		t.Fatal("expected the failed append to leave no message behind")
	}
}

func TestPush_EmptyPayloadProducesEmptyResult(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	devices, deviceID := activeDevice(userID, now)
	pusher, _, _, _, ob := newTestPusher(devices)

	result, err := pusher.Push(nil, nil, userID, PushRequest{DeviceID: deviceID}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Tasks.Created) != 0 || len(result.Notes.Created) != 0 || len(result.Blocks.Created) != 0 {
		t.Fatal("expected empty result for empty payload")
	}
	if len(ob.Messages()) != 0 {
		t.Fatal("expected no outbox rows for empty payload")
	}
}
