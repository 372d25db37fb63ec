package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTaskCreateValidation(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()

	if _, err := NewTask(userID, now, "", "", nil, nil, "", nil, now); err == nil {
		t.Fatal("expected validation error for empty title")
	}

	start := now
	end := now.Add(-time.Hour)
	if _, err := NewTask(userID, now, "Title", "", &start, &end, "", nil, now); err == nil {
		t.Fatal("expected validation error for start after end")
	}

	task, err := NewTask(userID, now, "Title", "desc", nil, nil, "", nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Version != 1 {
		t.Fatalf("expected version 1, got %d", task.Version)
	}
	if task.IsDeleted {
		t.Fatal("expected new task to not be deleted")
	}
}

func TestTaskMutationsBumpVersionAndTimestamp(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	task, err := NewTask(userID, now, "Title", "", nil, nil, "", nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	later := now.Add(time.Minute)
	if err := task.MarkCompleted(later); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Version != 2 {
		t.Fatalf("expected version 2, got %d", task.Version)
	}
	if !task.UpdatedAtUtc.Equal(later) {
		t.Fatalf("expected UpdatedAtUtc %v, got %v", later, task.UpdatedAtUtc)
	}
	if !task.IsCompleted {
		t.Fatal("expected task to be completed")
	}
}

func TestSoftDeleteIsTerminal(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	note, err := NewNote(userID, now, "Title", "", nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := note.SoftDelete(now.Add(time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !note.IsDeleted {
		t.Fatal("expected note to be deleted")
	}

	if err := note.SoftDelete(now.Add(2 * time.Minute)); !errors.Is(err, ErrAlreadyDeleted) {
		t.Fatalf("expected ErrAlreadyDeleted, got %v", err)
	}

	if err := note.Update("New", "", nil, now, now.Add(3*time.Minute)); !errors.Is(err, ErrAlreadyDeleted) {
		t.Fatalf("expected mutation on deleted entity to fail, got %v", err)
	}
}

func TestBlockCreateTextRejectsAssetType(t *testing.T) {
	userID := uuid.New()
	parentID := uuid.New()
	now := time.Now().UTC()

	if _, err := NewTextBlock(userID, parentID, ParentTypeNote, BlockTypeImage, "a0", "text", now); err == nil {
		t.Fatal("expected error constructing text block with asset block type")
	}

	if _, err := NewTextBlock(userID, parentID, ParentTypeTask, BlockTypeParagraph, "a0", "text", now); err == nil {
		t.Fatal("expected error for unsupported parent type Task")
	}

	block, err := NewTextBlock(userID, parentID, ParentTypeNote, BlockTypeParagraph, "a0", "text", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if block.Position != "a0" {
		t.Fatalf("expected position to be stored verbatim, got %q", block.Position)
	}
}

func TestBlockAssetUploadStateMachine(t *testing.T) {
	userID := uuid.New()
	parentID := uuid.New()
	now := time.Now().UTC()

	block, err := NewAssetBlock(userID, parentID, ParentTypeNote, BlockTypeImage, "a0", "client-1", "photo.jpg", "image/jpeg", 1024, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if block.UploadStatus != UploadStatusPending {
		t.Fatalf("expected Pending, got %s", block.UploadStatus)
	}

	assetID := uuid.New()
	if err := block.SetAssetUploaded(assetID, now.Add(time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if block.UploadStatus != UploadStatusUploaded {
		t.Fatalf("expected Uploaded, got %s", block.UploadStatus)
	}
	if block.AssetID == nil || *block.AssetID != assetID {
		t.Fatal("expected AssetID to be set")
	}

	// Cannot transition again once uploaded.
	if err := block.SetUploadFailed(now.Add(2 * time.Minute)); err == nil {
		t.Fatal("expected error transitioning Uploaded -> Failed")
	}
}

func TestBlockAssetValidation(t *testing.T) {
	userID := uuid.New()
	parentID := uuid.New()
	now := time.Now().UTC()

	if _, err := NewAssetBlock(userID, parentID, ParentTypeNote, BlockTypeImage, "a0", "", "photo.jpg", "image/jpeg", 1024, now); err == nil {
		t.Fatal("expected error for empty asset client id")
	}
	if _, err := NewAssetBlock(userID, parentID, ParentTypeNote, BlockTypeImage, "a0", "c1", "photo.jpg", "image/jpeg", 0, now); err == nil {
		t.Fatal("expected error for non-positive size")
	}
}

func TestUserDeviceValidPrincipal(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	device, err := NewUserDevice(userID, "tok", "ios", "phone", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !device.IsValidPrincipal(userID) {
		t.Fatal("expected new active device to be a valid principal")
	}

	otherUser := uuid.New()
	if device.IsValidPrincipal(otherUser) {
		t.Fatal("expected device to not be a valid principal for a different user")
	}

	if err := device.Deactivate(now.Add(time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if device.IsValidPrincipal(userID) {
		t.Fatal("expected deactivated device to not be a valid principal")
	}
}
