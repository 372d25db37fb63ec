package assetupload

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/erauner12/syncore/internal/blobstore"
	"github.com/erauner12/syncore/internal/domain"
	"github.com/erauner12/syncore/internal/outbox"
	"github.com/erauner12/syncore/internal/repo"
	"github.com/google/uuid"
)

func newTestOrchestrator(maxSize int64) (*Orchestrator, *repo.FakeBlockRepo, *repo.FakeAssetRepo, *blobstore.FakeBlobStore, *outbox.FakeAppender) {
	blocks := repo.NewFakeBlockRepo()
	assets := repo.NewFakeAssetRepo()
	blobs := blobstore.NewFakeBlobStore()
	ob := outbox.NewFakeAppender()
	o := NewOrchestrator(blocks, assets, ob, blobs, "user-assets", maxSize, time.Hour)
	return o, blocks, assets, blobs, ob
}

func pendingImageBlock(userID, parentID uuid.UUID, assetClientID string, now time.Time) *domain.Block {
	b, err := domain.NewAssetBlock(userID, parentID, domain.ParentTypeNote, domain.BlockTypeImage, "a0", assetClientID, "placeholder.jpg", "image/jpeg", 1, now)
	if err != nil {
		panic(err)
	}
	return b
}

// S6 — asset upload happy path.
func TestUpload_HappyPath(t *testing.T) {
	userID := uuid.New()
	parentID := uuid.New()
	now := time.Now().UTC()
	o, blocks, assets, blobs, ob := newTestOrchestrator(50 * 1024 * 1024)

	block := pendingImageBlock(userID, parentID, "a-123", now)
	blocks.Insert(nil, nil, block)

	req := UploadRequest{
		BlockID:       block.ID,
		AssetClientID: "a-123",
		Body:          strings.NewReader("bytes"),
		FileName:      "p.jpg",
		ContentType:   "image/jpeg",
		SizeBytes:     1024,
	}

	result, err := o.Upload(nil, nil, userID, req, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.BlockID != block.ID || result.DownloadURL == nil {
		t.Fatalf("unexpected result: %+v", result)
	}

	storedBlock, err := blocks.GetByID(nil, nil, userID, block.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storedBlock.UploadStatus != domain.UploadStatusUploaded || storedBlock.AssetID == nil || *storedBlock.AssetID != result.AssetID {
		t.Fatalf("unexpected block state: %+v", storedBlock)
	}

	storedAsset, err := assets.GetByBlockID(nil, nil, userID, block.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storedAsset.ID != result.AssetID {
		t.Fatalf("expected asset id %v, got %v", result.AssetID, storedAsset.ID)
	}

	expectedPath := "user-assets/" + userID.String() + "/" + parentID.String() + "/" + block.ID.String() + "/p.jpg"
	if !blobs.Has(expectedPath) {
		t.Fatalf("expected blob at %q", expectedPath)
	}

	if len(ob.Messages()) != 2 {
		t.Fatalf("expected 2 outbox messages (Asset.Created, Block.Updated), got %d", len(ob.Messages()))
	}
}

func TestUpload_SizeTooLarge(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	o, blocks, _, _, _ := newTestOrchestrator(1024)

	block := pendingImageBlock(userID, uuid.New(), "a-1", now)
	blocks.Insert(nil, nil, block)

	req := UploadRequest{BlockID: block.ID, AssetClientID: "a-1", Body: strings.NewReader("x"), FileName: "f.jpg", SizeBytes: 2048}
	if _, err := o.Upload(nil, nil, userID, req, now); err != ErrAssetSizeTooLarge {
		t.Fatalf("expected ErrAssetSizeTooLarge, got %v", err)
	}
}

func TestUpload_AssetClientIDMismatch(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	o, blocks, _, _, _ := newTestOrchestrator(1024 * 1024)

	block := pendingImageBlock(userID, uuid.New(), "a-1", now)
	blocks.Insert(nil, nil, block)

	req := UploadRequest{BlockID: block.ID, AssetClientID: "a-wrong", Body: strings.NewReader("x"), FileName: "f.jpg", SizeBytes: 10}
	if _, err := o.Upload(nil, nil, userID, req, now); err != ErrAssetClientIDMismatch {
		t.Fatalf("expected ErrAssetClientIDMismatch, got %v", err)
	}
}

// TestUpload_BlobFailureMarksBlockFailed covers what Upload itself does: it
// writes the Block's Failed transition into tx and returns
// ErrBlockMarkedFailed rather than committing tx (tx's lifetime stays with
// the caller). It does NOT cover whether that write survives a real
// pgx.Tx — that is the caller's responsibility, decided by
// commitDespiteUploadError in internal/httpapi and covered there, since the
// fake repos here mutate their in-memory state regardless of tx and would
// mask a caller that rolled back instead of committing.
func TestUpload_BlobFailureMarksBlockFailed(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	o, blocks, _, blobs, _ := newTestOrchestrator(1024 * 1024)

	block := pendingImageBlock(userID, uuid.New(), "a-1", now)
	blocks.Insert(nil, nil, block)
	blobs.FailNextPut()

	req := UploadRequest{BlockID: block.ID, AssetClientID: "a-1", Body: strings.NewReader("x"), FileName: "f.jpg", SizeBytes: 10}
	_, err := o.Upload(nil, nil, userID, req, now)
	if !errors.Is(err, ErrBlockMarkedFailed) {
		t.Fatalf("expected ErrBlockMarkedFailed, got %v", err)
	}
	if !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrBlockMarkedFailed to still satisfy errors.Is(_, ErrUploadFailed), got %v", err)
	}

	stored, err := blocks.GetByID(nil, nil, userID, block.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.UploadStatus != domain.UploadStatusFailed {
		t.Fatalf("expected block UploadStatus Failed, got %v", stored.UploadStatus)
	}
}

func TestUpload_IdempotentRetryShortCircuits(t *testing.T) {
	userID := uuid.New()
	now := time.Now().UTC()
	o, blocks, assets, _, ob := newTestOrchestrator(1024 * 1024)

	block := pendingImageBlock(userID, uuid.New(), "a-1", now)
	blocks.Insert(nil, nil, block)

	req := UploadRequest{BlockID: block.ID, AssetClientID: "a-1", Body: strings.NewReader("bytes"), FileName: "f.jpg", SizeBytes: 10}
	first, err := o.Upload(nil, nil, userID, req, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := o.Upload(nil, nil, userID, req, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.AssetID != first.AssetID {
		t.Fatalf("expected idempotent retry to return the same asset id, got %v vs %v", second.AssetID, first.AssetID)
	}
	if len(ob.Messages()) != 2 {
		t.Fatalf("expected no additional outbox messages on retry, got %d", len(ob.Messages()))
	}

	stillOneAsset, err := assets.GetByBlockID(nil, nil, userID, block.ID)
	if err != nil || stillOneAsset.ID != first.AssetID {
		t.Fatalf("expected the original asset to remain unchanged, got %+v, err %v", stillOneAsset, err)
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"photo.jpg":      "photo.jpg",
		"../../etc/pass": ".._.._etc_pass",
		"a/b\\c:d":       "a_b_c_d",
		"":               "file",
		"***":            "___",
	}
	for in, want := range cases {
		if got := sanitizeFileName(in); got != want {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
