package blobstore

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

var errFakePutFailed = errors.New("blobstore: simulated put failure")

// FakeBlobStore is an in-memory BlobStore used by assetupload tests so the
// five-phase workflow can be exercised without Azure credentials.
type FakeBlobStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	failPut   bool
	deletions []string
}

// NewFakeBlobStore constructs an empty FakeBlobStore.
func NewFakeBlobStore() *FakeBlobStore {
	return &FakeBlobStore{objects: map[string][]byte{}}
}

// FailNextPut makes the next Put call return an error, simulating phase 3's
// blob-failure path.
func (f *FakeBlobStore) FailNextPut() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPut = true
}

func (f *FakeBlobStore) Put(_ context.Context, path string, body io.Reader, _ int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut {
		f.failPut = false
		return errFakePutFailed
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[path] = data
	return nil
}

func (f *FakeBlobStore) Delete(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, path)
	f.deletions = append(f.deletions, path)
	return nil
}

func (f *FakeBlobStore) SignURL(_ context.Context, path string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[path]; !ok {
		return "", errors.New("blobstore: object not found")
	}
	return "https://fake-blob.test/" + path, nil
}

// Has reports whether path currently exists, for test assertions.
func (f *FakeBlobStore) Has(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[path]
	return ok
}

// Deletions returns every path passed to Delete, in call order.
func (f *FakeBlobStore) Deletions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.deletions))
	copy(out, f.deletions)
	return out
}
