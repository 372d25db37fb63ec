package blobstore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/service"
)

// AzureBlobStore is a BlobStore backed by Azure Blob Storage. path is always
// of the form "{containerName}/{rest of the blob name}" — the container is
// split off path's first segment so a single store instance can serve every
// asset container the orchestrator addresses.
type AzureBlobStore struct {
	client *azblob.Client
	cred   *service.SharedKeyCredential
}

// NewAzureBlobStore constructs an AzureBlobStore from an account name/key
// pair and service URL (spec.md §6's AssetStorage configuration surface).
func NewAzureBlobStore(serviceURL, accountName, accountKey string) (*AzureBlobStore, error) {
	cred, err := service.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("blobstore: building shared key credential: %w", err)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("blobstore: building azblob client: %w", err)
	}
	return &AzureBlobStore{client: client, cred: cred}, nil
}

func splitContainerAndBlob(path string) (container, blob string, ok bool) {
	idx := strings.Index(path, "/")
	if idx < 0 {
		return "", "", false
	}
	return path[:idx], path[idx+1:], true
}

func (s *AzureBlobStore) Put(ctx context.Context, path string, body io.Reader, size int64, contentType string) error {
	container, blob, ok := splitContainerAndBlob(path)
	if !ok {
		return fmt.Errorf("blobstore: malformed path %q", path)
	}
	_, err := s.client.UploadStream(ctx, container, blob, body, &azblob.UploadStreamOptions{
		HTTPHeaders: &azblob.BlobHTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("blobstore: upload %q: %w", path, err)
	}
	return nil
}

func (s *AzureBlobStore) Delete(ctx context.Context, path string) error {
	container, blob, ok := splitContainerAndBlob(path)
	if !ok {
		return fmt.Errorf("blobstore: malformed path %q", path)
	}
	_, err := s.client.DeleteBlob(ctx, container, blob, nil)
	if err != nil {
		return fmt.Errorf("blobstore: delete %q: %w", path, err)
	}
	return nil
}

func (s *AzureBlobStore) SignURL(ctx context.Context, path string, validity time.Duration) (string, error) {
	container, blob, ok := splitContainerAndBlob(path)
	if !ok {
		return "", fmt.Errorf("blobstore: malformed path %q", path)
	}

	start := time.Now().UTC().Add(-5 * time.Minute)
	expiry := start.Add(validity)
	values := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     start,
		ExpiryTime:    expiry,
		Permissions:   (&sas.BlobPermissions{Read: true}).String(),
		ContainerName: container,
		BlobName:      blob,
	}
	q, err := values.SignWithSharedKeyCredential(s.cred)
	if err != nil {
		return "", fmt.Errorf("blobstore: signing url for %q: %w", path, err)
	}

	blobURL := s.client.ServiceClient().NewContainerClient(container).NewBlobClient(blob).URL()
	return blobURL + "?" + q.Encode(), nil
}
