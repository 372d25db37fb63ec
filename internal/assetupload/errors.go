package assetupload

import (
	"errors"
	"fmt"
)

var (
	// ErrBlockNotFound mirrors spec.md §6's Block.NotFound code.
	ErrBlockNotFound = errors.New("assetupload: block not found")
	// ErrBlockTypeInvalid mirrors Block.Type.Invalid.
	ErrBlockTypeInvalid = errors.New("assetupload: block is not an asset type")
	// ErrBlockUploadInvalidStatus mirrors Block.Upload.InvalidStatus.
	ErrBlockUploadInvalidStatus = errors.New("assetupload: block upload status is not pending")
	// ErrAssetClientIDMismatch mirrors Asset.ClientId.Mismatch.
	ErrAssetClientIDMismatch = errors.New("assetupload: asset client id does not match block")
	// ErrAssetSizeInvalid mirrors Asset.Size.Invalid.
	ErrAssetSizeInvalid = errors.New("assetupload: size must be greater than zero")
	// ErrAssetSizeTooLarge mirrors Asset.Size.TooLarge.
	ErrAssetSizeTooLarge = errors.New("assetupload: size exceeds the configured maximum")
	// ErrUploadFailed mirrors Asset.Upload.Failed: the blob PUT itself failed.
	ErrUploadFailed = errors.New("assetupload: blob upload failed")
	// ErrBlockMarkedFailed wraps ErrUploadFailed (errors.Is still matches
	// it) and signals that Upload already wrote the Block's Failed
	// transition and its outbox row into tx before returning. Per spec.md
	// §4.4 phase 3 that transition must persist even though the upload as a
	// whole failed, so a caller that sees this error must still commit tx
	// instead of rolling it back.
	ErrBlockMarkedFailed = fmt.Errorf("assetupload: %w", ErrUploadFailed)
)
