package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ParentType enumerates the kinds of entity a Block can belong to. Task is
// reserved but rejected at creation — see ErrParentTypeUnsupported.
type ParentType string

const (
	ParentTypeNote ParentType = "Note"
	ParentTypeTask ParentType = "Task"
)

// BlockType enumerates the kinds of content a Block can hold.
type BlockType string

const (
	BlockTypeParagraph  BlockType = "Paragraph"
	BlockTypeHeading    BlockType = "Heading"
	BlockTypeBulletList BlockType = "BulletList"
	BlockTypeImage      BlockType = "Image"
	BlockTypeFile       BlockType = "File"
)

// IsAssetType reports whether a block of this type carries asset metadata
// rather than inline text content.
func (t BlockType) IsAssetType() bool {
	switch t {
	case BlockTypeImage, BlockTypeFile:
		return true
	default:
		return false
	}
}

// UploadStatus tracks the asset-upload state machine for asset-type blocks.
type UploadStatus string

const (
	UploadStatusPending  UploadStatus = "Pending"
	UploadStatusUploaded UploadStatus = "Uploaded"
	UploadStatusFailed   UploadStatus = "Failed"
)

// Block is an ordered content element belonging to a Note.
type Block struct {
	Base

	ParentID   uuid.UUID
	ParentType ParentType
	Type       BlockType
	Position   string

	// Text payload, populated for text block types.
	TextContent string

	// Asset metadata, populated for asset block types.
	AssetClientID    string
	AssetFileName    string
	AssetContentType string
	AssetSizeBytes   int64
	AssetID          *uuid.UUID
	UploadStatus     UploadStatus
}

func validatePosition(position string) error {
	if position == "" {
		return newValidationError("position must not be empty")
	}
	return nil
}

func validateAssetAttrs(assetClientID, assetFileName string, assetSizeBytes int64) error {
	var msgs []string
	if strings.TrimSpace(assetClientID) == "" {
		msgs = append(msgs, "asset client id must not be empty")
	}
	if strings.TrimSpace(assetFileName) == "" {
		msgs = append(msgs, "asset file name must not be empty")
	}
	if assetSizeBytes <= 0 {
		msgs = append(msgs, "asset size must be greater than zero")
	}
	if len(msgs) > 0 {
		return newValidationError(msgs...)
	}
	return nil
}

// NewTextBlock constructs a Block carrying inline text content. parentType
// must be Note; Task is reserved but unsupported (spec.md §9 Open Question
// 4 — rejected at the domain-validation step, per the chosen alternative
// recorded in DESIGN.md).
func NewTextBlock(userID, parentID uuid.UUID, parentType ParentType, blockType BlockType, position, textContent string, now time.Time) (*Block, error) {
	if blockType.IsAssetType() {
		return nil, newValidationError("block type requires asset metadata, not text content")
	}
	if parentType != ParentTypeNote {
		return nil, newValidationError("unsupported parent type")
	}
	if err := validatePosition(position); err != nil {
		return nil, err
	}
	return &Block{
		Base:        newBase(userID, now),
		ParentID:    parentID,
		ParentType:  parentType,
		Type:        blockType,
		Position:    position,
		TextContent: textContent,
	}, nil
}

// NewAssetBlock constructs a Block carrying asset metadata, initially
// UploadStatusPending.
func NewAssetBlock(userID, parentID uuid.UUID, parentType ParentType, blockType BlockType, position, assetClientID, assetFileName, assetContentType string, assetSizeBytes int64, now time.Time) (*Block, error) {
	if !blockType.IsAssetType() {
		return nil, newValidationError("block type does not accept asset metadata")
	}
	if parentType != ParentTypeNote {
		return nil, newValidationError("unsupported parent type")
	}
	if err := validatePosition(position); err != nil {
		return nil, err
	}
	if err := validateAssetAttrs(assetClientID, assetFileName, assetSizeBytes); err != nil {
		return nil, err
	}
	return &Block{
		Base:             newBase(userID, now),
		ParentID:         parentID,
		ParentType:       parentType,
		Type:             blockType,
		Position:         position,
		AssetClientID:    assetClientID,
		AssetFileName:    assetFileName,
		AssetContentType: assetContentType,
		AssetSizeBytes:   assetSizeBytes,
		UploadStatus:     UploadStatusPending,
	}, nil
}

// UpdatePosition rewrites the block's fractional-index position. The server
// never reinterprets or normalizes the string — it is stored and echoed
// back verbatim.
func (b *Block) UpdatePosition(position string, now time.Time) error {
	if err := b.checkMutable(); err != nil {
		return err
	}
	if err := validatePosition(position); err != nil {
		return err
	}
	b.Position = position
	b.touch(now)
	return nil
}

// UpdateTextContent rewrites the text payload of a text-type block.
func (b *Block) UpdateTextContent(text string, now time.Time) error {
	if err := b.checkMutable(); err != nil {
		return err
	}
	if b.Type.IsAssetType() {
		return newValidationError("cannot set text content on an asset block")
	}
	b.TextContent = text
	b.touch(now)
	return nil
}

// Update applies a combined position/text-content change as a single
// mutation (one Version bump), matching the Push Engine's one-result-per-item
// discipline. A nil pointer leaves that field unchanged.
func (b *Block) Update(position *string, textContent *string, now time.Time) error {
	if err := b.checkMutable(); err != nil {
		return err
	}
	if position != nil {
		if err := validatePosition(*position); err != nil {
			return err
		}
	}
	if textContent != nil && b.Type.IsAssetType() {
		return newValidationError("cannot set text content on an asset block")
	}
	if position != nil {
		b.Position = *position
	}
	if textContent != nil {
		b.TextContent = *textContent
	}
	b.touch(now)
	return nil
}

// SetUploadFailed transitions Pending -> Failed. Terminal for this block;
// the client must create a new block to retry (spec.md §4.4).
func (b *Block) SetUploadFailed(now time.Time) error {
	if err := b.checkMutable(); err != nil {
		return err
	}
	if b.UploadStatus != UploadStatusPending {
		return newValidationError("block upload status is not pending")
	}
	b.UploadStatus = UploadStatusFailed
	b.touch(now)
	return nil
}

// SetAssetUploaded atomically sets AssetId and transitions Pending ->
// Uploaded, per the upload orchestrator's phase 4.
func (b *Block) SetAssetUploaded(assetID uuid.UUID, now time.Time) error {
	if err := b.checkMutable(); err != nil {
		return err
	}
	if b.UploadStatus != UploadStatusPending {
		return newValidationError("block upload status is not pending")
	}
	b.AssetID = &assetID
	b.UploadStatus = UploadStatusUploaded
	b.touch(now)
	return nil
}

// SoftDelete marks the Block deleted. Terminal per invariant 3.
func (b *Block) SoftDelete(now time.Time) error {
	return b.softDelete(now)
}
