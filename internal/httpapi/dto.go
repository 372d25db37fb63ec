package httpapi

import (
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/erauner12/syncore/internal/syncengine"
	"github.com/google/uuid"
)

// Wire DTOs for the sync-core HTTP surface (spec.md §6). Field names mirror
// the spec's PascalCase wire shape; the engine-layer types in syncengine use
// idiomatic Go naming and are mapped to/from these at the edge.

// --- Push ---

type taskCreateDTO struct {
	ClientID    uuid.UUID  `json:"ClientId"`
	Date        time.Time  `json:"Date"`
	Title       string     `json:"Title"`
	Description string     `json:"Description"`
	StartTime   *time.Time `json:"StartTime,omitempty"`
	EndTime     *time.Time `json:"EndTime,omitempty"`
	Location    string     `json:"Location"`
	TravelTime  *string    `json:"TravelTime,omitempty"` // duration as Go string, e.g. "15m0s"
}

type taskUpdateDTO struct {
	ID              uuid.UUID  `json:"Id"`
	ExpectedVersion int        `json:"ExpectedVersion"`
	Date            time.Time  `json:"Date"`
	Title           string     `json:"Title"`
	Description     string     `json:"Description"`
	StartTime       *time.Time `json:"StartTime,omitempty"`
	EndTime         *time.Time `json:"EndTime,omitempty"`
	Location        string     `json:"Location"`
	TravelTime      *string    `json:"TravelTime,omitempty"`
}

type taskDeleteDTO struct {
	ID uuid.UUID `json:"Id"`
}

type noteCreateDTO struct {
	ClientID uuid.UUID `json:"ClientId"`
	Date     time.Time `json:"Date"`
	Title    string    `json:"Title"`
	Summary  string    `json:"Summary"`
	Tags     []string  `json:"Tags,omitempty"`
}

type noteUpdateDTO struct {
	ID              uuid.UUID `json:"Id"`
	ExpectedVersion int       `json:"ExpectedVersion"`
	Date            time.Time `json:"Date"`
	Title           string    `json:"Title"`
	Summary         string    `json:"Summary"`
	Tags            []string  `json:"Tags,omitempty"`
}

type noteDeleteDTO struct {
	ID uuid.UUID `json:"Id"`
}

type blockCreateDTO struct {
	ClientID       uuid.UUID  `json:"ClientId"`
	ParentID       *uuid.UUID `json:"ParentId,omitempty"`
	ParentClientID *uuid.UUID `json:"ParentClientId,omitempty"`
	ParentType     string     `json:"ParentType"`
	Type           string     `json:"Type"`
	Position       string     `json:"Position"`

	TextContent string `json:"TextContent,omitempty"`

	AssetClientID    string `json:"AssetClientId,omitempty"`
	AssetFileName    string `json:"AssetFileName,omitempty"`
	AssetContentType string `json:"AssetContentType,omitempty"`
	AssetSizeBytes   int64  `json:"AssetSizeBytes,omitempty"`
}

type blockUpdateDTO struct {
	ID              uuid.UUID `json:"Id"`
	ExpectedVersion int       `json:"ExpectedVersion"`
	Position        *string   `json:"Position,omitempty"`
	TextContent     *string   `json:"TextContent,omitempty"`
}

type blockDeleteDTO struct {
	ID uuid.UUID `json:"Id"`
}

type taskBatchDTO struct {
	Created []taskCreateDTO `json:"Created,omitempty"`
	Updated []taskUpdateDTO `json:"Updated,omitempty"`
	Deleted []taskDeleteDTO `json:"Deleted,omitempty"`
}

type noteBatchDTO struct {
	Created []noteCreateDTO `json:"Created,omitempty"`
	Updated []noteUpdateDTO `json:"Updated,omitempty"`
	Deleted []noteDeleteDTO `json:"Deleted,omitempty"`
}

type blockBatchDTO struct {
	Created []blockCreateDTO `json:"Created,omitempty"`
	Updated []blockUpdateDTO `json:"Updated,omitempty"`
	Deleted []blockDeleteDTO `json:"Deleted,omitempty"`
}

type pushRequestDTO struct {
	DeviceID               uuid.UUID     `json:"DeviceId"`
	ClientSyncTimestampUtc time.Time     `json:"ClientSyncTimestampUtc"`
	Tasks                  taskBatchDTO  `json:"Tasks"`
	Notes                  noteBatchDTO  `json:"Notes"`
	Blocks                 blockBatchDTO `json:"Blocks"`
}

type conflictDTO struct {
	ConflictType  syncengine.ConflictType `json:"ConflictType"`
	ClientVersion *int                    `json:"ClientVersion,omitempty"`
	ServerVersion *int                    `json:"ServerVersion,omitempty"`
	ServerTask    *domain.Task            `json:"ServerTask,omitempty"`
	ServerNote    *domain.Note            `json:"ServerNote,omitempty"`
	ServerBlock   *domain.Block           `json:"ServerBlock,omitempty"`
}

type itemResultDTO struct {
	ClientID *uuid.UUID          `json:"ClientId,omitempty"`
	ServerID uuid.UUID           `json:"ServerId"`
	Status   syncengine.Status   `json:"Status"`
	Version  int                 `json:"Version"`
	Conflict *conflictDTO        `json:"Conflict,omitempty"`
	Errors   []string            `json:"Errors,omitempty"`
}

type resultBatchDTO struct {
	Created []itemResultDTO `json:"Created"`
	Updated []itemResultDTO `json:"Updated"`
	Deleted []itemResultDTO `json:"Deleted"`
}

type pushResponseDTO struct {
	Tasks  resultBatchDTO `json:"Tasks"`
	Notes  resultBatchDTO `json:"Notes"`
	Blocks resultBatchDTO `json:"Blocks"`
}

func itemResultToDTO(r syncengine.ItemResult) itemResultDTO {
	out := itemResultDTO{
		ClientID: r.ClientID,
		ServerID: r.ServerID,
		Status:   r.Status,
		Version:  r.Version,
		Errors:   r.Errors,
	}
	if r.Conflict != nil {
		out.Conflict = &conflictDTO{
			ConflictType:  r.Conflict.ConflictType,
			ClientVersion: r.Conflict.ClientVersion,
			ServerVersion: r.Conflict.ServerVersion,
			ServerTask:    r.Conflict.ServerTask,
			ServerNote:    r.Conflict.ServerNote,
			ServerBlock:   r.Conflict.ServerBlock,
		}
	}
	return out
}

func resultBatchToDTO(created, updated, deleted []syncengine.ItemResult) resultBatchDTO {
	out := resultBatchDTO{
		Created: make([]itemResultDTO, 0, len(created)),
		Updated: make([]itemResultDTO, 0, len(updated)),
		Deleted: make([]itemResultDTO, 0, len(deleted)),
	}
	for _, r := range created {
		out.Created = append(out.Created, itemResultToDTO(r))
	}
	for _, r := range updated {
		out.Updated = append(out.Updated, itemResultToDTO(r))
	}
	for _, r := range deleted {
		out.Deleted = append(out.Deleted, itemResultToDTO(r))
	}
	return out
}

func pushResultToDTO(res *syncengine.PushResult) pushResponseDTO {
	return pushResponseDTO{
		Tasks:  resultBatchToDTO(res.Tasks.Created, res.Tasks.Updated, res.Tasks.Deleted),
		Notes:  resultBatchToDTO(res.Notes.Created, res.Notes.Updated, res.Notes.Deleted),
		Blocks: resultBatchToDTO(res.Blocks.Created, res.Blocks.Updated, res.Blocks.Deleted),
	}
}

func parseOptionalDuration(s *string) (*time.Duration, error) {
	if s == nil {
		return nil, nil
	}
	d, err := time.ParseDuration(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func pushRequestToEngine(dto pushRequestDTO) (syncengine.PushRequest, error) {
	req := syncengine.PushRequest{
		DeviceID:               dto.DeviceID,
		ClientSyncTimestampUtc: dto.ClientSyncTimestampUtc,
	}

	for _, c := range dto.Tasks.Created {
		travel, err := parseOptionalDuration(c.TravelTime)
		if err != nil {
			return req, err
		}
		req.Tasks.Created = append(req.Tasks.Created, syncengine.TaskCreate{
			ClientID: c.ClientID, Date: c.Date, Title: c.Title, Description: c.Description,
			StartTime: c.StartTime, EndTime: c.EndTime, Location: c.Location, TravelTime: travel,
		})
	}
	for _, u := range dto.Tasks.Updated {
		travel, err := parseOptionalDuration(u.TravelTime)
		if err != nil {
			return req, err
		}
		req.Tasks.Updated = append(req.Tasks.Updated, syncengine.TaskUpdate{
			ID: u.ID, ExpectedVersion: u.ExpectedVersion, Date: u.Date, Title: u.Title, Description: u.Description,
			StartTime: u.StartTime, EndTime: u.EndTime, Location: u.Location, TravelTime: travel,
		})
	}
	for _, d := range dto.Tasks.Deleted {
		req.Tasks.Deleted = append(req.Tasks.Deleted, syncengine.TaskDelete{ID: d.ID})
	}

	for _, c := range dto.Notes.Created {
		req.Notes.Created = append(req.Notes.Created, syncengine.NoteCreate{
			ClientID: c.ClientID, Date: c.Date, Title: c.Title, Summary: c.Summary, Tags: c.Tags,
		})
	}
	for _, u := range dto.Notes.Updated {
		req.Notes.Updated = append(req.Notes.Updated, syncengine.NoteUpdate{
			ID: u.ID, ExpectedVersion: u.ExpectedVersion, Date: u.Date, Title: u.Title, Summary: u.Summary, Tags: u.Tags,
		})
	}
	for _, d := range dto.Notes.Deleted {
		req.Notes.Deleted = append(req.Notes.Deleted, syncengine.NoteDelete{ID: d.ID})
	}

	for _, c := range dto.Blocks.Created {
		req.Blocks.Created = append(req.Blocks.Created, syncengine.BlockCreate{
			ClientID: c.ClientID, ParentID: c.ParentID, ParentClientID: c.ParentClientID,
			ParentType: domain.ParentType(c.ParentType), Type: domain.BlockType(c.Type), Position: c.Position,
			TextContent:      c.TextContent,
			AssetClientID:    c.AssetClientID,
			AssetFileName:    c.AssetFileName,
			AssetContentType: c.AssetContentType,
			AssetSizeBytes:   c.AssetSizeBytes,
		})
	}
	for _, u := range dto.Blocks.Updated {
		req.Blocks.Updated = append(req.Blocks.Updated, syncengine.BlockUpdate{
			ID: u.ID, ExpectedVersion: u.ExpectedVersion, Position: u.Position, TextContent: u.TextContent,
		})
	}
	for _, d := range dto.Blocks.Deleted {
		req.Blocks.Deleted = append(req.Blocks.Deleted, syncengine.BlockDelete{ID: d.ID})
	}

	return req, nil
}

// --- Pull ---

type deletedRefDTO struct {
	ID           uuid.UUID `json:"Id"`
	DeletedAtUtc time.Time `json:"DeletedAtUtc"`
}

type assetWithURLDTO struct {
	Asset       domain.Asset `json:"Asset"`
	DownloadURL *string      `json:"DownloadUrl,omitempty"`
}

type pullResponseDTO struct {
	ServerTimestampUtc time.Time       `json:"ServerTimestampUtc"`
	Tasks               taskDeltaDTO    `json:"Tasks"`
	Notes                noteDeltaDTO    `json:"Notes"`
	Blocks               blockDeltaDTO   `json:"Blocks"`
	Assets               assetDeltaDTO   `json:"Assets"`
	HasMoreTasks         bool            `json:"HasMoreTasks"`
	HasMoreNotes         bool            `json:"HasMoreNotes"`
	HasMoreBlocks        bool            `json:"HasMoreBlocks"`
}

type taskDeltaDTO struct {
	Created []domain.Task   `json:"Created"`
	Updated []domain.Task   `json:"Updated"`
	Deleted []deletedRefDTO `json:"Deleted"`
}

type noteDeltaDTO struct {
	Created []domain.Note   `json:"Created"`
	Updated []domain.Note   `json:"Updated"`
	Deleted []deletedRefDTO `json:"Deleted"`
}

type blockDeltaDTO struct {
	Created []domain.Block  `json:"Created"`
	Updated []domain.Block  `json:"Updated"`
	Deleted []deletedRefDTO `json:"Deleted"`
}

type assetDeltaDTO struct {
	Created []assetWithURLDTO `json:"Created"`
	Deleted []deletedRefDTO   `json:"Deleted"`
}

func deletedRefsToDTO(refs []syncengine.DeletedRef) []deletedRefDTO {
	out := make([]deletedRefDTO, 0, len(refs))
	for _, r := range refs {
		out = append(out, deletedRefDTO{ID: r.ID, DeletedAtUtc: r.DeletedAtUtc})
	}
	return out
}

func pullResultToDTO(res *syncengine.PullResult) pullResponseDTO {
	assets := make([]assetWithURLDTO, 0, len(res.Assets.Created))
	for _, a := range res.Assets.Created {
		assets = append(assets, assetWithURLDTO{Asset: a.Asset, DownloadURL: a.DownloadURL})
	}
	return pullResponseDTO{
		ServerTimestampUtc: res.ServerTimestampUtc,
		Tasks: taskDeltaDTO{
			Created: res.Tasks.Created, Updated: res.Tasks.Updated, Deleted: deletedRefsToDTO(res.Tasks.Deleted),
		},
		Notes: noteDeltaDTO{
			Created: res.Notes.Created, Updated: res.Notes.Updated, Deleted: deletedRefsToDTO(res.Notes.Deleted),
		},
		Blocks: blockDeltaDTO{
			Created: res.Blocks.Created, Updated: res.Blocks.Updated, Deleted: deletedRefsToDTO(res.Blocks.Deleted),
		},
		Assets: assetDeltaDTO{
			Created: assets, Deleted: deletedRefsToDTO(res.Assets.Deleted),
		},
		HasMoreTasks:  res.HasMoreTasks,
		HasMoreNotes:  res.HasMoreNotes,
		HasMoreBlocks: res.HasMoreBlocks,
	}
}

// --- Resolve ---

type resolveItemDTO struct {
	EntityType      string               `json:"EntityType"`
	EntityID        uuid.UUID            `json:"EntityId"`
	Choice          string               `json:"Choice"`
	ExpectedVersion int                  `json:"ExpectedVersion"`
	TaskData        *taskDataDTO         `json:"TaskData,omitempty"`
	NoteData        *noteDataDTO         `json:"NoteData,omitempty"`
	BlockData       *syncengine.BlockData `json:"BlockData,omitempty"`
}

type taskDataDTO struct {
	Date        time.Time  `json:"Date"`
	Title       string     `json:"Title"`
	Description string     `json:"Description"`
	StartTime   *time.Time `json:"StartTime,omitempty"`
	EndTime     *time.Time `json:"EndTime,omitempty"`
	Location    string     `json:"Location"`
	TravelTime  *string    `json:"TravelTime,omitempty"`
}

type noteDataDTO struct {
	Date    time.Time `json:"Date"`
	Title   string    `json:"Title"`
	Summary string    `json:"Summary"`
	Tags    []string  `json:"Tags,omitempty"`
}

type resolveRequestDTO struct {
	Items []resolveItemDTO `json:"Items"`
}

type resolveResultDTO struct {
	EntityType syncengine.ResolveEntityType `json:"EntityType"`
	EntityID   uuid.UUID                    `json:"EntityId"`
	Status     syncengine.ResolveStatus     `json:"Status"`
	NewVersion *int                         `json:"NewVersion,omitempty"`
	Errors     []string                     `json:"Errors,omitempty"`
}

type resolveResponseDTO struct {
	Results []resolveResultDTO `json:"Results"`
}

func resolveItemToEngine(dto resolveItemDTO) (syncengine.ResolveItem, error) {
	item := syncengine.ResolveItem{
		EntityType:      syncengine.ResolveEntityType(dto.EntityType),
		EntityID:        dto.EntityID,
		Choice:          syncengine.ResolveChoice(dto.Choice),
		ExpectedVersion: dto.ExpectedVersion,
		BlockData:       dto.BlockData,
	}
	if dto.TaskData != nil {
		travel, err := parseOptionalDuration(dto.TaskData.TravelTime)
		if err != nil {
			return item, err
		}
		item.TaskData = &syncengine.TaskData{
			Date: dto.TaskData.Date, Title: dto.TaskData.Title, Description: dto.TaskData.Description,
			StartTime: dto.TaskData.StartTime, EndTime: dto.TaskData.EndTime, Location: dto.TaskData.Location,
			TravelTime: travel,
		}
	}
	if dto.NoteData != nil {
		item.NoteData = &syncengine.NoteData{
			Date: dto.NoteData.Date, Title: dto.NoteData.Title, Summary: dto.NoteData.Summary, Tags: dto.NoteData.Tags,
		}
	}
	return item, nil
}

func resolveResultToDTO(r syncengine.ResolveResult) resolveResultDTO {
	return resolveResultDTO{
		EntityType: r.EntityType, EntityID: r.EntityID, Status: r.Status, NewVersion: r.NewVersion, Errors: r.Errors,
	}
}

// --- Asset upload ---

type uploadResponseDTO struct {
	AssetID     uuid.UUID `json:"AssetId"`
	BlockID     uuid.UUID `json:"BlockId"`
	DownloadURL *string   `json:"DownloadUrl,omitempty"`
}
