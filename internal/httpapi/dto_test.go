package httpapi

import (
	"testing"
	"time"

	"github.com/erauner12/syncore/internal/domain"
	"github.com/erauner12/syncore/internal/syncengine"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptionalDuration(t *testing.T) {
	d, err := parseOptionalDuration(nil)
	require.NoError(t, err)
	assert.Nil(t, d)

	raw := "15m0s"
	d, err = parseOptionalDuration(&raw)
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 15*time.Minute, *d)

	bad := "not-a-duration"
	_, err = parseOptionalDuration(&bad)
	assert.Error(t, err)
}

func TestPushRequestToEngine_MapsAllBatches(t *testing.T) {
	deviceID := uuid.New()
	taskClientID := uuid.New()
	noteClientID := uuid.New()
	blockClientID := uuid.New()
	now := time.Now().UTC()
	travel := "30m0s"

	dto := pushRequestDTO{
		DeviceID:               deviceID,
		ClientSyncTimestampUtc: now,
		Tasks: taskBatchDTO{
			Created: []taskCreateDTO{{ClientID: taskClientID, Date: now, Title: "t", TravelTime: &travel}},
		},
		Notes: noteBatchDTO{
			Created: []noteCreateDTO{{ClientID: noteClientID, Date: now, Title: "n", Tags: []string{"a"}}},
		},
		Blocks: blockBatchDTO{
			Created: []blockCreateDTO{{
				ClientID:   blockClientID,
				ParentType: string(domain.ParentTypeNote),
				Type:       string(domain.BlockTypeParagraph),
				Position:   "a0",
			}},
		},
	}

	req, err := pushRequestToEngine(dto)
	require.NoError(t, err)

	assert.Equal(t, deviceID, req.DeviceID)
	require.Len(t, req.Tasks.Created, 1)
	assert.Equal(t, taskClientID, req.Tasks.Created[0].ClientID)
	require.NotNil(t, req.Tasks.Created[0].TravelTime)
	assert.Equal(t, 30*time.Minute, *req.Tasks.Created[0].TravelTime)

	require.Len(t, req.Notes.Created, 1)
	assert.Equal(t, []string{"a"}, req.Notes.Created[0].Tags)

	require.Len(t, req.Blocks.Created, 1)
	assert.Equal(t, domain.ParentTypeNote, req.Blocks.Created[0].ParentType)
	assert.Equal(t, domain.BlockTypeParagraph, req.Blocks.Created[0].Type)
}

func TestPushRequestToEngine_InvalidTravelTimeErrors(t *testing.T) {
	bad := "not-a-duration"
	dto := pushRequestDTO{
		Tasks: taskBatchDTO{
			Created: []taskCreateDTO{{ClientID: uuid.New(), TravelTime: &bad}},
		},
	}
	_, err := pushRequestToEngine(dto)
	assert.Error(t, err)
}

func TestPushResultToDTO_PreservesConflictDetail(t *testing.T) {
	clientID := uuid.New()
	serverID := uuid.New()
	clientVersion := 1
	serverVersion := 2

	res := &syncengine.PushResult{
		Tasks: syncengine.TaskResultBatch{
			Created: []syncengine.ItemResult{{
				ClientID: &clientID,
				ServerID: serverID,
				Status:   syncengine.StatusFailed,
				Conflict: &syncengine.Conflict{
					ConflictType:  syncengine.ConflictVersionMismatch,
					ClientVersion: &clientVersion,
					ServerVersion: &serverVersion,
				},
			}},
		},
	}

	dto := pushResultToDTO(res)
	require.Len(t, dto.Tasks.Created, 1)
	got := dto.Tasks.Created[0]
	assert.Equal(t, serverID, got.ServerID)
	require.NotNil(t, got.Conflict)
	assert.Equal(t, syncengine.ConflictVersionMismatch, got.Conflict.ConflictType)
	assert.Equal(t, &clientVersion, got.Conflict.ClientVersion)
	assert.Equal(t, &serverVersion, got.Conflict.ServerVersion)
}

func TestPullResultToDTO_MapsAssetsAndDeletes(t *testing.T) {
	now := time.Now().UTC()
	deletedID := uuid.New()
	url := "https://blob.example/asset"

	res := &syncengine.PullResult{
		ServerTimestampUtc: now,
		Assets: syncengine.AssetDelta{
			Created: []syncengine.AssetWithURL{{Asset: domain.Asset{}, DownloadURL: &url}},
			Deleted: []syncengine.DeletedRef{{ID: deletedID, DeletedAtUtc: now}},
		},
	}

	dto := pullResultToDTO(res)
	require.Len(t, dto.Assets.Created, 1)
	assert.Equal(t, &url, dto.Assets.Created[0].DownloadURL)
	require.Len(t, dto.Assets.Deleted, 1)
	assert.Equal(t, deletedID, dto.Assets.Deleted[0].ID)
}

func TestResolveItemToEngine_RoundTripsTaskData(t *testing.T) {
	entityID := uuid.New()
	travel := "1h0m0s"
	now := time.Now().UTC()

	dto := resolveItemDTO{
		EntityType:      string(syncengine.ResolveEntityTask),
		EntityID:        entityID,
		Choice:          string(syncengine.ResolveKeepClient),
		ExpectedVersion: 3,
		TaskData: &taskDataDTO{
			Date:       now,
			Title:      "resolved title",
			TravelTime: &travel,
		},
	}

	item, err := resolveItemToEngine(dto)
	require.NoError(t, err)
	assert.Equal(t, entityID, item.EntityID)
	assert.Equal(t, syncengine.ResolveKeepClient, item.Choice)
	require.NotNil(t, item.TaskData)
	assert.Equal(t, "resolved title", item.TaskData.Title)
	require.NotNil(t, item.TaskData.TravelTime)
	assert.Equal(t, time.Hour, *item.TaskData.TravelTime)
}
