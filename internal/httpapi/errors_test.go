package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erauner12/syncore/internal/assetupload"
	"github.com/erauner12/syncore/internal/repo"
	"github.com/erauner12/syncore/internal/syncengine"
	"github.com/stretchr/testify/assert"
)

func TestMapAssetUploadError_MapsEachSentinelToItsCode(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{assetupload.ErrBlockNotFound, http.StatusNotFound, "Block.NotFound"},
		{assetupload.ErrBlockTypeInvalid, http.StatusBadRequest, "Block.Type.Invalid"},
		{assetupload.ErrBlockUploadInvalidStatus, http.StatusConflict, "Block.Upload.InvalidStatus"},
		{assetupload.ErrAssetClientIDMismatch, http.StatusBadRequest, "Asset.ClientId.Mismatch"},
		{assetupload.ErrAssetSizeInvalid, http.StatusBadRequest, "Asset.Size.Invalid"},
		{assetupload.ErrAssetSizeTooLarge, http.StatusBadRequest, "Asset.Size.TooLarge"},
		{assetupload.ErrUploadFailed, http.StatusBadGateway, "Asset.Upload.Failed"},
		{assetupload.ErrBlockMarkedFailed, http.StatusBadGateway, "Asset.Upload.Failed"},
		{repo.ErrNotFound, http.StatusNotFound, "Block.NotFound"},
	}

	for _, c := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/sync/assets", nil)

		mapAssetUploadError(rec, req, c.err)

		assert.Equal(t, c.wantStatus, rec.Code, "status for %v", c.err)
		assert.Contains(t, rec.Body.String(), c.wantCode, "body for %v", c.err)
	}
}

func TestMapAssetUploadError_UnknownErrorIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sync/assets", nil)

	mapAssetUploadError(rec, req, errUnmapped)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal.Error")
}

func TestIsDeviceGateErr(t *testing.T) {
	assert.True(t, isDeviceGateErr(syncengine.ErrDeviceGateFailed))
	assert.False(t, isDeviceGateErr(repo.ErrNotFound))
}

// TestCommitDespiteUploadError covers the exact decision UploadAsset makes
// between committing tx (so a Block.Failed write written by Upload
// survives) and letting the deferred Rollback win. Getting this wrong is
// what silently discarded the Failed transition before.
func TestCommitDespiteUploadError(t *testing.T) {
	assert.True(t, commitDespiteUploadError(assetupload.ErrBlockMarkedFailed))
	assert.False(t, commitDespiteUploadError(assetupload.ErrUploadFailed))
	assert.False(t, commitDespiteUploadError(assetupload.ErrBlockNotFound))
	assert.False(t, commitDespiteUploadError(repo.ErrNotFound))
	assert.False(t, commitDespiteUploadError(nil))
}

func TestWriteDeviceGateError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sync/push", nil)

	writeDeviceGateError(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Device.NotFound")
}

var errUnmapped = errNotInSwitch{}

type errNotInSwitch struct{}

func (errNotInSwitch) Error() string { return "some unmapped failure" }
