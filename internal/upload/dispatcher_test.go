// internal/upload/dispatcher_test.go
package upload

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clienterrors "claims-client/internal/common/errors"
	"claims-client/internal/common/logger"
	"claims-client/internal/models"
)

type fakeUploader struct {
	failOn map[string]error
	nextID int
}

func (f *fakeUploader) Upload(_ context.Context, filename string, _ io.Reader, _ string) (*models.UploadResponse, error) {
	if err, ok := f.failOn[filename]; ok {
		return nil, err
	}
	f.nextID++
	return &models.UploadResponse{
		DocID:    fmt.Sprintf("doc-%d", f.nextID),
		Filename: filename,
		Status:   "queued",
	}, nil
}

type fakeRegistrar struct {
	tracked []string
}

func (f *fakeRegistrar) Track(docID, _ string) bool {
	f.tracked = append(f.tracked, docID)
	return true
}

func TestDispatch_Success(t *testing.T) {
	registrar := &fakeRegistrar{}
	d := NewDispatcher(&fakeUploader{}, registrar, logger.NewTestLogger(t))

	result := d.Dispatch(context.Background(), File{
		Name:    "policy.pdf",
		Content: strings.NewReader("%PDF-1.4"),
		DocType: "policy",
	})

	require.NoError(t, result.Err)
	assert.Equal(t, "doc-1", result.DocID)
	assert.Equal(t, []string{"doc-1"}, registrar.tracked)
}

func TestDispatchAll_FailureIsolatedPerFile(t *testing.T) {
	uploader := &fakeUploader{
		failOn: map[string]error{
			"corrupt.pdf": clienterrors.NewHTTPStatusError("upload", 422),
		},
	}
	registrar := &fakeRegistrar{}
	d := NewDispatcher(uploader, registrar, logger.NewTestLogger(t))

	results := d.DispatchAll(context.Background(), []File{
		{Name: "policy.pdf", Content: strings.NewReader("a"), DocType: "policy"},
		{Name: "corrupt.pdf", Content: strings.NewReader("b"), DocType: "bill"},
		{Name: "discharge.pdf", Content: strings.NewReader("c"), DocType: "discharge_summary"},
	})

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.True(t, clienterrors.IsNetwork(results[1].Err))
	assert.NoError(t, results[2].Err)

	// Only accepted uploads reach the tracker.
	assert.Len(t, registrar.tracked, 2)
}
