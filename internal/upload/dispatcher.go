// internal/upload/dispatcher.go
package upload

import (
	"context"
	"io"

	"claims-client/internal/common/logger"
	"claims-client/internal/common/metrics"
	"claims-client/internal/models"
)

// Uploader sends one document to the backend. Satisfied by
// backend.Client.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader, docType string) (*models.UploadResponse, error)
}

// JobRegistrar receives the job handle of each accepted upload.
// Satisfied by tracker.Tracker.
type JobRegistrar interface {
	Track(docID, displayName string) bool
}

// File is one document selected for upload.
type File struct {
	Name    string
	Content io.Reader
	DocType string
}

// Result is the per-file outcome of a dispatch. Err is nil when the
// upload was accepted and the job registered for tracking.
type Result struct {
	Filename string
	DocID    string
	Err      error
}

// Dispatcher uploads documents and hands accepted jobs to the tracker.
// Each file succeeds or fails on its own; one rejection never aborts
// the rest of a batch.
type Dispatcher struct {
	uploader  Uploader
	registrar JobRegistrar
	logger    logger.Logger
}

func NewDispatcher(uploader Uploader, registrar JobRegistrar, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		uploader:  uploader,
		registrar: registrar,
		logger:    log,
	}
}

// Dispatch uploads one file and registers its job.
func (d *Dispatcher) Dispatch(ctx context.Context, file File) Result {
	resp, err := d.uploader.Upload(ctx, file.Name, file.Content, file.DocType)
	if err != nil {
		metrics.UploadsFailed.Inc()
		d.logger.Warn("Document upload failed", map[string]interface{}{
			"filename": file.Name,
			"doc_type": file.DocType,
			"error":    err.Error(),
		})
		return Result{Filename: file.Name, Err: err}
	}

	metrics.DocumentsUploaded.WithLabelValues(file.DocType).Inc()
	d.registrar.Track(resp.DocID, resp.Filename)
	return Result{Filename: resp.Filename, DocID: resp.DocID}
}

// DispatchAll uploads a batch sequentially and returns one Result per
// file in input order.
func (d *Dispatcher) DispatchAll(ctx context.Context, files []File) []Result {
	results := make([]Result, 0, len(files))
	for _, file := range files {
		results = append(results, d.Dispatch(ctx, file))
	}
	return results
}
