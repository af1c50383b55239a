// internal/tracker/tracker.go
package tracker

import (
	"context"
	"sync"
	"time"

	clienterrors "claims-client/internal/common/errors"
	"claims-client/internal/common/logger"
	"claims-client/internal/common/metrics"
	"claims-client/internal/common/observability"
	"claims-client/internal/models"
)

// Poller fetches the current processing state of one document.
// Satisfied by backend.Client.
type Poller interface {
	Status(ctx context.Context, docID string) (*models.StatusResponse, error)
}

// TerminalEvent is emitted exactly once when a tracked job reaches a
// terminal status. The job is untracked before the event is sent.
type TerminalEvent struct {
	JobID    string
	Filename string
	Status   models.JobStatus
	Error    string
}

// Tracker owns the set of in-flight document jobs and polls their
// status on a shared interval. At most one polling loop runs at a
// time: the loop starts with the first tracked job and terminates on
// the first tick that finds the set empty. A later Track restarts it.
type Tracker struct {
	poller   Poller
	logger   logger.Logger
	obs      *observability.Observability
	interval time.Duration

	mu      sync.Mutex
	jobs    map[string]*models.Job
	running bool
	stopped bool

	events chan TerminalEvent
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a Tracker polling via the given Poller every interval.
// eventBuffer sizes the terminal-event channel; obs may be nil.
func New(poller Poller, interval time.Duration, eventBuffer int, obs *observability.Observability, log logger.Logger) *Tracker {
	if eventBuffer <= 0 {
		eventBuffer = 64
	}
	return &Tracker{
		poller:   poller,
		logger:   log,
		obs:      obs,
		interval: interval,
		jobs:     make(map[string]*models.Job),
		events:   make(chan TerminalEvent, eventBuffer),
		stopCh:   make(chan struct{}),
	}
}

// Track registers a document for polling. It returns false if the id
// is already tracked or the tracker has been stopped; tracking a job
// twice never produces a second polling slot.
func (t *Tracker) Track(docID, displayName string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return false
	}
	if _, exists := t.jobs[docID]; exists {
		return false
	}

	t.jobs[docID] = &models.Job{
		ID:          docID,
		DisplayName: displayName,
		Status:      models.StatusQueued,
	}
	metrics.JobsTracked.Inc()
	t.logger.Info("Tracking document job", map[string]interface{}{
		"doc_id":   docID,
		"filename": displayName,
	})

	if !t.running {
		t.running = true
		t.wg.Add(1)
		go t.loop()
	}
	return true
}

// Events returns the channel of terminal events. The caller must drain
// it; the buffer absorbs bursts but the tracker will wait on a full
// channel rather than drop an event.
func (t *Tracker) Events() <-chan TerminalEvent {
	return t.events
}

// Jobs returns a snapshot of the currently tracked jobs.
func (t *Tracker) Jobs() []models.Job {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := make([]models.Job, 0, len(t.jobs))
	for _, job := range t.jobs {
		snapshot = append(snapshot, *job)
	}
	return snapshot
}

// TrackedCount returns the number of jobs still being polled.
func (t *Tracker) TrackedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.jobs)
}

// Stop ends all polling. Safe to call more than once.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.mu.Unlock()

	close(t.stopCh)
	t.wg.Wait()
}

func (t *Tracker) loop() {
	defer t.wg.Done()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-ticker.C:
			if !t.tick() {
				return
			}
		}
	}
}

// tick runs one polling round. It returns false when the tracked set
// was empty at tick start, which ends the loop.
func (t *Tracker) tick() bool {
	t.mu.Lock()
	if len(t.jobs) == 0 {
		t.running = false
		t.mu.Unlock()
		t.logger.Debug("No tracked jobs, polling loop idle", nil)
		return false
	}
	t.mu.Unlock()

	t.PollOnce(context.Background())
	return true
}

// PollOnce polls every job tracked at the moment of the call, one by
// one. Jobs registered mid-round wait for the next round.
func (t *Tracker) PollOnce(ctx context.Context) {
	t.mu.Lock()
	ids := make([]string, 0, len(t.jobs))
	for id := range t.jobs {
		ids = append(ids, id)
	}
	t.mu.Unlock()

	for _, id := range ids {
		t.pollJob(ctx, id)
	}
}

func (t *Tracker) pollJob(ctx context.Context, docID string) {
	start := time.Now()
	resp, err := t.poller.Status(ctx, docID)
	metrics.PollDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PollErrors.Inc()
		if t.obs != nil {
			t.obs.RecordPoll(ctx, "error")
		}
		pollErr := err
		if !clienterrors.IsTransientPoll(err) {
			pollErr = clienterrors.NewTransientPollError(docID, err)
		}
		t.logger.Warn("Status poll failed, job remains tracked", map[string]interface{}{
			"doc_id": docID,
			"error":  pollErr.Error(),
		})
		return
	}

	if t.obs != nil {
		t.obs.RecordPoll(ctx, string(resp.Status))
	}

	var event *TerminalEvent
	t.mu.Lock()
	job, tracked := t.jobs[docID]
	if !tracked {
		t.mu.Unlock()
		return
	}
	job.Status = resp.Status
	if resp.Progress > job.Progress {
		job.Progress = resp.Progress
	}
	if resp.Status.IsTerminal() {
		delete(t.jobs, docID)
		event = &TerminalEvent{
			JobID:    docID,
			Filename: job.DisplayName,
			Status:   resp.Status,
			Error:    resp.Error,
		}
	}
	t.mu.Unlock()

	if event == nil {
		return
	}

	metrics.JobsTerminal.WithLabelValues(string(event.Status)).Inc()
	t.logger.Info("Document job finished", map[string]interface{}{
		"doc_id":   event.JobID,
		"filename": event.Filename,
		"status":   string(event.Status),
	})

	select {
	case t.events <- *event:
	case <-t.stopCh:
	}
}
