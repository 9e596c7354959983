package importer

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/btc-tracker/backend/internal/application/adapter"
	"github.com/btc-tracker/backend/internal/domain/entity"
	domainerror "github.com/btc-tracker/backend/internal/domain/error"
)

// DefaultFinishedJobs is how many finished jobs a Tracker keeps.
const DefaultFinishedJobs = 100

// Job is a snapshot of one asynchronous import.
type Job struct {
	ID         string                `json:"id"`
	ReportID   string                `json:"reportId,omitempty"`
	Kind       string                `json:"kind"`
	Status     entity.ImportStatus   `json:"status"`
	Progress   entity.ImportProgress `json:"progress"`
	Output     any                   `json:"output,omitempty"`
	Error      string                `json:"error,omitempty"`
	StartedAt  time.Time             `json:"startedAt"`
	FinishedAt *time.Time            `json:"finishedAt,omitempty"`
}

// Runner performs the work of a job, reporting progress to sink.
type Runner func(ctx context.Context, sink adapter.ProgressSink) (any, error)

type trackedJob struct {
	job    Job
	cancel context.CancelFunc
	done   chan struct{}
}

// Tracker runs imports in the background and keeps their state in memory.
type Tracker struct {
	mu          sync.RWMutex
	jobs        map[string]*trackedJob
	finished    []string
	maxFinished int
}

// NewTracker creates a new in-memory import job tracker.
func NewTracker(maxFinished int) *Tracker {
	if maxFinished <= 0 {
		maxFinished = DefaultFinishedJobs
	}
	return &Tracker{
		jobs:        make(map[string]*trackedJob),
		maxFinished: maxFinished,
	}
}

// Start registers a job and runs it in its own goroutine. The job does not
// inherit the caller's context so it outlives the request that started it.
func (t *Tracker) Start(reportID, kind string, runner Runner) Job {
	ctx, cancel := context.WithCancel(context.Background())
	tj := &trackedJob{
		job: Job{
			ID:        uuid.New().String(),
			ReportID:  reportID,
			Kind:      kind,
			Status:    entity.ImportStatusLoading,
			StartedAt: time.Now().UTC(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}

	t.mu.Lock()
	t.jobs[tj.job.ID] = tj
	snapshot := tj.job
	t.mu.Unlock()

	go t.run(ctx, tj, runner)
	return snapshot
}

func (t *Tracker) run(ctx context.Context, tj *trackedJob, runner Runner) {
	logger := slog.Default().With("jobID", tj.job.ID, "reportID", tj.job.ReportID, "kind", tj.job.Kind)
	logger.Info("Import job started")

	defer close(tj.done)
	defer tj.cancel()

	sink := adapter.ProgressFunc(func(p entity.ImportProgress) {
		t.mu.Lock()
		defer t.mu.Unlock()
		tj.job.Progress = p
	})
	output, err := runner(ctx, sink)

	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now().UTC()
	tj.job.FinishedAt = &now
	tj.job.Output = output
	if err != nil {
		tj.job.Status = entity.ImportStatusError
		tj.job.Error = err.Error()
		logger.Error("Import job failed", "error", err)
	} else {
		tj.job.Status = entity.ImportStatusComplete
		logger.Info("Import job completed", "duration", now.Sub(tj.job.StartedAt).String())
	}
	t.retire(tj.job.ID)
}

// retire records a finished job and evicts the oldest finished ones beyond
// the limit. Callers hold t.mu.
func (t *Tracker) retire(id string) {
	t.finished = append(t.finished, id)
	for len(t.finished) > t.maxFinished {
		delete(t.jobs, t.finished[0])
		t.finished = slices.Delete(t.finished, 0, 1)
	}
}

// Get returns a snapshot of the job.
func (t *Tracker) Get(id string) (Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tj, ok := t.jobs[id]
	if !ok {
		return Job{}, jobNotFound(id)
	}
	return tj.job, nil
}

// Cancel asks a running job to stop. Records merged so far are kept.
func (t *Tracker) Cancel(id string) error {
	t.mu.RLock()
	tj, ok := t.jobs[id]
	t.mu.RUnlock()
	if !ok {
		return jobNotFound(id)
	}
	tj.cancel()
	return nil
}

// Wait blocks until the job has finished or ctx is done.
func (t *Tracker) Wait(ctx context.Context, id string) (Job, error) {
	t.mu.RLock()
	tj, ok := t.jobs[id]
	t.mu.RUnlock()
	if !ok {
		return Job{}, jobNotFound(id)
	}
	select {
	case <-tj.done:
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return tj.job, nil
}

func jobNotFound(id string) error {
	return domainerror.NewImportError(domainerror.ErrCodeImportJobNotFound, "import job "+id+" not found", domainerror.ErrImportJobNotFound)
}
