package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RunStatus represents the state of a processing run.
type RunStatus string

const (
	StatusPending       RunStatus = "pending"
	StatusSelecting     RunStatus = "awaiting_selection"
	StatusProcessing    RunStatus = "processing"
	StatusConsolidating RunStatus = "consolidating"
	StatusCompleted     RunStatus = "completed"
	StatusFailed        RunStatus = "failed"
	StatusCanceled      RunStatus = "canceled"
	StatusQuit          RunStatus = "quit"
)

// Progress tracks page task completion.
type Progress struct {
	TotalTasks int      `json:"total_tasks"`
	Done       int      `json:"done"`
	Succeeded  int      `json:"succeeded"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors"`
}

// Run tracks the state of a single invocation. There is exactly one active
// Run per process; it exists so the status endpoint and the final summary can
// observe progress while the pool is working.
type Run struct {
	mu sync.Mutex

	ID         string
	PDF        string
	TotalPages int

	status   RunStatus
	progress Progress
	started  time.Time
	updated  time.Time
}

func NewRun(pdf string, totalPages int) *Run {
	now := time.Now()
	return &Run{
		ID:         uuid.NewString(),
		PDF:        pdf,
		TotalPages: totalPages,
		status:     StatusPending,
		started:    now,
		updated:    now,
	}
}

// SetStatus updates the run status atomically.
func (r *Run) SetStatus(status RunStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = status
	r.updated = time.Now()
}

// SetTotalPages records the page count once the document has been probed.
func (r *Run) SetTotalPages(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TotalPages = n
	r.updated = time.Now()
}

// SetTotalTasks records the size of the dispatched task set.
func (r *Run) SetTotalTasks(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.TotalTasks = n
	r.updated = time.Now()
}

// RecordResult folds one page result into the progress counters.
func (r *Run) RecordResult(res PageResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress.Done++
	switch res.Status {
	case ResultSuccess:
		r.progress.Succeeded++
	case ResultFailed:
		r.progress.Failed++
		r.progress.Errors = append(r.progress.Errors, res.Err)
	}
	r.updated = time.Now()
}

// RunSnapshot is a read-only, JSON-safe copy of run state.
type RunSnapshot struct {
	ID         string    `json:"run_id"`
	PDF        string    `json:"pdf"`
	TotalPages int       `json:"total_pages"`
	Status     RunStatus `json:"status"`
	Progress   Progress  `json:"progress"`
	StartedAt  time.Time `json:"started_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Snapshot returns a copy safe to serialize concurrently with the pool.
func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	errs := make([]string, len(r.progress.Errors))
	copy(errs, r.progress.Errors)
	return RunSnapshot{
		ID:         r.ID,
		PDF:        r.PDF,
		TotalPages: r.TotalPages,
		Status:     r.status,
		Progress: Progress{
			TotalTasks: r.progress.TotalTasks,
			Done:       r.progress.Done,
			Succeeded:  r.progress.Succeeded,
			Failed:     r.progress.Failed,
			Errors:     errs,
		},
		StartedAt: r.started,
		UpdatedAt: r.updated,
	}
}
