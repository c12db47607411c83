package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/templatizer/internal/customize"
)

// JobStatus represents the state of a customization job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusFetching  JobStatus = "fetching"
	StatusFiltering JobStatus = "filtering"
	StatusPackaging JobStatus = "packaging"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Job tracks a single template customization.
type Job struct {
	mu sync.Mutex

	ID      string `json:"job_id"`
	Source  string `json:"source"`
	Context string `json:"context,omitempty"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	request customize.Request
	archive []byte
	errors  []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalParts     int      `json:"total_parts"`
	PartsProcessed int      `json:"parts_processed"`
	KeptSections   int      `json:"kept_sections"`
	Errors         []string `json:"errors"`
}

// NewJob creates a queued job for source.
func NewJob(source string, req customize.Request) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Source:    source,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		request:   req,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalParts records the number of parts in the template.
func (j *Job) SetTotalParts(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalParts = n
	j.UpdatedAt = time.Now()
}

// PartDone counts a filtered part and the sections it kept.
func (j *Job) PartDone(kept int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.PartsProcessed++
	j.Progress.KeptSections += kept
	j.UpdatedAt = time.Now()
}

// Request returns the customization request.
func (j *Job) Request() customize.Request {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.request
}

// SetArchive stores the finished zip archive.
func (j *Job) SetArchive(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.archive = data
}

// Archive returns the zip archive once the job has completed.
func (j *Job) Archive() ([]byte, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != StatusCompleted {
		return nil, false
	}
	return j.archive, true
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID           string    `json:"job_id"`
	Source       string    `json:"source"`
	Context      string    `json:"context,omitempty"`
	Status       JobStatus `json:"status"`
	Phase        string    `json:"phase"`
	Progress     Progress  `json:"progress"`
	ArchiveBytes int       `json:"archive_bytes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	return JobSnapshot{
		ID:      j.ID,
		Source:  j.Source,
		Context: j.Context,
		Status:  j.Status,
		Phase:   j.Phase,
		Progress: Progress{
			TotalParts:     j.Progress.TotalParts,
			PartsProcessed: j.Progress.PartsProcessed,
			KeptSections:   j.Progress.KeptSections,
			Errors:         errs,
		},
		ArchiveBytes: len(j.archive),
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}
