package pipeline

import (
	"crypto/sha256"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/dgallion1/ocrgrid/internal/report"
)

// JobStatus represents the state of an extraction job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusLoading     JobStatus = "loading"
	StatusConverting  JobStatus = "converting"
	StatusRecognizing JobStatus = "recognizing"
	StatusExtracting  JobStatus = "extracting"
	StatusUploading   JobStatus = "uploading"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusPartial     JobStatus = "partial"
	StatusDupSkipped  JobStatus = "duplicate_skipped"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusPartial, StatusDupSkipped:
		return true
	}
	return false
}

// Job tracks the state of a single document extraction.
type Job struct {
	mu sync.Mutex

	ID    string `json:"job_id"`
	DocID string `json:"doc_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	// SourceKey names a stored object to process instead of an upload.
	SourceKey string `json:"source_key,omitempty"`
	// Force skips the duplicate check.
	Force bool `json:"force"`

	Progress    Progress          `json:"progress"`
	Timing      report.Timing     `json:"-"`
	Artifacts   map[string]string `json:"artifacts"`
	ContentHash string            `json:"content_hash,omitempty"`
	DuplicateOf string            `json:"duplicate_of,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalPages     int      `json:"total_pages"`
	PagesProcessed int      `json:"pages_processed"`
	PagesFailed    int      `json:"pages_failed"`
	TablesFound    int      `json:"tables_found"`
	Errors         []string `json:"errors"`
}

// NewJob creates a queued job with a fresh ID.
func NewJob(docID, filename string) *Job {
	now := time.Now()
	return &Job{
		ID:        generateULID(),
		DocID:     docID,
		Filename:  filename,
		Status:    StatusQueued,
		Phase:     "queued",
		Timing:    report.Timing{},
		CreatedAt: now,
		UpdatedAt: now,
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

// Cleanup removes finished jobs that have not changed within the TTL.
// Jobs still in flight are kept regardless of age.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Done() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error, truncated to 500 characters.
func (j *Job) AddError(err string) {
	if len(err) > 500 {
		err = err[:500] + "..."
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalPages records the page count.
func (j *Job) SetTotalPages(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalPages = n
	j.UpdatedAt = time.Now()
}

// PageDone counts one processed page and the tables found on it.
func (j *Job) PageDone(tablesFound int, failed bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.PagesProcessed++
	j.Progress.TablesFound += tablesFound
	if failed {
		j.Progress.PagesFailed++
	}
	j.UpdatedAt = time.Now()
}

// AddTiming accumulates time spent in a phase.
func (j *Job) AddTiming(phase string, d time.Duration) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Timing == nil {
		j.Timing = report.Timing{}
	}
	j.Timing.Add(phase, d)
}

// TimingSnapshot copies the phase timings.
func (j *Job) TimingSnapshot() report.Timing {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Timing.Clone()
}

// SetArtifact records where a generated artifact can be downloaded.
func (j *Job) SetArtifact(name, url string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Artifacts == nil {
		j.Artifacts = make(map[string]string)
	}
	j.Artifacts[name] = url
	j.UpdatedAt = time.Now()
}

// SetContentHash records the SHA-256 of the source bytes.
func (j *Job) SetContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// MarkDuplicate records the document that already holds this content.
func (j *Job) MarkDuplicate(docID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.DuplicateOf = docID
	j.Status = StatusDupSkipped
	j.Phase = "dedup"
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string            `json:"job_id"`
	DocID       string            `json:"doc_id"`
	Status      JobStatus         `json:"status"`
	Phase       string            `json:"phase"`
	Filename    string            `json:"filename"`
	SourceKey   string            `json:"source_key,omitempty"`
	Progress    Progress          `json:"progress"`
	Timing      map[string]string `json:"timing_info"`
	Artifacts   map[string]string `json:"artifacts"`
	ContentHash string            `json:"content_hash,omitempty"`
	DuplicateOf string            `json:"duplicate_of,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	artifacts := make(map[string]string, len(j.Artifacts))
	maps.Copy(artifacts, j.Artifacts)
	return JobSnapshot{
		ID:        j.ID,
		DocID:     j.DocID,
		Status:    j.Status,
		Phase:     j.Phase,
		Filename:  j.Filename,
		SourceKey: j.SourceKey,
		Progress: Progress{
			TotalPages:     j.Progress.TotalPages,
			PagesProcessed: j.Progress.PagesProcessed,
			PagesFailed:    j.Progress.PagesFailed,
			TablesFound:    j.Progress.TablesFound,
			Errors:         errs,
		},
		Timing:      j.Timing.Strings(),
		Artifacts:   artifacts,
		ContentHash: j.ContentHash,
		DuplicateOf: j.DuplicateOf,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
