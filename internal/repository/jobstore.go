package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/kanade/shortform/internal/domain"
)

// MemoryJobStore is a process-local clip job registry. Records live for the
// lifetime of the process; there is no expiry and no capacity bound. A
// deployment with more than one instance needs a shared backing store
// instead, since each instance only sees its own registry.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.ClipJob
}

// NewMemoryJobStore creates an empty in-memory job store.
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]domain.ClipJob)}
}

// Create registers a new job record. Re-using an existing id is rejected
// rather than silently overwriting the old record.
func (s *MemoryJobStore) Create(job domain.ClipJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s: %w", job.ID, domain.ErrConflict)
	}
	s.jobs[job.ID] = job
	return nil
}

// Get retrieves a job record by id.
func (s *MemoryJobStore) Get(id string) (*domain.ClipJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	return &job, nil
}

// Complete transitions a processing job to completed with the resulting
// artifact URL. Completing an unknown or already-terminal job is an error,
// which keeps each record single-writer past creation.
func (s *MemoryJobStore) Complete(id, videoURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	if job.Status.Terminal() {
		return fmt.Errorf("job %s already %s: %w", id, job.Status, domain.ErrConflict)
	}

	now := time.Now().UTC()
	job.Status = domain.JobStatusCompleted
	job.Progress = 100
	job.VideoURL = videoURL
	job.CompletedAt = &now
	s.jobs[id] = job
	return nil
}

// Fail transitions a processing job to failed with a human-readable message.
func (s *MemoryJobStore) Fail(id, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	if job.Status.Terminal() {
		return fmt.Errorf("job %s already %s: %w", id, job.Status, domain.ErrConflict)
	}

	now := time.Now().UTC()
	job.Status = domain.JobStatusFailed
	job.ErrorMsg = message
	job.FailedAt = &now
	s.jobs[id] = job
	return nil
}

// Delete removes a job record.
func (s *MemoryJobStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return fmt.Errorf("job %s: %w", id, domain.ErrNotFound)
	}
	delete(s.jobs, id)
	return nil
}

// Len returns the number of tracked jobs.
func (s *MemoryJobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}
