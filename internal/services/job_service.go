package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"startup-foundry/internal/models"
	"startup-foundry/internal/utils"
)

// JobService manages async generation jobs in memory
type JobService struct {
	jobs  map[string]*models.Job
	mutex sync.RWMutex
}

// NewJobService creates a new job service
func NewJobService() *JobService {
	return &JobService{
		jobs: make(map[string]*models.Job),
	}
}

// Create creates a new job in processing state with the pipeline skeleton
// and an initial log entry, and returns a snapshot of it
func (s *JobService) Create(prompt string) models.Job {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now()
	job := &models.Job{
		ID:        utils.GenerateUUID(),
		Status:    models.JobStatusProcessing,
		Prompt:    prompt,
		Progress:  0,
		Steps:     models.PipelineSteps(),
		Logs: []models.LogEntry{{
			Timestamp: now,
			Level:     models.LogLevelInfo,
			Message:   "Generation job created",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.jobs[job.ID] = job
	return snapshot(job)
}

// Get returns a snapshot of a job by ID
func (s *JobService) Get(jobID string) (models.Job, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return models.Job{}, NotFound("get job", fmt.Errorf("job not found: %s", jobID))
	}
	return snapshot(job), nil
}

// AppendLog appends a timestamped entry to a job's log. Unknown job IDs are
// ignored: a log line from a stale pipeline goroutine must not crash anything.
func (s *JobService) AppendLog(jobID string, level models.LogLevel, message string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return
	}

	job.Logs = append(job.Logs, models.LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
	})
	job.UpdatedAt = time.Now()
}

// SetStepStatus updates the named pipeline step. Failed jobs are frozen:
// no further step transitions occur after a job fails.
func (s *JobService) SetStepStatus(jobID, stepName string, status models.StepStatus) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return NotFound("set step status", fmt.Errorf("job not found: %s", jobID))
	}
	if job.Status == models.JobStatusFailed {
		return nil
	}

	for i := range job.Steps {
		if job.Steps[i].Name == stepName {
			job.Steps[i].Status = status
			job.UpdatedAt = time.Now()
			return nil
		}
	}

	return fmt.Errorf("unknown pipeline step: %s", stepName)
}

// SetProgress updates the job's progress percentage. Progress is
// monotonically non-decreasing: a lower value than the current one is kept
// at the current value.
func (s *JobService) SetProgress(jobID string, percent int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return NotFound("set progress", fmt.Errorf("job not found: %s", jobID))
	}

	if percent > 100 {
		percent = 100
	}
	if percent > job.Progress {
		job.Progress = percent
		job.UpdatedAt = time.Now()
	}
	return nil
}

// Complete marks a job as completed with its resulting project
func (s *JobService) Complete(jobID, projectID, projectName string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return NotFound("complete job", fmt.Errorf("job not found: %s", jobID))
	}

	job.Status = models.JobStatusCompleted
	job.Progress = 100
	job.ProjectID = projectID
	job.ProjectName = projectName
	job.Logs = append(job.Logs, models.LogEntry{
		Timestamp: time.Now(),
		Level:     models.LogLevelSuccess,
		Message:   fmt.Sprintf("Project %q generated successfully", projectName),
	})
	job.UpdatedAt = time.Now()
	return nil
}

// Fail marks a job as failed with an error log entry
func (s *JobService) Fail(jobID string, cause error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return NotFound("fail job", fmt.Errorf("job not found: %s", jobID))
	}

	job.Status = models.JobStatusFailed
	job.Error = cause.Error()
	job.Logs = append(job.Logs, models.LogEntry{
		Timestamp: time.Now(),
		Level:     models.LogLevelError,
		Message:   cause.Error(),
	})
	job.UpdatedAt = time.Now()
	return nil
}

// Prune removes terminal (completed or failed) jobs older than maxAge and
// returns how many were removed
func (s *JobService) Prune(maxAge time.Duration) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, job := range s.jobs {
		if job.Status == models.JobStatusProcessing {
			continue
		}
		if job.UpdatedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[JOBS] Pruned %d terminal jobs older than %s", removed, maxAge)
	}
	return removed
}

// snapshot deep-copies a job so callers can read it without holding the lock
func snapshot(job *models.Job) models.Job {
	copied := *job
	copied.Steps = append([]models.PipelineStep(nil), job.Steps...)
	copied.Logs = append([]models.LogEntry(nil), job.Logs...)
	return copied
}
