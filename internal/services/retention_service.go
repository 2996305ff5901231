package services

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"startup-foundry/internal/config"
)

// RetentionService periodically prunes terminal jobs and stale archives so
// the process does not accumulate state forever
type RetentionService struct {
	jobs       *JobService
	archives   *ArchiveService
	jobTTL     time.Duration
	archiveTTL time.Duration
	schedule   string
	cron       *cron.Cron
}

// NewRetentionService creates a new retention service
func NewRetentionService(jobs *JobService, archives *ArchiveService, cfg config.RetentionConfig) *RetentionService {
	return &RetentionService{
		jobs:       jobs,
		archives:   archives,
		jobTTL:     time.Duration(cfg.JobTTLMinutes) * time.Minute,
		archiveTTL: time.Duration(cfg.ArchiveTTLMinutes) * time.Minute,
		schedule:   cfg.Schedule,
		cron:       cron.New(),
	}
}

// Start registers the sweep and starts the cron scheduler
func (s *RetentionService) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.Sweep)
	if err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}
	s.cron.Start()
	log.Printf("Retention sweeper started (schedule %q, job TTL %s, archive TTL %s)", s.schedule, s.jobTTL, s.archiveTTL)
	return nil
}

// Stop stops the cron scheduler
func (s *RetentionService) Stop() {
	s.cron.Stop()
	log.Println("Retention sweeper stopped")
}

// Sweep prunes terminal jobs and stale archives once
func (s *RetentionService) Sweep() {
	s.jobs.Prune(s.jobTTL)
	if s.archives != nil {
		s.archives.Prune(s.archiveTTL)
	}
}
