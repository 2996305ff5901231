package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"startup-foundry/internal/models"
	"startup-foundry/internal/storage"
	"startup-foundry/internal/utils"
)

// Researcher produces a competitor brief for a startup idea
type Researcher interface {
	Research(ctx context.Context, prompt string) (*models.ResearchBrief, error)
}

// CodeGenerator produces a full application from a prompt and a brief
type CodeGenerator interface {
	Generate(ctx context.Context, prompt string, brief *models.ResearchBrief) (*models.GeneratedApp, error)
}

// Packager writes generated files to disk and produces an archive
type Packager interface {
	Package(ctx context.Context, projectID string, app *models.GeneratedApp) (*models.ArchiveInfo, error)
}

// GenerationService orchestrates one pipeline run: research the idea,
// generate the application, package the archive, track it all on the job.
type GenerationService struct {
	jobs       *JobService
	projects   storage.ProjectStore
	researcher Researcher
	generator  CodeGenerator
	packager   Packager
	timeout    time.Duration
}

// NewGenerationService creates a new generation service
func NewGenerationService(
	jobs *JobService,
	projects storage.ProjectStore,
	researcher Researcher,
	generator CodeGenerator,
	packager Packager,
) *GenerationService {
	return &GenerationService{
		jobs:       jobs,
		projects:   projects,
		researcher: researcher,
		generator:  generator,
		packager:   packager,
		timeout:    10 * time.Minute,
	}
}

// Progress checkpoints for the three-step pipeline
const (
	progressResearchStart = 10
	progressResearchDone  = 35
	progressGenerateStart = 40
	progressGenerateDone  = 75
	progressPackageDone   = 90
)

// Run executes the full pipeline for an already-created job. It is meant to
// be called in a background goroutine; any error marks the job failed and is
// not returned further.
func (s *GenerationService) Run(jobID, prompt string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.run(ctx, jobID, prompt); err != nil {
		log.Printf("ERROR: Generation job %s failed: %v", jobID, err)
		_ = s.jobs.Fail(jobID, err)
	}
}

func (s *GenerationService) run(ctx context.Context, jobID, prompt string) error {
	// Step 1: competitor research
	_ = s.jobs.SetStepStatus(jobID, models.StepResearch, models.StepStatusInProgress)
	_ = s.jobs.SetProgress(jobID, progressResearchStart)
	s.jobs.AppendLog(jobID, models.LogLevelInfo, "Researching the competitive landscape")

	brief, err := s.researcher.Research(ctx, prompt)
	if err != nil {
		return fmt.Errorf("research step failed: %w", err)
	}

	_ = s.jobs.SetStepStatus(jobID, models.StepResearch, models.StepStatusCompleted)
	_ = s.jobs.SetProgress(jobID, progressResearchDone)
	s.jobs.AppendLog(jobID, models.LogLevelSuccess,
		fmt.Sprintf("Research complete (%d citations)", len(brief.Citations)))

	// Step 2: code generation
	_ = s.jobs.SetStepStatus(jobID, models.StepGenerate, models.StepStatusInProgress)
	_ = s.jobs.SetProgress(jobID, progressGenerateStart)
	s.jobs.AppendLog(jobID, models.LogLevelInfo, "Generating the application code")

	app, err := s.generator.Generate(ctx, prompt, brief)
	if err != nil {
		return fmt.Errorf("generation step failed: %w", err)
	}

	_ = s.jobs.SetStepStatus(jobID, models.StepGenerate, models.StepStatusCompleted)
	_ = s.jobs.SetProgress(jobID, progressGenerateDone)
	s.jobs.AppendLog(jobID, models.LogLevelSuccess,
		fmt.Sprintf("Generated %q with %d files", app.Name, len(app.Files)))

	// Step 3: package the archive
	_ = s.jobs.SetStepStatus(jobID, models.StepPackage, models.StepStatusInProgress)
	s.jobs.AppendLog(jobID, models.LogLevelInfo, "Packaging the project archive")

	projectID := utils.GenerateUUID()
	archive, err := s.packager.Package(ctx, projectID, app)
	if err != nil {
		return fmt.Errorf("package step failed: %w", err)
	}

	_ = s.jobs.SetStepStatus(jobID, models.StepPackage, models.StepStatusCompleted)
	_ = s.jobs.SetProgress(jobID, progressPackageDone)

	project := &models.Project{
		ID:             projectID,
		Name:           app.Name,
		Tagline:        app.Tagline,
		Summary:        app.Summary,
		LaunchChannels: app.LaunchChannels,
		ResearchNotes:  brief.Content,
		ArchivePath:    archive.Path,
		ArchiveURL:     archive.URL,
		FileCount:      len(app.Files),
		CreatedAt:      time.Now(),
	}

	if err := s.projects.Put(ctx, project); err != nil {
		return fmt.Errorf("failed to store project: %w", err)
	}

	return s.jobs.Complete(jobID, project.ID, project.Name)
}
