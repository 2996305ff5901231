package models

import "time"

// JobStatus represents the status of a generation job
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// StepStatus represents the status of a single pipeline step
type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
)

// Pipeline step names. Steps are addressed by name everywhere; the
// skeleton below is the single place the pipeline shape is defined.
const (
	StepResearch = "research"
	StepGenerate = "generate"
	StepPackage  = "package"
)

// PipelineSteps returns a fresh pipeline skeleton with all steps pending.
func PipelineSteps() []PipelineStep {
	return []PipelineStep{
		{Name: StepResearch, Label: "Researching competitors", Status: StepStatusPending},
		{Name: StepGenerate, Label: "Generating application code", Status: StepStatusPending},
		{Name: StepPackage, Label: "Packaging project archive", Status: StepStatusPending},
	}
}

// PipelineStep is one named step of the generation pipeline
type PipelineStep struct {
	Name   string     `json:"name"`
	Label  string     `json:"label"`
	Status StepStatus `json:"status"`
}

// LogLevel tags a job log entry with a severity
type LogLevel string

const (
	LogLevelInfo    LogLevel = "info"
	LogLevelSuccess LogLevel = "success"
	LogLevelError   LogLevel = "error"
)

// LogEntry is one timestamped line in a job's log
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
}

// Job represents one asynchronous run of the generation pipeline
type Job struct {
	ID          string         `json:"id"`
	Status      JobStatus      `json:"status"`
	Prompt      string         `json:"prompt"`
	Progress    int            `json:"progress"`
	Steps       []PipelineStep `json:"steps"`
	Logs        []LogEntry     `json:"logs"`
	ProjectID   string         `json:"projectId,omitempty"`
	ProjectName string         `json:"projectName,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
