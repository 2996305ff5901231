package models

// GenerateRequest represents the request to start a generation job
type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// JobResponse represents the response when creating a job
type JobResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// MatchRequest represents the co-founder matching request
type MatchRequest struct {
	Skills      []string `json:"skills" binding:"required,min=1"`
	Goals       string   `json:"goals" binding:"required"`
	Personality string   `json:"personality" binding:"required"`
	Experience  string   `json:"experience,omitempty"`
}

// MatchResponse carries the ranked co-founder matches
type MatchResponse struct {
	Matches []Match `json:"matches"`
}

// SanitizeRequest represents the prompt safety-check request
type SanitizeRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// SanitizeResult is the outcome of a prompt safety check
type SanitizeResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// BrandingRequest represents a logo or promo video generation request
type BrandingRequest struct {
	Prompt   string `json:"prompt" binding:"required"`
	ImageURL string `json:"imageUrl,omitempty"` // source frame for video generation
}

// DeployRequest represents the request to deploy a packaged project
type DeployRequest struct {
	Provider string `json:"provider" binding:"required"` // "render" or "railway"
}
