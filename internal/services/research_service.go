package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"startup-foundry/internal/config"
	"startup-foundry/internal/models"
)

// ResearchService calls the web-search LLM API to research competitors for
// a startup idea before code generation begins.
type ResearchService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewResearchService creates a new research service
func NewResearchService(cfg config.ResearchConfig) *ResearchService {
	return &ResearchService{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// Chat-completions request/response structures for the search API
type researchRequest struct {
	Model    string            `json:"model"`
	Messages []researchMessage `json:"messages"`
}

type researchMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type researchResponse struct {
	Choices []struct {
		Message researchMessage `json:"message"`
	} `json:"choices"`
	Citations []string `json:"citations"`
}

const researchSystemPrompt = "You are a startup market researcher. Given a product idea, identify the main existing competitors, what they charge, and the gap a newcomer could exploit. Be concise and factual."

// Research queries the web-search LLM for a competitor brief on the prompt
func (s *ResearchService) Research(ctx context.Context, prompt string) (*models.ResearchBrief, error) {
	if s.apiKey == "" {
		return nil, ConfigMissing("research", fmt.Errorf("RESEARCH_API_KEY is not configured"))
	}

	reqBody := researchRequest{
		Model: s.model,
		Messages: []researchMessage{
			{Role: "system", Content: researchSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Research the competitive landscape for this startup idea: %s", prompt)},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, Permanent("research", fmt.Errorf("failed to marshal request: %w", err))
	}

	url := s.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, Permanent("research", fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, classifyUpstream("research", fmt.Errorf("research API request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Permanent("research", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := fmt.Errorf("research API returned status %d: %s", resp.StatusCode, truncate(string(body), 300))
		return nil, classifyUpstream("research", apiErr)
	}

	var parsed researchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, Permanent("research", fmt.Errorf("failed to decode response: %w", err))
	}

	if len(parsed.Choices) == 0 {
		return nil, Permanent("research", fmt.Errorf("research API returned no choices"))
	}

	return &models.ResearchBrief{
		Content:   strings.TrimSpace(parsed.Choices[0].Message.Content),
		Citations: parsed.Citations,
	}, nil
}

// classifyUpstream tags an upstream error as transient or permanent based on
// its message
func classifyUpstream(op string, err error) *PipelineError {
	if IsTransientMessage(err.Error()) {
		return Transient(op, err)
	}
	return Permanent(op, err)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
