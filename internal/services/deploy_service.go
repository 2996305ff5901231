package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"startup-foundry/internal/config"
	"startup-foundry/internal/models"
)

// Hosting provider names accepted by Deploy
const (
	ProviderRender  = "render"
	ProviderRailway = "railway"
)

// DeployService hands a packaged project to one of two hosting providers
// and returns the resulting service id and live URL
type DeployService struct {
	renderAPIKey string
	railwayToken string
	renderURL    string
	railwayURL   string
	httpClient   *http.Client
}

// NewDeployService creates a new deploy service
func NewDeployService(cfg config.DeployConfig) *DeployService {
	return &DeployService{
		renderAPIKey: cfg.RenderAPIKey,
		railwayToken: cfg.RailwayToken,
		renderURL:    "https://api.render.com/v1/services",
		railwayURL:   "https://backboard.railway.app/graphql/v2",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Deploy sends the project archive to the chosen provider
func (s *DeployService) Deploy(ctx context.Context, provider string, project *models.Project) (*models.Deployment, error) {
	switch provider {
	case ProviderRender:
		return s.deployRender(ctx, project)
	case ProviderRailway:
		return s.deployRailway(ctx, project)
	default:
		return nil, Permanent("deploy", fmt.Errorf("unknown provider: %s", provider))
	}
}

func (s *DeployService) deployRender(ctx context.Context, project *models.Project) (*models.Deployment, error) {
	if s.renderAPIKey == "" {
		return nil, ConfigMissing("deploy", fmt.Errorf("RENDER_API_KEY is not configured"))
	}

	payload := map[string]any{
		"type": "web_service",
		"name": project.Name,
		"serviceDetails": map[string]any{
			"env":        "python",
			"archiveUrl": project.ArchiveURL,
		},
	}

	var parsed struct {
		Service struct {
			ID string `json:"id"`
		} `json:"service"`
		ServiceURL string `json:"serviceUrl"`
	}
	if err := s.postJSON(ctx, s.renderURL, "Bearer "+s.renderAPIKey, payload, &parsed); err != nil {
		return nil, err
	}

	return &models.Deployment{
		Provider:  ProviderRender,
		ServiceID: parsed.Service.ID,
		URL:       parsed.ServiceURL,
	}, nil
}

func (s *DeployService) deployRailway(ctx context.Context, project *models.Project) (*models.Deployment, error) {
	if s.railwayToken == "" {
		return nil, ConfigMissing("deploy", fmt.Errorf("RAILWAY_TOKEN is not configured"))
	}

	payload := map[string]any{
		"query": "mutation serviceCreate($input: ServiceCreateInput!) { serviceCreate(input: $input) { id serviceDomain } }",
		"variables": map[string]any{
			"input": map[string]any{
				"name":   project.Name,
				"source": map[string]any{"archiveUrl": project.ArchiveURL},
			},
		},
	}

	var parsed struct {
		Data struct {
			ServiceCreate struct {
				ID            string `json:"id"`
				ServiceDomain string `json:"serviceDomain"`
			} `json:"serviceCreate"`
		} `json:"data"`
	}
	if err := s.postJSON(ctx, s.railwayURL, "Bearer "+s.railwayToken, payload, &parsed); err != nil {
		return nil, err
	}

	return &models.Deployment{
		Provider:  ProviderRailway,
		ServiceID: parsed.Data.ServiceCreate.ID,
		URL:       "https://" + parsed.Data.ServiceCreate.ServiceDomain,
	}, nil
}

func (s *DeployService) postJSON(ctx context.Context, url, authorization string, payload, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return Permanent("deploy", fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return Permanent("deploy", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Authorization", authorization)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return classifyUpstream("deploy", fmt.Errorf("deploy request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Permanent("deploy", fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := fmt.Errorf("deploy API returned status %d: %s", resp.StatusCode, truncate(string(body), 300))
		return classifyUpstream("deploy", apiErr)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return Permanent("deploy", fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}
