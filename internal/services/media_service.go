package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"startup-foundry/internal/config"
	"startup-foundry/internal/models"
)

// MediaService calls the generative media API for branding assets (logo
// images and promo videos), retrying transient failures with a linearly
// increasing backoff.
type MediaService struct {
	apiKey      string
	baseURL     string
	maxAttempts int
	backoff     time.Duration
	httpClient  *http.Client
	sleep       func(time.Duration) // injectable for tests
}

// NewMediaService creates a new media service
func NewMediaService(cfg config.MediaConfig) *MediaService {
	return &MediaService{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		maxAttempts: cfg.MaxAttempts,
		backoff:     time.Duration(cfg.BackoffSeconds) * time.Second,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		sleep: time.Sleep,
	}
}

type mediaGenerateRequest struct {
	ModelID  string `json:"model_id,omitempty"`
	Prompt   string `json:"prompt"`
	ImageURL string `json:"image_url,omitempty"`
}

type mediaGenerateResponse struct {
	Images []struct {
		URL  string `json:"url"`
		Seed int64  `json:"seed"`
		NSFW bool   `json:"nsfw"`
	} `json:"images"`
	Error string `json:"error,omitempty"`
}

// GenerateLogo generates a logo image for the given branding prompt
func (s *MediaService) GenerateLogo(ctx context.Context, prompt string) (*models.BrandingAsset, error) {
	body := mediaGenerateRequest{
		Prompt: fmt.Sprintf("Minimalist startup logo, flat vector style: %s", prompt),
	}
	return s.generateWithRetry(ctx, "/api/beta/generate/text-to-image", body)
}

// GeneratePromoVideo animates a source image into a short promo clip
func (s *MediaService) GeneratePromoVideo(ctx context.Context, prompt, imageURL string) (*models.BrandingAsset, error) {
	body := mediaGenerateRequest{
		Prompt:   prompt,
		ImageURL: imageURL,
	}
	return s.generateWithRetry(ctx, "/api/beta/generate/image-to-video", body)
}

// generateWithRetry calls the media API, retrying up to maxAttempts when
// the failure looks transient. The delay before attempt n+1 is backoff * n.
// Non-transient errors are returned immediately without retrying.
func (s *MediaService) generateWithRetry(ctx context.Context, path string, body mediaGenerateRequest) (*models.BrandingAsset, error) {
	if s.apiKey == "" {
		return nil, ConfigMissing("media", fmt.Errorf("MEDIA_API_KEY is not configured"))
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		asset, err := s.generateOnce(ctx, path, body)
		if err == nil {
			return asset, nil
		}

		if !IsTransientMessage(err.Error()) {
			return nil, Permanent("media", err)
		}

		lastErr = err
		if attempt < s.maxAttempts {
			delay := s.backoff * time.Duration(attempt)
			log.Printf("WARNING: Media API attempt %d/%d failed (%v), retrying in %s", attempt, s.maxAttempts, err, delay)
			s.sleep(delay)
		}
	}

	return nil, Transient("media", fmt.Errorf("all %d attempts failed, last error: %w", s.maxAttempts, lastErr))
}

func (s *MediaService) generateOnce(ctx context.Context, path string, body mediaGenerateRequest) (*models.BrandingAsset, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 300))
	}

	var parsed mediaGenerateResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("media API error: %s", parsed.Error)
	}
	if len(parsed.Images) == 0 {
		return nil, fmt.Errorf("media API returned no assets")
	}

	first := parsed.Images[0]
	return &models.BrandingAsset{
		URL:  first.URL,
		Seed: first.Seed,
		NSFW: first.NSFW,
	}, nil
}
