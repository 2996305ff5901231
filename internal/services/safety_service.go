package services

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/sashabaranov/go-openai"

	"startup-foundry/internal/config"
	"startup-foundry/internal/models"
)

// SafetyService checks a user prompt before it is fed into the generation
// pipeline. With no LLM credential configured it degrades to a deterministic
// blocklist check instead of failing the request.
type SafetyService struct {
	client chatCompleter
	model  string
}

// NewSafetyService creates a new safety service. A nil client enables the
// deterministic fallback permanently.
func NewSafetyService(client chatCompleter, cfg config.OpenAIConfig) *SafetyService {
	return &SafetyService{
		client: client,
		model:  cfg.Model,
	}
}

const safetySystemPrompt = `You review prompts submitted to a code-generation service. Reject prompts that request malware, phishing sites, scams, or illegal products. Respond with a single JSON object: {"allowed": true|false, "reason": "..."}.`

// blockedFragments is the deterministic fallback blocklist
var blockedFragments = []string{
	"malware",
	"phishing",
	"ransomware",
	"keylogger",
	"credit card skimmer",
}

// Sanitize checks whether the prompt is acceptable for generation
func (s *SafetyService) Sanitize(ctx context.Context, prompt string) *models.SanitizeResult {
	if s.client == nil {
		return s.fallbackCheck(prompt)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: safetySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil || len(resp.Choices) == 0 {
		log.Printf("WARNING: Safety check call failed, using fallback: %v", err)
		return s.fallbackCheck(prompt)
	}

	payload, ok := extractJSONObject(resp.Choices[0].Message.Content)
	if !ok {
		log.Printf("WARNING: Safety check returned no JSON, using fallback")
		return s.fallbackCheck(prompt)
	}

	var result models.SanitizeResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		log.Printf("WARNING: Safety check returned malformed JSON, using fallback: %v", err)
		return s.fallbackCheck(prompt)
	}
	return &result
}

// fallbackCheck is the deterministic substring blocklist used when the LLM
// is unavailable
func (s *SafetyService) fallbackCheck(prompt string) *models.SanitizeResult {
	lower := strings.ToLower(prompt)
	for _, fragment := range blockedFragments {
		if strings.Contains(lower, fragment) {
			return &models.SanitizeResult{
				Allowed: false,
				Reason:  "prompt contains disallowed content: " + fragment,
			}
		}
	}
	return &models.SanitizeResult{Allowed: true}
}
