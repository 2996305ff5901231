package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/xeipuuv/gojsonschema"

	"startup-foundry/internal/config"
	"startup-foundry/internal/models"
	"startup-foundry/internal/validation"
)

// chatCompleter is the slice of the OpenAI client the code generator needs.
// *openai.Client satisfies it; tests substitute a stub.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// CodegenService calls the code-generation LLM and parses its JSON output
// into a validated file map
type CodegenService struct {
	client      chatCompleter
	model       string
	temperature float32
	maxTokens   int
	schema      *gojsonschema.Schema
}

// NewCodegenService creates a new code generation service. A nil schema
// disables structural validation of the LLM payload.
func NewCodegenService(client chatCompleter, cfg config.OpenAIConfig, schema *gojsonschema.Schema) *CodegenService {
	return &CodegenService{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
		schema:      schema,
	}
}

const codegenSystemPrompt = `You are a senior full-stack engineer. Generate a complete, runnable FastAPI + SQLAlchemy web application for the requested product.
Respond with a single JSON object only, no prose, shaped as:
{"name": "...", "tagline": "...", "summary": "...", "launchChannels": ["..."], "files": {"relative/path.py": "file content", ...}}
Every value in "files" must be the full text of that file.`

// Generate asks the LLM for a full application and returns the parsed result
func (s *CodegenService) Generate(ctx context.Context, prompt string, brief *models.ResearchBrief) (*models.GeneratedApp, error) {
	if s.client == nil {
		return nil, ConfigMissing("generate", fmt.Errorf("OPENAI_API_KEY is not configured"))
	}

	userPrompt := fmt.Sprintf("Build this product: %s", prompt)
	if brief != nil && brief.Content != "" {
		userPrompt += fmt.Sprintf("\n\nCompetitor research to inform positioning and features:\n%s", brief.Content)
	}

	req := openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: codegenSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}
	if s.maxTokens > 0 {
		req.MaxTokens = s.maxTokens
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classifyUpstream("generate", fmt.Errorf("code generation request failed: %w", err))
	}

	if len(resp.Choices) == 0 {
		return nil, Permanent("generate", fmt.Errorf("code generation returned no choices"))
	}

	result := ParseGeneratedApp(resp.Choices[0].Message.Content, s.schema)
	if result.Status == ParseFailed {
		return nil, Permanent("generate", fmt.Errorf("failed to parse generated payload: %w", result.Err))
	}

	log.Printf("[CODEGEN] Parsed generated app %q with %d files", result.App.Name, len(result.App.Files))
	return result.App, nil
}

// ParseStatus tags the outcome of parsing the LLM's JSON payload
type ParseStatus string

const (
	ParsedOk    ParseStatus = "parsed_ok"
	ParseFailed ParseStatus = "parse_failed"
)

// ParseResult is the tagged outcome of parse-with-fallback; parsing never
// drives control flow by exception.
type ParseResult struct {
	Status ParseStatus
	App    *models.GeneratedApp
	Err    error
}

// ParseGeneratedApp extracts the JSON object from the LLM response,
// tolerating surrounding prose, and validates it against the schema.
func ParseGeneratedApp(content string, schema *gojsonschema.Schema) ParseResult {
	payload, ok := extractJSONObject(content)
	if !ok {
		return ParseResult{Status: ParseFailed, Err: fmt.Errorf("no JSON object found in response")}
	}

	app, err := validation.ValidateAndParseApp(payload, schema)
	if err != nil {
		return ParseResult{Status: ParseFailed, Err: err}
	}

	if len(app.Files) == 0 {
		return ParseResult{Status: ParseFailed, Err: fmt.Errorf("generated payload contains no files")}
	}

	return ParseResult{Status: ParsedOk, App: app}
}

// extractJSONObject returns the first balanced JSON object in the text.
// LLMs frequently wrap their JSON in markdown fences or prose, so a direct
// unmarshal is tried first and brace matching is the fallback.
func extractJSONObject(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if json.Valid([]byte(trimmed)) && strings.HasPrefix(trimmed, "{") {
		return trimmed, true
	}

	start := strings.Index(content, "{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := content[start : i+1]
				if json.Valid([]byte(candidate)) {
					return candidate, true
				}
				return "", false
			}
		}
	}

	return "", false
}
