package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"

	"startup-foundry/internal/config"
	"startup-foundry/internal/models"
)

// matchClient is the slice of the OpenAI client the matcher needs:
// embeddings for ranking and chat for the per-candidate summary.
type matchClient interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compatibility score policy. The constants are product decisions carried
// over verbatim; changing them changes every score users see.
const (
	compatibilityFloor   = 55
	compatibilityCeiling = 98
	fallbackBase         = 60
	fallbackPerSkill     = 12
	fallbackCeiling      = 96
	maxMatches           = 3
)

// MatchService ranks co-founder candidates by semantic similarity, with a
// deterministic shared-skill fallback when embeddings are unavailable
type MatchService struct {
	client         matchClient
	embeddingModel string
	chatModel      string

	mutex    sync.Mutex
	founders []models.FounderProfile
	embedded bool
}

// NewMatchService creates a match service from the founder seed file.
// A nil client puts the service permanently in fallback mode.
func NewMatchService(client matchClient, cfg config.OpenAIConfig, seedPath string) (*MatchService, error) {
	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read founder seed file: %w", err)
	}

	var founders []models.FounderProfile
	if err := json.Unmarshal(data, &founders); err != nil {
		return nil, fmt.Errorf("failed to parse founder seed file: %w", err)
	}
	if len(founders) == 0 {
		return nil, fmt.Errorf("founder seed file %s contains no profiles", seedPath)
	}

	return &MatchService{
		client:         client,
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.Model,
		founders:       founders,
	}, nil
}

// Match returns the top candidates for the requester, ranked by embedding
// similarity when possible and by shared-skill count otherwise
func (s *MatchService) Match(ctx context.Context, req models.MatchRequest) ([]models.Match, error) {
	if s.client == nil {
		log.Printf("[MATCH] No embedding provider configured, using shared-skill fallback")
		return s.fallbackMatches(ctx, req), nil
	}

	if err := s.ensureEmbeddings(ctx); err != nil {
		log.Printf("WARNING: Failed to embed founder roster, using fallback: %v", err)
		return s.fallbackMatches(ctx, req), nil
	}

	requesterVec, err := s.embed(ctx, requesterBlob(req))
	if err != nil {
		log.Printf("WARNING: Failed to embed match request, using fallback: %v", err)
		return s.fallbackMatches(ctx, req), nil
	}

	type scored struct {
		profile    models.FounderProfile
		similarity float64
	}

	s.mutex.Lock()
	candidates := make([]scored, 0, len(s.founders))
	for _, founder := range s.founders {
		candidates = append(candidates, scored{
			profile:    founder,
			similarity: cosineSimilarity(requesterVec, founder.Embedding),
		})
	}
	s.mutex.Unlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].similarity != candidates[j].similarity {
			return candidates[i].similarity > candidates[j].similarity
		}
		return candidates[i].profile.Name < candidates[j].profile.Name
	})

	if len(candidates) > maxMatches {
		candidates = candidates[:maxMatches]
	}

	matches := make([]models.Match, 0, len(candidates))
	for _, c := range candidates {
		shared := sharedSkills(req.Skills, c.profile.Skills)
		matches = append(matches, models.Match{
			Name:          c.profile.Name,
			Compatibility: compatibilityScore(c.similarity),
			SharedSkills:  shared,
			Summary:       s.summarizeMatch(ctx, req, c.profile, c.similarity),
		})
	}

	return matches, nil
}

// ensureEmbeddings computes the roster embeddings exactly once per process.
// The mutex keeps concurrent early requests from each paying the embedding
// cost.
func (s *MatchService) ensureEmbeddings(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.embedded {
		return nil
	}

	texts := make([]string, len(s.founders))
	for i, founder := range s.founders {
		texts[i] = founderBlob(founder)
	}

	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(s.embeddingModel),
	})
	if err != nil {
		return classifyUpstream("embed roster", err)
	}
	if len(resp.Data) != len(s.founders) {
		return Permanent("embed roster", fmt.Errorf("expected %d embeddings, got %d", len(s.founders), len(resp.Data)))
	}

	for i := range s.founders {
		s.founders[i].Embedding = resp.Data[i].Embedding
	}
	s.embedded = true
	log.Printf("[MATCH] Embedded %d founder profiles", len(s.founders))
	return nil
}

func (s *MatchService) embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(s.embeddingModel),
	})
	if err != nil {
		return nil, classifyUpstream("embed request", err)
	}
	if len(resp.Data) == 0 {
		return nil, Permanent("embed request", fmt.Errorf("no embedding returned"))
	}
	return resp.Data[0].Embedding, nil
}

// fallbackMatches ranks deterministically by shared-skill count when no
// embedding is available. Same response shape as the primary path.
func (s *MatchService) fallbackMatches(ctx context.Context, req models.MatchRequest) []models.Match {
	type scored struct {
		profile models.FounderProfile
		shared  []string
	}

	s.mutex.Lock()
	candidates := make([]scored, 0, len(s.founders))
	for _, founder := range s.founders {
		candidates = append(candidates, scored{
			profile: founder,
			shared:  sharedSkills(req.Skills, founder.Skills),
		})
	}
	s.mutex.Unlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		if len(candidates[i].shared) != len(candidates[j].shared) {
			return len(candidates[i].shared) > len(candidates[j].shared)
		}
		return candidates[i].profile.Name < candidates[j].profile.Name
	})

	if len(candidates) > maxMatches {
		candidates = candidates[:maxMatches]
	}

	matches := make([]models.Match, 0, len(candidates))
	for _, c := range candidates {
		compatibility := fallbackBase + len(c.shared)*fallbackPerSkill
		if compatibility > fallbackCeiling {
			compatibility = fallbackCeiling
		}
		matches = append(matches, models.Match{
			Name:          c.profile.Name,
			Compatibility: compatibility,
			SharedSkills:  c.shared,
			Summary:       fallbackSummary(req, c.profile, c.shared),
		})
	}

	return matches
}

// summarizeMatch asks the LLM for a one-paragraph compatibility summary.
// A single failure degrades to the deterministic template; there is no retry.
func (s *MatchService) summarizeMatch(ctx context.Context, req models.MatchRequest, candidate models.FounderProfile, similarity float64) string {
	prompt := fmt.Sprintf(
		"A founder with skills [%s], goals %q and personality %q is being matched with %s (skills: [%s], goals: %q, personality: %q). Their similarity score is %.2f. Write two sentences on why they could work well together.",
		strings.Join(req.Skills, ", "), req.Goals, req.Personality,
		candidate.Name, strings.Join(candidate.Skills, ", "), candidate.Goals, candidate.Personality,
		similarity,
	)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.5,
	})
	if err != nil || len(resp.Choices) == 0 {
		return fallbackSummary(req, candidate, sharedSkills(req.Skills, candidate.Skills))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

// fallbackSummary is the deterministic sentence used when the summary LLM
// call is unavailable or fails
func fallbackSummary(req models.MatchRequest, candidate models.FounderProfile, shared []string) string {
	if len(shared) > 0 {
		return fmt.Sprintf("%s shares your strengths in %s and brings experience with %s, which complements your goals.",
			candidate.Name, strings.Join(shared, ", "), strings.Join(candidate.Skills, ", "))
	}
	return fmt.Sprintf("%s brings experience with %s, which complements your own skill set and goals.",
		candidate.Name, strings.Join(candidate.Skills, ", "))
}

// cosineSimilarity computes dot(a,b) / (|a| * |b|), defined as 0 when either
// vector has zero norm
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// compatibilityScore maps a raw similarity to the displayed percentage:
// max(55, min(98, round(similarity*100)))
func compatibilityScore(similarity float64) int {
	score := int(math.Round(similarity * 100))
	if score < compatibilityFloor {
		return compatibilityFloor
	}
	if score > compatibilityCeiling {
		return compatibilityCeiling
	}
	return score
}

// sharedSkills returns the case-insensitive intersection of the two skill
// lists, preserving the candidate's casing and order
func sharedSkills(requester, candidate []string) []string {
	wanted := make(map[string]bool, len(requester))
	for _, skill := range requester {
		wanted[strings.ToLower(strings.TrimSpace(skill))] = true
	}

	shared := []string{}
	for _, skill := range candidate {
		if wanted[strings.ToLower(strings.TrimSpace(skill))] {
			shared = append(shared, skill)
		}
	}
	return shared
}

func requesterBlob(req models.MatchRequest) string {
	parts := []string{
		"Skills: " + strings.Join(req.Skills, ", "),
		"Goals: " + req.Goals,
		"Personality: " + req.Personality,
	}
	if req.Experience != "" {
		parts = append(parts, "Experience: "+req.Experience)
	}
	return strings.Join(parts, "\n")
}

func founderBlob(founder models.FounderProfile) string {
	parts := []string{
		"Skills: " + strings.Join(founder.Skills, ", "),
		"Goals: " + founder.Goals,
		"Personality: " + founder.Personality,
	}
	if founder.Experience != "" {
		parts = append(parts, "Experience: "+founder.Experience)
	}
	return strings.Join(parts, "\n")
}
