package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"startup-foundry/internal/config"
	"startup-foundry/internal/models"
)

func writeFounderSeed(t *testing.T, founders []models.FounderProfile) string {
	t.Helper()
	data, err := json.Marshal(founders)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "founders.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func testRoster() []models.FounderProfile {
	return []models.FounderProfile{
		{Name: "Alice", Skills: []string{"Go", "Kubernetes"}, Goals: "infra", Personality: "direct"},
		{Name: "Bob", Skills: []string{"sales", "marketing"}, Goals: "revenue", Personality: "outgoing"},
		{Name: "Carol", Skills: []string{"Go", "security", "backend"}, Goals: "tooling", Personality: "rigorous"},
		{Name: "Dave", Skills: []string{"design", "frontend"}, Goals: "consumer", Personality: "empathetic"},
	}
}

func TestNewMatchService_SeedFileErrors(t *testing.T) {
	cfg := config.OpenAIConfig{}

	_, err := NewMatchService(nil, cfg, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	empty := writeFounderSeed(t, []models.FounderProfile{})
	_, err = NewMatchService(nil, cfg, empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no profiles")
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 2, 3}

	assert.InDelta(t, 1.0, cosineSimilarity(a, []float32{1, 2, 3}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity(a, []float32{-1, -2, -3}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity(a, []float32{0, 0, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
}

func TestCompatibilityScore_ClampPolicy(t *testing.T) {
	// Sweep the whole similarity range: the displayed score is always
	// max(55, min(98, round(sim*100)))
	for sim := -1.0; sim <= 1.0; sim += 0.01 {
		score := compatibilityScore(sim)
		assert.GreaterOrEqual(t, score, 55)
		assert.LessOrEqual(t, score, 98)

		raw := int(math.Round(sim * 100))
		if raw >= 55 && raw <= 98 {
			assert.Equal(t, raw, score, "similarity %.2f", sim)
		}
	}

	assert.Equal(t, 55, compatibilityScore(0.2))
	assert.Equal(t, 72, compatibilityScore(0.72))
	assert.Equal(t, 98, compatibilityScore(0.999))
}

func TestSharedSkills_CaseInsensitive(t *testing.T) {
	shared := sharedSkills(
		[]string{"go", " KUBERNETES ", "sales"},
		[]string{"Go", "Kubernetes", "security"},
	)
	assert.Equal(t, []string{"Go", "Kubernetes"}, shared)

	assert.Empty(t, sharedSkills([]string{"design"}, []string{"Go"}))
}

func TestMatch_FallbackWithoutClient(t *testing.T) {
	seed := writeFounderSeed(t, testRoster())
	svc, err := NewMatchService(nil, config.OpenAIConfig{}, seed)
	require.NoError(t, err)

	req := models.MatchRequest{
		Skills:      []string{"Go", "backend"},
		Goals:       "build infra tooling",
		Personality: "pragmatic",
	}

	matches, err := svc.Match(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// Carol shares two skills, Alice one, the rest zero with name tiebreak
	assert.Equal(t, "Carol", matches[0].Name)
	assert.Equal(t, "Alice", matches[1].Name)
	assert.Equal(t, "Bob", matches[2].Name)

	assert.Equal(t, 60+2*12, matches[0].Compatibility)
	assert.Equal(t, 60+1*12, matches[1].Compatibility)
	assert.Equal(t, 60, matches[2].Compatibility)

	for _, m := range matches {
		assert.NotEmpty(t, m.Summary)
	}
}

func TestMatch_FallbackIsDeterministic(t *testing.T) {
	seed := writeFounderSeed(t, testRoster())
	svc, err := NewMatchService(nil, config.OpenAIConfig{}, seed)
	require.NoError(t, err)

	req := models.MatchRequest{
		Skills:      []string{"Go"},
		Goals:       "goals",
		Personality: "personality",
	}

	first, err := svc.Match(context.Background(), req)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := svc.Match(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMatch_FallbackCompatibilityCeiling(t *testing.T) {
	roster := []models.FounderProfile{
		{Name: "Eve", Skills: []string{"a", "b", "c", "d", "e"}, Goals: "g", Personality: "p"},
	}
	seed := writeFounderSeed(t, roster)
	svc, err := NewMatchService(nil, config.OpenAIConfig{}, seed)
	require.NoError(t, err)

	req := models.MatchRequest{
		Skills:      []string{"a", "b", "c", "d", "e"},
		Goals:       "g",
		Personality: "p",
	}

	matches, err := svc.Match(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	// 60 + 5*12 would exceed the ceiling
	assert.Equal(t, 96, matches[0].Compatibility)
}

// stubMatchClient returns canned embeddings keyed by input text and fails
// all chat calls so summaries come from the deterministic template
type stubMatchClient struct {
	vectors map[string][]float32
	fixed   []float32
}

func (s *stubMatchClient) CreateEmbeddings(_ context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	req, ok := conv.(openai.EmbeddingRequest)
	if !ok {
		return openai.EmbeddingResponse{}, fmt.Errorf("unexpected request type")
	}
	inputs, ok := req.Input.([]string)
	if !ok {
		return openai.EmbeddingResponse{}, fmt.Errorf("unexpected input type")
	}

	resp := openai.EmbeddingResponse{}
	for _, text := range inputs {
		vec, found := s.vectors[text]
		if !found {
			vec = s.fixed
		}
		resp.Data = append(resp.Data, openai.Embedding{Embedding: vec})
	}
	return resp, nil
}

func (s *stubMatchClient) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{}, fmt.Errorf("chat unavailable")
}

func TestMatch_EmbeddingRanking(t *testing.T) {
	roster := testRoster()
	seed := writeFounderSeed(t, roster)

	client := &stubMatchClient{
		vectors: map[string][]float32{
			founderBlob(roster[0]): {1, 0, 0},   // Alice: orthogonal
			founderBlob(roster[1]): {0, 1, 0},   // Bob: aligned
			founderBlob(roster[2]): {0, 0.5, 1}, // Carol: partial
			founderBlob(roster[3]): {-1, 0, 0},  // Dave: opposite on axis 0
		},
		fixed: []float32{0, 1, 0}, // requester vector
	}

	svc, err := NewMatchService(client, config.OpenAIConfig{Model: "m", EmbeddingModel: "e"}, seed)
	require.NoError(t, err)

	req := models.MatchRequest{
		Skills:      []string{"sales"},
		Goals:       "revenue",
		Personality: "outgoing",
	}

	matches, err := svc.Match(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// Bob has cosine 1.0, Carol ~0.447, Alice and Dave 0.0 (Alice wins the
	// name tiebreak)
	assert.Equal(t, "Bob", matches[0].Name)
	assert.Equal(t, "Carol", matches[1].Name)
	assert.Equal(t, "Alice", matches[2].Name)

	assert.Equal(t, 98, matches[0].Compatibility)
	assert.Equal(t, 55, matches[1].Compatibility)
	assert.Equal(t, 55, matches[2].Compatibility)

	// Chat is down, so every summary is the deterministic template
	assert.Contains(t, matches[0].Summary, "Bob")
}
