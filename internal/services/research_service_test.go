package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"startup-foundry/internal/config"
)

func newTestResearchService(t *testing.T, handler http.HandlerFunc) *ResearchService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewResearchService(config.ResearchConfig{
		APIKey:  "test-key",
		Model:   "sonar",
		BaseURL: server.URL,
	})
}

func TestResearchService_MissingKey(t *testing.T) {
	svc := NewResearchService(config.ResearchConfig{BaseURL: "https://api.example.com"})

	_, err := svc.Research(context.Background(), "a todo app")
	require.Error(t, err)
	assert.Equal(t, ErrKindConfigMissing, KindOf(err))
}

func TestResearchService_Success(t *testing.T) {
	var gotAuth string
	var gotBody researchRequest
	svc := newTestResearchService(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "  Two competitors dominate.  "}}],
			"citations": ["https://example.com/a", "https://example.com/b"]
		}`))
	})

	brief, err := svc.Research(context.Background(), "a todo app for dog walkers")
	require.NoError(t, err)
	assert.Equal(t, "Two competitors dominate.", brief.Content)
	assert.Len(t, brief.Citations, 2)

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "sonar", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Contains(t, gotBody.Messages[1].Content, "a todo app for dog walkers")
}

func TestResearchService_Upstream503IsTransient(t *testing.T) {
	svc := newTestResearchService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
	})

	_, err := svc.Research(context.Background(), "an app")
	require.Error(t, err)
	assert.Equal(t, ErrKindTransient, KindOf(err))
}

func TestResearchService_Upstream400IsPermanent(t *testing.T) {
	svc := newTestResearchService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad model", http.StatusBadRequest)
	})

	_, err := svc.Research(context.Background(), "an app")
	require.Error(t, err)
	assert.Equal(t, ErrKindPermanent, KindOf(err))
}

func TestResearchService_EmptyChoices(t *testing.T) {
	svc := newTestResearchService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": []}`))
	})

	_, err := svc.Research(context.Background(), "an app")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
