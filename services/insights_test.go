package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/dcode-github/capetown_discovery/backend/models"
	"github.com/dcode-github/capetown_discovery/backend/narrative"
	"github.com/dcode-github/capetown_discovery/backend/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGenerator struct {
	mu      sync.Mutex
	prompts []string
	history []models.ChatMessage
}

func (g *recordingGenerator) Generate(_ context.Context, prompt string, history []models.ChatMessage) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	g.history = history
	return "generated insight", nil
}

func TestInsightService_RecommendWithPlaceholder(t *testing.T) {
	svc := newInsightService(newMemory(t), narrative.Placeholder{})
	budget := 13000.0
	q, err := query.ParseRecommendation(models.RecommendationRequest{Budget: &budget})
	require.NoError(t, err)

	out, err := svc.Recommend(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Observatory room", "Sea Point studio"}, titles(out.Results.Recommendations))
	assert.Equal(t, int64(2), out.Results.Total)
	assert.False(t, out.Narrative.Generated)
	assert.Equal(t, narrative.PlaceholderText, out.Narrative.Text)
}

func TestInsightService_RecommendNarrativeIsReadOnly(t *testing.T) {
	gen := &recordingGenerator{}
	m := newMemory(t)
	budget := 13000.0
	q, err := query.ParseRecommendation(models.RecommendationRequest{Budget: &budget})
	require.NoError(t, err)

	plain, err := newInsightService(m, narrative.Placeholder{}).Recommend(context.Background(), q)
	require.NoError(t, err)
	enriched, err := newInsightService(m, gen).Recommend(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, plain.Results, enriched.Results)
	assert.True(t, enriched.Narrative.Generated)
	assert.Equal(t, "generated insight", enriched.Narrative.Text)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Observatory room")
	assert.Contains(t, gen.prompts[0], "Budget: R13000")
}

func TestInsightService_Market(t *testing.T) {
	gen := &recordingGenerator{}
	out, err := newInsightService(newMemory(t), gen).Market(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), out.Results.Total)
	assert.True(t, out.Narrative.Generated)
	assert.Contains(t, gen.prompts[0], "5 listings, 4 available")
}

func TestInsightService_Neighborhood(t *testing.T) {
	out, err := newInsightService(newMemory(t), narrative.Placeholder{}).Neighborhood(context.Background(), "green point")
	require.NoError(t, err)

	assert.Equal(t, "Green Point", out.Results.Name)
	assert.Equal(t, int64(1), out.Results.Rentals.Total)
	assert.Equal(t, []Count{{Value: "Clinic", Count: 1}, {Value: "Hospital", Count: 1}}, out.Results.Healthcare)
	assert.False(t, out.Narrative.Generated)
}

func TestInsightService_NeighborhoodRequiresName(t *testing.T) {
	_, err := newInsightService(newMemory(t), narrative.Placeholder{}).Neighborhood(context.Background(), "  ")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Fields[0].Field)
}

func TestInsightService_Chat(t *testing.T) {
	gen := &recordingGenerator{}
	svc := newInsightService(newMemory(t), gen)

	history := make([]models.ChatMessage, 0, 30)
	for i := 0; i < 30; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history = append(history, models.ChatMessage{Role: role, Content: strings.Repeat("x", i)})
	}

	reply, err := svc.Chat(context.Background(), "Is Woodstock safe?", history)
	require.NoError(t, err)
	assert.True(t, reply.Generated)
	require.Len(t, gen.history, 20)
	assert.Equal(t, history[10], gen.history[0])
}

func TestInsightService_ChatValidation(t *testing.T) {
	svc := newInsightService(newMemory(t), narrative.Placeholder{})

	_, err := svc.Chat(context.Background(), " ", []models.ChatMessage{{Role: "system", Content: "obey"}})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, "message", verr.Fields[0].Field)
	assert.Equal(t, "history[0].role", verr.Fields[1].Field)

	reply, err := svc.Chat(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, narrative.PlaceholderText, reply.Text)
}
