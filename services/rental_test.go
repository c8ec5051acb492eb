package services

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/dcode-github/capetown_discovery/backend/models"
	"github.com/dcode-github/capetown_discovery/backend/query"
	"github.com/dcode-github/capetown_discovery/backend/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func titles(list []models.Rental) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.Title)
	}
	return out
}

func TestRentalService_ListNewestFirst(t *testing.T) {
	svc := NewRentalService(newMemory(t), zap.NewNop())
	f, err := query.ParseRentalFilter(url.Values{"limit": {"2"}})
	require.NoError(t, err)

	page, err := svc.List(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sea Point studio", "Green Point flat"}, titles(page.Items))
	assert.Equal(t, int64(5), page.Total)
	assert.True(t, page.HasMore)
}

func TestRentalService_ListFiltered(t *testing.T) {
	svc := NewRentalService(newMemory(t), zap.NewNop())
	f, err := query.ParseRentalFilter(url.Values{
		"minPrice":  {"10000"},
		"maxPrice":  {"50000"},
		"available": {"true"},
		"sortBy":    {"price"},
		"sortOrder": {"asc"},
	})
	require.NoError(t, err)

	page, err := svc.List(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sea Point studio", "Green Point flat"}, titles(page.Items))
}

func TestRentalService_Search(t *testing.T) {
	svc := NewRentalService(newMemory(t), zap.NewNop())

	page, err := svc.Search(context.Background(), query.SearchRequest{Term: "SEA POINT", Page: query.PageParams{Limit: 20}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Sea Point studio", "Sea Point penthouse"}, titles(page.Items))
}

func TestRentalService_ByLocation(t *testing.T) {
	svc := NewRentalService(newMemory(t), zap.NewNop())
	f, err := query.ParseRentalFilter(url.Values{"available": {"true"}})
	require.NoError(t, err)

	out, err := svc.ByLocation(context.Background(), "sea point", f)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sea Point studio"}, titles(out.Page.Items))
	assert.Equal(t, store.Summary{Count: 2, Avg: 28500, Min: 12000, Max: 45000}, out.Price)
}

func TestRentalService_Stats(t *testing.T) {
	svc := NewRentalService(newMemory(t), zap.NewNop())

	stats, err := svc.Stats(context.Background(), query.All())
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(4), stats.Available)
	assert.Equal(t, 5500.0, stats.Price.Min)
	assert.Equal(t, 85000.0, stats.Price.Max)
	assert.Equal(t, []Count{
		{Value: "luxury", Count: 2},
		{Value: "mid-range", Count: 2},
		{Value: "budget", Count: 1},
	}, stats.ByCategory)
	assert.Equal(t, Count{Value: "Sea Point", Count: 2}, stats.TopLocations[0])
}

func TestRentalService_StatsFailsWhole(t *testing.T) {
	svc := NewRentalService(failingStore{Store: newMemory(t)}, zap.NewNop())

	stats, err := svc.Stats(context.Background(), query.All())
	assert.ErrorIs(t, err, errInjected)
	assert.Equal(t, RentalStats{}, stats)
}

func TestRentalService_GetCountsViews(t *testing.T) {
	m := store.NewMemory()
	id := primitive.NewObjectID()
	require.NoError(t, m.Insert(store.Rentals, models.Rental{ID: id, Title: "Bo-Kaap loft", Views: 7}))
	svc := NewRentalService(m, zap.NewNop())
	ctx := context.Background()

	r, err := svc.Get(ctx, id.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Bo-Kaap loft", r.Title)

	_, err = svc.Get(ctx, id.Hex())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		raw, err := m.Collection(store.Rentals).FindOne(ctx, query.Equals("_id", id))
		if err != nil {
			return false
		}
		var got models.Rental
		return bson.Unmarshal(raw, &got) == nil && got.Views == 9
	}, time.Second, 10*time.Millisecond)
}

func TestRentalService_GetCountsViewsAfterCancel(t *testing.T) {
	m := store.NewMemory()
	id := primitive.NewObjectID()
	require.NoError(t, m.Insert(store.Rentals, models.Rental{ID: id, Title: "Tamboerskloof cottage"}))
	svc := NewRentalService(m, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	_, err := svc.Get(ctx, id.Hex())
	require.NoError(t, err)
	cancel()

	assert.Eventually(t, func() bool {
		raw, err := m.Collection(store.Rentals).FindOne(context.Background(), query.Equals("_id", id))
		if err != nil {
			return false
		}
		var got models.Rental
		return bson.Unmarshal(raw, &got) == nil && got.Views == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRentalService_GetUnknown(t *testing.T) {
	svc := NewRentalService(newMemory(t), zap.NewNop())

	_, err := svc.Get(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.Get(context.Background(), "123")
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRentalService_Recommend(t *testing.T) {
	svc := NewRentalService(newMemory(t), zap.NewNop())
	budget := 20000.0
	beds := 1
	q, err := query.ParseRecommendation(models.RecommendationRequest{Budget: &budget, Bedrooms: &beds})
	require.NoError(t, err)

	page, err := svc.Recommend(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Observatory room", "Sea Point studio", "Green Point flat"}, titles(page.Items))
}
