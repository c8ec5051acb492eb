package services

import (
	"context"
	"math"
	"net/url"
	"testing"

	"github.com/dcode-github/capetown_discovery/backend/models"
	"github.com/dcode-github/capetown_discovery/backend/query"
	"github.com/dcode-github/capetown_discovery/backend/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate_FirstPageOfHospitals(t *testing.T) {
	coll := newMemory(t).Collection(store.Facilities)
	filter := query.Contains("classification", "Hospital")

	page, err := Paginate[models.Facility](context.Background(), coll, filter, query.FacilitySort, query.PageParams{Limit: 2})
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Total)
	assert.True(t, page.HasMore)
	assert.Equal(t, "Groote Schuur Hospital", page.Items[0].Name)
	assert.Equal(t, "Khayelitsha Hospital", page.Items[1].Name)
}

func TestPaginate_Windows(t *testing.T) {
	coll := newMemory(t).Collection(store.Facilities)
	ctx := context.Background()

	tests := []struct {
		offset, limit int64
		wantItems     int
		wantMore      bool
	}{
		{0, 100, 6, false},
		{0, 6, 6, false},
		{0, 5, 5, true},
		{4, 5, 2, false},
		{6, 5, 0, false},
		{60, 5, 0, false},
		{math.MaxInt64, 5, 0, false},
		{math.MaxInt64 - 2, math.MaxInt64, 0, false},
		{2, math.MaxInt64, 4, false},
	}
	for _, tt := range tests {
		page, err := Paginate[models.Facility](ctx, coll, query.All(), query.FacilitySort,
			query.PageParams{Limit: tt.limit, Offset: tt.offset})
		require.NoError(t, err)
		assert.Len(t, page.Items, tt.wantItems, "offset=%d limit=%d", tt.offset, tt.limit)
		assert.Equal(t, tt.wantMore, page.HasMore, "offset=%d limit=%d", tt.offset, tt.limit)
		assert.LessOrEqual(t, tt.offset+int64(len(page.Items)), max(page.Total, tt.offset))
		assert.Equal(t, int64(6), page.Total)
	}
}

func TestPaginate_PagesAreDisjoint(t *testing.T) {
	coll := newMemory(t).Collection(store.Rentals)
	f, err := query.ParseRentalFilter(url.Values{"sortBy": {"bedrooms"}, "sortOrder": {"asc"}})
	require.NoError(t, err)

	seen := map[string]bool{}
	for offset := int64(0); offset < 5; offset += 2 {
		page, err := Paginate[models.Rental](context.Background(), coll, f.Predicate(), f.Sort(), query.PageParams{Limit: 2, Offset: offset})
		require.NoError(t, err)
		for _, r := range page.Items {
			assert.False(t, seen[r.ID.Hex()], "rental %s on two pages", r.Title)
			seen[r.ID.Hex()] = true
		}
	}
	assert.Len(t, seen, 5)
}

func TestPaginate_StoreFailure(t *testing.T) {
	m := newMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Paginate[models.Facility](ctx, m.Collection(store.Facilities), query.All(), nil, query.PageParams{Limit: 1})
	assert.ErrorIs(t, err, models.ErrStore)
}

func TestLocate_NearestFirstWithTotal(t *testing.T) {
	coll := newMemory(t).Collection(store.Facilities)
	p, err := query.ParseNear("18.4144", "-33.9039", "5000")
	require.NoError(t, err)

	page, err := Locate[models.Facility](context.Background(), coll, p, query.PageParams{Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.Total)
	assert.True(t, page.HasMore)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Somerset Hospital", page.Items[0].Name)
	assert.Equal(t, "Green Point Clinic", page.Items[1].Name)
	require.NotNil(t, page.Items[0].Distance)
	assert.InDelta(t, 0, *page.Items[0].Distance, 0.001)
}
