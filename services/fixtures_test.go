package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dcode-github/capetown_discovery/backend/cache"
	"github.com/dcode-github/capetown_discovery/backend/models"
	"github.com/dcode-github/capetown_discovery/backend/narrative"
	"github.com/dcode-github/capetown_discovery/backend/query"
	"github.com/dcode-github/capetown_discovery/backend/store"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var errInjected = errors.New("injected failure")

func seedFacilities(t *testing.T, m *store.Memory) {
	t.Helper()
	add := func(name, classification, district, town, status string, lng, lat float64) {
		require.NoError(t, m.Insert(store.Facilities, models.Facility{
			ID:             primitive.NewObjectID(),
			Name:           name,
			Classification: classification,
			Province:       "Western Cape",
			District:       district,
			Town:           town,
			Status:         status,
			Location:       models.NewGeoPoint(lng, lat),
		}))
	}
	add("Groote Schuur Hospital", "Hospital", "Cape Town", "Observatory", "Open", 18.4637, -33.9411)
	add("Somerset Hospital", "Hospital", "Cape Town", "Green Point", "Open", 18.4144, -33.9039)
	add("Khayelitsha Hospital", "Hospital", "Khayelitsha", "Khayelitsha", "Open", 18.6857, -34.0432)
	add("Green Point Clinic", "Clinic", "Cape Town", "Green Point", "Open", 18.4100, -33.9050)
	add("Site B CHC", "CHC", "Khayelitsha", "Khayelitsha", "Closed", 18.6700, -34.0400)
	add("Sea Point Pharmacy", "Pharmacy", "", "Sea Point", "Open", 18.3850, -33.9150)
}

func rental(title, location, propertyType, category, furnished string, price float64, beds int, available bool, age time.Duration) models.Rental {
	return models.Rental{
		ID:           primitive.NewObjectID(),
		Title:        title,
		Description:  title + " in " + location,
		Location:     location,
		Price:        price,
		Bedrooms:     beds,
		Bathrooms:    1,
		PropertyType: propertyType,
		Furnished:    furnished,
		Category:     category,
		Features:     []string{"parking"},
		Available:    available,
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(-age),
	}
}

func seedRentals(t *testing.T, m *store.Memory) {
	t.Helper()
	require.NoError(t, m.Insert(store.Rentals,
		rental("Sea Point studio", "Sea Point", "Studio", "mid-range", "furnished", 12000, 1, true, 1*time.Hour),
		rental("Green Point flat", "Green Point", "Apartment", "mid-range", "furnished", 16000, 2, true, 2*time.Hour),
		rental("Observatory room", "Observatory", "Room", "budget", "unfurnished", 5500, 1, true, 3*time.Hour),
		rental("Clifton villa", "Clifton", "House", "luxury", "furnished", 85000, 4, true, 4*time.Hour),
		rental("Sea Point penthouse", "Sea Point", "Apartment", "luxury", "semi-furnished", 45000, 3, false, 5*time.Hour),
	))
}

func newMemory(t *testing.T) *store.Memory {
	t.Helper()
	m := store.NewMemory()
	seedFacilities(t, m)
	seedRentals(t, m)
	return m
}

// failingStore wraps a store so that grouped counts fail.
type failingStore struct {
	store.Store
}

func (s failingStore) Collection(name string) store.Collection {
	return failingCollection{Collection: s.Store.Collection(name)}
}

type failingCollection struct {
	store.Collection
}

func (failingCollection) GroupCount(context.Context, string, query.Predicate) ([]store.Bucket, error) {
	return nil, models.StoreError("group", errInjected)
}

// mapCache is an in-process cache.Cache.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Purge(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.data)
	c.data = make(map[string][]byte)
	return n, nil
}

var _ cache.Cache = (*mapCache)(nil)

func newFacilityService(st store.Store) *FacilityService {
	return NewFacilityService(st, cache.Nop{}, time.Minute, zap.NewNop())
}

func newInsightService(st store.Store, gen narrative.Generator) *InsightService {
	merger := narrative.NewMerger(gen, time.Second, zap.NewNop())
	return NewInsightService(NewRentalService(st, zap.NewNop()), newFacilityService(st), merger)
}
