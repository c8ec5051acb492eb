package services

import (
	"context"
	"time"

	"github.com/dcode-github/capetown_discovery/backend/models"
	"github.com/dcode-github/capetown_discovery/backend/query"
	"github.com/dcode-github/capetown_discovery/backend/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const (
	topLocations     = 10
	viewCountTimeout = 5 * time.Second
	viewCounterField = "views"
)

// RentalStats is the body of GET /rentals/stats.
type RentalStats struct {
	Total          int64         `json:"total"`
	Available      int64         `json:"available"`
	Price          store.Summary `json:"price"`
	ByCategory     []Count       `json:"byCategory"`
	ByPropertyType []Count       `json:"byPropertyType"`
	TopLocations   []Count       `json:"topLocations"`
}

// LocationRentals is a page of rentals in one location with its price
// summary.
type LocationRentals struct {
	Location string              `json:"location"`
	Page     Page[models.Rental] `json:"page"`
	Price    store.Summary       `json:"price"`
}

type RentalService struct {
	coll store.Collection
	agg  *Aggregator
	log  *zap.Logger
}

func NewRentalService(st store.Store, log *zap.Logger) *RentalService {
	coll := st.Collection(store.Rentals)
	return &RentalService{coll: coll, agg: NewAggregator(coll), log: log}
}

func (s *RentalService) List(ctx context.Context, f query.RentalFilter) (Page[models.Rental], error) {
	return Paginate[models.Rental](ctx, s.coll, f.Predicate(), f.Sort(), f.Page)
}

// Search matches term against the rental text fields, newest first.
func (s *RentalService) Search(ctx context.Context, req query.SearchRequest) (Page[models.Rental], error) {
	filter := query.TextSearch(req.Term, query.RentalTextFields...)
	sort := query.Sort{{Field: "createdAt", Desc: true}, {Field: "_id", Desc: true}}
	return Paginate[models.Rental](ctx, s.coll, filter, sort, req.Page)
}

// ByLocation lists rentals in location alongside the location's price
// summary. The summary ignores every filter but the location.
func (s *RentalService) ByLocation(ctx context.Context, location string, f query.RentalFilter) (LocationRentals, error) {
	f.Location = location
	out := LocationRentals{Location: location}
	err := Parallel(ctx,
		func(ctx context.Context) (err error) {
			out.Page, err = s.List(ctx, f)
			return err
		},
		func(ctx context.Context) (err error) {
			out.Price, err = s.agg.Summarize(ctx, "price", query.Contains("location", location))
			return err
		},
	)
	if err != nil {
		return LocationRentals{}, err
	}
	return out, nil
}

// Stats aggregates over the rental collection scoped by filter.
func (s *RentalService) Stats(ctx context.Context, filter query.Predicate) (RentalStats, error) {
	var stats RentalStats
	err := Parallel(ctx,
		func(ctx context.Context) (err error) {
			stats.Total, err = s.agg.Total(ctx, filter)
			return err
		},
		func(ctx context.Context) (err error) {
			stats.Available, err = s.agg.Total(ctx, query.And(filter, query.Equals("available", true)))
			return err
		},
		func(ctx context.Context) (err error) {
			stats.Price, err = s.agg.Summarize(ctx, "price", filter)
			return err
		},
		func(ctx context.Context) (err error) {
			stats.ByCategory, err = s.agg.CountBy(ctx, "category", filter, 0)
			return err
		},
		func(ctx context.Context) (err error) {
			stats.ByPropertyType, err = s.agg.CountBy(ctx, "propertyType", filter, 0)
			return err
		},
		func(ctx context.Context) (err error) {
			stats.TopLocations, err = s.agg.CountBy(ctx, "location", filter, topLocations)
			return err
		},
	)
	if err != nil {
		return RentalStats{}, err
	}
	return stats, nil
}

// Get returns one rental and bumps its view counter in the background. The
// returned record carries the count as read; the increment never blocks or
// fails the read.
func (s *RentalService) Get(ctx context.Context, id string) (models.Rental, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Rental{}, err
	}
	byID := query.Equals("_id", oid)
	raw, err := s.coll.FindOne(ctx, byID)
	if err != nil {
		return models.Rental{}, err
	}
	var r models.Rental
	if err := bson.Unmarshal(raw, &r); err != nil {
		return models.Rental{}, models.StoreError("decode rental", err)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), viewCountTimeout)
		defer cancel()
		if err := s.coll.Increment(ctx, byID, viewCounterField, 1); err != nil {
			s.log.Warn("rental view count not incremented", zap.String("id", id), zap.Error(err))
		}
	}()
	return r, nil
}

// Recommend lists available rentals matching the request, cheapest first.
func (s *RentalService) Recommend(ctx context.Context, q query.RecommendationQuery) (Page[models.Rental], error) {
	return Paginate[models.Rental](ctx, s.coll, q.Predicate(), query.RecommendationSort, query.PageParams{Limit: q.Limit})
}
