package services

import (
	"context"
	"net/url"
	"time"

	"github.com/dcode-github/capetown_discovery/backend/cache"
	"github.com/dcode-github/capetown_discovery/backend/models"
	"github.com/dcode-github/capetown_discovery/backend/query"
	"github.com/dcode-github/capetown_discovery/backend/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const topDistricts = 10

// FacilityStats is the body of GET /facilities/stats.
type FacilityStats struct {
	Total            int64   `json:"total"`
	ByClassification []Count `json:"byClassification"`
	TopDistricts     []Count `json:"topDistricts"`
	ByStatus         []Count `json:"byStatus"`
}

// FacilityService serves the facility read path. Facilities are owned by
// the ingestion process, so list and aggregate reads are cached.
type FacilityService struct {
	coll  store.Collection
	agg   *Aggregator
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewFacilityService(st store.Store, c cache.Cache, ttl time.Duration, log *zap.Logger) *FacilityService {
	coll := st.Collection(store.Facilities)
	return &FacilityService{coll: coll, agg: NewAggregator(coll), cache: c, ttl: ttl, log: log}
}

func (s *FacilityService) List(ctx context.Context, f query.FacilityFilter) (Page[models.Facility], error) {
	key := cache.Key("facilities:list", f.Values())
	return cache.Fetch(ctx, s.cache, s.log, key, s.ttl, func(ctx context.Context) (Page[models.Facility], error) {
		return Paginate[models.Facility](ctx, s.coll, f.Predicate(), query.FacilitySort, f.Page)
	})
}

func (s *FacilityService) Classifications(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "classification")
}

func (s *FacilityService) Districts(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "district")
}

func (s *FacilityService) distinct(ctx context.Context, field string) ([]string, error) {
	key := cache.Key("facilities:distinct", url.Values{"field": {field}})
	return cache.Fetch(ctx, s.cache, s.log, key, s.ttl, func(ctx context.Context) ([]string, error) {
		return s.agg.Distinct(ctx, field, query.All())
	})
}

// Stats runs its four aggregations concurrently; any failure fails the
// whole response.
func (s *FacilityService) Stats(ctx context.Context) (FacilityStats, error) {
	key := cache.Key("facilities:stats", nil)
	return cache.Fetch(ctx, s.cache, s.log, key, s.ttl, func(ctx context.Context) (FacilityStats, error) {
		var stats FacilityStats
		err := Parallel(ctx,
			func(ctx context.Context) (err error) {
				stats.Total, err = s.agg.Total(ctx, query.All())
				return err
			},
			func(ctx context.Context) (err error) {
				stats.ByClassification, err = s.agg.CountBy(ctx, "classification", query.All(), 0)
				return err
			},
			func(ctx context.Context) (err error) {
				stats.TopDistricts, err = s.agg.CountBy(ctx, "district", query.All(), topDistricts)
				return err
			},
			func(ctx context.Context) (err error) {
				stats.ByStatus, err = s.agg.CountBy(ctx, "status", query.All(), 0)
				return err
			},
		)
		if err != nil {
			return FacilityStats{}, err
		}
		return stats, nil
	})
}

// Near returns facilities inside the radius, nearest first.
func (s *FacilityService) Near(ctx context.Context, p query.Proximity, page query.PageParams) (Page[models.Facility], error) {
	return Locate[models.Facility](ctx, s.coll, p, page)
}

// Search matches term against the facility text fields.
func (s *FacilityService) Search(ctx context.Context, req query.SearchRequest) (Page[models.Facility], error) {
	filter := query.TextSearch(req.Term, query.FacilityTextFields...)
	return Paginate[models.Facility](ctx, s.coll, filter, query.FacilitySort, req.Page)
}

// CountByClassification counts facilities matching filter per
// classification.
func (s *FacilityService) CountByClassification(ctx context.Context, filter query.Predicate) ([]Count, error) {
	return s.agg.CountBy(ctx, "classification", filter, 0)
}

func (s *FacilityService) Get(ctx context.Context, id string) (models.Facility, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Facility{}, err
	}
	raw, err := s.coll.FindOne(ctx, query.Equals("_id", oid))
	if err != nil {
		return models.Facility{}, err
	}
	var f models.Facility
	if err := bson.Unmarshal(raw, &f); err != nil {
		return models.Facility{}, models.StoreError("decode facility", err)
	}
	return f, nil
}
