package query

import (
	"strings"

	"github.com/dcode-github/capetown_discovery/backend/models"
)

const (
	defaultRecommendations = 10
	maxRecommendations     = 50
)

// RecommendationQuery is a validated recommendation request.
type RecommendationQuery struct {
	Request models.RecommendationRequest
	Limit   int64
}

// RecommendationSort lists the cheapest matching rentals first.
var RecommendationSort = Sort{{Field: "price"}, {Field: "_id"}}

// ParseRecommendation validates a recommendation body, normalizing enum
// values and dropping blank list entries.
func ParseRecommendation(req models.RecommendationRequest) (RecommendationQuery, error) {
	verr := &models.ValidationError{}

	if req.Budget != nil && *req.Budget <= 0 {
		verr.Add("budget", "must be greater than 0")
	}
	if req.Bedrooms != nil && *req.Bedrooms < 0 {
		verr.Add("bedrooms", "must not be negative")
	}
	if req.Furnished != "" {
		if v, ok := matchEnum(req.Furnished, models.FurnishingTypes); ok {
			req.Furnished = v
		} else {
			verr.Add("furnished", "must be one of %s", strings.Join(models.FurnishingTypes, ", "))
		}
	}
	limit := int64(defaultRecommendations)
	if req.Limit != nil {
		switch {
		case *req.Limit < 1:
			verr.Add("limit", "must be at least 1")
		case *req.Limit > maxRecommendations:
			limit = maxRecommendations
		default:
			limit = int64(*req.Limit)
		}
	}
	req.PropertyType = strings.TrimSpace(req.PropertyType)
	req.PreferredLocations = compact(req.PreferredLocations)
	req.Features = compact(req.Features)

	if err := verr.Err(); err != nil {
		return RecommendationQuery{}, err
	}
	return RecommendationQuery{Request: req, Limit: limit}, nil
}

// Predicate selects available rentals within budget with at least the
// requested bedrooms, in any preferred location, offering any requested
// feature.
func (q RecommendationQuery) Predicate() Predicate {
	req := q.Request
	preds := []Predicate{
		Equals("available", true),
		Between("price", nil, req.Budget),
		containsIfSet("propertyType", req.PropertyType),
	}
	if req.Bedrooms != nil {
		min := float64(*req.Bedrooms)
		preds = append(preds, Between("bedrooms", &min, nil))
	}
	if req.Furnished != "" {
		preds = append(preds, Equals("furnished", req.Furnished))
	}
	if len(req.PreferredLocations) > 0 {
		locs := make([]Predicate, 0, len(req.PreferredLocations))
		for _, l := range req.PreferredLocations {
			locs = append(locs, Contains("location", l))
		}
		preds = append(preds, Or(locs...))
	}
	if len(req.Features) > 0 {
		features := make([]interface{}, 0, len(req.Features))
		for _, f := range req.Features {
			features = append(features, f)
		}
		preds = append(preds, In("features", features...))
	}
	return And(preds...)
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
