package query

import (
	"net/url"
	"strings"

	"github.com/dcode-github/capetown_discovery/backend/models"
)

// RentalTextFields are the fields covered by rental free-text search.
var RentalTextFields = []string{"title", "description", "location", "propertyType"}

var rentalSortFields = []string{"createdAt", "price", "bedrooms", "bathrooms", "views", "title"}

// RentalFilter is the typed form of the rental list query string. It is
// echoed back in list responses, so only supplied filters are serialized.
type RentalFilter struct {
	Q            string   `json:"q,omitempty"`
	Location     string   `json:"location,omitempty"`
	MinPrice     *float64 `json:"minPrice,omitempty"`
	MaxPrice     *float64 `json:"maxPrice,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Bathrooms    *int     `json:"bathrooms,omitempty"`
	PropertyType string   `json:"propertyType,omitempty"`
	Category     string   `json:"category,omitempty"`
	Furnished    string   `json:"furnished,omitempty"`
	Available    *bool    `json:"available,omitempty"`
	SortBy       string   `json:"sortBy"`
	SortOrder    string   `json:"sortOrder"`

	Page PageParams `json:"-"`
}

// ParseRentalFilter validates a rental list query.
func ParseRentalFilter(values url.Values) (RentalFilter, error) {
	p := newParams(values,
		"q", "location", "minPrice", "maxPrice", "bedrooms", "bathrooms", "propertyType",
		"category", "furnished", "available", "limit", "offset", "sortBy", "sortOrder")

	f := RentalFilter{
		Q:            p.str("q"),
		Location:     p.str("location"),
		MinPrice:     p.floatPtr("minPrice"),
		MaxPrice:     p.floatPtr("maxPrice"),
		Bedrooms:     p.intPtr("bedrooms", 0),
		Bathrooms:    p.intPtr("bathrooms", 0),
		PropertyType: p.str("propertyType"),
		Category:     p.enum("category", models.RentalCategories),
		Furnished:    p.enum("furnished", models.FurnishingTypes),
		Available:    p.boolPtr("available"),
		SortBy:       "createdAt",
		SortOrder:    "desc",
		Page:         p.page(RentalBounds, true),
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		p.verr.Add("minPrice", "must not exceed maxPrice")
	}
	if raw := p.str("sortBy"); raw != "" {
		if v, ok := matchEnum(raw, rentalSortFields); ok {
			f.SortBy = v
		} else {
			p.verr.Add("sortBy", "must be one of %s", strings.Join(rentalSortFields, ", "))
		}
	}
	if raw := p.str("sortOrder"); raw != "" {
		if v, ok := matchEnum(raw, []string{"asc", "desc"}); ok {
			f.SortOrder = v
		} else {
			p.verr.Add("sortOrder", "must be asc or desc")
		}
	}

	if err := p.verr.Err(); err != nil {
		return RentalFilter{}, err
	}
	return f, nil
}

func (f RentalFilter) Predicate() Predicate {
	preds := []Predicate{
		containsIfSet("location", f.Location),
		containsIfSet("propertyType", f.PropertyType),
		Between("price", f.MinPrice, f.MaxPrice),
	}
	if f.Q != "" {
		preds = append(preds, TextSearch(f.Q, RentalTextFields...))
	}
	if f.Bedrooms != nil {
		preds = append(preds, Equals("bedrooms", *f.Bedrooms))
	}
	if f.Bathrooms != nil {
		preds = append(preds, Equals("bathrooms", *f.Bathrooms))
	}
	if f.Category != "" {
		preds = append(preds, Equals("category", f.Category))
	}
	if f.Furnished != "" {
		preds = append(preds, Equals("furnished", f.Furnished))
	}
	if f.Available != nil {
		preds = append(preds, Equals("available", *f.Available))
	}
	return And(preds...)
}

// Sort returns the requested order with _id as the final tie-breaker.
func (f RentalFilter) Sort() Sort {
	desc := f.SortOrder == "desc"
	return Sort{{Field: f.SortBy, Desc: desc}, {Field: "_id", Desc: desc}}
}

// ParseRentalSearch validates GET /rentals/search.
func ParseRentalSearch(values url.Values) (SearchRequest, error) {
	p := newParams(values, "q", "limit")
	req := SearchRequest{Term: p.str("q"), Page: p.page(SearchBounds, false)}
	if req.Term == "" {
		p.verr.Add("q", "is required")
	}
	if err := p.verr.Err(); err != nil {
		return SearchRequest{}, err
	}
	return req, nil
}
