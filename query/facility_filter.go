package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/dcode-github/capetown_discovery/backend/models"
)

// FacilityTextFields are the fields covered by facility free-text search.
var FacilityTextFields = []string{"name", "town", "district", "classification"}

// FacilityFilter is the typed form of the facility list query string.
type FacilityFilter struct {
	Classification string `json:"classification,omitempty"`
	Province       string `json:"province,omitempty"`
	District       string `json:"district,omitempty"`
	Town           string `json:"town,omitempty"`
	Status         string `json:"status,omitempty"`
	Q              string `json:"q,omitempty"`

	Page PageParams `json:"-"`
}

// FacilitySort orders facility listings by name, then id.
var FacilitySort = Sort{{Field: "name"}, {Field: "_id"}}

// ParseFacilityFilter validates a facility list query. The format parameter
// is accepted here and validated by the shaper.
func ParseFacilityFilter(values url.Values) (FacilityFilter, error) {
	p := newParams(values, "classification", "province", "district", "town", "status", "q", "limit", "offset", "format")
	f := FacilityFilter{
		Classification: p.str("classification"),
		Province:       p.str("province"),
		District:       p.str("district"),
		Town:           p.str("town"),
		Status:         p.str("status"),
		Q:              p.str("q"),
		Page:           p.page(ListBounds, true),
	}
	if err := p.verr.Err(); err != nil {
		return FacilityFilter{}, err
	}
	return f, nil
}

func (f FacilityFilter) Predicate() Predicate {
	preds := []Predicate{
		containsIfSet("classification", f.Classification),
		containsIfSet("province", f.Province),
		containsIfSet("district", f.District),
		containsIfSet("town", f.Town),
		containsIfSet("status", f.Status),
	}
	if f.Q != "" {
		preds = append(preds, TextSearch(f.Q, FacilityTextFields...))
	}
	return And(preds...)
}

// Values is the normalized form of the filter, used for cache keys.
func (f FacilityFilter) Values() url.Values {
	v := url.Values{}
	for name, value := range map[string]string{
		"classification": f.Classification,
		"province":       f.Province,
		"district":       f.District,
		"town":           f.Town,
		"status":         f.Status,
		"q":              f.Q,
	} {
		if value != "" {
			v.Set(name, strings.ToLower(value))
		}
	}
	v.Set("limit", strconv.FormatInt(f.Page.Limit, 10))
	v.Set("offset", strconv.FormatInt(f.Page.Offset, 10))
	return v
}

// SearchRequest is a free-text search over a fixed field set.
type SearchRequest struct {
	Term string
	Page PageParams
}

// ParseFacilitySearch validates GET /facilities/search/{term}.
func ParseFacilitySearch(term string, values url.Values) (SearchRequest, error) {
	p := newParams(values, "limit", "format")
	req := SearchRequest{Term: strings.TrimSpace(term), Page: p.page(SearchBounds, false)}
	if req.Term == "" {
		p.verr.Add("term", "is required")
	}
	if err := p.verr.Err(); err != nil {
		return SearchRequest{}, err
	}
	return req, nil
}

// ParseProximityLimit validates the query string of a proximity lookup.
func ParseProximityLimit(values url.Values) (PageParams, error) {
	p := newParams(values, "limit", "format")
	page := p.page(ProximityBounds, false)
	if err := p.verr.Err(); err != nil {
		return PageParams{}, err
	}
	return page, nil
}

// RejectUnknown fails for any parameter outside allowed.
func RejectUnknown(values url.Values, allowed ...string) error {
	return newParams(values, allowed...).verr.Err()
}

// TextSearch matches when any of fields contains term.
func TextSearch(term string, fields ...string) Predicate {
	preds := make([]Predicate, 0, len(fields))
	for _, field := range fields {
		preds = append(preds, Contains(field, term))
	}
	return Or(preds...)
}

func containsIfSet(field, value string) Predicate {
	if value == "" {
		return nil
	}
	return Contains(field, value)
}

// JoinValidation merges validation errors from several boundary checks into
// one. A non-validation error is returned as is.
func JoinValidation(errs ...error) error {
	merged := &models.ValidationError{}
	for _, err := range errs {
		if err == nil {
			continue
		}
		before := len(merged.Fields)
		merged.Merge(err)
		if len(merged.Fields) == before {
			return err
		}
	}
	return merged.Err()
}
