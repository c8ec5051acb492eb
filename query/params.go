package query

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/dcode-github/capetown_discovery/backend/models"
)

// Bounds caps the page size of one endpoint family.
type Bounds struct {
	Default int64
	Max     int64
}

var (
	ListBounds      = Bounds{Default: 100, Max: 500}
	SearchBounds    = Bounds{Default: 20, Max: 100}
	ProximityBounds = Bounds{Default: 20, Max: 100}
	RentalBounds    = Bounds{Default: 20, Max: 100}
)

type PageParams struct {
	Limit  int64
	Offset int64
}

type SortField struct {
	Field string
	Desc  bool
}

// Sort is applied in order; later fields break ties.
type Sort []SortField

// params reads typed values out of url.Values, collecting every failure
// instead of stopping at the first one.
type params struct {
	values url.Values
	verr   *models.ValidationError
}

func newParams(values url.Values, allowed ...string) *params {
	p := &params{values: values, verr: &models.ValidationError{}}
	known := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		known[k] = true
	}
	unknown := make([]string, 0)
	for k := range values {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		p.verr.Add(k, "unknown parameter")
	}
	return p
}

func (p *params) str(name string) string {
	return strings.TrimSpace(p.values.Get(name))
}

func (p *params) intPtr(name string, min int) *int {
	raw := p.str(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.verr.Add(name, "must be an integer")
		return nil
	}
	if n < min {
		p.verr.Add(name, "must be at least %d", min)
		return nil
	}
	return &n
}

func (p *params) floatPtr(name string) *float64 {
	raw := p.str(name)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		p.verr.Add(name, "must be a number")
		return nil
	}
	if f < 0 {
		p.verr.Add(name, "must not be negative")
		return nil
	}
	return &f
}

func (p *params) boolPtr(name string) *bool {
	raw := p.str(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.ToLower(raw))
	if err != nil {
		p.verr.Add(name, "must be true or false")
		return nil
	}
	return &b
}

// enum returns the canonical member of allowed matching the value,
// case-insensitively.
func (p *params) enum(name string, allowed []string) string {
	raw := p.str(name)
	if raw == "" {
		return ""
	}
	if v, ok := matchEnum(raw, allowed); ok {
		return v
	}
	p.verr.Add(name, "must be one of %s", strings.Join(allowed, ", "))
	return ""
}

func (p *params) page(b Bounds, withOffset bool) PageParams {
	page := PageParams{Limit: b.Default}
	if raw := p.str("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		switch {
		case err != nil:
			p.verr.Add("limit", "must be an integer")
		case n < 1:
			p.verr.Add("limit", "must be at least 1")
		case n > b.Max:
			page.Limit = b.Max
		default:
			page.Limit = n
		}
	}
	if !withOffset {
		return page
	}
	if raw := p.str("offset"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		switch {
		case err != nil:
			p.verr.Add("offset", "must be an integer")
		case n < 0:
			p.verr.Add("offset", "must not be negative")
		default:
			page.Offset = n
		}
	}
	return page
}

func matchEnum(raw string, allowed []string) (string, bool) {
	for _, a := range allowed {
		if strings.EqualFold(raw, a) {
			return a, true
		}
	}
	return "", false
}
