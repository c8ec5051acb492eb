// Package shape renders facility records into the output contracts served
// to clients. Shaping is pure and never touches the store.
package shape

import (
	"strings"

	"github.com/dcode-github/capetown_discovery/backend/models"
)

type Format string

const (
	MapMarker  Format = "map-marker"
	GeoFeature Format = "geo-feature"
	Flat       Format = "flat"
)

var formatAliases = map[string]Format{
	"":            MapMarker,
	"map-marker":  MapMarker,
	"marker":      MapMarker,
	"geo-feature": GeoFeature,
	"geojson":     GeoFeature,
	"flat":        Flat,
}

// ParseFormat resolves the format query parameter. Empty means map-marker.
func ParseFormat(raw string) (Format, error) {
	if f, ok := formatAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return f, nil
	}
	verr := &models.ValidationError{}
	verr.Add("format", "must be one of map-marker, geo-feature, flat")
	return "", verr
}

// Properties are the record fields shared by every contract.
type Properties struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Classification string   `json:"classification"`
	Province       string   `json:"province"`
	District       string   `json:"district"`
	Town           string   `json:"town"`
	Status         string   `json:"status"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email"`
	OperatingHours string   `json:"operatingHours"`
	Distance       *float64 `json:"distance,omitempty"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Marker is the map-marker contract. Icon and Caption are presentation-only.
type Marker struct {
	Properties
	Position LatLng `json:"position"`
	Icon     string `json:"icon"`
	Caption  string `json:"caption"`
}

type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // [lng, lat]
}

// Feature is the geo-feature contract, a GeoJSON Feature.
type Feature struct {
	Type       string     `json:"type"`
	ID         string     `json:"id"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// FlatRecord is the flat contract.
type FlatRecord struct {
	Properties
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Facility renders one facility.
func Facility(f models.Facility, format Format) interface{} {
	switch format {
	case GeoFeature:
		return toFeature(f)
	case Flat:
		return toFlat(f)
	default:
		return toMarker(f)
	}
}

// Facilities renders a list. geo-feature lists become a FeatureCollection.
func Facilities(list []models.Facility, format Format) interface{} {
	switch format {
	case GeoFeature:
		fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(list))}
		for _, f := range list {
			fc.Features = append(fc.Features, toFeature(f))
		}
		return fc
	case Flat:
		out := make([]FlatRecord, 0, len(list))
		for _, f := range list {
			out = append(out, toFlat(f))
		}
		return out
	default:
		out := make([]Marker, 0, len(list))
		for _, f := range list {
			out = append(out, toMarker(f))
		}
		return out
	}
}

func properties(f models.Facility) Properties {
	return Properties{
		ID:             f.ID.Hex(),
		Name:           f.Name,
		Classification: f.Classification,
		Province:       f.Province,
		District:       f.District,
		Town:           f.Town,
		Status:         f.Status,
		Phone:          f.Phone,
		Email:          f.Email,
		OperatingHours: f.OperatingHours,
		Distance:       f.Distance,
	}
}

func toMarker(f models.Facility) Marker {
	return Marker{
		Properties: properties(f),
		Position:   LatLng{Lat: f.Location.Lat(), Lng: f.Location.Lng()},
		Icon:       Icon(f.Classification),
		Caption:    Caption(f),
	}
}

func toFeature(f models.Facility) Feature {
	props := properties(f)
	return Feature{
		Type: "Feature",
		ID:   props.ID,
		Geometry: Geometry{
			Type:        "Point",
			Coordinates: [2]float64{f.Location.Lng(), f.Location.Lat()},
		},
		Properties: props,
	}
}

func toFlat(f models.Facility) FlatRecord {
	return FlatRecord{
		Properties: properties(f),
		Latitude:   f.Location.Lat(),
		Longitude:  f.Location.Lng(),
	}
}
