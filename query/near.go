package query

import (
	"math"
	"strconv"

	"github.com/dcode-github/capetown_discovery/backend/models"
	"go.mongodb.org/mongo-driver/bson"
)

// EarthRadiusMeters is the radius MongoDB uses for spherical geometry.
const EarthRadiusMeters = 6378100.0

const (
	MinDistanceMeters = 1
	MaxDistanceMeters = 50000
	LocationField     = "location"
)

// Proximity selects documents whose point lies within MaxDistance meters of
// the center. Results are ordered nearest-first and no other sort applies.
type Proximity struct {
	Field       string
	Lng, Lat    float64
	MaxDistance float64
	Filter      Predicate
}

// ParseNear parses path segments into a proximity query, reporting every
// out-of-range or malformed component.
func ParseNear(lng, lat, distance string) (Proximity, error) {
	verr := &models.ValidationError{}
	p := Proximity{Field: LocationField, Filter: All()}

	var err error
	if p.Lng, err = strconv.ParseFloat(lng, 64); err != nil || math.IsNaN(p.Lng) {
		verr.Add("lng", "must be a number")
	} else if p.Lng < -180 || p.Lng > 180 {
		verr.Add("lng", "must be between -180 and 180")
	}
	if p.Lat, err = strconv.ParseFloat(lat, 64); err != nil || math.IsNaN(p.Lat) {
		verr.Add("lat", "must be a number")
	} else if p.Lat < -90 || p.Lat > 90 {
		verr.Add("lat", "must be between -90 and 90")
	}
	if p.MaxDistance, err = strconv.ParseFloat(distance, 64); err != nil || math.IsNaN(p.MaxDistance) {
		verr.Add("distance", "must be a number")
	} else if p.MaxDistance < MinDistanceMeters || p.MaxDistance > MaxDistanceMeters {
		verr.Add("distance", "must be between %d and %d meters", MinDistanceMeters, MaxDistanceMeters)
	}

	if err := verr.Err(); err != nil {
		return Proximity{}, err
	}
	return p, nil
}

// Within is the unordered form of the proximity query, usable for counting.
func (p Proximity) Within() Predicate {
	return And(within{field: p.field(), lng: p.Lng, lat: p.Lat, radius: p.MaxDistance}, p.Filter)
}

// GeoNearStage renders the $geoNear aggregation stage. The computed distance
// is stored in the "distance" field.
func (p Proximity) GeoNearStage() bson.D {
	filter := bson.M{}
	if p.Filter != nil {
		filter = p.Filter.BSON()
	}
	return bson.D{{Key: "$geoNear", Value: bson.M{
		"near":          bson.M{"type": "Point", "coordinates": bson.A{p.Lng, p.Lat}},
		"distanceField": "distance",
		"maxDistance":   p.MaxDistance,
		"spherical":     true,
		"key":           p.field(),
		"query":         filter,
	}}}
}

// DistanceTo returns the distance in meters from the center to the GeoJSON
// point stored in doc.
func (p Proximity) DistanceTo(doc bson.M) (float64, bool) {
	lng, lat, ok := pointOf(Lookup(doc, p.field()))
	if !ok {
		return 0, false
	}
	return Haversine(p.Lat, p.Lng, lat, lng), true
}

func (p Proximity) field() string {
	if p.Field == "" {
		return LocationField
	}
	return p.Field
}

type within struct {
	field    string
	lng, lat float64
	radius   float64
}

func (w within) BSON() bson.M {
	return bson.M{w.field: bson.M{"$geoWithin": bson.M{
		"$centerSphere": bson.A{bson.A{w.lng, w.lat}, w.radius / EarthRadiusMeters},
	}}}
}

func (w within) Match(doc bson.M) bool {
	lng, lat, ok := pointOf(Lookup(doc, w.field))
	if !ok {
		return false
	}
	return Haversine(w.lat, w.lng, lat, lng) <= w.radius
}

// pointOf extracts [lng, lat] from a GeoJSON point.
func pointOf(v interface{}) (lng, lat float64, ok bool) {
	var coords interface{}
	switch d := v.(type) {
	case bson.M, bson.D, map[string]interface{}:
		coords = Lookup(bson.M{"p": d}, "p.coordinates")
	default:
		return 0, 0, false
	}
	var arr []interface{}
	switch c := coords.(type) {
	case bson.A:
		arr = c
	case []interface{}:
		arr = c
	default:
		return 0, 0, false
	}
	if len(arr) < 2 {
		return 0, 0, false
	}
	lng, ok1 := ToFloat(arr[0])
	lat, ok2 := ToFloat(arr[1])
	return lng, lat, ok1 && ok2
}

// Haversine returns the great-circle distance in meters between two points
// given in degrees.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}
