// Package store executes compiled predicates against a document store.
package store

import (
	"context"

	"github.com/dcode-github/capetown_discovery/backend/query"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	Facilities = "facilities"
	Rentals    = "rentals"
)

// Bucket is one group of a grouped count.
type Bucket struct {
	Value interface{} `bson:"_id" json:"value"`
	Count int64       `bson:"count" json:"count"`
}

// Summary holds scalar aggregates of one numeric field. Avg, Min and Max
// ignore non-numeric values.
type Summary struct {
	Count int64   `bson:"count" json:"count"`
	Avg   float64 `bson:"avg" json:"average"`
	Min   float64 `bson:"min" json:"min"`
	Max   float64 `bson:"max" json:"max"`
}

type FindOptions struct {
	Sort  query.Sort
	Skip  int64
	Limit int64
}

// Collection is the read path over one document collection. Documents are
// returned raw and decoded by the caller.
type Collection interface {
	Find(ctx context.Context, filter query.Predicate, opts FindOptions) ([]bson.Raw, error)
	// FindOne returns models.ErrNotFound when nothing matches.
	FindOne(ctx context.Context, filter query.Predicate) (bson.Raw, error)
	Count(ctx context.Context, filter query.Predicate) (int64, error)
	// Near returns documents nearest-first with a "distance" field in meters.
	Near(ctx context.Context, p query.Proximity, limit int64) ([]bson.Raw, error)
	Distinct(ctx context.Context, field string, filter query.Predicate) ([]interface{}, error)
	// GroupCount orders buckets by descending count, then ascending value.
	GroupCount(ctx context.Context, field string, filter query.Predicate) ([]Bucket, error)
	Summarize(ctx context.Context, field string, filter query.Predicate) (Summary, error)
	// Increment atomically adds delta to a numeric field of the first match.
	Increment(ctx context.Context, filter query.Predicate, field string, delta int) error
}

type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
}

// DecodeAll unmarshals raw documents into T.
func DecodeAll[T any](raws []bson.Raw) ([]T, error) {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := bson.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
