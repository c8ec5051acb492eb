package store

import (
	"context"
	"errors"
	"time"

	"github.com/dcode-github/capetown_discovery/backend/models"
	"github.com/dcode-github/capetown_discovery/backend/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is a Store backed by one MongoDB database. Every round-trip is
// bounded by timeout.
type Mongo struct {
	db      *mongo.Database
	timeout time.Duration
}

func NewMongo(db *mongo.Database, timeout time.Duration) *Mongo {
	return &Mongo{db: db, timeout: timeout}
}

func (m *Mongo) Collection(name string) Collection {
	return &mongoCollection{coll: m.db.Collection(name), timeout: m.timeout}
}

func (m *Mongo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	if err := m.db.Client().Ping(ctx, nil); err != nil {
		return models.StoreError("ping", err)
	}
	return nil
}

// EnsureIndexes creates the indexes the read path depends on. $geoNear
// requires the 2dsphere index on facility locations.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	_, err := m.db.Collection(Facilities).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: query.LocationField, Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}},
	})
	if err != nil {
		return models.StoreError("create facility indexes", err)
	}
	_, err = m.db.Collection(Rentals).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
	})
	if err != nil {
		return models.StoreError("create rental indexes", err)
	}
	return nil
}

type mongoCollection struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func (c *mongoCollection) Find(ctx context.Context, filter query.Predicate, opts FindOptions) ([]bson.Raw, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	findOptions := options.Find().SetSort(sortDoc(opts.Sort))
	if opts.Skip > 0 {
		findOptions.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOptions.SetLimit(opts.Limit)
	}

	cursor, err := c.coll.Find(ctx, filter.BSON(), findOptions)
	if err != nil {
		return nil, models.StoreError("find "+c.coll.Name(), err)
	}
	return drain(ctx, cursor, c.coll.Name())
}

func (c *mongoCollection) FindOne(ctx context.Context, filter query.Predicate) (bson.Raw, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.coll.FindOne(ctx, filter.BSON()).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, models.StoreError("find one "+c.coll.Name(), err)
	}
	return raw, nil
}

func (c *mongoCollection) Count(ctx context.Context, filter query.Predicate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	n, err := c.coll.CountDocuments(ctx, filter.BSON())
	if err != nil {
		return 0, models.StoreError("count "+c.coll.Name(), err)
	}
	return n, nil
}

func (c *mongoCollection) Near(ctx context.Context, p query.Proximity, limit int64) ([]bson.Raw, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		p.GeoNearStage(),
		{{Key: "$limit", Value: limit}},
	}
	cursor, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, models.StoreError("geoNear "+c.coll.Name(), err)
	}
	return drain(ctx, cursor, c.coll.Name())
}

func (c *mongoCollection) Distinct(ctx context.Context, field string, filter query.Predicate) ([]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	values, err := c.coll.Distinct(ctx, field, filter.BSON())
	if err != nil {
		return nil, models.StoreError("distinct "+field, err)
	}
	return values, nil
}

func (c *mongoCollection) GroupCount(ctx context.Context, field string, filter query.Predicate) ([]Bucket, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter.BSON()}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cursor, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, models.StoreError("group "+field, err)
	}
	defer cursor.Close(ctx)

	var buckets []Bucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, models.StoreError("decode group "+field, err)
	}
	return buckets, nil
}

func (c *mongoCollection) Summarize(ctx context.Context, field string, filter query.Predicate) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ref := "$" + field
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter.BSON()}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"count": bson.M{"$sum": 1},
			"avg":   bson.M{"$avg": ref},
			"min":   bson.M{"$min": ref},
			"max":   bson.M{"$max": ref},
		}}},
	}
	cursor, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return Summary{}, models.StoreError("summarize "+field, err)
	}
	defer cursor.Close(ctx)

	var summaries []Summary
	if err := cursor.All(ctx, &summaries); err != nil {
		return Summary{}, models.StoreError("decode summary "+field, err)
	}
	if len(summaries) == 0 {
		return Summary{}, nil
	}
	return summaries[0], nil
}

func (c *mongoCollection) Increment(ctx context.Context, filter query.Predicate, field string, delta int) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.coll.UpdateOne(ctx, filter.BSON(), bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return models.StoreError("increment "+field, err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func drain(ctx context.Context, cursor *mongo.Cursor, name string) ([]bson.Raw, error) {
	defer cursor.Close(ctx)

	var docs []bson.Raw
	for cursor.Next(ctx) {
		docs = append(docs, append(bson.Raw(nil), cursor.Current...))
	}
	if err := cursor.Err(); err != nil {
		return nil, models.StoreError("cursor "+name, err)
	}
	return docs, nil
}

func sortDoc(s query.Sort) bson.D {
	doc := make(bson.D, 0, len(s))
	for _, f := range s {
		dir := 1
		if f.Desc {
			dir = -1
		}
		doc = append(doc, bson.E{Key: f.Field, Value: dir})
	}
	return doc
}
