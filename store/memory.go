package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dcode-github/capetown_discovery/backend/models"
	"github.com/dcode-github/capetown_discovery/backend/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store that evaluates predicates with Match. It
// mirrors the Mongo store's ordering and aggregation semantics and backs
// local runs (STORE_DRIVER=memory) and tests.
type Memory struct {
	mu          sync.Mutex
	collections map[string]*memCollection
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memCollection)}
}

func (m *Memory) Collection(name string) Collection {
	return m.collection(name)
}

func (m *Memory) Ping(context.Context) error { return nil }

// Insert stores documents, assigning an ObjectID to any without _id.
func (m *Memory) Insert(name string, docs ...interface{}) error {
	c := m.collection(name)
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range docs {
		data, err := bson.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshal document: %w", err)
		}
		var doc bson.M
		if err := bson.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("unmarshal document: %w", err)
		}
		if _, ok := doc["_id"]; !ok {
			doc["_id"] = primitive.NewObjectID()
		}
		c.docs = append(c.docs, doc)
	}
	return nil
}

func (m *Memory) collection(name string) *memCollection {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.collections[name]
	if !ok {
		c = &memCollection{}
		m.collections[name] = c
	}
	return c
}

type memCollection struct {
	mu   sync.RWMutex
	docs []bson.M
}

func (c *memCollection) matching(filter query.Predicate) []bson.M {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]bson.M, 0, len(c.docs))
	for _, d := range c.docs {
		if filter.Match(d) {
			out = append(out, clone(d))
		}
	}
	return out
}

// clone copies the top level of a document. Increment only replaces
// top-level values, so the copy is safe to read without the lock.
func clone(d bson.M) bson.M {
	cp := make(bson.M, len(d)+1)
	for k, v := range d {
		cp[k] = v
	}
	return cp
}

func (c *memCollection) Find(ctx context.Context, filter query.Predicate, opts FindOptions) ([]bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.StoreError("find", err)
	}
	docs := c.matching(filter)
	sort.SliceStable(docs, func(i, j int) bool {
		for _, f := range opts.Sort {
			cmp := query.Compare(query.Lookup(docs[i], f.Field), query.Lookup(docs[j], f.Field))
			if cmp == 0 {
				continue
			}
			if f.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})

	if opts.Skip >= int64(len(docs)) {
		return []bson.Raw{}, nil
	}
	docs = docs[opts.Skip:]
	if opts.Limit > 0 && opts.Limit < int64(len(docs)) {
		docs = docs[:opts.Limit]
	}
	return toRaw(docs)
}

func (c *memCollection) FindOne(ctx context.Context, filter query.Predicate) (bson.Raw, error) {
	docs, err := c.Find(ctx, filter, FindOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, models.ErrNotFound
	}
	return docs[0], nil
}

func (c *memCollection) Count(ctx context.Context, filter query.Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, models.StoreError("count", err)
	}
	return int64(len(c.matching(filter))), nil
}

func (c *memCollection) Near(ctx context.Context, p query.Proximity, limit int64) ([]bson.Raw, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.StoreError("near", err)
	}
	type hit struct {
		doc      bson.M
		distance float64
	}
	var hits []hit
	for _, d := range c.matching(p.Within()) {
		dist, ok := p.DistanceTo(d)
		if !ok {
			continue
		}
		hits = append(hits, hit{doc: d, distance: dist})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return query.Compare(hits[i].doc["_id"], hits[j].doc["_id"]) < 0
	})
	if limit > 0 && limit < int64(len(hits)) {
		hits = hits[:limit]
	}

	docs := make([]bson.M, 0, len(hits))
	for _, h := range hits {
		h.doc["distance"] = h.distance
		docs = append(docs, h.doc)
	}
	return toRaw(docs)
}

func (c *memCollection) Distinct(ctx context.Context, field string, filter query.Predicate) ([]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.StoreError("distinct", err)
	}
	var values []interface{}
	add := func(v interface{}) {
		for _, seen := range values {
			if query.Compare(seen, v) == 0 {
				return
			}
		}
		values = append(values, v)
	}
	for _, d := range c.matching(filter) {
		switch v := query.Lookup(d, field).(type) {
		case nil:
		case bson.A:
			for _, e := range v {
				add(e)
			}
		default:
			add(v)
		}
	}
	return values, nil
}

func (c *memCollection) GroupCount(ctx context.Context, field string, filter query.Predicate) ([]Bucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.StoreError("group", err)
	}
	var buckets []Bucket
	for _, d := range c.matching(filter) {
		v := query.Lookup(d, field)
		found := false
		for i := range buckets {
			if query.Compare(buckets[i].Value, v) == 0 {
				buckets[i].Count++
				found = true
				break
			}
		}
		if !found {
			buckets = append(buckets, Bucket{Value: v, Count: 1})
		}
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return query.Compare(buckets[i].Value, buckets[j].Value) < 0
	})
	return buckets, nil
}

func (c *memCollection) Summarize(ctx context.Context, field string, filter query.Predicate) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, models.StoreError("summarize", err)
	}
	var s Summary
	var sum float64
	var numeric int
	for _, d := range c.matching(filter) {
		s.Count++
		f, ok := query.ToFloat(query.Lookup(d, field))
		if !ok {
			continue
		}
		if numeric == 0 || f < s.Min {
			s.Min = f
		}
		if numeric == 0 || f > s.Max {
			s.Max = f
		}
		sum += f
		numeric++
	}
	if numeric > 0 {
		s.Avg = sum / float64(numeric)
	}
	return s, nil
}

func (c *memCollection) Increment(ctx context.Context, filter query.Predicate, field string, delta int) error {
	if err := ctx.Err(); err != nil {
		return models.StoreError("increment", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range c.docs {
		if !filter.Match(d) {
			continue
		}
		switch cur := d[field].(type) {
		case float64:
			d[field] = cur + float64(delta)
		default:
			n, _ := query.ToFloat(cur)
			d[field] = int64(n) + int64(delta)
		}
		return nil
	}
	return models.ErrNotFound
}

func toRaw(docs []bson.M) ([]bson.Raw, error) {
	out := make([]bson.Raw, 0, len(docs))
	for _, d := range docs {
		data, err := bson.Marshal(d)
		if err != nil {
			return nil, models.StoreError("marshal", err)
		}
		out = append(out, data)
	}
	return out, nil
}
