package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/dcode-github/capetown_discovery/backend/query"
	"github.com/dcode-github/capetown_discovery/backend/store"
	"golang.org/x/sync/errgroup"
)

// Count is one value of a grouped count.
type Count struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// Aggregator computes read-only summaries over one collection.
type Aggregator struct {
	coll store.Collection
}

func NewAggregator(coll store.Collection) *Aggregator {
	return &Aggregator{coll: coll}
}

// Distinct returns the sorted distinct non-empty string values of field.
func (a *Aggregator) Distinct(ctx context.Context, field string, filter query.Predicate) ([]string, error) {
	values, err := a.coll.Distinct(ctx, field, filter)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok || s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

// CountBy counts records per value of field, highest count first with ties
// in ascending value order. top <= 0 keeps every bucket. Missing and empty
// values are not counted.
func (a *Aggregator) CountBy(ctx context.Context, field string, filter query.Predicate, top int) ([]Count, error) {
	buckets, err := a.coll.GroupCount(ctx, field, filter)
	if err != nil {
		return nil, err
	}
	out := make([]Count, 0, len(buckets))
	for _, b := range buckets {
		if b.Value == nil {
			continue
		}
		v := fmt.Sprint(b.Value)
		if v == "" {
			continue
		}
		out = append(out, Count{Value: v, Count: b.Count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out, nil
}

// Summarize computes count, mean, min and max of a numeric field in one pass.
func (a *Aggregator) Summarize(ctx context.Context, field string, filter query.Predicate) (store.Summary, error) {
	return a.coll.Summarize(ctx, field, filter)
}

// Total counts matching records.
func (a *Aggregator) Total(ctx context.Context, filter query.Predicate) (int64, error) {
	return a.coll.Count(ctx, filter)
}

// Parallel runs independent aggregations concurrently. The first failure
// cancels the rest and is returned; there are no partial results.
func Parallel(ctx context.Context, tasks ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		g.Go(func() error { return task(gctx) })
	}
	return g.Wait()
}
