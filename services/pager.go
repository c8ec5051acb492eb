package services

import (
	"context"

	"github.com/dcode-github/capetown_discovery/backend/models"
	"github.com/dcode-github/capetown_discovery/backend/query"
	"github.com/dcode-github/capetown_discovery/backend/store"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

// Page is one window of an ordered result set. Total is counted
// independently of the page; under concurrent writes the two may disagree.
type Page[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Limit   int64 `json:"limit"`
	Offset  int64 `json:"offset"`
	HasMore bool  `json:"hasMore"`
}

func (p Page[T]) Pagination() *models.Pagination {
	return &models.Pagination{Total: p.Total, Limit: p.Limit, Offset: p.Offset, HasMore: p.HasMore}
}

func newPage[T any](items []T, total int64, page query.PageParams) Page[T] {
	return Page[T]{
		Items:   items,
		Total:   total,
		Limit:   page.Limit,
		Offset:  page.Offset,
		HasMore: page.Offset < total && page.Limit < total-page.Offset,
	}
}

// Paginate counts and fetches concurrently and joins both before returning.
func Paginate[T any](ctx context.Context, coll store.Collection, filter query.Predicate, sort query.Sort, page query.PageParams) (Page[T], error) {
	var (
		total int64
		raws  []bson.Raw
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = coll.Count(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		raws, err = coll.Find(gctx, filter, store.FindOptions{Sort: sort, Skip: page.Offset, Limit: page.Limit})
		return err
	})
	if err := g.Wait(); err != nil {
		return Page[T]{}, err
	}

	items, err := store.DecodeAll[T](raws)
	if err != nil {
		return Page[T]{}, models.StoreError("decode page", err)
	}
	return newPage(items, total, page), nil
}

// Locate runs a proximity query. Results are nearest-first; the total is
// the number of matches inside the radius.
func Locate[T any](ctx context.Context, coll store.Collection, p query.Proximity, page query.PageParams) (Page[T], error) {
	var (
		total int64
		raws  []bson.Raw
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = coll.Count(gctx, p.Within())
		return err
	})
	g.Go(func() error {
		var err error
		raws, err = coll.Near(gctx, p, page.Limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return Page[T]{}, err
	}

	items, err := store.DecodeAll[T](raws)
	if err != nil {
		return Page[T]{}, models.StoreError("decode proximity page", err)
	}
	return newPage(items, total, query.PageParams{Limit: page.Limit}), nil
}
