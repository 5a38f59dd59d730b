// Package dataloader provides batch loading utilities over relgen queries.
//
// The batch functions it builds fit any DataLoader implementation taking a
// func(ctx, keys) ([]V, []error), such as github.com/graph-gophers/dataloader
// or github.com/vikstrous/dataloadgen.
//
// # Basic Usage
//
// Load customers by primary key, one query per batch:
//
//	batch := dataloader.ByPrimaryKey[int](func() *query.Query {
//	    return client.Query("customers")
//	})
//	customers, errs := batch(ctx, []int{3, 1, 2})
//
// Load the order lines of several customers:
//
//	batch := dataloader.ByColumn[int](func() *query.Query {
//	    return client.Query("order_lines")
//	}, "customer_id")
//	lines, errs := batch(ctx, customerIDs)
//
// Results are always aligned with the requested keys. Keys are matched by
// their formatted value, so an int key matches an int64 column value.
package dataloader

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/query"
)

// ErrNotFound is returned when an entity is not found in a batch result.
var ErrNotFound = errors.New("dataloader: entity not found")

// KeyFunc extracts a key from a value.
type KeyFunc[K comparable, V any] func(V) K

// BatchFunc loads a batch of values by their keys.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) ([]V, []error)

// OrderByKeys reorders values to match the order of the requested keys.
// Missing values are zero values with ErrNotFound at the same position.
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	lookup := make(map[K]V, len(values))
	for _, v := range values {
		lookup[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		if v, ok := lookup[key]; ok {
			result[i] = v
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// GroupByKey groups values by key, keeping their relative order.
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	result := make(map[K][]V)
	for _, v := range values {
		key := keyFn(v)
		result[key] = append(result[key], v)
	}
	return result
}

// OrderGroupsByKeys returns the group of each requested key, in key order.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		result[i] = groups[key]
	}
	return result
}

// ColumnKey returns a KeyFunc reading the formatted value of column.
func ColumnKey(column string) KeyFunc[string, relgen.Entity] {
	return func(e relgen.Entity) string {
		v, ok := e.Value(column)
		if !ok {
			return ""
		}
		return keyString(v)
	}
}

// ByPrimaryKey returns a BatchFunc loading entities of a table with a
// single column primary key. newQuery returns a fresh query per batch.
func ByPrimaryKey[K comparable](newQuery func() *query.Query) BatchFunc[K, relgen.Entity] {
	return func(ctx context.Context, keys []K) ([]relgen.Entity, []error) {
		q := newQuery()
		if err := q.Err(); err != nil {
			return nil, fill(len(keys), err)
		}
		pk := q.Type().PK
		if len(pk.Columns) != 1 {
			return nil, fill(len(keys), relgen.NewUsageError("ByPrimaryKey", "table %q needs a single column primary key", q.Type().Table.Name))
		}
		coll, err := q.FindPks(ctx, keys)
		if err != nil {
			return nil, fill(len(keys), err)
		}
		return OrderByKeys(stringKeys(keys), []relgen.Entity(coll), ColumnKey(pk.Columns[0].Name))
	}
}

// ByColumn returns a BatchFunc loading, for every key, the entities whose
// column holds that key. Keys without rows get an empty collection.
func ByColumn[K comparable](newQuery func() *query.Query, column string) BatchFunc[K, relgen.Collection] {
	return func(ctx context.Context, keys []K) ([]relgen.Collection, []error) {
		if len(keys) == 0 {
			return nil, nil
		}
		coll, err := newQuery().FilterBy(column, keys).Find(ctx)
		if err != nil {
			return nil, fill(len(keys), err)
		}
		groups := GroupByKey([]relgen.Entity(coll), ColumnKey(column))
		ordered := OrderGroupsByKeys(stringKeys(keys), groups)
		result := make([]relgen.Collection, len(ordered))
		for i, g := range ordered {
			result[i] = relgen.Collection(g)
		}
		return result, make([]error, len(keys))
	}
}

type ctxKey struct{}

// WithLoaders returns a context carrying loaders, typically set once per
// request by a middleware.
func WithLoaders[T any](ctx context.Context, loaders T) context.Context {
	return context.WithValue(ctx, ctxKey{}, loaders)
}

// For returns the loaders of ctx, or the zero value of T.
func For[T any](ctx context.Context) T {
	v, _ := ctx.Value(ctxKey{}).(T)
	return v
}

func keyString(v any) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(v)
}

func stringKeys[K comparable](keys []K) []string {
	s := make([]string, len(keys))
	for i, k := range keys {
		s[i] = keyString(k)
	}
	return s
}

func fill(n int, err error) []error {
	errs := make([]error, n)
	for i := range errs {
		errs[i] = err
	}
	return errs
}
