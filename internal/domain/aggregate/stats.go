// Package aggregate computes the grouped statistical views over cleaned runs.
// Every view reads only the run slice and returns a fresh, stably sorted
// result, so views may be evaluated concurrently.
package aggregate

import (
	"math"

	"github.com/okian/minestats/internal/domain/types"
)

// mean of a non-empty sample.
func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// meanOf averages f over items.
func meanOf[T any](items []T, f func(T) float64) float64 {
	vals := make([]float64, len(items))
	for i, it := range items {
		vals[i] = f(it)
	}
	return mean(vals)
}

// nullableMeanOf averages the non-null values of f over items; null when
// every value is null.
func nullableMeanOf[T any](items []T, f func(T) types.Float) types.Float {
	var sum float64
	var n int
	for _, it := range items {
		if v := f(it); v.Valid {
			sum += v.Value
			n++
		}
	}
	if n == 0 {
		return types.Null()
	}
	return types.Some(sum / float64(n))
}

// sampleStd is the n-1 standard deviation; 0 for fewer than two values.
func sampleStd(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var ss float64
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

// minMax of a non-empty sample.
func minMax(vals []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// spread is max-min over the non-null values of f; null when all are null.
func spread[T any](items []T, f func(T) types.Float) types.Float {
	var vals []float64
	for _, it := range items {
		if v := f(it); v.Valid {
			vals = append(vals, v.Value)
		}
	}
	if len(vals) == 0 {
		return types.Null()
	}
	lo, hi := minMax(vals)
	return types.Some(hi - lo)
}

// group is one bucket of a grouped reduction, in first-seen order.
type group[K comparable, T any] struct {
	key   K
	items []T
}

func groupBy[K comparable, T any](items []T, keyOf func(T) K) []group[K, T] {
	pos := make(map[K]int)
	var out []group[K, T]
	for _, it := range items {
		k := keyOf(it)
		i, ok := pos[k]
		if !ok {
			i = len(out)
			pos[k] = i
			out = append(out, group[K, T]{key: k})
		}
		out[i].items = append(out[i].items, it)
	}
	return out
}
