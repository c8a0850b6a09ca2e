// Package pareto computes the per-board-size non-dominated fronts of the combo
// summary under a configurable set of maximize/minimize metrics.
package pareto

import (
	"cmp"
	"slices"

	"github.com/okian/minestats/internal/domain/model"
	"github.com/okian/minestats/internal/domain/types"
)

// Dominates reports whether a dominates b. Both vectors are already oriented
// so that higher is better on every metric.
func Dominates(a, b []float64) bool {
	strict := false
	for i := range a {
		if a[i] < b[i] {
			return false
		}
		if a[i] > b[i] {
			strict = true
		}
	}
	return strict
}

// Vector orients a summary row for comparison: nulls are replaced per
// MissingValues and minimize metrics are negated.
func (c Config) Vector(row model.SummaryRow) ([]float64, error) {
	vec := make([]float64, len(c.Objectives))
	for i, o := range c.Objectives {
		v, ok := row.Metric(o.Metric)
		if !ok {
			return nil, &ConfigError{Metric: o.Metric, Reason: "absent from summary"}
		}
		x := v.Or(MissingValues.worst(o.Direction))
		if o.Direction == Minimize {
			x = -x
		}
		vec[i] = x
	}
	return vec, nil
}

// Front returns the non-dominated summary rows for dims, sorted by success
// ratio descending then time per click, clicks and guesses ascending.
// An empty group yields an empty front.
func Front(summary []model.SummaryRow, dims string, cfg Config) ([]model.ParetoRow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var rows []model.SummaryRow
	var vecs [][]float64
	for _, r := range summary {
		if r.Dims != dims {
			continue
		}
		v, err := cfg.Vector(r)
		if err != nil {
			return nil, err
		}
		rows = append(rows, r)
		vecs = append(vecs, v)
	}

	front := make([]model.ParetoRow, 0, len(rows))
	for i := range rows {
		dominated := false
		for j := range rows {
			if i != j && Dominates(vecs[j], vecs[i]) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, model.ParetoRow{SummaryRow: rows[i], Pareto: true})
		}
	}
	sortFront(front, cfg)
	return front, nil
}

// Fronts computes the front of every dims in the summary, in ascending dims
// order, and concatenates them.
func Fronts(summary []model.SummaryRow, cfg Config) ([]model.ParetoRow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var out []model.ParetoRow
	for _, dims := range DimsOf(summary) {
		f, err := Front(summary, dims, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, f...)
	}
	return out, nil
}

// DimsOf lists the distinct board sizes of the summary in ascending order.
func DimsOf(summary []model.SummaryRow) []string {
	var dims []string
	for _, r := range summary {
		dims = append(dims, r.Dims)
	}
	slices.Sort(dims)
	return slices.Compact(dims)
}

// sortKey returns the value a row is ordered by on metric. A configured
// metric sorts on its MissingValues substitute, so a null lands where the
// comparison placed it. An untracked metric keeps its null.
func (c Config) sortKey(row model.SummaryRow, metric string) types.Float {
	v, _ := row.Metric(metric)
	if v.Valid {
		return v
	}
	for _, o := range c.Objectives {
		if o.Metric == metric {
			return types.Some(MissingValues.worst(o.Direction))
		}
	}
	return v
}

// compareNullLast orders ascending with nulls after every value.
func compareNullLast(a, b types.Float) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return 1
	case !b.Valid:
		return -1
	}
	return cmp.Compare(a.Value, b.Value)
}

// sortFront orders by success ratio descending then time per click, clicks
// and guesses ascending.
func sortFront(front []model.ParetoRow, cfg Config) {
	slices.SortStableFunc(front, func(a, b model.ParetoRow) int {
		sa, sb := cfg.sortKey(a.SummaryRow, model.MetricSuccessRatio), cfg.sortKey(b.SummaryRow, model.MetricSuccessRatio)
		if c := compareNullLast(sb, sa); c != 0 {
			return c
		}
		for _, m := range []string{model.MetricAvgTimePerClickMs, model.MetricAvgClicks, model.MetricAvgGuesses} {
			if c := compareNullLast(cfg.sortKey(a.SummaryRow, m), cfg.sortKey(b.SummaryRow, m)); c != 0 {
				return c
			}
		}
		return 0
	})
}
