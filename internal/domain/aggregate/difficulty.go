package aggregate

import (
	"cmp"
	"slices"

	"github.com/okian/minestats/internal/domain/model"
)

type dimsSeed struct {
	dims string
	seed int64
}

// BoardDifficulty aggregates every run on each (dims, seed) board across all
// combos. Rows are ordered by board first, then stable-sorted by dims,
// average success and average completion, so ties keep ascending seed order.
func BoardDifficulty(runs []model.RunRecord) []model.DifficultyRow {
	groups := groupBy(runs, func(r model.RunRecord) dimsSeed {
		return dimsSeed{dims: r.Dims, seed: r.Seed}
	})
	out := make([]model.DifficultyRow, 0, len(groups))
	for _, g := range groups {
		success := meanOf(g.items, winOf)
		out = append(out, model.DifficultyRow{
			Dims:          g.key.dims,
			Seed:          g.key.seed,
			AvgSuccess:    success,
			AvgSuccessPct: 100 * success,
			AvgCompletion: meanOf(g.items, completionOf),
			AvgClicks:     meanOf(g.items, clicksOf),
			AvgTimeMs:     meanOf(g.items, timeOf),
		})
	}
	slices.SortStableFunc(out, func(a, b model.DifficultyRow) int {
		if c := cmp.Compare(a.Dims, b.Dims); c != 0 {
			return c
		}
		return cmp.Compare(a.Seed, b.Seed)
	})
	slices.SortStableFunc(out, func(a, b model.DifficultyRow) int {
		if c := cmp.Compare(a.Dims, b.Dims); c != 0 {
			return c
		}
		if c := cmp.Compare(a.AvgSuccess, b.AvgSuccess); c != 0 {
			return c
		}
		return cmp.Compare(a.AvgCompletion, b.AvgCompletion)
	})
	return out
}
