package aggregate

import (
	"cmp"
	"slices"

	"github.com/okian/minestats/internal/domain/model"
	"github.com/okian/minestats/internal/domain/types"
)

// ObjectiveMeans holds the per-objective means of one algorithm on one board
// size.
type ObjectiveMeans struct {
	Algorithm          string
	Dims               string
	Objective          string
	Success            float64
	TimePerClick       types.Float
	CompletionPerClick types.Float
	GuessRate          types.Float
}

type algoDims struct {
	algorithm string
	dims      string
}

// PerObjectiveMeans is the first reduction of objective_sensitivity.
func PerObjectiveMeans(runs []model.RunRecord) []ObjectiveMeans {
	groups := groupBy(runs, comboKey)
	out := make([]ObjectiveMeans, len(groups))
	for i, g := range groups {
		out[i] = ObjectiveMeans{
			Algorithm:          g.key.Algorithm,
			Dims:               g.key.Dims,
			Objective:          g.key.Objective,
			Success:            meanOf(g.items, winOf),
			TimePerClick:       nullableMeanOf(g.items, timePerClickOf),
			CompletionPerClick: nullableMeanOf(g.items, complPerClickOf),
			GuessRate:          nullableMeanOf(g.items, guessRateOf),
		}
	}
	return out
}

// ReduceObjectiveSpread is the second reduction: per (algorithm, dims), the
// max-min range of each per-objective mean. Null means are skipped.
func ReduceObjectiveSpread(means []ObjectiveMeans) []model.SensitivityRow {
	groups := groupBy(means, func(m ObjectiveMeans) algoDims {
		return algoDims{algorithm: m.Algorithm, dims: m.Dims}
	})
	out := make([]model.SensitivityRow, 0, len(groups))
	for _, g := range groups {
		out = append(out, model.SensitivityRow{
			Algorithm:               g.key.algorithm,
			Dims:                    g.key.dims,
			SuccessRange:            spread(g.items, func(m ObjectiveMeans) types.Float { return types.Some(m.Success) }).Value,
			TimePerClickRange:       spread(g.items, func(m ObjectiveMeans) types.Float { return m.TimePerClick }),
			CompletionPerClickRange: spread(g.items, func(m ObjectiveMeans) types.Float { return m.CompletionPerClick }),
			GuessRateRange:          spread(g.items, func(m ObjectiveMeans) types.Float { return m.GuessRate }),
		})
	}
	slices.SortStableFunc(out, func(a, b model.SensitivityRow) int {
		if c := cmp.Compare(a.Dims, b.Dims); c != 0 {
			return c
		}
		return cmp.Compare(a.Algorithm, b.Algorithm)
	})
	return out
}

// ObjectiveSensitivity runs both reductions.
func ObjectiveSensitivity(runs []model.RunRecord) []model.SensitivityRow {
	return ReduceObjectiveSpread(PerObjectiveMeans(runs))
}
