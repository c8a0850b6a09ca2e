package aggregate

import "github.com/okian/minestats/internal/domain/model"

// SeedWinRate is the win rate of one combo on one seed.
type SeedWinRate struct {
	model.ComboKey
	Seed    int64
	WinRate float64
}

type comboSeed struct {
	combo model.ComboKey
	seed  int64
}

// PerSeedWinRates is the first reduction of seed_stability: mean win per
// (combo, seed).
func PerSeedWinRates(runs []model.RunRecord) []SeedWinRate {
	groups := groupBy(runs, func(r model.RunRecord) comboSeed {
		return comboSeed{combo: r.Key(), seed: r.Seed}
	})
	out := make([]SeedWinRate, len(groups))
	for i, g := range groups {
		out[i] = SeedWinRate{ComboKey: g.key.combo, Seed: g.key.seed, WinRate: meanOf(g.items, winOf)}
	}
	return out
}

// ReduceSeedStability is the second reduction: per combo, the spread of the
// per-seed win rates. A single seed has a std of 0.
func ReduceSeedStability(rates []SeedWinRate) []model.StabilityRow {
	groups := groupBy(rates, func(s SeedWinRate) model.ComboKey { return s.ComboKey })
	out := make([]model.StabilityRow, 0, len(groups))
	for _, g := range groups {
		vals := make([]float64, len(g.items))
		for i, s := range g.items {
			vals[i] = s.WinRate
		}
		lo, hi := minMax(vals)
		out = append(out, model.StabilityRow{
			ComboKey: g.key,
			Seeds:    len(vals),
			MeanWin:  mean(vals),
			WinStd:   sampleStd(vals),
			WinMin:   lo,
			WinMax:   hi,
		})
	}
	sortByCombo(out, func(r model.StabilityRow) model.ComboKey { return r.ComboKey })
	return out
}

// SeedStability runs both reductions.
func SeedStability(runs []model.RunRecord) []model.StabilityRow {
	return ReduceSeedStability(PerSeedWinRates(runs))
}
