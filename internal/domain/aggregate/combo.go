package aggregate

import (
	"slices"

	"github.com/okian/minestats/internal/domain/model"
	"github.com/okian/minestats/internal/domain/types"
)

func comboKey(r model.RunRecord) model.ComboKey { return r.Key() }

func winOf(r model.RunRecord) float64               { return r.WinValue() }
func clicksOf(r model.RunRecord) float64            { return r.Clicks }
func timeOf(r model.RunRecord) float64              { return r.TimeMs }
func guessesOf(r model.RunRecord) float64           { return r.Guesses }
func completionOf(r model.RunRecord) float64        { return r.Completion }
func timePerClickOf(r model.RunRecord) types.Float  { return r.TimePerClickMs }
func complPerClickOf(r model.RunRecord) types.Float { return r.CompletionPerClick }
func guessRateOf(r model.RunRecord) types.Float     { return r.GuessRate }

// sortByCombo stable-sorts rows by dims, algorithm, objective.
func sortByCombo[T any](rows []T, key func(T) model.ComboKey) {
	slices.SortStableFunc(rows, func(a, b T) int {
		ka, kb := key(a), key(b)
		switch {
		case ka.Less(kb):
			return -1
		case kb.Less(ka):
			return 1
		}
		return 0
	})
}

// Summary aggregates every run per combo.
func Summary(runs []model.RunRecord) []model.SummaryRow {
	groups := groupBy(runs, comboKey)
	out := make([]model.SummaryRow, 0, len(groups))
	for _, g := range groups {
		success := meanOf(g.items, winOf)
		out = append(out, model.SummaryRow{
			ComboKey:              g.key,
			Runs:                  len(g.items),
			SuccessRatio:          success,
			SuccessPct:            100 * success,
			AvgClicks:             meanOf(g.items, clicksOf),
			AvgTimeMs:             meanOf(g.items, timeOf),
			AvgGuesses:            meanOf(g.items, guessesOf),
			AvgCompletion:         meanOf(g.items, completionOf),
			AvgTimePerClickMs:     nullableMeanOf(g.items, timePerClickOf),
			AvgCompletionPerClick: nullableMeanOf(g.items, complPerClickOf),
			AvgGuessRate:          nullableMeanOf(g.items, guessRateOf),
		})
	}
	sortByCombo(out, func(r model.SummaryRow) model.ComboKey { return r.ComboKey })
	return out
}

// EfficiencyOnWins aggregates the winning runs per combo. Combos without a
// win produce no row.
func EfficiencyOnWins(runs []model.RunRecord) []model.EfficiencyRow {
	wins := filter(runs, func(r model.RunRecord) bool { return r.Win })
	groups := groupBy(wins, comboKey)
	out := make([]model.EfficiencyRow, 0, len(groups))
	for _, g := range groups {
		out = append(out, model.EfficiencyRow{
			ComboKey:            g.key,
			Wins:                len(g.items),
			ClicksToWin:         meanOf(g.items, clicksOf),
			TimeToWinMs:         meanOf(g.items, timeOf),
			GuessesToWin:        meanOf(g.items, guessesOf),
			TimePerClickOnWinMs: nullableMeanOf(g.items, timePerClickOf),
			CompletionOnWin:     meanOf(g.items, completionOf),
		})
	}
	sortByCombo(out, func(r model.EfficiencyRow) model.ComboKey { return r.ComboKey })
	return out
}

// LossQuality aggregates the losing runs per combo. Combos without a loss
// produce no row.
func LossQuality(runs []model.RunRecord) []model.LossRow {
	losses := filter(runs, func(r model.RunRecord) bool { return !r.Win })
	groups := groupBy(losses, comboKey)
	out := make([]model.LossRow, 0, len(groups))
	for _, g := range groups {
		out = append(out, model.LossRow{
			ComboKey:            g.key,
			Losses:              len(g.items),
			AvgCompletionOnLoss: meanOf(g.items, completionOf),
			AvgClicksOnLoss:     meanOf(g.items, clicksOf),
			AvgGuessesOnLoss:    meanOf(g.items, guessesOf),
			AvgGuessRateOnLoss:  nullableMeanOf(g.items, guessRateOf),
			AvgTimeMsOnLoss:     meanOf(g.items, timeOf),
		})
	}
	sortByCombo(out, func(r model.LossRow) model.ComboKey { return r.ComboKey })
	return out
}

func filter[T any](items []T, keep func(T) bool) []T {
	var out []T
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
