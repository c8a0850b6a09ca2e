package aggregate_test

import (
	"math"
	"testing"

	"github.com/okian/minestats/internal/domain/aggregate"
	"github.com/okian/minestats/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func run(alg, obj, dims string, seed int64, win bool, clicks, timeMs, guesses, completion float64) model.RunRecord {
	return model.NewRunRecord(model.ComboKey{Algorithm: alg, Objective: obj, Dims: dims},
		seed, win, clicks, timeMs, guesses, completion)
}

func keys[T any](rows []T, key func(T) model.ComboKey) []model.ComboKey {
	out := make([]model.ComboKey, len(rows))
	for i, r := range rows {
		out[i] = key(r)
	}
	return out
}

func sampleRuns() []model.RunRecord {
	return []model.RunRecord{
		run("greedy", "MinRotation", "4x4x4", 1, true, 10, 200, 1, 100),
		run("greedy", "MinDistance", "3x3x3", 1, true, 10, 100, 2, 100),
		run("greedy", "MinDistance", "3x3x3", 2, false, 0, 50, 0, 20),
		run("exact_solver", "MinDistance", "3x3x3", 1, true, 20, 400, 4, 100),
		run("greedy", "MinDistance", "3x3x3", 2, true, 5, 100, 1, 100),
	}
}

func TestSummary(t *testing.T) {
	Convey("Given runs across several combos", t, func() {
		rows := aggregate.Summary(sampleRuns())

		Convey("Then rows should be ordered by dims, algorithm, objective", func() {
			So(keys(rows, func(r model.SummaryRow) model.ComboKey { return r.ComboKey }), ShouldResemble, []model.ComboKey{
				{Algorithm: "exact_solver", Objective: "MinDistance", Dims: "3x3x3"},
				{Algorithm: "greedy", Objective: "MinDistance", Dims: "3x3x3"},
				{Algorithm: "greedy", Objective: "MinRotation", Dims: "4x4x4"},
			})
		})

		Convey("Then means should cover every run of the combo", func() {
			g := rows[1]
			So(g.Runs, ShouldEqual, 3)
			So(g.SuccessRatio, ShouldAlmostEqual, 2.0/3.0)
			So(g.SuccessPct, ShouldAlmostEqual, 200.0/3.0)
			So(g.AvgClicks, ShouldAlmostEqual, 5.0)
			So(g.AvgTimeMs, ShouldAlmostEqual, 250.0/3.0)
			So(g.AvgCompletion, ShouldAlmostEqual, 220.0/3.0)
		})

		Convey("Then derived means should skip null ratios", func() {
			g := rows[1]
			So(g.AvgTimePerClickMs.Valid, ShouldBeTrue)
			So(g.AvgTimePerClickMs.Value, ShouldAlmostEqual, 15.0)
			So(g.AvgGuessRate.Value, ShouldAlmostEqual, 0.2)
		})
	})

	Convey("Given a combo whose every run has zero clicks", t, func() {
		rows := aggregate.Summary([]model.RunRecord{run("a", "o", "d", 1, false, 0, 5, 0, 0)})

		Convey("Then the derived means should be null", func() {
			So(rows[0].AvgTimePerClickMs.Valid, ShouldBeFalse)
			So(rows[0].AvgCompletionPerClick.Valid, ShouldBeFalse)
			So(rows[0].AvgGuessRate.Valid, ShouldBeFalse)
		})
	})

	Convey("Given no runs", t, func() {
		Convey("Then every view should be empty", func() {
			So(aggregate.Summary(nil), ShouldBeEmpty)
			So(aggregate.EfficiencyOnWins(nil), ShouldBeEmpty)
			So(aggregate.LossQuality(nil), ShouldBeEmpty)
			So(aggregate.SeedStability(nil), ShouldBeEmpty)
			So(aggregate.ObjectiveSensitivity(nil), ShouldBeEmpty)
			So(aggregate.BoardDifficulty(nil), ShouldBeEmpty)
		})
	})
}

func TestWinLossViews(t *testing.T) {
	Convey("Given runs where some combos never lose", t, func() {
		runs := sampleRuns()

		Convey("When computing loss quality", func() {
			rows := aggregate.LossQuality(runs)

			Convey("Then combos without losses should be absent", func() {
				So(rows, ShouldHaveLength, 1)
				So(rows[0].Algorithm, ShouldEqual, "greedy")
				So(rows[0].Losses, ShouldEqual, 1)
				So(rows[0].AvgCompletionOnLoss, ShouldEqual, 20.0)
				So(rows[0].AvgGuessRateOnLoss.Valid, ShouldBeFalse)
			})
		})

		Convey("When computing efficiency on wins", func() {
			rows := aggregate.EfficiencyOnWins(runs)

			Convey("Then only winning runs should be averaged", func() {
				So(rows, ShouldHaveLength, 3)
				g := rows[1]
				So(g.Wins, ShouldEqual, 2)
				So(g.ClicksToWin, ShouldEqual, 7.5)
				So(g.TimeToWinMs, ShouldEqual, 100.0)
				So(g.GuessesToWin, ShouldEqual, 1.5)
				So(g.TimePerClickOnWinMs.Value, ShouldEqual, 15.0)
				So(g.CompletionOnWin, ShouldEqual, 100.0)
			})
		})
	})

	Convey("Given a combo that never wins", t, func() {
		runs := []model.RunRecord{run("a", "o", "d", 1, false, 3, 3, 3, 3)}

		Convey("Then it should be absent from the efficiency view", func() {
			So(aggregate.EfficiencyOnWins(runs), ShouldBeEmpty)
		})
	})
}

func TestSeedStability(t *testing.T) {
	Convey("Given a combo played on a single seed", t, func() {
		runs := []model.RunRecord{
			run("a", "o", "d", 7, true, 1, 1, 1, 1),
			run("a", "o", "d", 7, false, 1, 1, 1, 1),
		}
		rows := aggregate.SeedStability(runs)

		Convey("Then the std should be zero", func() {
			So(rows, ShouldHaveLength, 1)
			So(rows[0].Seeds, ShouldEqual, 1)
			So(rows[0].WinStd, ShouldEqual, 0.0)
			So(rows[0].MeanWin, ShouldEqual, 0.5)
			So(rows[0].WinMin, ShouldEqual, 0.5)
			So(rows[0].WinMax, ShouldEqual, 0.5)
		})
	})

	Convey("Given seeds with unequal run counts", t, func() {
		runs := []model.RunRecord{
			run("a", "o", "d", 1, true, 1, 1, 1, 1),
			run("a", "o", "d", 2, false, 1, 1, 1, 1),
			run("a", "o", "d", 2, false, 1, 1, 1, 1),
			run("a", "o", "d", 2, false, 1, 1, 1, 1),
		}

		Convey("When reducing in two stages", func() {
			rates := aggregate.PerSeedWinRates(runs)
			rows := aggregate.ReduceSeedStability(rates)

			Convey("Then the mean should be over seeds, not runs", func() {
				So(rates, ShouldHaveLength, 2)
				So(rates[0].WinRate, ShouldEqual, 1.0)
				So(rates[1].WinRate, ShouldEqual, 0.0)
				So(rows[0].MeanWin, ShouldEqual, 0.5)
				So(rows[0].WinStd, ShouldAlmostEqual, math.Sqrt(0.5))
				So(rows[0].WinMin, ShouldEqual, 0.0)
				So(rows[0].WinMax, ShouldEqual, 1.0)
			})
		})
	})
}

func TestObjectiveSensitivity(t *testing.T) {
	Convey("Given one algorithm under two objectives", t, func() {
		runs := []model.RunRecord{
			run("greedy", "MinDistance", "3x3x3", 1, true, 10, 100, 1, 100),
			run("greedy", "MinDistance", "3x3x3", 2, true, 10, 100, 1, 100),
			run("greedy", "MinRotation", "3x3x3", 1, false, 0, 100, 0, 10),
			run("greedy", "MinRotation", "3x3x3", 2, true, 4, 100, 2, 100),
			run("exact_solver", "MinDistance", "2x2x2", 1, true, 0, 1, 0, 1),
		}

		Convey("When computing the per-objective means", func() {
			means := aggregate.PerObjectiveMeans(runs)

			Convey("Then there should be one entry per objective", func() {
				So(means, ShouldHaveLength, 3)
				So(means[1].Success, ShouldEqual, 0.5)
				So(means[1].TimePerClick.Value, ShouldEqual, 25.0)
			})
		})

		Convey("When reducing to ranges", func() {
			rows := aggregate.ObjectiveSensitivity(runs)

			Convey("Then rows should be ordered by dims then algorithm", func() {
				So(rows, ShouldHaveLength, 2)
				So(rows[0].Dims, ShouldEqual, "2x2x2")
				So(rows[1].Algorithm, ShouldEqual, "greedy")
			})

			Convey("Then ranges should be max minus min across objectives", func() {
				g := rows[1]
				So(g.SuccessRange, ShouldEqual, 0.5)
				So(g.TimePerClickRange.Value, ShouldEqual, 15.0)
				So(g.GuessRateRange.Value, ShouldAlmostEqual, 0.4)
			})

			Convey("Then a single objective should yield zero ranges and null stays null", func() {
				g := rows[0]
				So(g.SuccessRange, ShouldEqual, 0.0)
				So(g.TimePerClickRange.Valid, ShouldBeFalse)
			})
		})
	})
}

func TestBoardDifficulty(t *testing.T) {
	Convey("Given boards with tied success", t, func() {
		runs := []model.RunRecord{
			run("a", "o", "3x3x3", 9, true, 1, 10, 0, 100),
			run("b", "o", "3x3x3", 9, false, 1, 20, 0, 50),
			run("a", "o", "3x3x3", 4, false, 1, 10, 0, 75),
			run("b", "o", "3x3x3", 4, true, 1, 10, 0, 75),
			run("a", "o", "3x3x3", 2, false, 1, 10, 0, 10),
			run("a", "o", "2x2x2", 5, true, 1, 10, 0, 100),
		}
		rows := aggregate.BoardDifficulty(runs)

		Convey("Then rows should sort by dims, success, completion, then seed", func() {
			So(rows, ShouldHaveLength, 4)
			var seeds []int64
			for _, r := range rows {
				seeds = append(seeds, r.Seed)
			}
			So(seeds, ShouldResemble, []int64{5, 2, 4, 9})
		})

		Convey("Then averages should span all combos on the board", func() {
			r := rows[3]
			So(r.AvgSuccess, ShouldEqual, 0.5)
			So(r.AvgSuccessPct, ShouldEqual, 50.0)
			So(r.AvgCompletion, ShouldEqual, 75.0)
			So(r.AvgTimeMs, ShouldEqual, 15.0)
		})
	})
}
