package pareto_test

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/okian/minestats/internal/domain/model"
	"github.com/okian/minestats/internal/domain/pareto"
	"github.com/okian/minestats/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func row(alg, dims string, success, tpc, clicks, guesses, completion float64) model.SummaryRow {
	return model.SummaryRow{
		ComboKey:          model.ComboKey{Algorithm: alg, Objective: "MinDistance", Dims: dims},
		Runs:              10,
		SuccessRatio:      success,
		SuccessPct:        100 * success,
		AvgClicks:         clicks,
		AvgGuesses:        guesses,
		AvgCompletion:     completion,
		AvgTimePerClickMs: types.Some(tpc),
	}
}

func algorithms(front []model.ParetoRow) []string {
	out := make([]string, len(front))
	for i, r := range front {
		out[i] = r.Algorithm
	}
	return out
}

func TestFrontExample(t *testing.T) {
	Convey("Given three combos on one board size", t, func() {
		summary := []model.SummaryRow{
			row("A", "3x3x3", 0.9, 50, 10, 5, 95),
			row("B", "3x3x3", 0.95, 80, 12, 6, 97),
			row("C", "3x3x3", 0.7, 90, 15, 8, 80),
		}

		Convey("When computing the default front", func() {
			front, err := pareto.Front(summary, "3x3x3", pareto.DefaultConfig())

			Convey("Then the dominated combo should be excluded and the rest ordered by success", func() {
				So(err, ShouldBeNil)
				So(algorithms(front), ShouldResemble, []string{"B", "A"})
				for _, r := range front {
					So(r.Pareto, ShouldBeTrue)
				}
			})
		})

		Convey("When asking for an absent board size", func() {
			front, err := pareto.Front(summary, "9x9x9", pareto.DefaultConfig())

			Convey("Then the front should be empty without error", func() {
				So(err, ShouldBeNil)
				So(front, ShouldBeEmpty)
			})
		})

		Convey("When only success is tracked", func() {
			cfg := pareto.Config{Objectives: []pareto.Objective{{Metric: model.MetricSuccessRatio, Direction: pareto.Maximize}}}
			front, err := pareto.Front(summary, "3x3x3", cfg)

			Convey("Then only the most successful combo should remain", func() {
				So(err, ShouldBeNil)
				So(algorithms(front), ShouldResemble, []string{"B"})
			})
		})
	})
}

func TestFrontMissingValues(t *testing.T) {
	Convey("Given a row with a null minimize metric", t, func() {
		nullRow := row("N", "d", 0.9, 0, 10, 5, 95)
		nullRow.AvgTimePerClickMs = types.Null()
		peer := row("P", "d", 0.9, 60, 10, 5, 95)

		Convey("When it is otherwise identical to a peer", func() {
			front, err := pareto.Front([]model.SummaryRow{nullRow, peer}, "d", pareto.DefaultConfig())

			Convey("Then the null should count as worst and the row be dominated", func() {
				So(err, ShouldBeNil)
				So(algorithms(front), ShouldResemble, []string{"P"})
			})
		})

		Convey("When it is better elsewhere", func() {
			nullRow.SuccessRatio = 1
			front, err := pareto.Front([]model.SummaryRow{peer, nullRow}, "d", pareto.DefaultConfig())

			Convey("Then it should stay on the front with its null preserved", func() {
				So(err, ShouldBeNil)
				So(algorithms(front), ShouldResemble, []string{"N", "P"})
				So(front[0].AvgTimePerClickMs.Valid, ShouldBeFalse)
			})
		})
	})

	Convey("Given front rows tied on success with one null time per click", t, func() {
		a := row("a", "d", 0.9, 10, 10, 5, 95)
		b := row("b", "d", 0.9, 0, 8, 5, 95)
		b.AvgTimePerClickMs = types.Null()
		summary := []model.SummaryRow{a, b}

		Convey("When time per click is maximized", func() {
			cfg := pareto.Config{Objectives: []pareto.Objective{
				{Metric: model.MetricSuccessRatio, Direction: pareto.Maximize},
				{Metric: model.MetricAvgTimePerClickMs, Direction: pareto.Maximize},
				{Metric: model.MetricAvgClicks, Direction: pareto.Minimize},
			}}
			front, err := pareto.Front(summary, "d", cfg)

			Convey("Then the null should sort as negative infinity, ahead of the value", func() {
				So(err, ShouldBeNil)
				So(algorithms(front), ShouldResemble, []string{"b", "a"})
				So(front[0].AvgTimePerClickMs.Valid, ShouldBeFalse)
			})
		})

		Convey("When time per click is minimized", func() {
			cfg := pareto.Config{Objectives: []pareto.Objective{
				{Metric: model.MetricSuccessRatio, Direction: pareto.Maximize},
				{Metric: model.MetricAvgTimePerClickMs, Direction: pareto.Minimize},
				{Metric: model.MetricAvgClicks, Direction: pareto.Minimize},
			}}
			front, err := pareto.Front(summary, "d", cfg)

			Convey("Then the null should sort as positive infinity, after the value", func() {
				So(err, ShouldBeNil)
				So(algorithms(front), ShouldResemble, []string{"a", "b"})
			})
		})
	})

	Convey("Given the missing-value policy", t, func() {
		Convey("Then it should be pessimistic", func() {
			So(pareto.MissingValues, ShouldEqual, pareto.Pessimistic)
		})
	})
}

func TestFrontProperties(t *testing.T) {
	Convey("Given random summaries over several board sizes", t, func() {
		rng := rand.New(rand.NewPCG(7, 11))
		var summary []model.SummaryRow
		for _, dims := range []string{"4x4x4", "3x3x3", "2x2x2"} {
			for i := 0; i < 25; i++ {
				r := row(fmt.Sprintf("alg%d", i), dims,
					float64(rng.IntN(5))/4, float64(rng.IntN(6)*10), float64(rng.IntN(4)+5),
					float64(rng.IntN(3)), float64(rng.IntN(3)*25+50))
				if rng.IntN(8) == 0 {
					r.AvgTimePerClickMs = types.Null()
				}
				summary = append(summary, r)
			}
		}
		cfg := pareto.DefaultConfig()

		Convey("Then each front should be sound and complete", func() {
			for _, dims := range pareto.DimsOf(summary) {
				front, err := pareto.Front(summary, dims, cfg)
				So(err, ShouldBeNil)

				onFront := map[string]int{}
				for _, p := range front {
					onFront[p.Algorithm]++
				}
				for _, q := range summary {
					if q.Dims != dims {
						continue
					}
					qv, _ := cfg.Vector(q)
					dominated := false
					for _, o := range summary {
						if o.Dims != dims || o.Algorithm == q.Algorithm {
							continue
						}
						ov, _ := cfg.Vector(o)
						if pareto.Dominates(ov, qv) {
							dominated = true
						}
					}
					if dominated {
						So(onFront[q.Algorithm], ShouldEqual, 0)
					} else {
						So(onFront[q.Algorithm], ShouldEqual, 1)
					}
				}
			}
		})

		Convey("Then combined fronts should follow ascending dims", func() {
			all, err := pareto.Fronts(summary, cfg)
			So(err, ShouldBeNil)
			So(all, ShouldNotBeEmpty)
			for i := 1; i < len(all); i++ {
				So(all[i-1].Dims <= all[i].Dims, ShouldBeTrue)
				if all[i-1].Dims == all[i].Dims {
					So(all[i-1].SuccessRatio >= all[i].SuccessRatio, ShouldBeTrue)
				}
			}
		})

		Convey("Then recomputing should give the same fronts", func() {
			a, _ := pareto.Fronts(summary, cfg)
			b, _ := pareto.Fronts(summary, cfg)
			So(a, ShouldResemble, b)
		})
	})

	Convey("Given an empty summary", t, func() {
		all, err := pareto.Fronts(nil, pareto.DefaultConfig())

		Convey("Then the combined front should be empty", func() {
			So(err, ShouldBeNil)
			So(all, ShouldBeEmpty)
		})
	})
}

func TestDominates(t *testing.T) {
	Convey("Given oriented vectors", t, func() {
		So(pareto.Dominates([]float64{1, 2}, []float64{1, 1}), ShouldBeTrue)
		So(pareto.Dominates([]float64{1, 1}, []float64{1, 1}), ShouldBeFalse)
		So(pareto.Dominates([]float64{2, 0}, []float64{1, 1}), ShouldBeFalse)
	})
}

func TestConfig(t *testing.T) {
	Convey("Given metric configurations", t, func() {
		Convey("When a metric is unknown", func() {
			_, err := pareto.Front(nil, "d", pareto.Config{Objectives: []pareto.Objective{{Metric: "avg_score"}}})

			Convey("Then a config error should be returned before comparing", func() {
				So(errors.Is(err, pareto.ErrConfig), ShouldBeTrue)
				var ce *pareto.ConfigError
				So(errors.As(err, &ce), ShouldBeTrue)
				So(ce.Metric, ShouldEqual, "avg_score")
			})
		})

		Convey("When the config is empty", func() {
			So(errors.Is(pareto.Config{}.Validate(), pareto.ErrConfig), ShouldBeTrue)
		})

		Convey("When a metric repeats", func() {
			cfg := pareto.Config{Objectives: []pareto.Objective{
				{Metric: model.MetricAvgClicks, Direction: pareto.Minimize},
				{Metric: model.MetricAvgClicks, Direction: pareto.Maximize},
			}}
			So(errors.Is(cfg.Validate(), pareto.ErrConfig), ShouldBeTrue)
		})

		Convey("When parsing a partial mapping", func() {
			cfg, err := pareto.ParseConfig(map[string]string{
				"avg_clicks":    "max",
				"success_ratio": "Maximize",
			})

			Convey("Then unnamed metrics should keep their default direction", func() {
				So(err, ShouldBeNil)
				So(cfg.Objectives, ShouldResemble, []pareto.Objective{
					{Metric: model.MetricSuccessRatio, Direction: pareto.Maximize},
					{Metric: model.MetricAvgTimePerClickMs, Direction: pareto.Minimize},
					{Metric: model.MetricAvgClicks, Direction: pareto.Maximize},
					{Metric: model.MetricAvgGuesses, Direction: pareto.Minimize},
					{Metric: model.MetricAvgCompletion, Direction: pareto.Maximize},
				})
				So(cfg.Directions()["avg_clicks"], ShouldEqual, "maximize")
			})
		})

		Convey("When parsing an empty mapping", func() {
			cfg, err := pareto.ParseConfig(nil)
			So(err, ShouldBeNil)
			So(cfg, ShouldResemble, pareto.DefaultConfig())
		})

		Convey("When a mapping names an unknown metric", func() {
			_, err := pareto.ParseConfig(map[string]string{"avg_score": "max"})
			So(errors.Is(err, pareto.ErrConfig), ShouldBeTrue)
		})

		Convey("When parsing a command-line spec", func() {
			cfg, err := pareto.ParseSpec("success_ratio=max, avg_guesses=max")
			So(err, ShouldBeNil)
			So(cfg.Objectives, ShouldHaveLength, 5)
			So(cfg.Directions()["avg_guesses"], ShouldEqual, "maximize")

			_, err = pareto.ParseSpec("success_ratio")
			So(errors.Is(err, pareto.ErrConfig), ShouldBeTrue)

			_, err = pareto.ParseSpec("avg_clicks=sideways")
			So(errors.Is(err, pareto.ErrConfig), ShouldBeTrue)
		})
	})
}
