package model

import "github.com/okian/minestats/internal/domain/types"

// Result table names.
const (
	TableRuns        = "runs_cleaned"
	TableSummary     = "summary"
	TableEfficiency  = "efficiency_on_wins"
	TableLoss        = "loss_quality"
	TableStability   = "seed_stability"
	TableSensitivity = "objective_sensitivity"
	TableDifficulty  = "board_difficulty"
	TablePareto      = "pareto_fronts"
)

// TableNames lists every result table in output order.
var TableNames = []string{
	TableRuns, TableSummary, TableEfficiency, TableLoss,
	TableStability, TableSensitivity, TableDifficulty, TablePareto,
}

// Summary metric names. The first five double as Pareto metrics.
const (
	MetricSuccessRatio          = "success_ratio"
	MetricAvgTimePerClickMs     = "avg_time_per_click_ms"
	MetricAvgClicks             = "avg_clicks"
	MetricAvgGuesses            = "avg_guesses"
	MetricAvgCompletion         = "avg_completion"
	MetricSuccessPct            = "success_pct"
	MetricAvgTimeMs             = "avg_time_ms"
	MetricAvgCompletionPerClick = "avg_completion_per_click"
	MetricAvgGuessRate          = "avg_guess_rate"
)

var comboColumns = []string{ColAlgorithm, ColObjective, ColDims}

func withCombo(cols ...string) []string {
	return append(append([]string(nil), comboColumns...), cols...)
}

func comboCells(k ComboKey, cells ...any) []any {
	return append([]any{k.Algorithm, k.Objective, k.Dims}, cells...)
}

// SummaryColumns is the header of the summary table.
var SummaryColumns = withCombo(
	"runs", MetricSuccessRatio, MetricSuccessPct,
	MetricAvgClicks, MetricAvgTimeMs, MetricAvgGuesses, MetricAvgCompletion,
	MetricAvgTimePerClickMs, MetricAvgCompletionPerClick, MetricAvgGuessRate,
)

// SummaryRow aggregates every run of one combo.
type SummaryRow struct {
	ComboKey
	Runs                  int
	SuccessRatio          float64
	SuccessPct            float64
	AvgClicks             float64
	AvgTimeMs             float64
	AvgGuesses            float64
	AvgCompletion         float64
	AvgTimePerClickMs     types.Float
	AvgCompletionPerClick types.Float
	AvgGuessRate          types.Float
}

// Metric returns the named numeric column. The second result is false for
// names the summary does not carry.
func (r SummaryRow) Metric(name string) (types.Float, bool) {
	switch name {
	case "runs":
		return types.Some(float64(r.Runs)), true
	case MetricSuccessRatio:
		return types.Some(r.SuccessRatio), true
	case MetricSuccessPct:
		return types.Some(r.SuccessPct), true
	case MetricAvgClicks:
		return types.Some(r.AvgClicks), true
	case MetricAvgTimeMs:
		return types.Some(r.AvgTimeMs), true
	case MetricAvgGuesses:
		return types.Some(r.AvgGuesses), true
	case MetricAvgCompletion:
		return types.Some(r.AvgCompletion), true
	case MetricAvgTimePerClickMs:
		return r.AvgTimePerClickMs, true
	case MetricAvgCompletionPerClick:
		return r.AvgCompletionPerClick, true
	case MetricAvgGuessRate:
		return r.AvgGuessRate, true
	}
	return types.Float{}, false
}

// Cells returns the row in SummaryColumns order.
func (r SummaryRow) Cells() []any {
	return comboCells(r.ComboKey,
		r.Runs, r.SuccessRatio, r.SuccessPct,
		r.AvgClicks, r.AvgTimeMs, r.AvgGuesses, r.AvgCompletion,
		r.AvgTimePerClickMs, r.AvgCompletionPerClick, r.AvgGuessRate,
	)
}

// EfficiencyColumns is the header of the efficiency_on_wins table.
var EfficiencyColumns = withCombo(
	"wins", "clicks_to_win", "time_to_win_ms", "guesses_to_win",
	"time_per_click_on_win_ms", "completion_on_win",
)

// EfficiencyRow aggregates the winning runs of one combo. CompletionOnWin is
// expected to sit near 100 but nothing enforces it.
type EfficiencyRow struct {
	ComboKey
	Wins                int
	ClicksToWin         float64
	TimeToWinMs         float64
	GuessesToWin        float64
	TimePerClickOnWinMs types.Float
	CompletionOnWin     float64
}

// Cells returns the row in EfficiencyColumns order.
func (r EfficiencyRow) Cells() []any {
	return comboCells(r.ComboKey,
		r.Wins, r.ClicksToWin, r.TimeToWinMs, r.GuessesToWin,
		r.TimePerClickOnWinMs, r.CompletionOnWin,
	)
}

// LossColumns is the header of the loss_quality table.
var LossColumns = withCombo(
	"losses", "avg_completion_on_loss", "avg_clicks_on_loss", "avg_guesses_on_loss",
	"avg_guess_rate_on_loss", "avg_time_ms_on_loss",
)

// LossRow aggregates the losing runs of one combo.
type LossRow struct {
	ComboKey
	Losses              int
	AvgCompletionOnLoss float64
	AvgClicksOnLoss     float64
	AvgGuessesOnLoss    float64
	AvgGuessRateOnLoss  types.Float
	AvgTimeMsOnLoss     float64
}

// Cells returns the row in LossColumns order.
func (r LossRow) Cells() []any {
	return comboCells(r.ComboKey,
		r.Losses, r.AvgCompletionOnLoss, r.AvgClicksOnLoss, r.AvgGuessesOnLoss,
		r.AvgGuessRateOnLoss, r.AvgTimeMsOnLoss,
	)
}

// StabilityColumns is the header of the seed_stability table.
var StabilityColumns = withCombo("seeds", "mean_win", "win_std", "win_min", "win_max")

// StabilityRow describes how a combo's win rate varies across seeds.
type StabilityRow struct {
	ComboKey
	Seeds   int
	MeanWin float64
	WinStd  float64
	WinMin  float64
	WinMax  float64
}

// Cells returns the row in StabilityColumns order.
func (r StabilityRow) Cells() []any {
	return comboCells(r.ComboKey, r.Seeds, r.MeanWin, r.WinStd, r.WinMin, r.WinMax)
}

// SensitivityColumns is the header of the objective_sensitivity table.
var SensitivityColumns = []string{
	ColAlgorithm, ColDims,
	"success_range", "time_per_click_range", "completion_per_click_range", "guess_rate_range",
}

// SensitivityRow holds, for one algorithm and board size, the spread of the
// per-objective means.
type SensitivityRow struct {
	Algorithm               string
	Dims                    string
	SuccessRange            float64
	TimePerClickRange       types.Float
	CompletionPerClickRange types.Float
	GuessRateRange          types.Float
}

// Cells returns the row in SensitivityColumns order.
func (r SensitivityRow) Cells() []any {
	return []any{
		r.Algorithm, r.Dims,
		r.SuccessRange, r.TimePerClickRange, r.CompletionPerClickRange, r.GuessRateRange,
	}
}

// DifficultyColumns is the header of the board_difficulty table.
var DifficultyColumns = []string{
	ColDims, ColSeed,
	"avg_success", "avg_success_pct", "avg_completion", "avg_clicks", "avg_time_ms",
}

// DifficultyRow aggregates all combos played on one board.
type DifficultyRow struct {
	Dims          string
	Seed          int64
	AvgSuccess    float64
	AvgSuccessPct float64
	AvgCompletion float64
	AvgClicks     float64
	AvgTimeMs     float64
}

// Cells returns the row in DifficultyColumns order.
func (r DifficultyRow) Cells() []any {
	return []any{r.Dims, r.Seed, r.AvgSuccess, r.AvgSuccessPct, r.AvgCompletion, r.AvgClicks, r.AvgTimeMs}
}

// ParetoColumns is the header of the pareto_fronts table.
var ParetoColumns = append(append([]string(nil), SummaryColumns...), "pareto")

// ParetoRow is a summary row on its board size's non-dominated front.
type ParetoRow struct {
	SummaryRow
	Pareto bool
}

// Cells returns the row in ParetoColumns order.
func (r ParetoRow) Cells() []any {
	return append(r.SummaryRow.Cells(), r.Pareto)
}

// Row is anything renderable as a table row.
type Row interface {
	Cells() []any
}

// NewTable renders rows under the given header.
func NewTable[R Row](name string, columns []string, rows []R) types.Table {
	out := make([][]any, len(rows))
	for i, r := range rows {
		out[i] = r.Cells()
	}
	return types.Table{Name: name, Columns: columns, Rows: out}
}
