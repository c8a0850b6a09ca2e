// Package model contains the run records and result rows passed between layers.
package model

import "github.com/okian/minestats/internal/domain/types"

// Input column names.
const (
	ColAlgorithm  = "algorithm"
	ColObjective  = "objective"
	ColDims       = "dims"
	ColSeed       = "seed"
	ColWin        = "win"
	ColClicks     = "clicks"
	ColTimeMs     = "time_ms"
	ColGuesses    = "guesses"
	ColCompletion = "completion"

	ColTimePerClickMs     = "time_per_click_ms"
	ColCompletionPerClick = "completion_per_click"
	ColGuessRate          = "guess_rate"
)

// RequiredColumns lists the input columns every dataset must carry, in
// canonical order.
var RequiredColumns = []string{
	ColAlgorithm, ColObjective, ColDims, ColSeed, ColWin,
	ColClicks, ColTimeMs, ColGuesses, ColCompletion,
}

// RunColumns is the header of the runs_cleaned table.
var RunColumns = append(append([]string(nil), RequiredColumns...),
	ColTimePerClickMs, ColCompletionPerClick, ColGuessRate)

// ComboKey identifies one algorithm/objective/board-size combination.
type ComboKey struct {
	Algorithm string `json:"algorithm"`
	Objective string `json:"objective"`
	Dims      string `json:"dims"`
}

// Less orders keys by dims, then algorithm, then objective.
func (k ComboKey) Less(o ComboKey) bool {
	if k.Dims != o.Dims {
		return k.Dims < o.Dims
	}
	if k.Algorithm != o.Algorithm {
		return k.Algorithm < o.Algorithm
	}
	return k.Objective < o.Objective
}

// RunRecord is one validated run. The derived ratios are null when Clicks is zero.
type RunRecord struct {
	Algorithm  string
	Objective  string
	Dims       string
	Seed       int64
	Win        bool
	Clicks     float64
	TimeMs     float64
	Guesses    float64
	Completion float64

	TimePerClickMs     types.Float
	CompletionPerClick types.Float
	GuessRate          types.Float
}

// NewRunRecord builds a record and computes its derived ratios.
func NewRunRecord(key ComboKey, seed int64, win bool, clicks, timeMs, guesses, completion float64) RunRecord {
	return RunRecord{
		Algorithm:          key.Algorithm,
		Objective:          key.Objective,
		Dims:               key.Dims,
		Seed:               seed,
		Win:                win,
		Clicks:             clicks,
		TimeMs:             timeMs,
		Guesses:            guesses,
		Completion:         completion,
		TimePerClickMs:     types.Div(timeMs, clicks),
		CompletionPerClick: types.Div(completion, clicks),
		GuessRate:          types.Div(guesses, clicks),
	}
}

// Key returns the record's combo.
func (r RunRecord) Key() ComboKey {
	return ComboKey{Algorithm: r.Algorithm, Objective: r.Objective, Dims: r.Dims}
}

// WinValue returns 1 for a win and 0 otherwise.
func (r RunRecord) WinValue() float64 {
	if r.Win {
		return 1
	}
	return 0
}

// Cells returns the record in RunColumns order.
func (r RunRecord) Cells() []any {
	return []any{
		r.Algorithm, r.Objective, r.Dims, r.Seed, r.Win,
		r.Clicks, r.TimeMs, r.Guesses, r.Completion,
		r.TimePerClickMs, r.CompletionPerClick, r.GuessRate,
	}
}

// RunsTable renders cleaned records as the runs_cleaned table.
func RunsTable(runs []RunRecord) types.Table {
	return NewTable(TableRuns, RunColumns, runs)
}

// IngestReport counts retained and dropped rows of one ingestion. DroppedBy
// attributes each dropped row to the first required column that was null.
type IngestReport struct {
	Total     int            `json:"total"`
	Retained  int            `json:"retained"`
	Dropped   int            `json:"dropped"`
	DroppedBy map[string]int `json:"dropped_by,omitempty"`
}
