// Package ingest validates raw run datasets and derives per-run metrics.
package ingest

import (
	"github.com/okian/minestats/internal/domain/model"
	"github.com/okian/minestats/internal/domain/types"
)

// CheckSchema fails with a *SchemaError naming every required column the
// frame lacks.
func CheckSchema(frame types.Frame) error {
	var missing []string
	for _, c := range model.RequiredColumns {
		if !frame.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// Clean coerces every row of frame into a RunRecord. Rows with any required
// field null after coercion are dropped; the frame is left untouched.
func Clean(frame types.Frame) ([]model.RunRecord, model.IngestReport, error) {
	report := model.IngestReport{Total: frame.Len()}
	if err := CheckSchema(frame); err != nil {
		return nil, report, err
	}

	idx := make(map[string]int, len(model.RequiredColumns))
	for _, c := range model.RequiredColumns {
		idx[c] = frame.Index(c)
	}

	runs := make([]model.RunRecord, 0, frame.Len())
	for r := 0; r < frame.Len(); r++ {
		cell := func(col string) any { return frame.Cell(r, idx[col]) }

		rec, badCol := cleanRow(cell)
		if badCol != "" {
			if report.DroppedBy == nil {
				report.DroppedBy = make(map[string]int)
			}
			report.DroppedBy[badCol]++
			report.Dropped++
			continue
		}
		runs = append(runs, rec)
	}
	report.Retained = len(runs)
	return runs, report, nil
}

// cleanRow returns the record, or the first required column that is null.
func cleanRow(cell func(string) any) (model.RunRecord, string) {
	var key model.ComboKey
	var ok bool
	if key.Algorithm, ok = coerceText(cell(model.ColAlgorithm)); !ok {
		return model.RunRecord{}, model.ColAlgorithm
	}
	if key.Objective, ok = coerceText(cell(model.ColObjective)); !ok {
		return model.RunRecord{}, model.ColObjective
	}
	if key.Dims, ok = coerceText(cell(model.ColDims)); !ok {
		return model.RunRecord{}, model.ColDims
	}
	seed, ok := coerceSeed(cell(model.ColSeed))
	if !ok {
		return model.RunRecord{}, model.ColSeed
	}
	win, ok := coerceWin(cell(model.ColWin))
	if !ok {
		return model.RunRecord{}, model.ColWin
	}

	var nums [4]float64
	for i, col := range []string{model.ColClicks, model.ColTimeMs, model.ColGuesses, model.ColCompletion} {
		if nums[i], ok = coerceNumber(cell(col)); !ok {
			return model.RunRecord{}, col
		}
	}
	return model.NewRunRecord(key, seed, win, nums[0], nums[1], nums[2], nums[3]), ""
}
