package source

import (
	"fmt"
	"slices"

	"github.com/okian/minestats/internal/domain/types"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads one worksheet of an Excel workbook; the first row is the
// header. An empty sheet name selects the first sheet.
func ReadXLSX(path, sheet string) (types.Frame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return types.Frame{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return types.Frame{}, fmt.Errorf("%w: %s has no sheets", ErrSheetNotFound, path)
		}
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return types.Frame{}, fmt.Errorf("%w: %s in %s", ErrSheetNotFound, sheet, path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return types.Frame{}, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return frameFrom(rows)
}
