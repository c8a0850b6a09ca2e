// Package source reads run results files into a raw types.Frame.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/minestats/internal/domain/types"
)

// Option configures file reading.
type Option func(*options)

type options struct {
	sheet string
}

// WithSheet selects the worksheet of an XLSX file. The first sheet is used
// when unset.
func WithSheet(name string) Option {
	return func(o *options) {
		o.sheet = name
	}
}

// naTokens are read as missing cells.
var naTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"null": {}, "NULL": {}, "None": {}, "<NA>": {}, "#N/A": {},
}

// cell maps a raw text cell to a frame cell.
func cell(s string) any {
	if _, ok := naTokens[s]; ok {
		return nil
	}
	return s
}

// ReadFile reads path as CSV or XLSX according to its extension.
func ReadFile(path string, opts ...Option) (types.Frame, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return types.Frame{}, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		frame, err := ReadCSV(f)
		if err != nil {
			return types.Frame{}, fmt.Errorf("read %s: %w", path, err)
		}
		return frame, nil
	case ".xlsx", ".xlsm":
		return ReadXLSX(path, o.sheet)
	}
	return types.Frame{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// frameFrom builds a frame from a header row and text records, padding short
// records with missing cells.
func frameFrom(records [][]string) (types.Frame, error) {
	if len(records) == 0 {
		return types.Frame{}, ErrNoHeader
	}
	header := append([]string(nil), records[0]...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	rows := make([][]any, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]any, len(header))
		for i := range row {
			if i < len(rec) {
				row[i] = cell(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return types.Frame{Columns: header, Rows: rows}, nil
}
