// Package export writes result tables as CSV files or an Excel workbook.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/okian/minestats/internal/domain/types"
	"github.com/xuri/excelize/v2"
)

// WriteCSV writes t with a header row.
func WriteCSV(w io.Writer, t types.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header of %s: %w", t.Name, err)
	}
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("write rows of %s: %w", t.Name, err)
	}
	return nil
}

// WriteDir writes each table to <dir>/<name>.csv, creating dir if needed.
func WriteDir(dir string, tables []types.Table) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		path := filepath.Join(dir, t.Name+".csv")
		if err := writeFile(path, t); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, t types.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// maxSheetName is Excel's worksheet name limit.
const maxSheetName = 31

// WriteWorkbook writes one worksheet per table to an XLSX file. Numbers and
// booleans are stored as typed cells; nulls are left empty.
func WriteWorkbook(path string, tables []types.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := f.GetSheetName(0)
	for i, t := range tables {
		name := t.Name
		if len(name) > maxSheetName {
			name = name[:maxSheetName]
		}
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
		if err := f.SetSheetRow(name, "A1", &t.Columns); err != nil {
			return fmt.Errorf("write header of %s: %w", name, err)
		}
		for r, row := range t.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			values := make([]any, len(row))
			for c, v := range row {
				values[c] = sheetValue(v)
			}
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return fmt.Errorf("write row %d of %s: %w", r+1, name, err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func sheetValue(v any) any {
	switch x := v.(type) {
	case types.Float:
		if !x.Valid {
			return nil
		}
		return x.Value
	case *types.Float:
		if x == nil || !x.Valid {
			return nil
		}
		return x.Value
	}
	return v
}
