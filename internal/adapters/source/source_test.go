package source_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/minestats/internal/adapters/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const sample = "algorithm,objective,dims,seed,win,clicks,time_ms,guesses,completion\n" +
	"greedy,MinDistance,3x3x3,1,True,10,200,1,100\n" +
	"greedy,MinDistance,3x3x3,2,NA,,150\n"

func TestReadCSV(t *testing.T) {
	frame, err := source.ReadCSV(strings.NewReader("\ufeff" + sample))
	require.NoError(t, err)

	assert.Equal(t, "algorithm", frame.Columns[0])
	assert.Len(t, frame.Columns, 9)
	require.Equal(t, 2, frame.Len())

	assert.Equal(t, "greedy", frame.Cell(0, 0))
	assert.Equal(t, "True", frame.Cell(0, frame.Index("win")))

	assert.Nil(t, frame.Cell(1, frame.Index("win")), "NA token is missing")
	assert.Nil(t, frame.Cell(1, frame.Index("clicks")), "empty cell is missing")
	assert.Equal(t, "150", frame.Cell(1, frame.Index("time_ms")))
	assert.Nil(t, frame.Cell(1, frame.Index("completion")), "short row is padded")
	assert.Len(t, frame.Rows[1], 9)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := source.ParseCSV(nil)
	assert.ErrorIs(t, err, source.ErrNoHeader)

	_, err = source.ParseCSV([]byte("a,b\n\"unterminated,1\n"))
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "runs.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sample), 0o600))
	frame, err := source.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 2, frame.Len())

	_, err = source.ReadFile(filepath.Join(dir, "runs.parquet"))
	assert.ErrorIs(t, err, source.ErrUnsupportedFormat)

	_, err = source.ReadFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.xlsx")

	f := excelize.NewFile()
	rows := [][]any{
		{"algorithm", "objective", "dims", "seed", "win", "clicks", "time_ms", "guesses", "completion"},
		{"greedy", "MinDistance", "3x3x3", 1, true, 10, 200, 1, 100},
		{"scip_solver", "MinRotation", "4x4x4", 2, false, 12},
	}
	for r, row := range rows {
		for c, v := range row {
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", name, v))
		}
	}
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	frame, err := source.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, frame.Len())
	assert.Equal(t, "greedy", frame.Cell(0, 0))
	assert.Equal(t, "10", frame.Cell(0, frame.Index("clicks")))
	assert.Equal(t, "12", frame.Cell(1, frame.Index("clicks")))
	assert.Nil(t, frame.Cell(1, frame.Index("completion")))

	other, err := source.ReadFile(path, source.WithSheet("Other"))
	assert.ErrorIs(t, err, source.ErrNoHeader)
	assert.Equal(t, 0, other.Len())

	_, err = source.ReadXLSX(path, "Nope")
	assert.ErrorIs(t, err, source.ErrSheetNotFound)
}
