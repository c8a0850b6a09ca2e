package types

import (
	"fmt"
	"strconv"
)

// Table is a named result table with a fixed header. Cells hold nil, string,
// bool, Float, float64, or an integer type.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Records renders every row as strings, in column order.
func (t Table) Records() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make([]string, len(t.Columns))
		for j := range rec {
			if j < len(row) {
				rec[j] = FormatCell(row[j])
			}
		}
		out[i] = rec
	}
	return out
}

// FormatCell renders a single cell for delimited output. Nulls render empty
// and booleans as True/False.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	case Float:
		return x.String()
	case *Float:
		if x == nil {
			return ""
		}
		return x.String()
	case float64:
		return FormatFloat(x)
	case float32:
		return FormatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
