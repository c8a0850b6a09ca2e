package ingest

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/minestats/internal/domain/types"
)

var winTokens = map[string]bool{
	"true":  true,
	"false": false,
	"1":     true,
	"0":     false,
}

// coerceText trims a label cell. Non-string values are rendered first.
func coerceText(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return strings.TrimSpace(x), true
	case float64:
		if math.IsNaN(x) {
			return "", false
		}
	case types.Float:
		if !x.Valid {
			return "", false
		}
	}
	return strings.TrimSpace(types.FormatCell(v)), true
}

// coerceNumber converts a cell to a finite float. Malformed values, NaN and
// infinities are rejected.
func coerceNumber(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case types.Float:
		if !x.Valid {
			return 0, false
		}
		f = x.Value
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// coerceSeed accepts integral numbers only.
func coerceSeed(v any) (int64, bool) {
	f, ok := coerceNumber(v)
	if !ok || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// coerceWin maps booleans, 1/0 numbers and the tokens true/false/1/0
// (case-insensitive, trimmed).
func coerceWin(v any) (bool, bool) {
	switch x := v.(type) {
	case nil:
		return false, false
	case bool:
		return x, true
	case string:
		w, ok := winTokens[strings.ToLower(strings.TrimSpace(x))]
		return w, ok
	}
	f, ok := coerceNumber(v)
	if !ok {
		return false, false
	}
	switch f {
	case 1:
		return true, true
	case 0:
		return false, true
	}
	return false, false
}
