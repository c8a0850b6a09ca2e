// Package types contains the tabular value types shared across the application.
package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Float is a nullable float64. The zero value is null.
type Float struct {
	Value float64
	Valid bool
}

// Some returns a non-null Float holding v.
func Some(v float64) Float { return Float{Value: v, Valid: true} }

// Null returns the null Float.
func Null() Float { return Float{} }

// Or returns the held value, or fallback when null.
func (f Float) Or(fallback float64) float64 {
	if !f.Valid {
		return fallback
	}
	return f.Value
}

// Scale multiplies a non-null value by k.
func (f Float) Scale(k float64) Float {
	if !f.Valid {
		return f
	}
	return Some(f.Value * k)
}

// String renders the value in shortest round-trip form, or "" when null.
func (f Float) String() string {
	if !f.Valid {
		return ""
	}
	return FormatFloat(f.Value)
}

// MarshalJSON encodes null values as JSON null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON accepts a number or null.
func (f *Float) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*f = Float{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Some(v)
	return nil
}

// Div divides num by den, returning null when den is zero.
func Div(num, den float64) Float {
	if den == 0 {
		return Null()
	}
	return Some(num / den)
}

// FormatFloat renders v in its shortest round-trip form, switching to
// exponent notation outside [1e-4, 1e16).
func FormatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	if abs := math.Abs(v); v == 0 || (abs >= 1e-4 && abs < 1e16) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
