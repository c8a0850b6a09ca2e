package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/okian/minestats/internal/domain/types"
)

// ReadCSV parses comma-separated text with a header row.
func ReadCSV(r io.Reader) (types.Frame, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return types.Frame{}, fmt.Errorf("parse csv: %w", err)
	}
	return frameFrom(records)
}

// ParseCSV parses an in-memory CSV payload.
func ParseCSV(payload []byte) (types.Frame, error) {
	return ReadCSV(bytes.NewReader(payload))
}
