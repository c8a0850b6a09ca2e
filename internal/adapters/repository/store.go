// Package repository persists analysis snapshots.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/minestats/internal/domain/model"
	"github.com/okian/minestats/internal/domain/types"
)

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Snapshot is the full output of one pipeline run.
type Snapshot struct {
	ID         string             `json:"id"`
	Source     string             `json:"source"`
	Digest     string             `json:"digest,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	DurationMs float64            `json:"duration_ms"`
	Report     model.IngestReport `json:"report"`
	Tables     []types.Table      `json:"tables"`
}

// Table returns the named table.
func (s *Snapshot) Table(name string) (types.Table, bool) {
	for _, t := range s.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return types.Table{}, false
}

// Info describes a snapshot without its tables.
type Info struct {
	ID         string             `json:"id"`
	Source     string             `json:"source"`
	Digest     string             `json:"digest,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	DurationMs float64            `json:"duration_ms"`
	Report     model.IngestReport `json:"report"`
	TableRows  map[string]int     `json:"table_rows"`
}

// Info returns the snapshot's metadata.
func (s *Snapshot) Info() Info {
	rows := make(map[string]int, len(s.Tables))
	for _, t := range s.Tables {
		rows[t.Name] = t.Len()
	}
	return Info{
		ID:         s.ID,
		Source:     s.Source,
		Digest:     s.Digest,
		CreatedAt:  s.CreatedAt,
		DurationMs: s.DurationMs,
		Report:     s.Report,
		TableRows:  rows,
	}
}

// Store provides read/write access to stored snapshots.
type Store interface {
	// Save stores a snapshot as the newest one, evicting beyond retention.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the newest snapshot, or ErrNotFound when empty.
	Latest(ctx context.Context) (*Snapshot, error)

	// Get returns the snapshot with id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List returns every stored snapshot's metadata, newest first.
	List(ctx context.Context) ([]Info, error)

	// Count returns the number of stored snapshots.
	Count(ctx context.Context) int

	Close() error
}

// Open creates the store named by driver. path is used by the sqlite driver.
func Open(driver, path string, opts ...Option) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemoryStore(opts...), nil
	case DriverSQLite:
		return OpenSQLite(path, opts...)
	}
	return nil, fmt.Errorf("%w: %s", ErrNotSupported, driver)
}
