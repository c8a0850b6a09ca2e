package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/okian/minestats/internal/adapters/repository/migrations"
	"github.com/okian/minestats/internal/domain/types"
	"github.com/okian/minestats/pkg/metrics"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists snapshots in a SQLite database. Table rows are stored
// as JSON arrays.
type SQLiteStore struct {
	db        *sql.DB
	retention int
}

// OpenSQLite opens the database at path and applies migrations.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	cfg := newSettings(opts)

	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{db: db, retention: cfg.retention}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes snap and its tables in one transaction, replacing any snapshot
// with the same id.
func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) (err error) {
	if snap == nil || snap.ID == "" {
		return ErrInvalidID
	}
	start := time.Now()
	defer func() {
		if err != nil {
			metrics.RecordStoreError()
			return
		}
		metrics.RecordStoreSaveLatency(float64(time.Since(start).Microseconds()) / 1000)
		metrics.UpdateSnapshotsStored(s.Count(ctx))
	}()

	report, err := json.Marshal(snap.Report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = deleteSnapshot(ctx, tx, snap.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
INSERT INTO snapshots (id, source, digest, created_at, duration_ms, report)
VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Source, snap.Digest, snap.CreatedAt.UTC().UnixNano(), snap.DurationMs, string(report),
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	for i, t := range snap.Tables {
		cols, rows, encErr := encodeTable(t)
		if encErr != nil {
			err = encErr
			return err
		}
		if _, err = tx.ExecContext(ctx, `
INSERT INTO snapshot_tables (snapshot_id, position, name, columns, rows)
VALUES (?, ?, ?, ?, ?)`,
			snap.ID, i, t.Name, cols, rows,
		); err != nil {
			return fmt.Errorf("insert table %s: %w", t.Name, err)
		}
	}
	if s.retention > 0 {
		if err = s.evict(ctx, tx); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func deleteSnapshot(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_tables WHERE snapshot_id = ?`, id); err != nil {
		return fmt.Errorf("delete tables of %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	return nil
}

// evict drops every snapshot older than the newest s.retention.
func (s *SQLiteStore) evict(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `
SELECT id FROM snapshots ORDER BY seq DESC LIMIT -1 OFFSET ?`, s.retention)
	if err != nil {
		return fmt.Errorf("select evictions: %w", err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan eviction: %w", err)
		}
		stale = append(stale, id)
	}
	if err := rows.Close(); err != nil {
		return err
	}
	for _, id := range stale {
		if err := deleteSnapshot(ctx, tx, id); err != nil {
			return err
		}
	}
	return nil
}

func encodeTable(t types.Table) (string, string, error) {
	cols, err := json.Marshal(t.Columns)
	if err != nil {
		return "", "", fmt.Errorf("encode columns of %s: %w", t.Name, err)
	}
	rows := t.Rows
	if rows == nil {
		rows = [][]any{}
	}
	body, err := json.Marshal(rows)
	if err != nil {
		return "", "", fmt.Errorf("encode rows of %s: %w", t.Name, err)
	}
	return string(cols), string(body), nil
}

const selectSnapshot = `
SELECT id, source, digest, created_at, duration_ms, report FROM snapshots`

func (s *SQLiteStore) Latest(ctx context.Context) (*Snapshot, error) {
	return s.load(ctx, s.db.QueryRowContext(ctx, selectSnapshot+` ORDER BY seq DESC LIMIT 1`))
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	return s.load(ctx, s.db.QueryRowContext(ctx, selectSnapshot+` WHERE id = ?`, id))
}

func (s *SQLiteStore) load(ctx context.Context, row *sql.Row) (*Snapshot, error) {
	snap, err := scanSnapshot(row)
	if err != nil {
		return nil, err
	}
	tables, err := s.tables(ctx, snap.ID)
	if err != nil {
		return nil, err
	}
	snap.Tables = tables
	return snap, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var (
		snap    Snapshot
		created int64
		report  string
	)
	if err := row.Scan(&snap.ID, &snap.Source, &snap.Digest, &created, &snap.DurationMs, &report); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	snap.CreatedAt = time.Unix(0, created).UTC()
	if err := json.Unmarshal([]byte(report), &snap.Report); err != nil {
		return nil, fmt.Errorf("decode report of %s: %w", snap.ID, err)
	}
	return &snap, nil
}

func (s *SQLiteStore) tables(ctx context.Context, id string) ([]types.Table, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name, columns, rows FROM snapshot_tables WHERE snapshot_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query tables of %s: %w", id, err)
	}
	defer rows.Close()

	var out []types.Table
	for rows.Next() {
		var t types.Table
		var cols, body string
		if err := rows.Scan(&t.Name, &cols, &body); err != nil {
			return nil, fmt.Errorf("scan table of %s: %w", id, err)
		}
		if err := json.Unmarshal([]byte(cols), &t.Columns); err != nil {
			return nil, fmt.Errorf("decode columns of %s: %w", t.Name, err)
		}
		if err := json.Unmarshal([]byte(body), &t.Rows); err != nil {
			return nil, fmt.Errorf("decode rows of %s: %w", t.Name, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, selectSnapshot+` ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Info, 0, len(snaps))
	for _, snap := range snaps {
		info := snap.Info()
		counts, err := s.rowCounts(ctx, snap.ID)
		if err != nil {
			return nil, err
		}
		info.TableRows = counts
		out = append(out, info)
	}
	return out, nil
}

func (s *SQLiteStore) rowCounts(ctx context.Context, id string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT name, json_array_length(rows) FROM snapshot_tables WHERE snapshot_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("count rows of %s: %w", id, err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan row count of %s: %w", id, err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM snapshots`).Scan(&n); err != nil {
		return 0
	}
	return n
}
