package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/minestats/pkg/metrics"
)

// MemoryStore keeps snapshots in memory, oldest first.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots []*Snapshot
	byID      map[string]*Snapshot
	retention int
	closed    atomic.Bool
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	cfg := newSettings(opts)
	return &MemoryStore{
		byID:      make(map[string]*Snapshot),
		retention: cfg.retention,
	}
}

// Save appends snap and evicts the oldest snapshots beyond retention.
func (s *MemoryStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed.Load() {
		return ErrStoreClosed
	}
	if snap == nil || snap.ID == "" {
		return ErrInvalidID
	}
	start := time.Now()

	s.mu.Lock()
	if old, ok := s.byID[snap.ID]; ok {
		s.remove(old)
	}
	s.snapshots = append(s.snapshots, snap)
	s.byID[snap.ID] = snap
	for s.retention > 0 && len(s.snapshots) > s.retention {
		delete(s.byID, s.snapshots[0].ID)
		s.snapshots[0] = nil
		s.snapshots = s.snapshots[1:]
	}
	n := len(s.snapshots)
	s.mu.Unlock()

	metrics.RecordStoreSaveLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.UpdateSnapshotsStored(n)
	return nil
}

// remove must be called with s.mu held.
func (s *MemoryStore) remove(snap *Snapshot) {
	for i, x := range s.snapshots {
		if x == snap {
			s.snapshots = append(s.snapshots[:i], s.snapshots[i+1:]...)
			break
		}
	}
	delete(s.byID, snap.ID)
}

func (s *MemoryStore) Latest(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.snapshots) == 0 {
		return nil, ErrNotFound
	}
	return s.snapshots[len(s.snapshots)-1], nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return snap, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Info, 0, len(s.snapshots))
	for i := len(s.snapshots) - 1; i >= 0; i-- {
		out = append(out, s.snapshots[i].Info())
	}
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// Close marks the store closed; later saves fail.
func (s *MemoryStore) Close() error {
	s.closed.Store(true)
	return nil
}
