package store

import (
	"context"
	"sort"
	"sync"

	"github.com/serroba/linktrack-go/internal/tracking"
)

// MemoryClickStore is an in-memory implementation of tracking.Repository,
// used for tests and dependency-free local runs.
type MemoryClickStore struct {
	mu     sync.RWMutex
	clicks []tracking.ClickRecord
}

// NewMemoryClickStore creates an empty in-memory click ledger.
func NewMemoryClickStore() *MemoryClickStore {
	return &MemoryClickStore{}
}

func (m *MemoryClickStore) Insert(_ context.Context, click *tracking.ClickRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clicks = append(m.clicks, *click)

	return nil
}

func (m *MemoryClickStore) Recent(_ context.Context, limit int) ([]tracking.ClickRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	clicks := m.snapshotDesc()
	if limit >= 0 && len(clicks) > limit {
		clicks = clicks[:limit]
	}

	return clicks, nil
}

func (m *MemoryClickStore) ByEmail(_ context.Context, email string) ([]tracking.ClickRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var clicks []tracking.ClickRecord

	for _, click := range m.snapshotDesc() {
		if click.Email == email {
			clicks = append(clicks, click)
		}
	}

	return clicks, nil
}

func (m *MemoryClickStore) All(_ context.Context) ([]tracking.ClickRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snapshotDesc(), nil
}

// snapshotDesc copies the ledger newest first. Ties on clicked-at keep the
// later insertion first. Callers must hold at least the read lock.
func (m *MemoryClickStore) snapshotDesc() []tracking.ClickRecord {
	clicks := make([]tracking.ClickRecord, 0, len(m.clicks))

	for i := len(m.clicks) - 1; i >= 0; i-- {
		clicks = append(clicks, m.clicks[i])
	}

	sort.SliceStable(clicks, func(i, j int) bool {
		return clicks[i].ClickedAt.After(clicks[j].ClickedAt)
	})

	return clicks
}

var _ tracking.Repository = (*MemoryClickStore)(nil)
