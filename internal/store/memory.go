package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pharmakart/cart-service/internal/domain"
)

// MemorySnapshotStore keeps serialized snapshots in process memory. It is
// the default backend for single-node deployments and the injection seam for
// tests. Snapshots go through JSON like the durable backends so parse
// failures behave identically everywhere.
type MemorySnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{data: make(map[string][]byte)}
}

func (m *MemorySnapshotStore) Load(ctx context.Context, cartID string) ([]domain.CartLine, error) {
	m.mu.RLock()
	raw, ok := m.data[snapshotKey(cartID)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSnapshotNotFound
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal cart snapshot failed: %w", err)
	}
	return lines, nil
}

func (m *MemorySnapshotStore) Save(ctx context.Context, cartID string, lines []domain.CartLine) error {
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart snapshot failed: %w", err)
	}

	m.mu.Lock()
	m.data[snapshotKey(cartID)] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemorySnapshotStore) Delete(ctx context.Context, cartID string) error {
	m.mu.Lock()
	delete(m.data, snapshotKey(cartID))
	m.mu.Unlock()
	return nil
}
