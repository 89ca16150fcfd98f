// Package alertstate remembers the last signal kind alerted per symbol so
// repeated identical signals across scans are not re-delivered.
package alertstate

import (
	"context"
	"sync"

	"SRSentinel/internal/model"
)

// Store holds the last alerted signal kind per symbol.
type Store interface {
	Last(ctx context.Context, symbol string) (model.SignalKind, bool, error)
	Remember(ctx context.Context, symbol string, kind model.SignalKind) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.Mutex
	last map[string]model.SignalKind
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{last: make(map[string]model.SignalKind)}
}

func (m *MemoryStore) Last(_ context.Context, symbol string) (model.SignalKind, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kind, ok := m.last[symbol]
	return kind, ok, nil
}

func (m *MemoryStore) Remember(_ context.Context, symbol string, kind model.SignalKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last[symbol] = kind
	return nil
}

// Fresh walks a signal batch in order and returns the signals whose kind
// differs from the one remembered before them. Each fresh signal becomes the
// remembered kind for the rest of the batch. changed reports whether any
// signal was fresh, i.e. whether last needs to be stored.
func Fresh(prev model.SignalKind, hasPrev bool, signals []model.Signal) (fresh []model.Signal, last model.SignalKind, changed bool) {
	last = prev
	for _, sig := range signals {
		if hasPrev && sig.Kind == last {
			continue
		}
		fresh = append(fresh, sig)
		last, hasPrev = sig.Kind, true
	}
	return fresh, last, len(fresh) > 0
}
