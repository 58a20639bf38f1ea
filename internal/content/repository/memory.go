package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/scholarfolio/backend/internal/content"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo is an in-memory repository used for development without
// MongoDB and for unit tests. Records are stored by value.
type MemoryRepo[T content.Record] struct {
	mu    sync.RWMutex
	store map[primitive.ObjectID]T
}

func NewMemoryRepo[T content.Record]() *MemoryRepo[T] {
	return &MemoryRepo[T]{store: make(map[primitive.ObjectID]T)}
}

func (m *MemoryRepo[T]) Create(_ context.Context, rec T) error {
	id := rec.RecordMeta().ID
	if id.IsZero() {
		return errors.New("record has no id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; ok {
		return errors.New("duplicate record id")
	}
	m.store[id] = rec
	return nil
}

func (m *MemoryRepo[T]) Get(_ context.Context, owner string, id primitive.ObjectID) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.store[id]; ok && rec.RecordMeta().UserID == owner {
		return rec, nil
	}
	var zero T
	return zero, ErrNotFound
}

// List returns the owner's records ordered by SortKey descending, newest id
// first on ties.
func (m *MemoryRepo[T]) List(_ context.Context, owner string) ([]T, error) {
	m.mu.RLock()
	out := make([]T, 0, len(m.store))
	for _, rec := range m.store {
		if rec.RecordMeta().UserID == owner {
			out = append(out, rec)
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		ki, kj := out[i].SortKey(), out[j].SortKey()
		if !ki.Equal(kj) {
			return ki.After(kj)
		}
		idi, idj := out[i].RecordMeta().ID, out[j].RecordMeta().ID
		return idi.Hex() > idj.Hex()
	})
	return out, nil
}

func (m *MemoryRepo[T]) Replace(_ context.Context, owner string, id primitive.ObjectID, rec T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[id]
	if !ok || cur.RecordMeta().UserID != owner {
		return ErrNotFound
	}
	m.store[id] = rec
	return nil
}

func (m *MemoryRepo[T]) Delete(_ context.Context, owner string, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[id]
	if !ok || cur.RecordMeta().UserID != owner {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// Ping always succeeds; it lets readiness checks treat both repos alike.
func (m *MemoryRepo[T]) Ping(context.Context) error { return nil }
