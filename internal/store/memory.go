// internal/store/memory.go
//
// In-memory session store for live games.
// Characteristics:
//   - Sessions are keyed by game ID.
//   - Bounded size with least-recently-used eviction.
//   - Idle sessions expire after a TTL; every Get refreshes recency but
//     not the TTL, so abandoned games always age out.
//   - An optional eviction hook lets callers release resources (stop a
//     train loop) when a session leaves the store for any reason.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("not found")

// Defaults used when NewMemoryStore gets non-positive limits.
const (
	DefaultSize = 1024
	DefaultTTL  = 30 * time.Minute
)

// Store defines the persistence interface for game sessions.
type Store[T any] interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, id string, v T) error

	// Get retrieves a session by ID or returns ErrNotFound.
	Get(ctx context.Context, id string) (T, error)

	// Delete removes a session; deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error

	// Len reports the number of live sessions.
	Len() int
}

// memory is an expiring LRU-backed Store.
type memory[T any] struct {
	lru *expirable.LRU[string, T]
}

// NewMemoryStore builds a Store holding at most size sessions for ttl each.
// onEvict, when non-nil, is called for every removed or expired session.
func NewMemoryStore[T any](size int, ttl time.Duration, onEvict func(id string, v T)) Store[T] {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memory[T]{lru: expirable.NewLRU[string, T](size, onEvict, ttl)}
}

func (m *memory[T]) Save(ctx context.Context, id string, v T) error {
	if id == "" {
		return errors.New("empty session id")
	}
	m.lru.Add(id, v)
	return nil
}

func (m *memory[T]) Get(ctx context.Context, id string) (T, error) {
	if v, ok := m.lru.Get(id); ok {
		return v, nil
	}
	var zero T
	return zero, ErrNotFound
}

func (m *memory[T]) Delete(ctx context.Context, id string) error {
	m.lru.Remove(id)
	return nil
}

func (m *memory[T]) Len() int { return m.lru.Len() }
