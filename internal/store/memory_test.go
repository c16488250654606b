package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[int](0, 0, nil)

	if err := s.Save(ctx, "a", 1); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "", 2); err == nil {
		t.Error("empty id accepted")
	}
	v, err := s.Get(ctx, "a")
	if err != nil || v != 1 {
		t.Fatalf("Get = %v, %v", v, err)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete err = %v", err)
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("delete unknown = %v", err)
	}
}

func TestEvictionHook(t *testing.T) {
	ctx := context.Background()
	var mu sync.Mutex
	evicted := []string{}
	s := NewMemoryStore(2, time.Hour, func(id string, _ string) {
		mu.Lock()
		evicted = append(evicted, id)
		mu.Unlock()
	})

	_ = s.Save(ctx, "one", "1")
	_ = s.Save(ctx, "two", "2")
	_ = s.Save(ctx, "three", "3")
	if s.Len() != 2 {
		t.Errorf("Len = %d", s.Len())
	}
	if _, err := s.Get(ctx, "one"); !errors.Is(err, ErrNotFound) {
		t.Errorf("oldest session survived")
	}
	_ = s.Delete(ctx, "two")

	mu.Lock()
	defer mu.Unlock()
	if len(evicted) != 2 || evicted[0] != "one" || evicted[1] != "two" {
		t.Errorf("evicted = %v", evicted)
	}
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore[string](4, 20*time.Millisecond, nil)
	_ = s.Save(ctx, "x", "v")
	time.Sleep(60 * time.Millisecond)
	if _, err := s.Get(ctx, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired session still present: %v", err)
	}
}
