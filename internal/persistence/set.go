// Package persistence is the in-process object store: typed collections
// guarded per collection, with an optional write-behind journal on disk.
package persistence

import "sync"

// ConcurrentSet is a value-equality set safe for concurrent use. Each call
// holds the lock only for its own duration; ToList hands back a copy.
type ConcurrentSet[T comparable] struct {
	mu    sync.Mutex
	items map[T]struct{}
}

func NewConcurrentSet[T comparable]() *ConcurrentSet[T] {
	return &ConcurrentSet[T]{items: make(map[T]struct{})}
}

func (s *ConcurrentSet[T]) Add(item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(item)
}

func (s *ConcurrentSet[T]) Remove(item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(item)
}

func (s *ConcurrentSet[T]) Contains(item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[item]
	return ok
}

func (s *ConcurrentSet[T]) ToList() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(s.items))
	for item := range s.items {
		out = append(out, item)
	}
	return out
}

// Find returns every item matching pred, evaluated against a snapshot.
func (s *ConcurrentSet[T]) Find(pred func(T) bool) []T {
	var out []T
	for _, item := range s.ToList() {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

func (s *ConcurrentSet[T]) First(pred func(T) bool) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for item := range s.items {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (s *ConcurrentSet[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *ConcurrentSet[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[T]struct{})
}

func (s *ConcurrentSet[T]) addLocked(item T) bool {
	if _, exists := s.items[item]; exists {
		return false
	}
	s.items[item] = struct{}{}
	return true
}

func (s *ConcurrentSet[T]) removeLocked(item T) bool {
	if _, exists := s.items[item]; !exists {
		return false
	}
	delete(s.items, item)
	return true
}
