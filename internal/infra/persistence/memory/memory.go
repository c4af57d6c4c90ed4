// Package memory contains an in-process implementation of the durable
// store contract. It is the default backend for tests and single-process
// demo runs; it survives nothing, but exercises the exact same event and
// key semantics as the disk backend.
package memory

import (
	"sync"

	"finboard/internal/domain/repository"
)

// Store implements repository.KeyValue with a plain map.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
	subs   map[int]chan repository.Event
	nextID int
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		values: make(map[string]string),
		subs:   make(map[int]chan repository.Event),
	}
}

// Get returns the value stored under key, or repository.ErrKeyNotFound.
func (s *Store) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", repository.ErrKeyNotFound
	}

	return value, nil
}

// Set writes value under key and notifies subscribers.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()

	s.publish(repository.Event{Op: repository.OpSet, Key: key})

	return nil
}

// Remove deletes key. Removing an absent key is a no-op and emits no event.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	_, existed := s.values[key]
	delete(s.values, key)
	s.mu.Unlock()

	if existed {
		s.publish(repository.Event{Op: repository.OpRemove, Key: key})
	}

	return nil
}

// Clear wipes every key and notifies subscribers with a single clear event.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.values = make(map[string]string)
	s.mu.Unlock()

	s.publish(repository.Event{Op: repository.OpClear})

	return nil
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.values[key]

	return ok
}

// Subscribe registers a listener for storage events.
func (s *Store) Subscribe(buffer int) (<-chan repository.Event, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan repository.Event, buffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.mu.Unlock()
	}

	return ch, cancel
}

// publish fans an event out to all subscribers. Slow listeners drop
// events instead of blocking the writer; the session guard compensates
// with its polling path.
func (s *Store) publish(event repository.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
