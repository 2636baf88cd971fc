package scope

import (
	"sync"
)

// Namespace separates keys written by independent producers.
//
// Implementations should be zero-size struct types, unexported in the
// producing package, so that no other package can read or overwrite
// their keys:
//
//	type sessionNamespace struct{}
//
//	func (sessionNamespace) Namespace() string { return "session" }
//
// Two namespaces never collide, even when Namespace returns the same
// name, because keys are compared by dynamic type as well.
type Namespace interface {
	Namespace() string
}

type entryKey struct {
	ns  Namespace
	key string
}

// Store is a request-scoped key/value store.
//
// Writes are serialized and reads may run concurrently, so a Store can be
// shared by goroutines forked while handling the same request. A reader
// observes either the previous value or the complete new one.
type Store struct {
	mu      sync.RWMutex
	entries map[entryKey]string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Store sets the value of key in namespace ns, replacing any previous
// value.
func (s *Store) Store(ns Namespace, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries == nil {
		s.entries = make(map[entryKey]string)
	}

	s.entries[entryKey{ns: ns, key: key}] = value
}

// Load returns the variable stored under key in namespace ns.
func (s *Store) Load(ns Namespace, key string) (Variable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[entryKey{ns: ns, key: key}]
	if !ok {
		return Variable{}, false
	}

	return Variable{Name: key, Value: value}, true
}

// All returns a copy of every key/value pair stored in namespace ns.
func (s *Store) All(ns Namespace) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string)
	for k, v := range s.entries {
		if k.ns == ns {
			out[k.key] = v
		}
	}

	return out
}

// Len returns the number of entries across all namespaces.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
