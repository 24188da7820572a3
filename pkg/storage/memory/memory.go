// Package memory is a store that forgets everything on exit.  Dry
// runs and tests use it.
package memory

import (
	"bytes"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/the-maldridge/quack/pkg/storage"
)

// Store keeps values in a map.
type Store struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func init() {
	storage.RegisterCallback(newFactory)
}

func newFactory() {
	storage.RegisterFactory("memory", newMemStore)
}

func newMemStore(hclog.Logger, string) (storage.Storage, error) {
	return New(), nil
}

// New returns an empty Store.
func New() *Store {
	x := Store{m: make(map[string][]byte)}
	return &x
}

// Get returns a copy of the value at k.
func (s *Store) Get(k []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[string(k)]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

// Put stores a copy of v at k.
func (s *Store) Put(k, v []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[string(k)] = append([]byte(nil), v...)
	return nil
}

// Del removes k.
func (s *Store) Del(k []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, string(k))
	return nil
}

// Keys returns the keys starting with prefix.
func (s *Store) Keys(prefix []byte) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out [][]byte
	for k := range s.m {
		if bytes.HasPrefix([]byte(k), prefix) {
			out = append(out, []byte(k))
		}
	}
	return out, nil
}

// Close does nothing.
func (s *Store) Close() error {
	return nil
}
