package store

import (
	"sort"
	"sync"
)

// MemoryKVStore is an in-memory KVStore used by tests and by watch mode's
// dry runs. Safe for concurrent use.
type MemoryKVStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryKVStore returns an initialized in-memory store.
func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{records: make(map[string][]byte)}
}

func (s *MemoryKVStore) Initialize(_ map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		s.records = make(map[string][]byte)
	}
	return nil
}

func (s *MemoryKVStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	return cp, true, nil
}

func (s *MemoryKVStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.records[key] = cp
	return nil
}

func (s *MemoryKVStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

func (s *MemoryKVStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryKVStore) Close() error { return nil }
