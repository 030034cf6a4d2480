// Package memstore is an in-memory reference implementation of the smt
// NodeStore/ValueStore interfaces. It is refcounted per key because a
// single node hash can be written by more than one in-flight operation
// (e.g. a freshly re-inserted leaf that is byte-identical to one still
// referenced elsewhere) before the first writer's orphan-removal runs.
package memstore

import "fmt"

// NotFoundError is returned by Remove when asked to delete an absent key.
// Get reports a missing key via its ok return instead of an error, per the
// smt.NodeStore/ValueStore contract.
type NotFoundError struct {
	Key []byte
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("memstore: key not found: %x", e.Key)
}

type entry struct {
	value []byte
	count uint32
}

// Store is a refcounted in-memory map satisfying smt.NodeStore and
// smt.ValueStore.
type Store struct {
	m map[string]entry
}

// New creates an empty Store.
func New() *Store {
	return &Store{m: make(map[string]entry)}
}

// Get returns the value for key, or ok=false if key is absent.
func (s *Store) Get(key []byte) ([]byte, bool, error) {
	if e, ok := s.m[string(key)]; ok {
		return e.value, true, nil
	}
	return nil, false, nil
}

// Set writes value for key, overwriting any existing entry's value while
// bumping its reference count.
func (s *Store) Set(key []byte, value []byte) error {
	k := string(key)
	if e, ok := s.m[k]; ok {
		s.m[k] = entry{value: value, count: e.count + 1}
	} else {
		s.m[k] = entry{value: value, count: 1}
	}
	return nil
}

// Remove decrements key's reference count, deleting the entry once it
// reaches zero. Returns NotFoundError if key is absent.
func (s *Store) Remove(key []byte) error {
	k := string(key)
	e, ok := s.m[k]
	if !ok {
		return &NotFoundError{Key: key}
	}
	e.count--
	if e.count == 0 {
		delete(s.m, k)
	} else {
		s.m[k] = e
	}
	return nil
}

// Contains reports whether key is present.
func (s *Store) Contains(key []byte) (bool, error) {
	_, ok := s.m[string(key)]
	return ok, nil
}

// Len returns the number of distinct keys currently stored.
func (s *Store) Len() int {
	return len(s.m)
}
