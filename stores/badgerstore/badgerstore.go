// Package badgerstore backs the smt NodeStore/ValueStore interfaces with a
// single *badger.DB, namespacing the two logical stores by a one-byte
// prefix the way the node/trie packages in the wider Merkle-tree corpus
// partition one on-disk database across several logical collections.
package badgerstore

import (
	"github.com/dgraph-io/badger/v2"
	"github.com/pkg/errors"
)

const (
	nodesPrefix  = 0x00
	valuesPrefix = 0x01
)

// Store is a NodeStore or ValueStore backed by badger, depending on which
// prefix it was constructed with. Nodes and Values below return the two
// views of a single *badger.DB.
type Store struct {
	db     *badger.DB
	prefix byte
}

// Nodes returns the view of db namespaced for serialized tree nodes.
func Nodes(db *badger.DB) *Store {
	return &Store{db: db, prefix: nodesPrefix}
}

// Values returns the view of db namespaced for user values.
func Values(db *badger.DB) *Store {
	return &Store{db: db, prefix: valuesPrefix}
}

func (s *Store) namespaced(key []byte) []byte {
	out := make([]byte, 0, 1+len(key))
	out = append(out, s.prefix)
	return append(out, key...)
}

// Get returns the value for key, or ok=false if key is absent.
func (s *Store) Get(key []byte) ([]byte, bool, error) {
	var value []byte
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.namespaced(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(v []byte) error {
			value = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "badgerstore: get")
	}
	return value, found, nil
}

// Set writes value for key.
func (s *Store) Set(key []byte, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.namespaced(key), value)
	})
	if err != nil {
		return errors.Wrap(err, "badgerstore: set")
	}
	return nil
}

// Remove deletes key. Badger's Delete is idempotent on an absent key; the
// smt engine never calls Remove on a key it hasn't already confirmed is
// present, so that is not distinguished here.
func (s *Store) Remove(key []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.namespaced(key))
	})
	if err != nil {
		return errors.Wrap(err, "badgerstore: remove")
	}
	return nil
}

// Contains reports whether key is present.
func (s *Store) Contains(key []byte) (bool, error) {
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(s.namespaced(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, errors.Wrap(err, "badgerstore: contains")
	}
	return found, nil
}
