package badgerstore

import (
	"bytes"
	"testing"

	"github.com/dgraph-io/badger/v2"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions(t.TempDir()).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close badger: %v", err)
		}
	})
	return db
}

func TestNodesAndValuesAreIndependent(t *testing.T) {
	db := openTestDB(t)
	nodes := Nodes(db)
	values := Values(db)

	if err := nodes.Set([]byte("k"), []byte("node-value")); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, ok, err := values.Get([]byte("k")); err != nil || ok {
		t.Fatalf("expected the values view to be unaffected by a write to the nodes view: ok=%v err=%v", ok, err)
	}

	got, ok, err := nodes.Get([]byte("k"))
	if err != nil || !ok || !bytes.Equal(got, []byte("node-value")) {
		t.Fatalf("get after set: value=%q ok=%v err=%v", got, ok, err)
	}
}

func TestGetSetRemove(t *testing.T) {
	db := openTestDB(t)
	store := Nodes(db)

	if _, ok, err := store.Get([]byte("missing")); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ok, err := store.Contains([]byte("k")); err != nil || !ok {
		t.Fatalf("expected key present: ok=%v err=%v", ok, err)
	}

	if err := store.Remove([]byte("k")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ok, err := store.Contains([]byte("k")); err != nil || ok {
		t.Fatalf("expected key absent after remove: ok=%v err=%v", ok, err)
	}
}
