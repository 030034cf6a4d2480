package smt

import (
	"bytes"
	"crypto/sha256"
	"math/rand"
	"reflect"
	"testing"

	"github.com/sparsemerkle/smt/stores/memstore"
)

// TestBulkOperations replays randomized insert/update/delete sequences
// against a shadow map and, after every block of operations, checks that
// every live key reads back correctly at the tree's current root, covering
// round-trip correctness under churn.
func TestBulkOperations(t *testing.T) {
	for i := 0; i < 5; i++ {
		// More inserts/updates than deletions.
		bulkOperations(t, 50, 200, 200, 50)
	}
	for i := 0; i < 5; i++ {
		// Heavier deletion pressure.
		bulkOperations(t, 50, 100, 100, 500)
	}
}

func bulkOperations(t *testing.T, blocks int, insert int, update int, del int) {
	nodes, values := memstore.New(), memstore.New()
	tree := New(nodes, values, sha256.New)

	max := insert + update + del
	kv := make([]map[string]string, blocks)
	for i := range kv {
		kv[i] = make(map[string]string)
	}
	roots := make([][]byte, blocks)

	for i := 0; i < blocks; i++ {
		if i != 0 {
			for k, v := range kv[i-1] {
				kv[i][k] = v
			}
		}
		for j := 0; j < 10; j++ {
			n := rand.Intn(max)
			switch {
			case n < insert:
				key := randomBytes(16 + rand.Intn(32))
				val := randomBytes(1 + rand.Intn(64))
				kv[i][string(key)] = string(val)
				if _, err := tree.Update(key, val); err != nil {
					t.Fatalf("update: %v", err)
				}
			case n < insert+update:
				keys := reflect.ValueOf(kv[i]).MapKeys()
				if len(keys) == 0 {
					continue
				}
				key := []byte(keys[rand.Intn(len(keys))].Interface().(string))
				val := randomBytes(1 + rand.Intn(64))
				kv[i][string(key)] = string(val)
				if _, err := tree.Update(key, val); err != nil {
					t.Fatalf("update: %v", err)
				}
			default:
				keys := reflect.ValueOf(kv[i]).MapKeys()
				if len(keys) == 0 {
					continue
				}
				key := []byte(keys[rand.Intn(len(keys))].Interface().(string))
				delete(kv[i], string(key))
				if _, err := tree.Remove(key); err != nil {
					t.Fatalf("remove: %v", err)
				}
			}
		}
		roots[i] = tree.Root()
		checkLive(t, tree, kv[i])
	}
}

func checkLive(t *testing.T, tree *SparseMerkleTree, kv map[string]string) {
	t.Helper()
	for k, v := range kv {
		got, err := tree.Get([]byte(k))
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !bytes.Equal([]byte(v), got) {
			t.Fatalf("got incorrect value for key %q: want %q got %q", k, v, got)
		}
	}
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}

// TestEmptyTree checks that an empty tree's root is the all-zero
// placeholder, and that it answers every query as absent.
func TestEmptyTree(t *testing.T) {
	tree := New(memstore.New(), memstore.New(), sha256.New)

	if !bytes.Equal(tree.Root(), make([]byte, sha256.Size)) {
		t.Fatalf("empty tree root is not all-zero")
	}

	got, err := tree.Get([]byte("x"))
	if err != nil || len(got) != 0 {
		t.Fatalf("get on empty tree: value=%v err=%v", got, err)
	}

	proof, err := tree.Prove([]byte("x"))
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if !proof.Verify(tree.Root(), []byte("x"), nil, sha256.New) {
		t.Fatalf("empty-tree non-membership proof did not verify")
	}
	if proof.Verify(tree.Root(), []byte("x"), []byte("y"), sha256.New) {
		t.Fatalf("empty-tree proof verified a false membership claim")
	}
}

// TestOverwrite checks that updating an existing key replaces its value.
func TestOverwrite(t *testing.T) {
	tree := New(memstore.New(), memstore.New(), sha256.New)

	if _, err := tree.Update([]byte("testKey"), []byte("testValue")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := tree.Update([]byte("testKey"), []byte("testValue2")); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := tree.Get([]byte("testKey"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, []byte("testValue2")) {
		t.Fatalf("got %q, want testValue2", got)
	}
}

// TestInsertDeleteReinsertPreservesRoot checks that deleting a key and then
// reinserting the same key/value pair restores the exact original root.
func TestInsertDeleteReinsertPreservesRoot(t *testing.T) {
	tree := New(memstore.New(), memstore.New(), sha256.New)

	r1, err := tree.Update([]byte("testKey"), []byte("testValue"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := tree.Remove([]byte("testKey")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, err := tree.Get([]byte("testKey"))
	if err != nil || len(got) != 0 {
		t.Fatalf("expected absent key after delete, got %v err %v", got, err)
	}
	has, err := tree.Contains([]byte("testKey"))
	if err != nil || has {
		t.Fatalf("expected Contains=false after delete")
	}

	r2, err := tree.Update([]byte("testKey"), []byte("testValue"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !bytes.Equal(r1, r2) {
		t.Fatalf("root after reinsert does not match original root")
	}
}

// TestDeleteIsIdempotent checks that deleting an already-absent key leaves
// the root unchanged.
func TestDeleteIsIdempotent(t *testing.T) {
	tree := New(memstore.New(), memstore.New(), sha256.New)

	if _, err := tree.Update([]byte("testKey"), []byte("testValue")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := tree.Remove([]byte("testKey")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	rootAfterFirstDelete := tree.Root()

	if _, err := tree.Remove([]byte("testKey")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !bytes.Equal(rootAfterFirstDelete, tree.Root()) {
		t.Fatalf("second delete of an absent key changed the root")
	}
}

// TestSharedPrefixNeighbors checks that removing one of two keys whose
// paths share a prefix restores the root to what it was with only
// the other key present.
func TestSharedPrefixNeighbors(t *testing.T) {
	tree := New(memstore.New(), memstore.New(), sha256.New)

	solo := New(memstore.New(), memstore.New(), sha256.New)
	if _, err := solo.Update([]byte("testKey"), []byte("testValue")); err != nil {
		t.Fatalf("update: %v", err)
	}
	soloRoot := solo.Root()

	if _, err := tree.Update([]byte("testKey"), []byte("testValue")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := tree.Update([]byte("foo"), []byte("testValue")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := tree.Remove([]byte("foo")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if !bytes.Equal(tree.Root(), soloRoot) {
		t.Fatalf("root after removing neighbor does not match solo-key root")
	}
}
