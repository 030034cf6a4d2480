package memstore

import (
	"bytes"
	"testing"
)

func TestGetSetRemove(t *testing.T) {
	s := New()

	if _, ok, err := s.Get([]byte("k")); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set([]byte("k"), []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := s.Get([]byte("k"))
	if err != nil || !ok || !bytes.Equal(value, []byte("v1")) {
		t.Fatalf("get after set: value=%q ok=%v err=%v", value, ok, err)
	}

	if err := s.Remove([]byte("k")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.Get([]byte("k")); ok {
		t.Fatalf("expected key absent after remove")
	}
}

func TestRemoveAbsentKeyErrors(t *testing.T) {
	s := New()
	err := s.Remove([]byte("missing"))
	if err == nil {
		t.Fatalf("expected an error removing an absent key")
	}
	var notFound *NotFoundError
	if !asNotFound(err, &notFound) {
		t.Fatalf("expected *NotFoundError, got %T", err)
	}
}

func asNotFound(err error, target **NotFoundError) bool {
	nf, ok := err.(*NotFoundError)
	if ok {
		*target = nf
	}
	return ok
}

func TestRefcounting(t *testing.T) {
	s := New()
	if err := s.Set([]byte("k"), []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set([]byte("k"), []byte("v2")); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Two writers hold a reference; one Remove should not yet evict the key.
	if err := s.Remove([]byte("k")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ok, _ := s.Contains([]byte("k")); !ok {
		t.Fatalf("expected key to survive a single remove after two sets")
	}
	if err := s.Remove([]byte("k")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if ok, _ := s.Contains([]byte("k")); ok {
		t.Fatalf("expected key gone after matching remove count")
	}
}
