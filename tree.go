// Package smt implements a Sparse Merkle Tree backed by an
// application-supplied key-value store, with the placeholder-elision
// optimizations from the Libra/Diem whitepaper: the number of hash
// operations per operation is O(k), where k is the number of non-empty
// leaves, rather than O(depth).
package smt

import "bytes"

// SparseMerkleTree is a Sparse Merkle tree over a node store and a value
// store, addressed by a pluggable hasher. A single instance assumes a
// single writer; concurrent mutators on one instance are out of scope.
type SparseMerkleTree struct {
	th     treeHasher
	nodes  NodeStore
	values ValueStore
	root   []byte
}

// New creates a Sparse Merkle tree over an empty node store and value
// store. The root starts at the placeholder (empty tree).
func New(nodes NodeStore, values ValueStore, newHasher HasherFactory) *SparseMerkleTree {
	smt := &SparseMerkleTree{
		th:     *newTreeHasher(newHasher),
		nodes:  nodes,
		values: values,
	}
	smt.root = smt.th.placeholder()
	return smt
}

// Import wraps an existing node store, value store, and root produced by a
// prior tree (or reconstructed via AddBranch). The engine trusts the
// supplied root and stores; it performs no validation of their contents.
func Import(nodes NodeStore, values ValueStore, newHasher HasherFactory, root []byte) *SparseMerkleTree {
	return &SparseMerkleTree{
		th:     *newTreeHasher(newHasher),
		nodes:  nodes,
		values: values,
		root:   root,
	}
}

// Root returns the tree's current root hash.
func (smt *SparseMerkleTree) Root() []byte {
	return smt.root
}

// SetRoot overrides the tree's current root hash without touching either
// store. Used after reconstructing a subtree via AddBranch at a different
// root, or to rewind to a previously recorded root whose nodes are still
// present in the store.
func (smt *SparseMerkleTree) SetRoot(root []byte) {
	smt.root = root
}

func (smt *SparseMerkleTree) depth() int {
	return smt.th.depth()
}

// Get returns the value stored at key, or an empty (non-nil) slice if the
// tree's current root has no entry for it. This is a direct value-store read keyed by the
// derived path; the tree structure is not consulted.
func (smt *SparseMerkleTree) Get(key []byte) ([]byte, error) {
	return smt.GetForRoot(key, smt.root)
}

// GetForRoot is Get against an explicit root rather than the tree's current
// one.
func (smt *SparseMerkleTree) GetForRoot(key []byte, root []byte) ([]byte, error) {
	path := smt.th.path(key)
	return smt.getPath(path, root)
}

func (smt *SparseMerkleTree) getPath(path []byte, root []byte) ([]byte, error) {
	if bytes.Equal(root, smt.th.placeholder()) {
		return defaultValue, nil
	}
	value, ok, err := smt.values.Get(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return defaultValue, nil
	}
	return value, nil
}

// Contains reports whether key has a non-default value under the tree's
// current root.
func (smt *SparseMerkleTree) Contains(key []byte) (bool, error) {
	value, err := smt.Get(key)
	if err != nil {
		return false, err
	}
	return !bytes.Equal(value, defaultValue), nil
}

// GetDescend is like Get, but reaches its answer by walking the node store
// from root according to path's bits instead of reading the value store
// directly. It is the form that works against a partially reconstructed
// subtree (one populated only via AddBranch), where the value store alone
// would not reflect what the partial tree actually knows.
func (smt *SparseMerkleTree) GetDescend(key []byte) ([]byte, error) {
	return smt.GetDescendForRoot(key, smt.root)
}

// GetDescendForRoot is GetDescend against an explicit root.
func (smt *SparseMerkleTree) GetDescendForRoot(key []byte, root []byte) ([]byte, error) {
	path := smt.th.path(key)
	if bytes.Equal(root, smt.th.placeholder()) {
		return defaultValue, nil
	}

	currentHash := root
	for i := 0; i < smt.depth(); i++ {
		currentData, ok, err := smt.nodes.Get(currentHash)
		if err != nil {
			return nil, err
		}
		if !ok {
			return defaultValue, nil
		}
		if smt.th.isLeaf(currentData) {
			actualPath, _ := smt.th.parseLeaf(currentData)
			if !bytes.Equal(actualPath, path) {
				return defaultValue, nil
			}
			value, ok, err := smt.values.Get(path)
			if err != nil {
				return nil, err
			}
			if !ok {
				return defaultValue, nil
			}
			return value, nil
		}

		left, rightChild := smt.th.parseNode(currentData)
		if getBitAtFromMSB(path, i) == right {
			currentHash = rightChild
		} else {
			currentHash = left
		}
		if bytes.Equal(currentHash, smt.th.placeholder()) {
			return defaultValue, nil
		}
	}
	return defaultValue, nil
}

// HasDescend is the boolean form of GetDescend.
func (smt *SparseMerkleTree) HasDescend(key []byte) (bool, error) {
	value, err := smt.GetDescend(key)
	if err != nil {
		return false, err
	}
	return !bytes.Equal(value, defaultValue), nil
}
