package smt

import (
	"bytes"
	"hash"
)

// Domain separation tags for the two node kinds. A serialized node's first
// byte is always one of these; nothing else may ever be stored under a node
// hash.
var (
	leafPrefix = []byte{0}
	nodePrefix = []byte{1}
)

// HasherFactory produces a fresh, zeroed hash.Hash on every call. It is a
// factory rather than a shared hash.Hash because hash.Hash is stateful and
// the tree hashes many independent pieces of data per operation; sharing one
// instance across calls would require external locking for no benefit.
// crypto/sha256.New is the reference instance (S = 32, depth = 256 bits).
type HasherFactory func() hash.Hash

// treeHasher is the stateless hashing helper shared by the engine and the
// proof verifier. It owns the placeholder value and the node serialization
// layout; nothing outside this file should hand-roll leaf or internal node
// bytes.
type treeHasher struct {
	newHasher HasherFactory
	pathSize  int
	zeroValue []byte
}

func newTreeHasher(newHasher HasherFactory) *treeHasher {
	size := newHasher().Size()
	return &treeHasher{
		newHasher: newHasher,
		pathSize:  size,
		zeroValue: make([]byte, size),
	}
}

// digest is the one-shot hash primitive everything else is built from.
func (th *treeHasher) digest(data []byte) []byte {
	h := th.newHasher()
	h.Write(data)
	return h.Sum(nil)
}

// path derives the fixed-length bit string a key descends the tree by.
func (th *treeHasher) path(key []byte) []byte {
	return th.digest(key)
}

// digestLeaf serializes and hashes a leaf: 0x00 || path || valueHash.
func (th *treeHasher) digestLeaf(path []byte, valueHash []byte) (hashed []byte, serialized []byte) {
	value := make([]byte, 0, len(leafPrefix)+len(path)+len(valueHash))
	value = append(value, leafPrefix...)
	value = append(value, path...)
	value = append(value, valueHash...)
	return th.digest(value), value
}

// parseLeaf splits serialized leaf bytes back into (path, valueHash).
func (th *treeHasher) parseLeaf(data []byte) (path []byte, valueHash []byte) {
	return data[len(leafPrefix) : len(leafPrefix)+th.pathSize],
		data[len(leafPrefix)+th.pathSize:]
}

// isLeaf reports whether serialized node bytes are a leaf, i.e. whether
// they carry the leaf domain tag. Empty bytes are never a leaf.
func (th *treeHasher) isLeaf(data []byte) bool {
	return len(data) > 0 && bytes.Equal(data[:len(leafPrefix)], leafPrefix)
}

// digestNode serializes and hashes an internal node: 0x01 || left || right.
func (th *treeHasher) digestNode(leftData []byte, rightData []byte) (hashed []byte, serialized []byte) {
	value := make([]byte, 0, len(nodePrefix)+len(leftData)+len(rightData))
	value = append(value, nodePrefix...)
	value = append(value, leftData...)
	value = append(value, rightData...)
	return th.digest(value), value
}

// digestLeftNode hashes an internal node whose right child is the
// placeholder (empty subtree).
func (th *treeHasher) digestLeftNode(left []byte) ([]byte, []byte) {
	return th.digestNode(left, th.placeholder())
}

// digestRightNode hashes an internal node whose left child is the
// placeholder.
func (th *treeHasher) digestRightNode(right []byte) ([]byte, []byte) {
	return th.digestNode(th.placeholder(), right)
}

// parseNode splits serialized internal-node bytes into (left, right) child
// hashes.
func (th *treeHasher) parseNode(data []byte) (left []byte, right []byte) {
	return data[len(nodePrefix) : len(nodePrefix)+th.pathSize],
		data[len(nodePrefix)+th.pathSize:]
}

// placeholder is the canonical empty-subtree marker: pathSize zero bytes.
// It is never written to the node store.
func (th *treeHasher) placeholder() []byte {
	return th.zeroValue
}

// depth is the tree's fixed bit-depth, i.e. PATH_BITS = 8 * pathSize.
func (th *treeHasher) depth() int {
	return th.pathSize * 8
}
