package smt

import "bytes"

// Prove generates a non-updatable Merkle proof for key against the tree's
// current root. Suitable for read-only verification; not for updatable or
// subtree-reconstruction use (see ProveUpdatable).
func (smt *SparseMerkleTree) Prove(key []byte) (*MerkleProof, error) {
	return smt.ProveForRoot(key, smt.root)
}

// ProveForRoot is Prove against an explicit root.
func (smt *SparseMerkleTree) ProveForRoot(key []byte, root []byte) (*MerkleProof, error) {
	return smt.proveForRoot(key, root, false)
}

// ProveUpdatable generates a proof for key against the tree's current root
// that additionally carries the bottom sibling's raw bytes, sufficient for
// AddBranch to reconstruct that sibling's subtree.
func (smt *SparseMerkleTree) ProveUpdatable(key []byte) (*MerkleProof, error) {
	return smt.ProveUpdatableForRoot(key, smt.root)
}

// ProveUpdatableForRoot is ProveUpdatable against an explicit root.
func (smt *SparseMerkleTree) ProveUpdatableForRoot(key []byte, root []byte) (*MerkleProof, error) {
	return smt.proveForRoot(key, root, true)
}

// ProveCompact generates a compact proof for key against the tree's current
// root.
func (smt *SparseMerkleTree) ProveCompact(key []byte) (*CompactMerkleProof, error) {
	return smt.ProveCompactForRoot(key, smt.root)
}

// ProveCompactForRoot generates a compact proof for key against an explicit
// root.
func (smt *SparseMerkleTree) ProveCompactForRoot(key []byte, root []byte) (*CompactMerkleProof, error) {
	proof, err := smt.ProveForRoot(key, root)
	if err != nil {
		return nil, err
	}
	return proof.Compact(smt.th.newHasher)
}

func (smt *SparseMerkleTree) proveForRoot(key []byte, root []byte, updatable bool) (*MerkleProof, error) {
	path := smt.th.path(key)
	sideNodes, pathNodes, leafData, siblingData, err := smt.sideNodesForRoot(path, root, updatable)
	if err != nil {
		return nil, err
	}

	var nonEmptySideNodes [][]byte
	for _, node := range sideNodes {
		if node != nil {
			nonEmptySideNodes = append(nonEmptySideNodes, node)
		}
	}

	var nonMembershipLeafData []byte
	if !bytes.Equal(pathNodes[0], smt.th.placeholder()) {
		actualPath, _ := smt.th.parseLeaf(leafData)
		if !bytes.Equal(actualPath, path) {
			nonMembershipLeafData = leafData
		}
	}

	return &MerkleProof{
		SideNodes:             nonEmptySideNodes,
		NonMembershipLeafData: nonMembershipLeafData,
		SiblingData:           siblingData,
	}, nil
}

// AddBranch populates this tree's stores with the subtree a proof attests
// to, so that GetDescend, Prove, and subsequent Update calls work against
// that branch without the full source tree being present. If value is
// non-empty the leaf's value is also written to the value store; pass the
// empty value when reconstructing a non-membership branch. The proof is
// verified against the tree's current root (normally set via Import at
// construction time). Returns ErrBadProof if it does not verify.
func (smt *SparseMerkleTree) AddBranch(proof *MerkleProof, key []byte, value []byte) error {
	ok, updates := verifyProofWithUpdates(proof, smt.root, key, value, smt.th.newHasher)
	if !ok {
		return ErrBadProof
	}

	if !bytes.Equal(value, defaultValue) {
		path := smt.th.path(key)
		if err := smt.values.Set(path, value); err != nil {
			return err
		}
	}

	for _, update := range updates {
		if err := smt.nodes.Set(update.hash, update.data); err != nil {
			return err
		}
	}

	if proof.SiblingData != nil && len(proof.SideNodes) > 0 {
		if err := smt.nodes.Set(proof.SideNodes[0], proof.SiblingData); err != nil {
			return err
		}
	}
	return nil
}
