package smt

import "bytes"

// MerkleProof is a membership or non-membership proof for a single key
// against a single root. It carries no reference to any store or tree: its
// Verify method is pure and may be called concurrently from any number of
// goroutines against any root, key, and value.
type MerkleProof struct {
	// SideNodes are the siblings on the path from leaf to root,
	// bottom-first. A sibling that is an empty subtree appears as the
	// placeholder (all zero bytes); Compact elides those.
	SideNodes [][]byte

	// NonMembershipLeafData is the serialized bytes of the unrelated leaf
	// occupying the key's position, present only for non-membership proofs
	// where the walk terminated at a leaf with a different path. Nil for
	// membership proofs and for non-membership proofs that terminated at a
	// placeholder.
	NonMembershipLeafData []byte

	// SiblingData is the raw serialized bytes of SideNodes[0], present only
	// on updatable proofs. It lets a verifier (via AddBranch) reconstruct
	// that sibling's subtree without re-fetching it from the source tree.
	SiblingData []byte
}

// nodeUpdate is a (hash, serialized bytes) pair recorded while replaying a
// proof's hash chain, used by AddBranch to repopulate a node store.
type nodeUpdate struct {
	hash []byte
	data []byte
}

// Verify checks that proof binds key to value under root, using newHasher
// to reproduce the tree's hash domain. An empty value asserts
// non-membership.
func (proof *MerkleProof) Verify(root []byte, key []byte, value []byte, newHasher HasherFactory) bool {
	ok, _ := proof.verify(root, key, value, newHasher, false)
	return ok
}

// verifyProofWithUpdates is Verify, but additionally returns every
// (hash, serialized bytes) pair computed while replaying the proof's chain,
// in leaf-to-root order. AddBranch uses these to populate a node store with
// exactly the nodes the proof attests to.
func verifyProofWithUpdates(proof *MerkleProof, root []byte, key []byte, value []byte, newHasher HasherFactory) (bool, []nodeUpdate) {
	return proof.verify(root, key, value, newHasher, true)
}

func (proof *MerkleProof) verify(root []byte, key []byte, value []byte, newHasher HasherFactory, collectUpdates bool) (bool, []nodeUpdate) {
	th := newTreeHasher(newHasher)
	if !proof.sanityCheck(th) {
		return false, nil
	}

	path := th.path(key)
	var currentHash []byte
	var updates []nodeUpdate

	if bytes.Equal(value, defaultValue) {
		if proof.NonMembershipLeafData != nil {
			actualPath, actualValueHash := th.parseLeaf(proof.NonMembershipLeafData)
			if bytes.Equal(actualPath, path) {
				// The proof names a leaf at our own position: this is not
				// non-membership, it's a (mis-)claim the caller's key IS
				// present with some other value.
				return false, nil
			}
			currentHash, _ = th.digestLeaf(actualPath, actualValueHash)
		} else {
			currentHash = th.placeholder()
		}
	} else {
		valueHash := th.digest(value)
		var serialized []byte
		currentHash, serialized = th.digestLeaf(path, valueHash)
		if collectUpdates {
			updates = append(updates, nodeUpdate{hash: currentHash, data: serialized})
		}
	}

	numSideNodes := len(proof.SideNodes)
	for i := 0; i < numSideNodes; i++ {
		sideNode := proof.SideNodes[i]

		var serialized []byte
		if getBitAtFromMSB(path, numSideNodes-1-i) == right {
			currentHash, serialized = th.digestNode(sideNode, currentHash)
		} else {
			currentHash, serialized = th.digestNode(currentHash, sideNode)
		}
		if collectUpdates {
			updates = append(updates, nodeUpdate{hash: currentHash, data: serialized})
		}
	}

	return bytes.Equal(currentHash, root), updates
}

// sanityCheck rejects structurally malformed proofs before any hashing is
// done: too many sidenodes would allow a CPU-DoS attack, and mis-sized
// entries can't possibly be valid hashes for this hasher.
func (proof *MerkleProof) sanityCheck(th *treeHasher) bool {
	if len(proof.SideNodes) > th.depth() {
		return false
	}
	if proof.NonMembershipLeafData != nil {
		if len(proof.NonMembershipLeafData) != len(leafPrefix)+2*th.pathSize {
			return false
		}
	}
	for _, sideNode := range proof.SideNodes {
		if len(sideNode) != th.pathSize {
			return false
		}
	}
	if len(proof.SideNodes) == 0 {
		return true
	}
	if proof.SiblingData != nil {
		siblingHash := th.digest(proof.SiblingData)
		return bytes.Equal(proof.SideNodes[0], siblingHash)
	}
	return true
}

// Compact converts proof into its compact form: placeholder sidenodes are
// elided and recorded in a bitmask, shrinking the wire size of proofs for
// sparse, mostly-empty regions of the tree. Returns ErrBadProof if proof
// itself fails sanity first.
func (proof *MerkleProof) Compact(newHasher HasherFactory) (*CompactMerkleProof, error) {
	th := newTreeHasher(newHasher)
	if !proof.sanityCheck(th) {
		return nil, ErrBadProof
	}

	bitmask := make([]byte, (len(proof.SideNodes)+7)/8)
	var compacted [][]byte
	placeholder := th.placeholder()

	for i, sideNode := range proof.SideNodes {
		if bytes.Equal(sideNode, placeholder) {
			bitmask[i/8] |= 1 << uint(i%8)
		} else {
			compacted = append(compacted, sideNode)
		}
	}

	return &CompactMerkleProof{
		SideNodes:             compacted,
		NonMembershipLeafData: proof.NonMembershipLeafData,
		Bitmask:               bitmask,
		NumSideNodes:          len(proof.SideNodes),
		SiblingData:           proof.SiblingData,
	}, nil
}

// CompactMerkleProof is the elided form of MerkleProof: placeholder
// sidenodes are represented by a set bit in Bitmask rather than being
// carried explicitly, with NumSideNodes recording the original length
// needed to decompact.
type CompactMerkleProof struct {
	SideNodes             [][]byte
	NonMembershipLeafData []byte
	Bitmask               []byte
	NumSideNodes          int
	SiblingData           []byte
}

// Decompact reconstructs the full MerkleProof this compact proof was built
// from. Returns ErrBadProof if the compact proof fails its own sanity check
// or if the bitmask and the stored sidenodes disagree in length.
func (proof *CompactMerkleProof) Decompact(newHasher HasherFactory) (*MerkleProof, error) {
	th := newTreeHasher(newHasher)
	if !proof.sanityCheck(th) {
		return nil, ErrBadProof
	}

	placeholder := th.placeholder()
	sideNodes := make([][]byte, proof.NumSideNodes)
	position := 0
	for i := 0; i < proof.NumSideNodes; i++ {
		if proof.Bitmask[i/8]&(1<<uint(i%8)) != 0 {
			sideNodes[i] = placeholder
			continue
		}
		if position >= len(proof.SideNodes) {
			return nil, ErrBadProof
		}
		sideNodes[i] = proof.SideNodes[position]
		position++
	}
	if position != len(proof.SideNodes) {
		return nil, ErrBadProof
	}

	return &MerkleProof{
		SideNodes:             sideNodes,
		NonMembershipLeafData: proof.NonMembershipLeafData,
		SiblingData:           proof.SiblingData,
	}, nil
}

// Verify decompacts proof and verifies the result. Returns false (rather
// than erroring) if decompaction itself fails, matching MerkleProof.Verify's
// boolean contract.
func (proof *CompactMerkleProof) Verify(root []byte, key []byte, value []byte, newHasher HasherFactory) bool {
	full, err := proof.Decompact(newHasher)
	if err != nil {
		return false
	}
	return full.Verify(root, key, value, newHasher)
}

func (proof *CompactMerkleProof) sanityCheck(th *treeHasher) bool {
	if proof.NumSideNodes > th.depth() {
		return false
	}
	if len(proof.Bitmask) != (proof.NumSideNodes+7)/8 {
		return false
	}
	if proof.NumSideNodes > 0 && len(proof.SideNodes) != proof.NumSideNodes-countSetBits(proof.Bitmask) {
		return false
	}
	return true
}
