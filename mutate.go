package smt

import (
	"bytes"
	"errors"
	"fmt"
)

// Update sets key to value in the tree, updates the tree's root, and
// returns the new root. Passing an empty value deletes key instead.
func (smt *SparseMerkleTree) Update(key []byte, value []byte) ([]byte, error) {
	newRoot, err := smt.UpdateForRoot(key, value, smt.root)
	if err != nil {
		return nil, err
	}
	smt.root = newRoot
	return newRoot, nil
}

// Remove deletes key from the tree and returns the new root. Equivalent to
// Update(key, nil).
func (smt *SparseMerkleTree) Remove(key []byte) ([]byte, error) {
	return smt.Update(key, defaultValue)
}

// UpdateForRoot performs Update against an explicit root without mutating
// smt.root. The backing stores ARE still mutated: new nodes are written and
// superseded ones are orphaned, exactly as in the mutating form.
func (smt *SparseMerkleTree) UpdateForRoot(key []byte, value []byte, root []byte) ([]byte, error) {
	path := smt.th.path(key)
	sideNodes, pathNodes, oldLeafData, _, err := smt.sideNodesForRoot(path, root, false)
	if err != nil {
		return nil, fmt.Errorf("smt: walk sidenodes: %w", err)
	}

	if bytes.Equal(value, defaultValue) {
		newRoot, err := smt.deleteWithSideNodes(path, sideNodes, pathNodes, oldLeafData)
		if errors.Is(err, errKeyAlreadyEmpty) {
			return root, nil
		}
		return newRoot, err
	}
	return smt.updateWithSideNodes(path, value, root, sideNodes, pathNodes, oldLeafData)
}

// RemoveForRoot is UpdateForRoot(key, nil, root).
func (smt *SparseMerkleTree) RemoveForRoot(key []byte, root []byte) ([]byte, error) {
	return smt.UpdateForRoot(key, defaultValue, root)
}

func (smt *SparseMerkleTree) deleteWithSideNodes(path []byte, sideNodes [][]byte, pathNodes [][]byte, oldLeafData []byte) ([]byte, error) {
	if bytes.Equal(pathNodes[0], smt.th.placeholder()) {
		return nil, errKeyAlreadyEmpty
	}
	actualPath, _ := smt.th.parseLeaf(oldLeafData)
	if !bytes.Equal(path, actualPath) {
		return nil, errKeyAlreadyEmpty
	}

	for _, node := range pathNodes {
		if bytes.Equal(node, smt.th.placeholder()) {
			continue
		}
		if err := smt.nodes.Remove(node); err != nil {
			return nil, err
		}
	}
	if err := smt.values.Remove(path); err != nil {
		return nil, err
	}

	var currentHash, currentData []byte
	nonPlaceholderReached := false
	for i, sideNode := range sideNodes {
		if currentData == nil {
			sideNodeValue, ok, err := smt.nodes.Get(sideNode)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &NodeNotFoundError{Hash: sideNode}
			}

			if smt.th.isLeaf(sideNodeValue) {
				// The sibling is a lone leaf; bubble it up without
				// materializing an internal node at this level.
				currentHash = sideNode
				currentData = sideNode
				continue
			}
			currentData = smt.th.placeholder()
			nonPlaceholderReached = true
		}

		if !nonPlaceholderReached && bytes.Equal(sideNode, smt.th.placeholder()) {
			continue
		}
		nonPlaceholderReached = true

		if getBitAtFromMSB(path, len(sideNodes)-1-i) == right {
			currentHash, currentData = smt.th.digestNode(sideNode, currentData)
		} else {
			currentHash, currentData = smt.th.digestNode(currentData, sideNode)
		}
		if err := smt.nodes.Set(currentHash, currentData); err != nil {
			return nil, err
		}
		currentData = currentHash
	}

	if currentHash == nil {
		currentHash = smt.th.placeholder()
	}
	return currentHash, nil
}

func (smt *SparseMerkleTree) updateWithSideNodes(path []byte, value []byte, priorRoot []byte, sideNodes [][]byte, pathNodes [][]byte, oldLeafData []byte) ([]byte, error) {
	valueHash := smt.th.digest(value)
	currentHash, currentData := smt.th.digestLeaf(path, valueHash)
	if err := smt.nodes.Set(currentHash, currentData); err != nil {
		return nil, err
	}
	currentData = currentHash

	var commonPrefixCount int
	var oldValueHash []byte
	if bytes.Equal(pathNodes[0], smt.th.placeholder()) {
		commonPrefixCount = smt.depth()
	} else {
		actualPath, vh := smt.th.parseLeaf(oldLeafData)
		oldValueHash = vh
		commonPrefixCount = countCommonPrefix(path, actualPath)
	}

	if commonPrefixCount != smt.depth() {
		// Splitter case: pair the new leaf with the displaced leaf at the
		// first bit where their paths diverge.
		if getBitAtFromMSB(path, commonPrefixCount) == right {
			currentHash, currentData = smt.th.digestNode(pathNodes[0], currentData)
		} else {
			currentHash, currentData = smt.th.digestNode(currentData, pathNodes[0])
		}
		if err := smt.nodes.Set(currentHash, currentData); err != nil {
			return nil, err
		}
		currentData = currentHash
	} else if oldValueHash != nil {
		if bytes.Equal(oldValueHash, valueHash) {
			// Same value at the same path: nothing changed.
			return priorRoot, nil
		}
		if err := smt.nodes.Remove(pathNodes[0]); err != nil {
			return nil, err
		}
		if err := smt.values.Remove(path); err != nil {
			return nil, err
		}
	}

	// Orphan the remaining ancestors on the old path; they are superseded
	// by the nodes this function is about to build.
	for _, node := range pathNodes[1:] {
		if bytes.Equal(node, smt.th.placeholder()) {
			continue
		}
		if err := smt.nodes.Remove(node); err != nil {
			return nil, err
		}
	}

	offsetOfSideNodes := smt.depth() - len(sideNodes)
	for i := 0; i < smt.depth(); i++ {
		var sideNode []byte

		if i-offsetOfSideNodes < 0 || sideNodes[i-offsetOfSideNodes] == nil {
			if commonPrefixCount != smt.depth() && commonPrefixCount > smt.depth()-1-i {
				// Above the splitter, the two colliding paths still agree,
				// so the tree must commit to depth >= commonPrefixCount+1
				// even though no sidenode was recorded here: fabricate a
				// placeholder sibling.
				sideNode = smt.th.placeholder()
			} else {
				continue
			}
		} else {
			sideNode = sideNodes[i-offsetOfSideNodes]
		}

		if getBitAtFromMSB(path, smt.depth()-1-i) == right {
			currentHash, currentData = smt.th.digestNode(sideNode, currentData)
		} else {
			currentHash, currentData = smt.th.digestNode(currentData, sideNode)
		}
		if err := smt.nodes.Set(currentHash, currentData); err != nil {
			return nil, err
		}
		currentData = currentHash
	}

	if err := smt.values.Set(path, value); err != nil {
		return nil, err
	}
	return currentHash, nil
}
