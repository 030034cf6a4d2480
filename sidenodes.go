package smt

import "bytes"

// sideNodesForRoot walks from root toward path, collecting at each
// descended level the sibling (sideNodes) and the on-path node
// (pathNodes). Both are collected root-first and reversed before returning,
// so they come back bottom-first (deepest first): pathNodes[0] is the leaf (or the
// placeholder / colliding leaf the walk ended at), pathNodes[len-1] is the
// root.
//
// currentData is the raw serialized bytes of pathNodes[0] if it is not a
// placeholder, else nil. siblingData is the raw serialized bytes of
// sideNodes[0], populated only when getSiblingData is requested (updatable
// proofs need it to let a verifier reconstruct the bottom sibling).
func (smt *SparseMerkleTree) sideNodesForRoot(path []byte, root []byte, getSiblingData bool) (sideNodes [][]byte, pathNodes [][]byte, currentData []byte, siblingData []byte, err error) {
	sideNodes = make([][]byte, 0, smt.depth())
	pathNodes = make([][]byte, 0, smt.depth()+1)
	pathNodes = append(pathNodes, root)

	if bytes.Equal(root, smt.th.placeholder()) {
		return sideNodes, pathNodes, nil, nil, nil
	}

	currentData, ok, err := smt.nodes.Get(root)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if !ok {
		return nil, nil, nil, nil, &NodeNotFoundError{Hash: root}
	}
	if smt.th.isLeaf(currentData) {
		return sideNodes, pathNodes, currentData, nil, nil
	}

	var nodeHash, sideNode []byte
	for i := 0; i < smt.depth(); i++ {
		leftNode, rightNode := smt.th.parseNode(currentData)

		if getBitAtFromMSB(path, i) == right {
			sideNode, nodeHash = leftNode, rightNode
		} else {
			sideNode, nodeHash = rightNode, leftNode
		}
		sideNodes = append(sideNodes, sideNode)
		pathNodes = append(pathNodes, nodeHash)

		if bytes.Equal(nodeHash, smt.th.placeholder()) {
			currentData = nil
			break
		}

		currentData, ok, err = smt.nodes.Get(nodeHash)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if !ok {
			return nil, nil, nil, nil, &NodeNotFoundError{Hash: nodeHash}
		}
		if smt.th.isLeaf(currentData) {
			break
		}
	}

	if getSiblingData {
		var ok bool
		siblingData, ok, err = smt.nodes.Get(sideNode)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if !ok {
			return nil, nil, nil, nil, &NodeNotFoundError{Hash: sideNode}
		}
	}

	return reverseByteSlices(sideNodes), reverseByteSlices(pathNodes), currentData, siblingData, nil
}

// NodeNotFoundError is returned when the engine descends to a node hash it
// expects to be present (recorded moments earlier as a sibling or as the
// result of parsing its parent) but the node store no longer has it. Under
// correct single-writer use this indicates store corruption or a caller
// operating against a root whose supporting nodes were orphaned by
// RemovePathForRoot/RemovePath.
type NodeNotFoundError struct {
	Hash []byte
}

func (e *NodeNotFoundError) Error() string {
	return "smt: node not found for hash"
}
