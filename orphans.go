package smt

import "bytes"

// RemovePathForRoot walks key's path under root and removes every node
// found along it, and key's value, from the stores. A leaf belonging to a
// different key at the end of the walk is left in place. Update/Remove already orphan
// the nodes they themselves supersede, so this is not needed for ordinary
// single-root use. It exists for callers juggling more than one live root
// forked from a common ancestor (e.g. speculative state under consideration
// before being committed via Update): once a fork is discarded,
// RemovePathForRoot reclaims the nodes unique to it. Use RemovePath instead
// when some of those nodes are shared with a fork you are keeping.
func (smt *SparseMerkleTree) RemovePathForRoot(key []byte, root []byte) error {
	path := smt.th.path(key)
	_, pathNodes, leafData, _, err := smt.sideNodesForRoot(path, root, false)
	if err != nil {
		return err
	}
	return smt.removePathNodes(path, pathNodes, leafData, nil)
}

// RemovePath is RemovePathForRoot, except nodes also reachable from
// keepRoot's path for the same key are left untouched.
func (smt *SparseMerkleTree) RemovePath(key []byte, removeRoot []byte, keepRoot []byte) error {
	path := smt.th.path(key)
	_, pathNodes, leafData, _, err := smt.sideNodesForRoot(path, removeRoot, false)
	if err != nil {
		return err
	}
	_, keepPathNodes, _, _, err := smt.sideNodesForRoot(path, keepRoot, false)
	if err != nil {
		return err
	}

	keep := make(map[string]struct{}, len(keepPathNodes))
	for _, node := range keepPathNodes {
		keep[string(node)] = struct{}{}
	}
	return smt.removePathNodes(path, pathNodes, leafData, keep)
}

func (smt *SparseMerkleTree) removePathNodes(path []byte, pathNodes [][]byte, leafData []byte, keep map[string]struct{}) error {
	for i, node := range pathNodes {
		if i == 0 && leafData != nil {
			actualPath, _ := smt.th.parseLeaf(leafData)
			if !bytes.Equal(actualPath, path) {
				continue
			}
			if _, kept := keep[string(pathNodes[0])]; kept {
				continue
			}
			if err := smt.values.Remove(path); err != nil {
				return err
			}
		}
		if bytes.Equal(node, smt.th.placeholder()) {
			continue
		}
		if _, kept := keep[string(node)]; kept {
			continue
		}
		if err := smt.nodes.Remove(node); err != nil {
			return err
		}
	}
	return nil
}

// RemovePathsForRoot is RemovePathForRoot applied to several keys at once
// under the same root, deduplicating nodes shared between their paths so
// each is only removed once.
func (smt *SparseMerkleTree) RemovePathsForRoot(keys [][]byte, root []byte) error {
	seen := map[string]struct{}{}
	var toRemove [][]byte

	for _, key := range keys {
		path := smt.th.path(key)
		_, pathNodes, leafData, _, err := smt.sideNodesForRoot(path, root, false)
		if err != nil {
			return err
		}

		if leafData != nil {
			actualPath, _ := smt.th.parseLeaf(leafData)
			if bytes.Equal(actualPath, path) {
				if err := smt.values.Remove(path); err != nil {
					return err
				}
				if err := smt.nodes.Remove(pathNodes[0]); err != nil {
					return err
				}
			}
		}

		for i, node := range pathNodes {
			if i == 0 || bytes.Equal(node, smt.th.placeholder()) {
				continue
			}
			if _, ok := seen[string(node)]; !ok {
				seen[string(node)] = struct{}{}
				toRemove = append(toRemove, node)
			}
		}
	}

	for _, node := range toRemove {
		if err := smt.nodes.Remove(node); err != nil {
			return err
		}
	}
	return nil
}
