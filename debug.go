package smt

import (
	"bytes"
	"fmt"
	"io"
)

// PrintSMT writes a level-by-level rendering of the subtree reachable from
// root to w, for interactive debugging of small trees. Leaves print their
// stored value; internal nodes are descended breadth-first. It is a
// read-only diagnostic: it never mutates either store.
func (smt *SparseMerkleTree) PrintSMT(w io.Writer, root []byte) error {
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "root: %x\n", root)

	if bytes.Equal(root, smt.th.placeholder()) {
		fmt.Fprintln(w, "(empty tree)")
		return nil
	}

	currentData, ok, err := smt.nodes.Get(root)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(w, "(root not present in node store)")
		return nil
	}

	level := 1
	var current [][]byte
	fmt.Fprintf(w, "level %d: ", level)
	if smt.th.isLeaf(currentData) {
		path, _ := smt.th.parseLeaf(currentData)
		value, _, err := smt.values.Get(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "leaf path=%x value=%q\n", path, value)
		return nil
	}
	fmt.Fprintln(w, "(internal)")
	current = append(current, currentData)

	for len(current) > 0 {
		level++
		var next [][]byte
		fmt.Fprintf(w, "level %d: ", level)
		for _, data := range current {
			left, right := smt.th.parseNode(data)
			for _, child := range [][]byte{left, right} {
				if bytes.Equal(child, smt.th.placeholder()) {
					fmt.Fprint(w, "_ ")
					continue
				}
				childData, ok, err := smt.nodes.Get(child)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprint(w, "? ")
					continue
				}
				if smt.th.isLeaf(childData) {
					path, _ := smt.th.parseLeaf(childData)
					value, _, err := smt.values.Get(path)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "[%x=%q] ", path, value)
					continue
				}
				fmt.Fprint(w, "(x) ")
				next = append(next, childData)
			}
		}
		fmt.Fprintln(w)
		current = next
	}
	return nil
}
