package tree

import (
	"fmt"
	"io"
)

// FindNode locates the nonterminal at (playerActing, street, nt), walking
// the reachable graph once (reentrancy-tolerant). Grounded on
// original_source/src/show_node.cpp's "<st> <pa> <nt>" lookup, adapted from
// a standalone CLI argument triple to a reusable tree query.
func FindNode(root *Node, playerActing, street int, nt uint32) *Node {
	seen := make(map[*Node]bool)
	var found *Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if found != nil || seen[n] {
			return
		}
		seen[n] = true
		if !n.Terminal() && int(n.PlayerActing) == playerActing && n.Street() == street && n.ID == nt {
			found = n
			return
		}
		for _, s := range n.Succs {
			walk(s)
			if found != nil {
				return
			}
		}
	}
	walk(root)
	return found
}

// Fprint writes n and, for a nonterminal, each of its immediate successors
// (one line each), to w. Matches show_node.cpp's PrintNode: it shows one
// node's local neighborhood rather than the whole subtree.
func Fprint(w io.Writer, n *Node) error {
	if n == nil {
		_, err := fmt.Fprintln(w, "node not found")
		return err
	}
	if _, err := fmt.Fprintln(w, n.String()); err != nil {
		return err
	}
	for i, s := range n.Succs {
		if _, err := fmt.Fprintf(w, "  succ[%d] -> %s\n", i, s.String()); err != nil {
			return err
		}
	}
	return nil
}
