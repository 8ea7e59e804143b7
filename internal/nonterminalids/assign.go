// Package nonterminalids assigns dense, per-(player,street) nonterminal IDs
// by a single preorder traversal, tolerating reentrancy: a node visited a
// second time keeps whatever ID it was given on first visit and the
// traversal does not recurse into it again.
//
// This is a direct, small port of the original nonterminal_ids.cpp
// (original_source): AssignNonterminalIDs walks the tree once, handing out
// the next free (player,street) counter value to every not-yet-assigned
// nonterminal it visits; CountNumNonterminals is the reentrancy-tolerant
// companion used by readers that load a tree whose IDs were already
// assigned (e.g. after Read), to recover num_nonterminals[p][st] without
// re-numbering.
package nonterminalids

import "github.com/lox/cfrsolve/internal/tree"

// Assign numbers every reachable nonterminal densely per (player,street),
// returning num_nonterminals[player][street]. numPlayers and maxStreet size
// the returned table.
func Assign(root *tree.Node, numPlayers, maxStreet int) [][]int {
	counts := make([][]int, numPlayers)
	for p := range counts {
		counts[p] = make([]int, maxStreet+1)
	}
	visited := make(map[*tree.Node]bool)
	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		if n.Terminal() {
			return
		}
		if visited[n] {
			return
		}
		visited[n] = true
		st := n.Street()
		p := int(n.PlayerActing)
		n.ID = uint32(counts[p][st])
		counts[p][st]++
		for _, s := range n.Succs {
			walk(s)
		}
	}
	walk(root)
	return counts
}

// Count recovers num_nonterminals[player][street] from a tree whose IDs
// have already been assigned (e.g. freshly Read from disk), tolerating
// reentrancy: a lower-or-equal nonterminal ID observed on a second visit
// means the node was already counted, and recursion stops there (mirrors
// CountNumNonterminals in the original nonterminal_ids.cpp).
func Count(root *tree.Node, numPlayers, maxStreet int) [][]int {
	counts := make([][]int, numPlayers)
	for p := range counts {
		counts[p] = make([]int, maxStreet+1)
	}
	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		if n.Terminal() {
			return
		}
		p := int(n.PlayerActing)
		st := n.Street()
		ntID := int(n.ID)
		if ntID >= counts[p][st] {
			counts[p][st] = ntID + 1
		} else {
			return
		}
		for _, s := range n.Succs {
			walk(s)
		}
	}
	walk(root)
	return counts
}
