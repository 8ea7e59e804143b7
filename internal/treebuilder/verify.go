package treebuilder

import (
	"github.com/lox/cfrsolve/internal/cfrerr"
	"github.com/lox/cfrsolve/internal/tree"
)

// VerifyTree checks a built tree against its structural invariants, adapted
// from original_source/src/verify_tree.cpp: terminal num_remaining, street
// range and monotonicity, call/fold successor positions, and strictly
// increasing bet successors. It does not check which player acts at each
// node (the original's heads-up "expected_pa alternates by XOR" check), and
// numPlayers is not consulted. Every violation returns a TreeError instead
// of the original's exit(-1).
func VerifyTree(root *tree.Node, numPlayers, maxStreet int) error {
	seen := make(map[*tree.Node]bool)
	return verify(root, seen, maxStreet)
}

func verify(n *tree.Node, seen map[*tree.Node]bool, maxStreet int) error {
	if seen[n] {
		return nil
	}
	seen[n] = true

	if n.Terminal() {
		if n.Fold() && n.NumRemaining < 1 {
			return cfrerr.Treef("verify_tree", "fold terminal id %d has num_remaining %d < 1", n.TerminalID(), n.NumRemaining)
		}
		if n.Showdown() && n.NumRemaining < 2 {
			return cfrerr.Treef("verify_tree", "showdown terminal id %d has num_remaining %d < 2", n.TerminalID(), n.NumRemaining)
		}
		return nil
	}

	if n.Street() < 0 || n.Street() > maxStreet {
		return cfrerr.Treef("verify_tree", "nonterminal id %d has out-of-range street %d", n.NonterminalID(), n.Street())
	}
	if n.NumSuccs == 0 {
		return cfrerr.Treef("verify_tree", "nonterminal id %d has zero successors", n.NonterminalID())
	}

	if n.HasCallSucc() && n.CallSuccIndex() != 0 {
		return cfrerr.Treef("verify_tree", "nonterminal id %d: call successor not at index 0", n.NonterminalID())
	}
	if n.HasFoldSucc() {
		fi := n.FoldSuccIndex()
		wantFold := 0
		if n.HasCallSucc() {
			wantFold = 1
		}
		if fi != wantFold {
			return cfrerr.Treef("verify_tree", "nonterminal id %d: fold successor at index %d, want %d", n.NonterminalID(), fi, wantFold)
		}
	}

	betStart := 0
	if n.HasCallSucc() {
		betStart++
	}
	if n.HasFoldSucc() {
		betStart++
	}
	prevBetTo := -1
	for i := betStart; i < len(n.Succs); i++ {
		s := n.Succs[i]
		betTo := int(s.LastBetTo)
		if s.Terminal() && s.Fold() {
			continue
		}
		if betTo <= prevBetTo {
			return cfrerr.Treef("verify_tree", "nonterminal id %d: bet successors not strictly increasing (%d after %d)", n.NonterminalID(), betTo, prevBetTo)
		}
		prevBetTo = betTo
	}

	for _, s := range n.Succs {
		if s.Street() < n.Street() {
			return cfrerr.Treef("verify_tree", "nonterminal id %d: successor street %d decreases from %d", n.NonterminalID(), s.Street(), n.Street())
		}
		if err := verify(s, seen, maxStreet); err != nil {
			return err
		}
	}
	return nil
}
