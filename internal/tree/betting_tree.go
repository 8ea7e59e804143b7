package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/cfrsolve/internal/cfrerr"
)

// BettingTree is the rooted DAG of nodes built by internal/treebuilder or
// read from the §6 wire format. Per-(player,street) nonterminal counts and
// the flat terminal array are populated once construction/reading finishes.
type BettingTree struct {
	Root             *Node
	InitialStreet    int
	NumTerminalsVal  int
	NumNonterminals  [][]int // [player][street]
	Terminals        []*Node // indexed by terminal ID
}

func (t *BettingTree) NumTerminals() int { return t.NumTerminalsVal }

func (t *BettingTree) NumNonterminalsAt(p, st int) int {
	if p < 0 || p >= len(t.NumNonterminals) {
		return 0
	}
	row := t.NumNonterminals[p]
	if st < 0 || st >= len(row) {
		return 0
	}
	return row[st]
}

// PathToNamedNode parses a textual action sequence of tokens "C" (call),
// "F" (fold), "B<int>" or bare "B" (the sole bet, limit trees) and returns
// the sequence of nodes traversed starting at root. A "B" token matches the
// successor whose resulting bet-to, when called, yields a pot-fraction-implied
// bet size equal to the given int, matched by
// (after_pot - before_pot)/2 == k exactly.
func PathToNamedNode(root *Node, name string) ([]*Node, error) {
	nodes := []*Node{root}
	cur := root
	for _, tok := range strings.Fields(name) {
		if cur.Terminal() {
			return nil, cfrerr.Treef("path_to_named_node", "action %q reached after terminal node", tok)
		}
		var next *Node
		switch {
		case tok == "C":
			idx := cur.CallSuccIndex()
			if idx < 0 {
				return nil, cfrerr.Treef("path_to_named_node", "no call successor for token %q", tok)
			}
			next = cur.Succs[idx]
		case tok == "F":
			idx := cur.FoldSuccIndex()
			if idx < 0 {
				return nil, cfrerr.Treef("path_to_named_node", "no fold successor for token %q", tok)
			}
			next = cur.Succs[idx]
		case strings.HasPrefix(tok, "B"):
			rest := tok[1:]
			if rest == "" {
				next = soleBetSucc(cur)
				if next == nil {
					return nil, cfrerr.Treef("path_to_named_node", "no sole bet successor")
				}
			} else {
				k, err := strconv.Atoi(rest)
				if err != nil {
					return nil, cfrerr.Treef("path_to_named_node", "bad bet token %q: %v", tok, err)
				}
				next = matchBetSucc(cur, k)
				if next == nil {
					return nil, cfrerr.Treef("path_to_named_node", "no bet successor matches size %d", k)
				}
			}
		default:
			return nil, cfrerr.Treef("path_to_named_node", "unrecognized token %q", tok)
		}
		nodes = append(nodes, next)
		cur = next
	}
	return nodes, nil
}

func betSuccs(n *Node) []*Node {
	start := 0
	if n.HasCallSucc() {
		start++
	}
	if n.HasFoldSucc() {
		start++
	}
	return n.Succs[start:]
}

func soleBetSucc(n *Node) *Node {
	bs := betSuccs(n)
	if len(bs) != 1 {
		return nil
	}
	return bs[0]
}

// matchBetSucc finds the bet successor s such that calling it advances the
// bet-to by 2*k over n's current bet-to (i.e. k is "the bet size" in the
// conventional half-pot-increment sense).
func matchBetSucc(n *Node, k int) *Node {
	before := int(n.LastBetTo)
	for _, s := range betSuccs(n) {
		callIdx := s.CallSuccIndex()
		if callIdx < 0 {
			continue
		}
		after := int(s.Succs[callIdx].LastBetTo)
		if (after-before)/2 == k {
			return s
		}
	}
	return nil
}

// Subtree clones the subgraph rooted at node into a freshly rooted
// BettingTree: terminal IDs are renumbered from zero and nonterminal IDs
// reassigned densely per (player,street). Reentrancy within the subtree is
// preserved (a node reached twice keeps one clone).
func Subtree(node *Node, numPlayers, maxStreet int) *BettingTree {
	clones := make(map[*Node]*Node)
	nextTerminal := uint32(0)
	counts := make([][]int, numPlayers)
	for p := range counts {
		counts[p] = make([]int, maxStreet+1)
	}

	var clone func(n *Node) *Node
	clone = func(n *Node) *Node {
		if c, ok := clones[n]; ok {
			return c
		}
		c := &Node{
			LastBetTo:    n.LastBetTo,
			NumSuccs:     n.NumSuccs,
			Flags:        n.Flags,
			PlayerActing: n.PlayerActing,
			NumRemaining: n.NumRemaining,
		}
		clones[n] = c
		if n.Terminal() {
			c.ID = nextTerminal
			nextTerminal++
			return c
		}
		p, st := int(n.PlayerActing), n.Street()
		c.ID = uint32(counts[p][st])
		counts[p][st]++
		c.Succs = make([]*Node, len(n.Succs))
		for i, s := range n.Succs {
			c.Succs[i] = clone(s)
		}
		return c
	}

	newRoot := clone(node)
	t := &BettingTree{
		Root:            newRoot,
		InitialStreet:   newRoot.Street(),
		NumTerminalsVal: int(nextTerminal),
		NumNonterminals: counts,
	}
	t.Terminals = make([]*Node, nextTerminal)
	for _, c := range clones {
		if c.Terminal() {
			t.Terminals[c.ID] = c
		}
	}
	return t
}

// CountReachable walks the DAG once (visiting each node only on first
// encounter) and returns the number of distinct reachable terminal and
// nonterminal nodes, used by the invariant check
// num_terminals + sum(num_nonterminals[p,st]) == |reachable nodes|.
func CountReachable(root *Node) (terminals, nonterminals int) {
	seen := make(map[*Node]bool)
	var walk func(n *Node)
	walk = func(n *Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		if n.Terminal() {
			terminals++
			return
		}
		nonterminals++
		for _, s := range n.Succs {
			walk(s)
		}
	}
	walk(root)
	return
}

func (n *Node) String() string {
	if n.Showdown() {
		return fmt.Sprintf("showdown(st=%d,nt=%d,rem=%d)", n.Street(), n.ID, n.NumRemaining)
	}
	if n.Fold() {
		return fmt.Sprintf("fold(st=%d,remaining_player=%d)", n.Street(), n.PlayerActing)
	}
	return fmt.Sprintf("nonterminal(id=%d,st=%d,pa=%d,succs=%d)", n.ID, n.Street(), n.PlayerActing, n.NumSuccs)
}
