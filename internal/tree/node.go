// Package tree implements Node and BettingTree, the immutable extensive-form
// betting graph. Reentrancy means this is a DAG, not necessarily a tree:
// the same *Node may be reachable via more than one action prefix on a
// given street.
package tree

const (
	// Unassigned is the sentinel id a Node carries before
	// internal/nonterminalids.Assign runs.
	Unassigned = ^uint32(0)

	flagHasCallSucc uint16 = 1 << 0
	flagHasFoldSucc uint16 = 1 << 1
	flagSpecial     uint16 = 1 << 2
	flagStreetMask  uint16 = 3 << 3
	flagStreetShift        = 3

	// PlayerActingShowdown is the sentinel PlayerActing carries at a showdown
	// terminal.
	PlayerActingShowdown uint8 = 0xFF
)

// Node is either terminal (NumSuccs == 0) or nonterminal, including the
// bit-packed 16-bit Flags field (has-call-succ, has-fold-succ, street) used by the
// on-disk wire format.
type Node struct {
	ID uint32

	LastBetTo uint16
	NumSuccs  uint16
	Flags     uint16

	PlayerActing uint8
	NumRemaining uint8

	Succs []*Node
}

func streetFlags(street int) uint16 {
	return (uint16(street) << flagStreetShift) & flagStreetMask
}

// NewNonterminal builds a nonterminal node. succs must already be in the
// canonical (call, fold, bets-ascending) order; hasCall/hasFold record
// whether succs[0]/succs[1] (or succs[0] when there's no call) are those
// special successors.
func NewNonterminal(street int, playerActing uint8, numRemaining uint8, lastBetTo uint16, succs []*Node, hasCall, hasFold bool) *Node {
	n := &Node{
		ID:           Unassigned,
		LastBetTo:    lastBetTo,
		NumSuccs:     uint16(len(succs)),
		Flags:        streetFlags(street),
		PlayerActing: playerActing,
		NumRemaining: numRemaining,
		Succs:        succs,
	}
	if hasCall {
		n.Flags |= flagHasCallSucc
	}
	if hasFold {
		n.Flags |= flagHasFoldSucc
	}
	return n
}

// NewFoldTerminal builds a terminal node reached by a fold. PlayerActing
// stores the remaining (non-folded) player.
func NewFoldTerminal(street int, id uint32, remainingPlayer uint8, lastBetTo uint16) *Node {
	return &Node{
		ID:           id,
		LastBetTo:    lastBetTo,
		NumSuccs:     0,
		Flags:        streetFlags(street),
		PlayerActing: remainingPlayer,
		NumRemaining: 1,
	}
}

// NewShowdownTerminal builds a terminal showdown node.
func NewShowdownTerminal(street int, id uint32, numRemaining uint8, lastBetTo uint16) *Node {
	return &Node{
		ID:           id,
		LastBetTo:    lastBetTo,
		NumSuccs:     0,
		Flags:        streetFlags(street),
		PlayerActing: PlayerActingShowdown,
		NumRemaining: numRemaining,
	}
}

func (n *Node) Terminal() bool { return n.NumSuccs == 0 }

func (n *Node) TerminalID() uint32 {
	if n.Terminal() {
		return n.ID
	}
	return Unassigned
}

func (n *Node) NonterminalID() uint32 {
	if n.Terminal() {
		return Unassigned
	}
	return n.ID
}

func (n *Node) Street() int {
	return int((n.Flags & flagStreetMask) >> flagStreetShift)
}

func (n *Node) HasCallSucc() bool { return n.Flags&flagHasCallSucc != 0 }
func (n *Node) HasFoldSucc() bool { return n.Flags&flagHasFoldSucc != 0 }

func (n *Node) Showdown() bool {
	return n.Terminal() && n.PlayerActing == PlayerActingShowdown
}

func (n *Node) Fold() bool {
	return n.Terminal() && n.PlayerActing != PlayerActingShowdown
}

// CallSuccIndex returns 0 iff a call successor exists.
func (n *Node) CallSuccIndex() int {
	if n.HasCallSucc() {
		return 0
	}
	return -1
}

// FoldSuccIndex is 1 when both a call and a fold successor exist, 0 when
// only a fold successor exists, or -1 when neither exists.
func (n *Node) FoldSuccIndex() int {
	if !n.HasFoldSucc() {
		return -1
	}
	if n.HasCallSucc() {
		return 1
	}
	return 0
}

// DefaultSuccIndex is always 0: it is the successor used to walk "the rest
// of the tree" when a specific action isn't being matched.
func (n *Node) DefaultSuccIndex() int { return 0 }

// IthSucc returns the i'th successor, or nil if out of range.
func (n *Node) IthSucc(i int) *Node {
	if i < 0 || i >= len(n.Succs) {
		return nil
	}
	return n.Succs[i]
}
