package treebuilder

import (
	"fmt"
	"strings"

	"github.com/lox/cfrsolve/internal/abstraction"
	"github.com/lox/cfrsolve/internal/cfrerr"
	"github.com/lox/cfrsolve/internal/nonterminalids"
	"github.com/lox/cfrsolve/internal/tree"
)

// Builder constructs a BettingTree from a BettingAbstraction. A single
// Builder must not be reused concurrently; it owns mutable reentrancy and
// terminal-numbering state for one Build call.
type Builder struct {
	ba  *abstraction.BettingAbstraction
	g   abstraction.Game

	reentrant    map[string]*tree.Node
	nextTerminal uint32
}

// Build constructs the (symmetric, or asymmetric-for-targetPlayer) betting
// tree for ba against game g.
func Build(ba *abstraction.BettingAbstraction, g abstraction.Game) (*tree.BettingTree, error) {
	if err := ba.Validate(g); err != nil {
		return nil, err
	}
	b := &Builder{ba: ba, g: g, reentrant: make(map[string]*tree.Node)}
	root, err := b.build(initialState(g))
	if err != nil {
		return nil, err
	}
	counts := nonterminalids.Assign(root, g.NumPlayers(), g.MaxStreet())

	bt := &tree.BettingTree{
		Root:            root,
		InitialStreet:   root.Street(),
		NumTerminalsVal: int(b.nextTerminal),
		NumNonterminals: counts,
	}
	bt.Terminals = make([]*tree.Node, b.nextTerminal)
	fillTerminals(root, bt.Terminals, make(map[*tree.Node]bool))
	return bt, nil
}

func fillTerminals(n *tree.Node, terms []*tree.Node, seen map[*tree.Node]bool) {
	if seen[n] {
		return
	}
	seen[n] = true
	if n.Terminal() {
		terms[n.ID] = n
		return
	}
	for _, s := range n.Succs {
		fillTerminals(s, terms, seen)
	}
}

// build constructs (or returns a shared reference to) the subtree rooted at
// the decision described by s.
func (b *Builder) build(s state) (*tree.Node, error) {
	if key, ok := b.reentrantKey(s); ok {
		if n, found := b.reentrant[key]; found {
			return n, nil
		}
		n, err := b.buildFresh(s)
		if err != nil {
			return nil, err
		}
		b.reentrant[key] = n
		return n, nil
	}
	return b.buildFresh(s)
}

func (b *Builder) buildFresh(s state) (*tree.Node, error) {
	var succs []*tree.Node
	hasCall, hasFold := false, false

	// Call/check successor.
	callSucc, err := b.callSuccessor(s)
	if err != nil {
		return nil, err
	}
	succs = append(succs, callSucc)
	hasCall = true

	// Fold successor.
	if b.foldAllowed(s) {
		foldSucc, err := b.foldSuccessor(s)
		if err != nil {
			return nil, err
		}
		succs = append(succs, foldSucc)
		hasFold = true
	}

	// Bet/raise successors, in increasing size.
	if s.numStreetBets < b.ba.RoleMaxBets(s.actingPlayer).AtStreet(s.street) {
		betTos := candidateBetTos(b.ba, b.g, s)
		for _, betTo := range betTos {
			betSucc, err := b.betSuccessor(s, betTo)
			if err != nil {
				return nil, err
			}
			succs = append(succs, betSucc)
		}
	}

	if len(succs) == 0 {
		return nil, cfrerr.Treef("builder", "nonterminal at street %d player %d has zero successors", s.street, s.actingPlayer)
	}
	return tree.NewNonterminal(s.street, uint8(s.actingPlayer), uint8(s.numRemaining), uint16(s.betTo), succs, hasCall, hasFold), nil
}

// callSuccessor builds the node reached when the acting player calls (or
// checks).
func (b *Builder) callSuccessor(s state) (*tree.Node, error) {
	next := s
	next.contributions = s.cloneContribs()
	next.contributions[s.actingPlayer] = s.betTo
	next.folded = s.folded

	isHeadsUpPreflopLimp := b.g.NumPlayers() <= 2 && s.street == 0 && s.numStreetBets == 0 && s.actingPlayer != bigBlindSeat(b.g.NumPlayers())

	if isHeadsUpPreflopLimp {
		// SB limping preflop does not advance the street; BB still acts
		// (a heads-up preflop special case).
		next.actingPlayer = bigBlindSeat(b.g.NumPlayers())
		next.numPlayersToAct = 1
		next.lastAggressor = s.lastAggressor
		return b.build(next)
	}

	next.numPlayersToAct--
	if next.numPlayersToAct > 0 {
		// Another player still needs to act this street at the same bet
		// level (multi-player call that doesn't close the round).
		next.actingPlayer = nextActiveSeat(s.actingPlayer, s.folded)
		return b.build(next)
	}

	// Round closes: advance to next street, or showdown if this was the
	// final street.
	if s.street >= b.g.MaxStreet() {
		term := tree.NewShowdownTerminal(s.street, b.nextTerminal, uint8(s.numRemaining), uint16(s.betTo))
		b.nextTerminal++
		return term, nil
	}

	nextStreetState := state{
		street:          s.street + 1,
		numStreetBets:   0,
		betTo:           s.betTo,
		lastBetSize:     0,
		contributions:   next.contributions,
		folded:          s.folded,
		numRemaining:    s.numRemaining,
		actingPlayer:    firstActiveSeat(firstToActPostflop(b.g.NumPlayers()), s.folded),
		numPlayersToAct: s.numRemaining,
		lastAggressor:   -1,
	}
	return b.build(nextStreetState)
}

// foldAllowed reports whether folding is legal: permitted iff there is a
// pending bet (the acting player owes chips to match), or — preflop — the
// acting player is not the big blind and the pot is still below 2 big
// blinds (the small blind's option to fold to an uncontested big blind).
func (b *Builder) foldAllowed(s state) bool {
	if s.toCall() > 0 {
		return true
	}
	if s.street == 0 {
		bb := bigBlindSeat(b.g.NumPlayers())
		if s.actingPlayer != bb && potSize(s.contributions) < 2*b.g.BigBlind() {
			return true
		}
	}
	return false
}

// foldSuccessor builds the successor reached when the acting player folds.
// When exactly one player remains, the hand ends immediately in a fold
// terminal crediting that player (multi-player fold terminals only occur
// with a single survivor). Otherwise play continues with the remaining
// field narrowed: more than one survivor means the betting round continues
// with the next active player, or closes/advances the street if the fold
// was the last action awaited.
func (b *Builder) foldSuccessor(s state) (*tree.Node, error) {
	folded := s.cloneFolded()
	folded[s.actingPlayer] = true
	numLeft := s.numRemaining - 1

	if numLeft == 1 {
		var remainingPlayer uint8
		for seat, f := range folded {
			if !f {
				remainingPlayer = uint8(seat)
				break
			}
		}
		term := tree.NewFoldTerminal(s.street, b.nextTerminal, remainingPlayer, uint16(s.betTo))
		b.nextTerminal++
		return term, nil
	}

	next := s
	next.folded = folded
	next.numRemaining = numLeft
	next.contributions = s.cloneContribs()
	next.numPlayersToAct--
	if next.numPlayersToAct > 0 {
		next.actingPlayer = nextActiveSeat(s.actingPlayer, folded)
		return b.build(next)
	}

	if s.street >= b.g.MaxStreet() {
		term := tree.NewShowdownTerminal(s.street, b.nextTerminal, uint8(numLeft), uint16(s.betTo))
		b.nextTerminal++
		return term, nil
	}
	nextStreetState := state{
		street:          s.street + 1,
		numStreetBets:   0,
		betTo:           s.betTo,
		lastBetSize:     0,
		contributions:   make([]int, len(s.contributions)),
		folded:          folded,
		numRemaining:    numLeft,
		actingPlayer:    firstActiveSeat(firstToActPostflop(b.g.NumPlayers()), folded),
		numPlayersToAct: numLeft,
		lastAggressor:   -1,
	}
	return b.build(nextStreetState)
}

// betSuccessor builds the subtree reached when the acting player bets/raises
// to betTo. The resulting node itself represents the *opponent's* decision
// of whether to call that bet, so the recursion immediately continues with
// an updated state where numStreetBets and lastBetSize have advanced.
func (b *Builder) betSuccessor(s state, betTo int) (*tree.Node, error) {
	next := state{
		street:          s.street,
		numStreetBets:   s.numStreetBets + 1,
		betTo:           betTo,
		lastBetSize:     betTo - s.betTo,
		contributions:   s.cloneContribs(),
		folded:          s.folded,
		numRemaining:    s.numRemaining,
		actingPlayer:    nextActiveSeat(s.actingPlayer, s.folded),
		numPlayersToAct: s.numRemaining - 1,
		lastAggressor:   s.actingPlayer,
	}
	next.contributions[s.actingPlayer] = betTo
	return b.build(next)
}

func bigBlindSeat(numPlayers int) int {
	_, bb := seatsForBlinds(numPlayers)
	return bb
}

func nextActiveSeat(from int, folded []bool) int {
	n := len(folded)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if !folded[seat] {
			return seat
		}
	}
	return from
}

func firstActiveSeat(from int, folded []bool) int {
	if !folded[from] {
		return from
	}
	return nextActiveSeat(from, folded)
}

// reentrantKey computes the canonical key string identifying s for
// reentrant node merging and reports whether s is eligible for reentrant
// merging at all under the abstraction's configured thresholds.
func (b *Builder) reentrantKey(s state) (string, bool) {
	if !b.ba.IsReentrantStreet(s.street) {
		return "", false
	}
	if 2*s.betTo < b.ba.MinReentrantPot {
		return "", false
	}
	if s.numStreetBets < b.ba.MinReentrantBetsFor(s.street, s.numRemaining) {
		return "", false
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "st=%d|p=%d|nsb=%d|bt=%d|lbs=%d|rem=%d|npta=%d",
		s.street, s.actingPlayer, s.numStreetBets, s.betTo, s.lastBetSize, s.numRemaining, s.numPlayersToAct)
	if b.ba.LastAggressorKey {
		fmt.Fprintf(&sb, "|agg=%d", s.lastAggressor)
	}
	return sb.String(), true
}
