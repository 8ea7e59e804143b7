// Package treebuilder implements BettingTreeBuilder: recursive construction
// of a BettingTree from a BettingAbstraction: one construction path serves
// every abstraction (the Limit flag and NoLimitTreeType are not consulted),
// with the heads-up preflop limp special case, reentrant DAG merging, and
// multi-player folded-bitset threading.
//
// Grounded on original_source/src/no_limit_tree*.cpp and
// betting_tree_builder.cpp for the algorithm shape, and on
// _examples/ehrlich-b-poker/pkg/tree/builder.go for an idiomatic Go
// recursive-descent structure (explicit state struct threaded through a
// private build method, successors built bottom-up into a slice before the
// parent node is constructed).
package treebuilder

import "github.com/lox/cfrsolve/internal/abstraction"

// state captures everything needed to build the subtree rooted at one
// decision point: the acting player, the public betting state for the
// current street, and multi-player bookkeeping (folded bitset, players
// still to act, optional last aggressor).
type state struct {
	street        int
	numStreetBets int
	betTo         int // chips committed by the most-committed player
	lastBetSize   int // size of the most recent bet/raise this street, 0 if none

	contributions []int // per-seat chips committed so far this hand
	folded        []bool
	numRemaining  int

	actingPlayer    int
	numPlayersToAct int
	lastAggressor   int // -1 if none yet
}

func (s state) cloneContribs() []int {
	c := make([]int, len(s.contributions))
	copy(c, s.contributions)
	return c
}

func (s state) cloneFolded() []bool {
	f := make([]bool, len(s.folded))
	copy(f, s.folded)
	return f
}

func (s state) toCall() int {
	return s.betTo - s.contributions[s.actingPlayer]
}

// initialState builds the first decision point of the hand: preflop, blinds
// posted. Heads-up, seat 0 = SB and seat 1 = BB and the small blind acts
// first; with more players seat 0 = button, seat 1 = SB, seat 2 = BB, and
// the seat after the big blind (seat 3, or seat 0 with three players) acts
// first preflop.
func initialState(g abstraction.Game) state {
	n := g.NumPlayers()
	contributions := make([]int, n)
	folded := make([]bool, n)

	sb, bb := seatsForBlinds(n)
	contributions[sb] = g.SmallBlind()
	contributions[bb] = g.BigBlind()

	first := firstToActPreflop(n)
	return state{
		street:          0,
		numStreetBets:   0,
		betTo:           g.BigBlind(),
		lastBetSize:     g.BigBlind() - g.SmallBlind(),
		contributions:   contributions,
		folded:          folded,
		numRemaining:    n,
		actingPlayer:    first,
		numPlayersToAct: n,
		lastAggressor:   bb,
	}
}

func seatsForBlinds(numPlayers int) (sb, bb int) {
	if numPlayers <= 2 {
		return 0, 1
	}
	return 1, 2
}

func firstToActPreflop(numPlayers int) int {
	if numPlayers <= 2 {
		return 0 // small blind acts first heads-up
	}
	return 3 % numPlayers // first seat after the big blind
}

func firstToActPostflop(numPlayers int) int {
	if numPlayers <= 2 {
		return 1 // big blind acts first heads-up postflop
	}
	return 1 // seat after the button
}
