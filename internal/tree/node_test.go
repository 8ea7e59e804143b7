package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuccIndexInvariants(t *testing.T) {
	call := NewFoldTerminal(1, 0, 0, 10)
	fold := NewFoldTerminal(1, 1, 1, 10)
	bet := NewFoldTerminal(1, 2, 0, 20)

	both := NewNonterminal(0, 0, 2, 10, []*Node{call, fold, bet}, true, true)
	require.Equal(t, 0, both.CallSuccIndex())
	require.Equal(t, 1, both.FoldSuccIndex())
	require.Equal(t, 0, both.DefaultSuccIndex())

	foldOnly := NewNonterminal(0, 0, 2, 10, []*Node{fold, bet}, false, true)
	require.Equal(t, -1, foldOnly.CallSuccIndex())
	require.Equal(t, 0, foldOnly.FoldSuccIndex())

	callOnly := NewNonterminal(0, 0, 2, 10, []*Node{call, bet}, true, false)
	require.Equal(t, 0, callOnly.CallSuccIndex())
	require.Equal(t, -1, callOnly.FoldSuccIndex())
}

func TestStreetRoundTripsThroughFlags(t *testing.T) {
	n := NewNonterminal(3, 0, 2, 5, nil, false, false)
	require.Equal(t, 3, n.Street())
}

func TestTerminalVsNonterminalID(t *testing.T) {
	term := NewShowdownTerminal(3, 7, 2, 100)
	require.True(t, term.Terminal())
	require.Equal(t, uint32(7), term.TerminalID())
	require.Equal(t, Unassigned, term.NonterminalID())

	nt := NewNonterminal(0, 0, 2, 0, []*Node{term}, false, false)
	nt.ID = 2
	require.False(t, nt.Terminal())
	require.Equal(t, Unassigned, nt.TerminalID())
	require.Equal(t, uint32(2), nt.NonterminalID())
}

func TestCountReachableHandlesReentrancy(t *testing.T) {
	shared := NewShowdownTerminal(1, 0, 2, 20)
	a := NewNonterminal(1, 0, 2, 10, []*Node{shared}, true, false)
	b := NewNonterminal(1, 1, 2, 10, []*Node{shared}, true, false)
	root := NewNonterminal(0, 0, 2, 0, []*Node{a, b}, false, false)

	terminals, nonterminals := CountReachable(root)
	require.Equal(t, 1, terminals) // shared counted once
	require.Equal(t, 3, nonterminals)
}
