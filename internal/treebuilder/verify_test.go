package treebuilder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/cfrsolve/internal/abstraction"
	"github.com/lox/cfrsolve/internal/tree"
)

func TestVerifyTreeAcceptsBuiltTree(t *testing.T) {
	g := abstraction.HeadsUpHoldem(20)
	ba := potLimitAbstraction(g)

	bt, err := Build(ba, g)
	require.NoError(t, err)

	require.NoError(t, VerifyTree(bt.Root, g.NumPlayers(), g.MaxStreet()))
}

func TestVerifyTreeRejectsOutOfRangeStreet(t *testing.T) {
	bad := tree.NewShowdownTerminal(0, 0, 2, 10)
	root := tree.NewNonterminal(0, 0, 2, 0, []*tree.Node{bad}, true, false)
	root.ID = 0

	// The root's street 0 is out of range once maxStreet is -1.
	err := VerifyTree(root, 2, -1)
	require.Error(t, err)
}

func TestVerifyTreeRejectsDecreasingBetSuccOrder(t *testing.T) {
	hiBet := tree.NewShowdownTerminal(0, 0, 2, 20)
	loBet := tree.NewShowdownTerminal(0, 1, 2, 15)
	root := tree.NewNonterminal(0, 0, 2, 10, []*tree.Node{hiBet, loBet}, false, false)
	root.ID = 0

	err := VerifyTree(root, 2, 0)
	require.Error(t, err)
}
