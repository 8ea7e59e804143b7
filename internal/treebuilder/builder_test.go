package treebuilder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/cfrsolve/internal/abstraction"
	"github.com/lox/cfrsolve/internal/tree"
)

func potLimitAbstraction(g abstraction.Game) *abstraction.BettingAbstraction {
	maxStreet := g.MaxStreet()
	maxBets := make(abstraction.PerStreetInt, maxStreet+1)
	sizing := make(abstraction.BetSizingTable, maxStreet+1)
	for st := 0; st <= maxStreet; st++ {
		maxBets[st] = 3
		sizing[st] = [][]float64{{1.0}, {1.0}, {1.0}, {1.0}}
	}
	return &abstraction.BettingAbstraction{
		MaxBets:          maxBets,
		BetSizing:        sizing,
		CloseToAllInFrac: 0.9,
	}
}

func TestBuildProducesLegalHeadsUpTree(t *testing.T) {
	g := abstraction.HeadsUpHoldem(20)
	ba := potLimitAbstraction(g)

	bt, err := Build(ba, g)
	require.NoError(t, err)
	require.NotNil(t, bt.Root)
	require.False(t, bt.Root.Terminal())

	term, nonterm := tree.CountReachable(bt.Root)
	require.Equal(t, bt.NumTerminals(), term)
	require.Greater(t, nonterm, 0)
}

func TestBuildRootHasCallAndFoldAndBetSuccessors(t *testing.T) {
	g := abstraction.HeadsUpHoldem(20)
	ba := potLimitAbstraction(g)

	bt, err := Build(ba, g)
	require.NoError(t, err)
	root := bt.Root

	require.True(t, root.HasCallSucc())
	require.True(t, root.HasFoldSucc())
	require.Equal(t, 0, root.CallSuccIndex())
	require.GreaterOrEqual(t, root.FoldSuccIndex(), 0)
}

func TestBuildSuccessorOrderIsCanonical(t *testing.T) {
	g := abstraction.HeadsUpHoldem(20)
	ba := potLimitAbstraction(g)

	bt, err := Build(ba, g)
	require.NoError(t, err)
	root := bt.Root

	// call@0, fold@1, bets ascending by LastBetTo.
	foldIdx := root.FoldSuccIndex()
	require.Equal(t, 1, foldIdx)
	for i := foldIdx + 1; i < len(root.Succs)-1; i++ {
		require.Less(t, root.Succs[i].LastBetTo, root.Succs[i+1].LastBetTo)
	}
}

func TestBuildRejectsInvalidAbstraction(t *testing.T) {
	g := abstraction.HeadsUpHoldem(20)
	ba := &abstraction.BettingAbstraction{} // no max_bets configured
	_, err := Build(ba, g)
	require.Error(t, err)
}

func TestBuildMergesReentrantSubtrees(t *testing.T) {
	g := abstraction.HeadsUpHoldem(200)
	ba := potLimitAbstraction(g)
	ba.ReentrantStreets = []bool{false, true, true, true}
	ba.MinReentrantPot = 1
	ba.MinReentrantBets = [][]int{{0, 0}, {0, 0}, {0, 0}, {0, 0}}

	bt, err := Build(ba, g)
	require.NoError(t, err)
	require.NotNil(t, bt.Root)
}
