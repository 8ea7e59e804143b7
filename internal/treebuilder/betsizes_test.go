package treebuilder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/cfrsolve/internal/abstraction"
)

func geometricState(betTo, otherContrib int) state {
	return state{
		street:        0,
		betTo:         betTo,
		contributions: []int{betTo, otherContrib},
		folded:        []bool{false, false},
		numRemaining:  2,
		actingPlayer:  0,
	}
}

func TestAddGeometricNearAllInInactiveBelowThreshold(t *testing.T) {
	ba := &abstraction.BettingAbstraction{GeometricType: abstraction.GeometricSingle}
	s := geometricState(10, 10)
	maxTotal := 200 // pot/all-in = 20/400 = 0.05, below the 0.2 threshold

	var got []int
	used := addGeometricNearAllIn(ba, s, maxTotal, potSize(s.contributions), func(bt int) { got = append(got, bt) })

	require.False(t, used)
	require.Empty(t, got)
}

func TestAddGeometricNearAllInSingleBet(t *testing.T) {
	ba := &abstraction.BettingAbstraction{GeometricType: abstraction.GeometricSingle}
	maxTotal := 100
	s := geometricState(25, 25) // pot = 50, all-in total = 200, ratio 0.25 -> active

	var got []int
	used := addGeometricNearAllIn(ba, s, maxTotal, potSize(s.contributions), func(bt int) { got = append(got, bt) })

	require.True(t, used)
	require.Len(t, got, 1)
	// bet_frac = (sqrt(200/50)-1)/2 = 0.5, bet_size = int(50*0.5+0.5) = 25
	require.Equal(t, 50, got[0])
}

func TestAddGeometricNearAllInAllInAboveThreshold(t *testing.T) {
	ba := &abstraction.BettingAbstraction{GeometricType: abstraction.GeometricSingle}
	maxTotal := 100
	s := geometricState(80, 80) // pot = 160, all-in total = 200, ratio 0.8 > 1/3

	var got []int
	used := addGeometricNearAllIn(ba, s, maxTotal, potSize(s.contributions), func(bt int) { got = append(got, bt) })

	require.True(t, used)
	require.Equal(t, []int{maxTotal}, got)
}

func TestAddGeometricNearAllInType2AddsPotAndHalfPot(t *testing.T) {
	ba := &abstraction.BettingAbstraction{GeometricType: abstraction.GeometricWithPotAndHalfPot}
	maxTotal := 100
	s := geometricState(25, 25) // pot = 50, all-in total = 200, ratio 0.25 -> active

	var got []int
	used := addGeometricNearAllIn(ba, s, maxTotal, potSize(s.contributions), func(bt int) { got = append(got, bt) })

	require.True(t, used)
	require.Len(t, got, 3)
}

func TestCandidateBetTosGeometricReplacesPotFractionLoop(t *testing.T) {
	g := abstraction.HeadsUpHoldem(100)
	maxStreet := g.MaxStreet()
	sizing := make(abstraction.BetSizingTable, maxStreet+1)
	for st := 0; st <= maxStreet; st++ {
		sizing[st] = [][]float64{{0.33, 0.66}}
	}
	ba := &abstraction.BettingAbstraction{
		MaxBets:          abstraction.PerStreetInt{3, 3, 3, 3},
		BetSizing:        sizing,
		GeometricType:    abstraction.GeometricSingle,
		CloseToAllInFrac: 0.9,
	}
	// A pot already at 80% of the combined stacks: geometric sizing fires
	// and the 0.33/0.66 pot-fraction table must not also contribute.
	s := geometricState(80, 80)

	result := candidateBetTos(ba, g, s)
	require.Len(t, result, 1)
}
