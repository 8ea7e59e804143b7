package tree

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildSampleTree() *BettingTree {
	showdown := NewShowdownTerminal(1, 0, 2, 20)
	foldTerm := NewFoldTerminal(1, 1, 1, 10)
	bet := NewNonterminal(1, 1, 2, 20, []*Node{showdown}, true, false)
	bet.ID = 1
	root := NewNonterminal(0, 0, 2, 10, []*Node{foldTerm, bet}, false, true)
	// no call successor here, so the fold sits at index 0 and the bet at index 1
	root.Flags |= 0 // no call succ at root in this synthetic example
	root.ID = 0

	t := &BettingTree{Root: root, InitialStreet: 0}
	terms, _ := CountReachable(root)
	t.NumTerminalsVal = terms
	return t
}

func TestWireRoundTrip(t *testing.T) {
	tr := buildSampleTree()
	path := filepath.Join(t.TempDir(), "tree.bin")
	require.NoError(t, Write(tr, path))

	got, err := Read(path)
	require.NoError(t, err)

	require.Equal(t, tr.Root.Street(), got.Root.Street())
	require.Equal(t, tr.Root.NumSuccs, got.Root.NumSuccs)
	require.Equal(t, tr.NumTerminals(), got.NumTerminals())

	wantTerms, wantNonterms := CountReachable(tr.Root)
	gotTerms, gotNonterms := CountReachable(got.Root)
	require.Equal(t, wantTerms, gotTerms)
	require.Equal(t, wantNonterms, gotNonterms)
}

func TestWireRoundTripSharesReentrantSubtree(t *testing.T) {
	shared := NewShowdownTerminal(1, 0, 2, 20)
	a := NewNonterminal(1, 0, 2, 10, []*Node{shared}, true, false)
	a.ID = 1
	b := NewNonterminal(1, 1, 2, 10, []*Node{shared}, true, false)
	b.ID = 2
	root := NewNonterminal(0, 0, 2, 0, []*Node{a, b}, false, false)
	root.ID = 0
	tr := &BettingTree{Root: root, InitialStreet: 0}
	terms, _ := CountReachable(root)
	tr.NumTerminalsVal = terms

	path := filepath.Join(t.TempDir(), "reentrant.bin")
	require.NoError(t, Write(tr, path))

	got, err := Read(path)
	require.NoError(t, err)

	gotTerms, gotNonterms := CountReachable(got.Root)
	require.Equal(t, 1, gotTerms)
	require.Equal(t, 3, gotNonterms)

	// Confirm actual sharing: both children's sole successor is the same
	// pointer, not merely structurally equal.
	require.Same(t, got.Root.Succs[0].Succs[0], got.Root.Succs[1].Succs[0])
}
