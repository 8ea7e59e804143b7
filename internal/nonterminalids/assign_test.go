package nonterminalids

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/cfrsolve/internal/tree"
)

func TestAssignIsDensePerPlayerStreet(t *testing.T) {
	shared := tree.NewShowdownTerminal(1, 0, 2, 20)
	a := tree.NewNonterminal(1, 0, 2, 10, []*tree.Node{shared}, true, false)
	b := tree.NewNonterminal(1, 1, 2, 10, []*tree.Node{shared}, true, false)
	root := tree.NewNonterminal(0, 0, 2, 0, []*tree.Node{a, b}, false, false)

	counts := Assign(root, 2, 1)
	require.Equal(t, 1, counts[0][0]) // just root
	require.Equal(t, 1, counts[0][1]) // just "a"
	require.Equal(t, 1, counts[1][1]) // just "b"

	require.Equal(t, uint32(0), root.ID)
	require.Equal(t, uint32(0), a.ID)
	require.Equal(t, uint32(0), b.ID)
}

func TestCountToleratesReentrancy(t *testing.T) {
	shared := tree.NewShowdownTerminal(1, 0, 2, 20)
	a := tree.NewNonterminal(1, 0, 2, 10, []*tree.Node{shared}, true, false)
	b := tree.NewNonterminal(1, 1, 2, 10, []*tree.Node{shared}, true, false)
	root := tree.NewNonterminal(0, 0, 2, 0, []*tree.Node{a, b}, false, false)
	Assign(root, 2, 1)

	counts := Count(root, 2, 1)
	require.Equal(t, 1, counts[0][0])
	require.Equal(t, 1, counts[0][1])
	require.Equal(t, 1, counts[1][1])
}
