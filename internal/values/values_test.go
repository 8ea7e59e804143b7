package values

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lox/cfrsolve/internal/nonterminalids"
	"github.com/lox/cfrsolve/internal/tree"
)

func sampleTree() *tree.Node {
	t1 := tree.NewShowdownTerminal(1, 0, 2, 20)
	t2 := tree.NewFoldTerminal(1, 1, 0, 20)
	b := tree.NewNonterminal(1, 1, 2, 10, []*tree.Node{t1, t2}, true, true)
	root := tree.NewNonterminal(0, 0, 2, 2, []*tree.Node{b}, true, false)
	nonterminalids.Assign(root, 2, 1)
	return root
}

func TestAllocateAndClearZeroesSlabs(t *testing.T) {
	root := sampleTree()
	v := New([]bool{true, true}, []bool{true, true}, false)
	v.NumBuckets = []int{10, 10}
	v.BucketThresholds = []int{1 << 20, 1 << 20}
	v.AllocateAndClear(root, -1)

	val, err := v.Get(root, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 0.0, val)
}

func TestWriteReadRoundTripsCharType(t *testing.T) {
	root := sampleTree()
	v := New([]bool{true, true}, []bool{true, true}, false)
	v.NumBuckets = []int{10, 10}
	v.BucketThresholds = []int{1 << 20, 1 << 20}
	v.AllocateAndClear(root, -1)

	require.NoError(t, v.SetValues(root, fill(10, 1, 7)))

	dir := t.TempDir()
	require.NoError(t, v.Write(dir, 100, root, "root", -1, TypeChar, zerolog.Nop()))

	v2 := New([]bool{true, true}, []bool{true, true}, false)
	v2.NumBuckets = []int{10, 10}
	v2.BucketThresholds = []int{1 << 20, 1 << 20}
	require.NoError(t, v2.Read(dir, 100, root, "root", -1, TypeChar, true))

	got, err := v2.Get(root, 3, 0)
	require.NoError(t, err)
	require.Equal(t, 7.0, got)
}

func TestReadAutoDetectsType(t *testing.T) {
	root := sampleTree()
	v := New([]bool{true, true}, []bool{true, true}, false)
	v.NumBuckets = []int{10, 10}
	v.BucketThresholds = []int{1 << 20, 1 << 20}
	v.AllocateAndClear(root, -1)
	require.NoError(t, v.SetValues(root, fill(10, 1, 3)))

	dir := t.TempDir()
	require.NoError(t, v.Write(dir, 5, root, "root", -1, TypeDouble, zerolog.Nop()))

	v2 := New([]bool{true, true}, []bool{true, true}, false)
	v2.NumBuckets = []int{10, 10}
	v2.BucketThresholds = []int{1 << 20, 1 << 20}
	require.NoError(t, v2.Read(dir, 5, root, "root", -1, 0, false))

	got, err := v2.Get(root, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 3.0, got)
}

func TestReadMissingFileIsIoError(t *testing.T) {
	root := sampleTree()
	v := New([]bool{true, true}, []bool{true, true}, false)
	v.NumBuckets = []int{10, 10}
	v.BucketThresholds = []int{1 << 20, 1 << 20}
	err := v.Read(t.TempDir(), 1, root, "root", -1, TypeChar, true)
	require.Error(t, err)
}

func fill(numHold, numSuccs int, v float64) [][]float64 {
	out := make([][]float64, numHold)
	for h := range out {
		row := make([]float64, numSuccs)
		for s := range row {
			row[s] = v
		}
		out[h] = row
	}
	return out
}
