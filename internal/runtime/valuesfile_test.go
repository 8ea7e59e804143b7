package runtime

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/cfrsolve/internal/tree"
	"github.com/lox/cfrsolve/internal/values"
)

func fourSuccTree() *tree.Node {
	succs := []*tree.Node{
		tree.NewShowdownTerminal(0, 0, 2, 10),
		tree.NewShowdownTerminal(0, 1, 2, 10),
		tree.NewShowdownTerminal(0, 2, 2, 10),
		tree.NewShowdownTerminal(0, 3, 2, 10),
	}
	root := tree.NewNonterminal(0, 0, 2, 0, succs, true, true)
	root.ID = 0
	return root
}

func testGeometry() *values.CFRValues {
	g := values.New([]bool{true}, []bool{true}, false)
	g.BucketThresholds = []int{1 << 30}
	g.NumBuckets = []int{3}
	return g
}

// TestOpenReadsPureBitsStream covers three buckets {best=0, best=3,
// best=1} packed MSB-first into one byte: 0b00_11_01_00 = 0x34.
func TestOpenReadsPureBitsStream(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regrets.r.0.0.0.1.p0.b")
	require.NoError(t, os.WriteFile(path, []byte{0x34}, 0o644))

	root := fourSuccTree()
	geometry := testGeometry()
	vf, err := Open(dir, "r", 0, 0, 1, []bool{true}, []bool{true}, geometry, root)
	require.NoError(t, err)
	defer vf.Close()

	probs, err := vf.Probs(root, 0, 0)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 0, 0, 0}, probs)

	probs, err = vf.Probs(root, 1, 0)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 0, 1}, probs)

	probs, err = vf.Probs(root, 2, 0)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1, 0, 0}, probs)
}

func TestOpenFallsBackToCharSumprobs(t *testing.T) {
	dir := t.TempDir()
	// holding 0: [102, 153]; holding 1: [0, 10]; holdings 2 and 3 are
	// entirely zero (fall back to dsi).
	path := filepath.Join(dir, "sumprobs.r.0.0.0.1.p0.c")
	data := []byte{102, 153, 0, 10, 0, 0, 0, 0}
	require.NoError(t, os.WriteFile(path, data, 0o644))

	root := tree.NewNonterminal(0, 0, 2, 0, []*tree.Node{
		tree.NewShowdownTerminal(0, 0, 2, 10),
		tree.NewFoldTerminal(0, 1, 1, 10),
	}, true, true)
	root.ID = 0

	geometry := values.New([]bool{true}, []bool{true}, true)
	geometry.BucketThresholds = []int{1 << 30}
	geometry.NumBuckets = []int{4}

	vf, err := Open(dir, "r", 0, 0, 1, []bool{true}, []bool{true}, geometry, root)
	require.NoError(t, err)
	defer vf.Close()

	probs, err := vf.Probs(root, 0, 0)
	require.NoError(t, err)
	require.InDelta(t, 102.0/255.0, probs[0], 1e-9)
	require.InDelta(t, 153.0/255.0, probs[1], 1e-9)

	probs, err = vf.Probs(root, 1, 0)
	require.NoError(t, err)
	require.InDelta(t, 0.0, probs[0], 1e-9)
	require.InDelta(t, 1.0, probs[1], 1e-9)

	// holding 2 is all-zero: falls back to one-hot at the requested dsi.
	probs, err = vf.Probs(root, 2, 1)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1}, probs)
}

func TestOpenFailsWithNoCandidateFile(t *testing.T) {
	dir := t.TempDir()
	root := fourSuccTree()
	geometry := testGeometry()
	_, err := Open(dir, "r", 0, 0, 1, []bool{true}, []bool{true}, geometry, root)
	require.Error(t, err)
}

func TestReadPureSubtreeDecodesSubtreeOneHot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regrets.r.0.0.0.1.p0.b")
	require.NoError(t, os.WriteFile(path, []byte{0x34}, 0o644))

	whole := fourSuccTree()
	geometry := testGeometry()
	vf, err := Open(dir, "r", 0, 0, 1, []bool{true}, []bool{true}, geometry, whole)
	require.NoError(t, err)
	defer vf.Close()

	subtree := fourSuccTree()
	out := values.New([]bool{true}, []bool{true}, false)
	out.BucketThresholds = []int{1 << 30}
	out.NumBuckets = []int{3}

	require.NoError(t, vf.ReadPureSubtree(whole, subtree, out))

	v, err := out.Get(subtree, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1.0, v)

	v, err = out.Get(subtree, 1, 3)
	require.NoError(t, err)
	require.Equal(t, 1.0, v)

	v, err = out.Get(subtree, 2, 1)
	require.NoError(t, err)
	require.Equal(t, 1.0, v)
}
