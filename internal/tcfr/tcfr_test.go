package tcfr

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lox/cfrsolve/internal/buckets"
	"github.com/lox/cfrsolve/internal/tree"
)

// fixedDealer always deals the same buckets, for deterministic tests.
type fixedDealer struct {
	p0, p1       []int
	boardCount   int
	showdownMult int
}

func (d fixedDealer) Deal(rng buckets.Source) buckets.Deal {
	return buckets.Deal{
		BoardCount:   d.boardCount,
		P0Buckets:    d.p0,
		P1Buckets:    d.p1,
		ShowdownMult: d.showdownMult,
	}
}

func smallTree() *tree.Node {
	showdown := tree.NewShowdownTerminal(0, 0, 2, 10)
	fold := tree.NewFoldTerminal(0, 1, 1, 10)
	root := tree.NewNonterminal(0, 0, 2, 10, []*tree.Node{showdown, fold}, true, true)
	root.ID = 0
	return root
}

func testConfig() *Config {
	return &Config{
		NumBuckets:     []int{3},
		RegretCap:      2_000_000_000,
		SumprobCeiling: 1_000_000,
		NumThreads:     1,
		BatchSize:      50,
		Explore:        0,
		ActiveMod:      0,
	}
}

func TestBuildMeasuresRecordSizeAlignedTo8(t *testing.T) {
	root := smallTree()
	cfg := testConfig()
	offsets, total, err := Measure(root, cfg)
	require.NoError(t, err)
	require.Equal(t, uint64(0), offsets[root]%8)
	require.Equal(t, uint64(0), total%8)
	require.True(t, total > 0)
}

func TestBuildThenReadBackZeroedRegrets(t *testing.T) {
	root := smallTree()
	cfg := testConfig()
	arena, err := Build(root, cfg)
	require.NoError(t, err)
	for s := 0; s < 2; s++ {
		require.Equal(t, int32(0), arena.regret(arena.rootOffset, 2, 0, 0, s))
	}
}

func TestProcessUpdatesRegretsTowardsBetterSuccessor(t *testing.T) {
	root := smallTree()
	cfg := testConfig()
	arena, err := Build(root, cfg)
	require.NoError(t, err)

	dealer := fixedDealer{p0: []int{0}, p1: []int{0}, boardCount: 1, showdownMult: 1}
	solver, err := NewSolver(root, cfg, dealer, zerolog.Nop())
	require.NoError(t, err)
	solver.Arena = arena // share the same arena we inspect below

	err = solver.RunBatch(context.Background(), 7, 0)
	require.NoError(t, err)

	// After enough iterations as the traverser, the showdown succ (a sure
	// win since remaining showdownMult=1, boardCount=1) should accumulate
	// no worse regret than the fold branch whose value is negative for P0.
	showdownRegret := arena.regret(arena.rootOffset, 2, 0, 0, 0)
	foldRegret := arena.regret(arena.rootOffset, 2, 0, 0, 1)
	require.True(t, showdownRegret >= 0)
	require.True(t, foldRegret >= 0)
	require.LessOrEqual(t, showdownRegret, foldRegret)
}

func TestSolverWriteValuesProducesFiles(t *testing.T) {
	root := smallTree()
	cfg := testConfig()
	dealer := fixedDealer{p0: []int{0}, p1: []int{0}, boardCount: 1, showdownMult: 1}
	solver, err := NewSolver(root, cfg, dealer, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, solver.RunBatch(context.Background(), 3, 0))

	dir := t.TempDir()
	err = solver.WriteValues(dir, 1, "r", 0, 0, zerolog.Nop())
	require.NoError(t, err)
}
