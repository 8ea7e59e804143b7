package restructure

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lox/cfrsolve/internal/tree"
	"github.com/lox/cfrsolve/internal/values"
)

func buildSmallTree() *tree.Node {
	// street 0 (trunk): root has 2 succs; street 1 (subgame): leaf's succ
	// is itself a 2-succ node whose regrets get purified.
	showdown := tree.NewShowdownTerminal(1, 0, 2, 20)
	fold := tree.NewFoldTerminal(1, 1, 1, 20)
	subgameRoot := tree.NewNonterminal(1, 0, 2, 10, []*tree.Node{showdown, fold}, true, true)
	subgameRoot.ID = 0

	showdown0 := tree.NewShowdownTerminal(0, 2, 2, 10)
	root := tree.NewNonterminal(0, 0, 2, 0, []*tree.Node{showdown0, subgameRoot}, true, false)
	root.ID = 0
	return root
}

func TestQuantizeRowSumsToTargetAndPrefersDefaultWhenZero(t *testing.T) {
	codes := quantizeRow([]float64{0, 0}, 256, 1)
	require.Equal(t, []int{0, 255}, codes)

	codes = quantizeRow([]float64{3, 1}, 256, 0)
	sum := 0
	for _, c := range codes {
		sum += c
	}
	require.Equal(t, 255, sum)
	require.Greater(t, codes[0], codes[1])
}

func TestRecordBestSucc4EncodesAllFourCases(t *testing.T) {
	for best := 0; best < 4; best++ {
		w := newBitWriter()
		require.NoError(t, recordBestSucc4(best, w))
		out := w.flush()
		require.Len(t, out, 1)
		hi := (out[0] >> 7) & 1
		lo := (out[0] >> 6) & 1
		got := int(hi)<<1 | int(lo)
		require.Equal(t, best, got)
	}
}

func TestRecordBestSucc4RejectsOutOfRange(t *testing.T) {
	w := newBitWriter()
	require.Error(t, recordBestSucc4(4, w))
}

func TestGoProducesTrunkAndSubgameStreams(t *testing.T) {
	root := buildSmallTree()
	subgameRoot := root.Succs[1]

	sumprobs := values.New([]bool{true, true}, []bool{true, true}, true)
	sumprobs.BucketThresholds = []int{1 << 30, 1 << 30}
	sumprobs.NumBuckets = []int{2, 2}
	sumprobs.AllocateAndClear(root, -1)
	require.NoError(t, sumprobs.SetValues(root, [][]float64{{5, 0}, {0, 5}}))

	regrets := values.New([]bool{true, true}, []bool{true, true}, false)
	regrets.BucketThresholds = []int{1 << 30, 1 << 30}
	regrets.NumBuckets = []int{2, 2}
	regrets.AllocateAndClear(subgameRoot, -1)
	require.NoError(t, regrets.SetValues(subgameRoot, [][]float64{{0, 7}, {3, 0}}))

	cfg := Config{SubgameStreet: 1}
	res, err := Go(root, cfg, sumprobs, regrets)
	require.NoError(t, err)

	trunkKey := StreamKey{0, 0}
	require.Contains(t, res.SumprobBytes, trunkKey)
	require.Len(t, res.SumprobBytes[trunkKey], 2*2) // 2 buckets * 2 succs, one byte each

	subKey := StreamKey{0, 1}
	require.Contains(t, res.PureRegretBits, subKey)
	require.Len(t, res.PureRegretBits[subKey], 1) // 2 buckets * 2 bits = 4 bits, fits one byte

	dir := t.TempDir()
	require.NoError(t, res.WriteFiles(dir, "r", 0, 0, 1, cfg))
	_ = zerolog.Nop()
}
