package tcfr

import (
	"math"
	"sort"

	"github.com/lox/cfrsolve/internal/buckets"
)

// regretCapF mirrors cmd/tcfrtrain's default RegretCap (2×10^9): the quantization
// tables span the full legal regret range so a byte or short code is
// never asked to represent a value outside it.
const regretCapF = 2e9

// buildUncompressTable spans [0, regretCapF] with a cubic curve, giving
// fine resolution near zero (where most regrets live, since one successor
// is always exactly zero) and coarse resolution for rarely-reached large
// regrets. original_source's CompressRegret/UncompressRegret bodies were
// not present in the retrieved sources (only their call sites in tcfr.cpp);
// this curve is an independent, documented design choice rather than a
// port, noted as such in DESIGN.md.
func buildUncompressTable(n int) []int32 {
	t := make([]int32, n)
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		t[i] = int32(math.Round(math.Pow(frac, 3) * regretCapF))
	}
	return t
}

var uncompressByteTable = buildUncompressTable(256)
var uncompressShortTable = buildUncompressTable(65536)

// compressIndex finds the quantization code for v against a monotonically
// increasing uncompress table, dithering between the two bracketing codes
// in proportion to v's position between them so repeated quantize/
// unquantize passes are unbiased in expectation (re-compressed via a
// uniform-random dither, mirroring original_source's CompressRegret).
func compressIndex(v int32, table []int32, rng buckets.Source) int {
	n := len(table)
	if v <= table[0] {
		return 0
	}
	if v >= table[n-1] {
		return n - 1
	}
	lo := sort.Search(n, func(i int) bool { return table[i] >= v })
	if table[lo] == v {
		return lo
	}
	below := lo - 1
	span := table[lo] - table[below]
	if span <= 0 {
		return below
	}
	frac := float64(v-table[below]) / float64(span)
	if rng.Float64() < frac {
		return lo
	}
	return below
}
