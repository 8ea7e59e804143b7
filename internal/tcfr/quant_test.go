package tcfr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func TestUncompressTablesAreMonotonic(t *testing.T) {
	for i := 1; i < len(uncompressByteTable); i++ {
		require.GreaterOrEqual(t, uncompressByteTable[i], uncompressByteTable[i-1])
	}
	require.Equal(t, int32(0), uncompressByteTable[0])
	require.Equal(t, int32(regretCapF), uncompressByteTable[len(uncompressByteTable)-1])
}

func TestCompressIndexRoundTripsExtremes(t *testing.T) {
	idx := compressIndex(0, uncompressByteTable, fixedSource(0))
	require.Equal(t, 0, idx)

	idx = compressIndex(int32(regretCapF), uncompressByteTable, fixedSource(0))
	require.Equal(t, len(uncompressByteTable)-1, idx)
}

func TestCompressIndexDithersBetweenNeighbors(t *testing.T) {
	// Pick a value strictly between two table entries and confirm the
	// dither coin decides which neighbor is chosen: rng=0 always rounds up,
	// rng just under 1 always rounds down (unless the gap itself is zero).
	var below, above int
	for below = 0; below < len(uncompressByteTable)-1; below++ {
		if uncompressByteTable[below+1]-uncompressByteTable[below] >= 2 {
			above = below + 1
			break
		}
	}
	v := (uncompressByteTable[below] + uncompressByteTable[above]) / 2
	upper := compressIndex(v, uncompressByteTable, fixedSource(0.0))
	lower := compressIndex(v, uncompressByteTable, fixedSource(0.999999))
	require.Equal(t, above, upper)
	require.Equal(t, below, lower)
}
