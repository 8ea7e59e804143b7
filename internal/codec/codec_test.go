package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZigZagRoundTrips(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 12345, -12345, 1 << 20, -(1 << 20)} {
		require.Equal(t, v, zigzagDecode32(zigzagEncode32(v)))
	}
}

func TestPredictPicksCloserNeighbor(t *testing.T) {
	require.Equal(t, int32(100), predict(10, 100, 9)) // estimate 10+100-9=101 is nearest west
	require.Equal(t, int32(10), predict(10, 100, 99)) // estimate 10+100-99=11 is nearest north
}

func TestCompressDecompressRoundTripsFirstBoard(t *testing.T) {
	data := make([]int32, 32)
	for i := range data {
		data[i] = int32(i%5) - 2
	}

	var buf bytes.Buffer
	c, err := NewCompressor(&buf, DefaultDistribution)
	require.NoError(t, err)
	c.CompressResiduals(data, nil, 8)
	require.NoError(t, c.Flush())

	d, err := NewDecompressor(&buf)
	require.NoError(t, err)
	got := make([]int32, len(data))
	d.DecompressResiduals(got, nil, 8)
	require.Equal(t, data, got)
}

func TestCompressDecompressRoundTripsWithNorthBoard(t *testing.T) {
	north := make([]int32, 16)
	current := make([]int32, 16)
	for i := range north {
		north[i] = int32(i)
		current[i] = int32(i) + int32(i%3)
	}

	var buf bytes.Buffer
	c, err := NewCompressor(&buf, DefaultDistribution)
	require.NoError(t, err)
	c.CompressResiduals(current, north, 4)
	require.NoError(t, c.Flush())

	d, err := NewDecompressor(&buf)
	require.NoError(t, err)
	got := make([]int32, len(current))
	d.DecompressResiduals(got, north, 4)
	require.Equal(t, current, got)
}

func TestDecompressRejectsBadHeader(t *testing.T) {
	_, err := NewDecompressor(bytes.NewReader([]byte("Xmpr")))
	require.Error(t, err)
}
