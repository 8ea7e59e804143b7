package codec

import (
	"encoding/binary"
	"io"

	"github.com/lox/cfrsolve/internal/cfrerr"
)

// compressorID is the fixed 4-byte magic written at the start of every
// compressed value stream.
const compressorID = "Cmpr"

// Compressor encodes streams of 32-bit regret residuals with the context
// adaptive range coder, tracking an observed output distribution that
// callers may persist and reuse as the next stream's prior.
type Compressor struct {
	enc *rangeEncoder

	zeroEncoder  [2][]bitModel
	blockEncoder [2][]bitModel
	large        *largeEncoder
	predictorEnc bitModel

	zeroCtx    bitContext
	blockCtx   bitContext
	optimalCtx optimalContext

	optimalTree []optimalTreeNode
	optimalEnc  [2][]*optimalTreeEncoder

	NewDistribution [DistributionSize]int64
}

// NewCompressor writes the "Cmpr" header and the seed distribution
// verbatim, then prepares to encode residual blocks against the optimal
// tree built from that distribution.
func NewCompressor(w io.Writer, seedDistribution [DistributionSize]int64) (*Compressor, error) {
	if _, err := io.WriteString(w, compressorID); err != nil {
		return nil, cfrerr.IoErrorf("compressor", "write header: %w", err)
	}
	var hdr [DistributionSize * 8]byte
	for i, v := range seedDistribution {
		binary.BigEndian.PutUint64(hdr[i*8:i*8+8], uint64(v))
	}
	if _, err := w.Write(hdr[:]); err != nil {
		return nil, cfrerr.IoErrorf("compressor", "write distribution: %w", err)
	}

	c := &Compressor{
		enc:         newRangeEncoder(w),
		large:       newLargeEncoder(),
		zeroCtx:     newBitContext(zeroContextBits),
		blockCtx:    newBitContext(blockContextBits),
		optimalTree: createOptimalTree(optimalSize, seedDistribution[:], DistributionSize),
	}
	c.predictorEnc = newBitModel()
	for p := 0; p < 2; p++ {
		c.zeroEncoder[p] = make([]bitModel, 1<<zeroContextBits)
		for i := range c.zeroEncoder[p] {
			c.zeroEncoder[p][i] = newBitModel()
		}
		c.blockEncoder[p] = make([]bitModel, 1<<blockContextBits)
		for i := range c.blockEncoder[p] {
			c.blockEncoder[p][i] = newBitModel()
		}
		c.optimalEnc[p] = make([]*optimalTreeEncoder, optimalContextSize)
		for i := range c.optimalEnc[p] {
			c.optimalEnc[p][i] = newOptimalTreeEncoder()
		}
	}
	return c, nil
}

func (c *Compressor) compressNonzeroSymbol(symbol uint32, predictor int) {
	idx := symbol - 1
	if idx > DistributionSize-1 {
		idx = DistributionSize - 1
	}
	c.NewDistribution[idx]++

	if symbol < optimalSize {
		c.optimalEnc[predictor][c.optimalCtx.ctx].encode(c.enc, symbol-1, c.optimalTree)
		c.optimalCtx.ctx = getOptimalContext(symbol)
	} else {
		c.optimalEnc[predictor][c.optimalCtx.ctx].encode(c.enc, optimalSize-1, c.optimalTree)
		c.optimalCtx.ctx = optimalContextSize - 1
		c.large.encode(c.enc, symbol-optimalSize)
	}
}

func (c *Compressor) compressBlock(data []uint32, offset, end, predictor, stride int) {
	for i := offset; i < end; i += stride {
		symbol := data[i]
		if symbol == 0 {
			c.enc.encodeBit(&c.zeroEncoder[predictor][c.zeroCtx.value()], 0)
			c.zeroCtx.update(0)
		} else {
			c.enc.encodeBit(&c.zeroEncoder[predictor][c.zeroCtx.value()], 1)
			c.zeroCtx.update(1)
			c.compressNonzeroSymbol(symbol, predictor)
		}
	}
}

func isBlockZero(data []uint32, offset, end, stride int) bool {
	for i := offset; i < end; i += stride {
		if data[i] != 0 {
			return false
		}
	}
	return true
}

func (c *Compressor) doBlock(data []uint32, i, end, predictor, stride int) {
	if isBlockZero(data, i, end, stride) {
		c.enc.encodeBit(&c.blockEncoder[predictor][c.blockCtx.value()], 0)
		c.blockCtx.update(0)
	} else {
		c.enc.encodeBit(&c.blockEncoder[predictor][c.blockCtx.value()], 1)
		c.blockCtx.update(1)
		c.compressBlock(data, i, end, predictor, stride)
	}
}

// compress encodes data (already ZigZag-encoded residuals) using the given
// predictor flag (0 or 1, just a context selector here — the predictor
// choice itself happens in CompressResiduals).
func (c *Compressor) compress(data []uint32, stride, predictor int) {
	c.zeroCtx.reset()
	c.blockCtx.reset()
	c.optimalCtx.reset()

	c.enc.encodeBit(&c.predictorEnc, uint32(predictor))

	dataLength := len(data)
	incr := blockSize * stride
	end := dataLength - incr
	for offset := 0; offset < stride; offset++ {
		i := offset
		for ; i <= end; i += incr {
			c.doBlock(data, i, i+incr, predictor, stride)
		}
		if i < dataLength {
			c.doBlock(data, i, dataLength, predictor, stride)
		}
	}
}

// CompressResiduals encodes one board's current regret slab against the
// previous board's slab (northData, or nil for the first board). It tries
// both the plain W-predictor residual and the Paeth-style W/N/NW
// predictor and keeps whichever produced fewer nonzero residuals,
// recording the winning predictor as a single encoded bit
// (original_source's two-stage EJEncodeRegret/Compress).
func (c *Compressor) CompressResiduals(current, north []int32, stride int) {
	residual, residualW, usePaeth := encodeRegretResiduals(current, north, stride)
	if usePaeth {
		c.compress(residual, stride, 1)
	} else {
		c.compress(residualW, stride, 0)
	}
}

// Flush must be called exactly once after all blocks are compressed to
// drain the range coder's final bytes.
func (c *Compressor) Flush() error {
	return c.enc.flush()
}

func encodeRegretResiduals(data, north []int32, stride int) (residual, residualW []uint32, usePaeth bool) {
	n := len(data)
	residual = make([]uint32, n)
	residualW = make([]uint32, n)

	if north != nil {
		nonzeroGrad, nonzeroW := 0, 0
		for offset := 0; offset < stride; offset++ {
			z := zigzagEncode32(data[offset] - north[offset])
			residual[offset] = z
			residualW[offset] = z
			if z != 0 {
				nonzeroGrad++
				nonzeroW++
			}
			for i := offset + stride; i < n; i += stride {
				nn := north[i]
				nw := north[i-stride]
				w := data[i-stride]
				p := predict(nn, w, nw)

				residual[i] = zigzagEncode32(data[i] - p)
				if residual[i] != 0 {
					nonzeroGrad++
				}
				residualW[i] = zigzagEncode32(data[i] - w)
				if residualW[i] != 0 {
					nonzeroW++
				}
			}
		}
		return residual, residualW, nonzeroGrad < nonzeroW
	}

	for offset := 0; offset < stride; offset++ {
		residualW[offset] = zigzagEncode32(data[offset])
		for i := offset + stride; i < n; i += stride {
			residualW[i] = zigzagEncode32(data[i] - data[i-stride])
		}
	}
	return residualW, residualW, false
}
