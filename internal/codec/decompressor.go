package codec

import (
	"encoding/binary"
	"io"

	"github.com/lox/cfrsolve/internal/cfrerr"
)

// Decompressor mirrors Compressor exactly: same model update order and
// context derivation, so any divergence between encoder and decoder state
// corrupts the stream rather than erroring out — callers verify
// correctness via a post-condition EOF check instead.
type Decompressor struct {
	dec *rangeDecoder

	zeroDecoder  [2][]bitModel
	blockDecoder [2][]bitModel
	large        *largeDecoder
	predictorDec bitModel

	zeroCtx    bitContext
	blockCtx   bitContext
	optimalCtx optimalContext

	optimalTree []optimalTreeNode
	optimalDec  [2][]*optimalTreeDecoder

	Distribution [DistributionSize]int64
}

// NewDecompressor reads and validates the "Cmpr" header and the seed
// distribution, then prepares to decode residual blocks.
func NewDecompressor(r io.Reader) (*Decompressor, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, cfrerr.IoErrorf("decompressor", "read header: %w", err)
	}
	if string(magic[:]) != compressorID {
		return nil, cfrerr.Valuef("decompressor", "bad compressor id %q", magic[:])
	}

	d := &Decompressor{
		large:    newLargeDecoder(),
		zeroCtx:  newBitContext(zeroContextBits),
		blockCtx: newBitContext(blockContextBits),
	}

	var hdr [DistributionSize * 8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, cfrerr.IoErrorf("decompressor", "read distribution: %w", err)
	}
	for i := range d.Distribution {
		d.Distribution[i] = int64(binary.BigEndian.Uint64(hdr[i*8 : i*8+8]))
	}
	d.optimalTree = createOptimalTree(optimalSize, d.Distribution[:], DistributionSize)

	d.predictorDec = newBitModel()
	for p := 0; p < 2; p++ {
		d.zeroDecoder[p] = make([]bitModel, 1<<zeroContextBits)
		for i := range d.zeroDecoder[p] {
			d.zeroDecoder[p][i] = newBitModel()
		}
		d.blockDecoder[p] = make([]bitModel, 1<<blockContextBits)
		for i := range d.blockDecoder[p] {
			d.blockDecoder[p][i] = newBitModel()
		}
		d.optimalDec[p] = make([]*optimalTreeDecoder, optimalContextSize)
		for i := range d.optimalDec[p] {
			d.optimalDec[p][i] = newOptimalTreeDecoder()
		}
	}

	d.dec = newRangeDecoder(r)
	return d, nil
}

func (d *Decompressor) gotBlock(predictor int) bool {
	got := d.dec.decodeBit(&d.blockDecoder[predictor][d.blockCtx.value()]) != 0
	if got {
		d.blockCtx.update(1)
	} else {
		d.blockCtx.update(0)
	}
	return got
}

func (d *Decompressor) decompressNonzeroSymbol(predictor int) int32 {
	symbol := d.optimalDec[predictor][d.optimalCtx.ctx].decode(d.dec, d.optimalTree) + 1
	d.optimalCtx.ctx = getOptimalContext(symbol)
	if symbol == optimalSize {
		symbol = d.large.decode(d.dec) + optimalSize
	}
	return zigzagDecode32(symbol)
}

func (d *Decompressor) decompressSymbol(predictor int) int32 {
	notZero := d.dec.decodeBit(&d.zeroDecoder[predictor][d.zeroCtx.value()])
	d.zeroCtx.update(notZero)
	if notZero == 0 {
		return 0
	}
	return d.decompressNonzeroSymbol(predictor)
}

// DecompressResiduals decodes dataLength residuals (laid out with the
// given stride) into data, applying the predictor the encoder selected.
// north is the previous board's already-decoded slab, or nil for the
// first board (original_source's EJDecompressor::Decompress +
// EJDecodeRegret).
func (d *Decompressor) DecompressResiduals(data []int32, north []int32, stride int) {
	d.zeroCtx.reset()
	d.blockCtx.reset()
	d.optimalCtx.reset()

	predictor := int(d.dec.decodeBit(&d.predictorDec))

	dataLength := len(data)
	incr := blockSize * stride
	end := dataLength - incr
	for offset := 0; offset < stride; offset++ {
		i := offset
		for ; i <= end; i += incr {
			d.decodeBlock(data, north, i, i+incr, predictor, stride)
		}
		// Guarded the same way the encoder guards its trailing partial
		// block: when dataLength is an exact multiple of blockSize*stride,
		// i lands exactly on dataLength and there is no tail block to
		// decode (its encoder-side counterpart encoded nothing either).
		if i < dataLength {
			d.decodeBlock(data, north, i, dataLength, predictor, stride)
		}
	}
}

func (d *Decompressor) decodeBlock(data, north []int32, i, end, predictor, stride int) {
	got := d.gotBlock(predictor)
	for j := i; j < end; j += stride {
		var residual int32
		if got {
			residual = d.decompressSymbol(predictor)
		}
		decodeRegretElem(data, north, j, predictor, residual, stride)
	}
}

// decodeRegretElem reconstructs one element given its decoded residual,
// mirroring EJDecodeRegret's case split on whether this is the first row
// (no west neighbor) and whether a north slab is available at all.
func decodeRegretElem(data, north []int32, i, predictor int, residual int32, stride int) {
	if i < stride {
		if north != nil {
			data[i] = residual + north[i]
		} else {
			data[i] = residual
		}
		return
	}
	if north != nil {
		if predictor == 0 {
			data[i] = residual + data[i-stride]
		} else {
			p := predict(north[i], data[i-stride], north[i-stride])
			data[i] = residual + p
		}
	} else {
		data[i] = residual + data[i-stride]
	}
}
