// Package codec implements a context-adaptive range coder used to compress
// TCFR's integer regret slabs. Grounded on original_source/src/ej_compress.
// {h,cpp} (an LZMA-style binary range coder with an "optimal binary tree"
// for the common 0..1023 symbol range, a two-stage escape for larger
// values, and zero/block contexts that exploit runs of untaken actions).
package codec

import "io"

const (
	numBitModelTotalBits = 11
	bitModelTotal        = 1 << numBitModelTotalBits
	numMoveBits          = 4
	topValue             = 1 << 24

	blockSize = 16

	optimalBits        = 10
	optimalSize        = 1 << optimalBits
	zeroContextBits    = 16
	blockContextBits   = 12
	optimalContextBits = 10
	optimalContextSize = 1 << optimalContextBits

	// DistributionSize is the number of symbol-frequency entries written
	// verbatim at the start of every compressed stream.
	DistributionSize = 256
)

// rangeEncoder is a byte-oriented carryless range coder (LZMA-style).
type rangeEncoder struct {
	low       uint64
	rng       uint32
	cacheSize uint64
	cache     byte
	w         io.Writer
	err       error
}

func newRangeEncoder(w io.Writer) *rangeEncoder {
	return &rangeEncoder{rng: 0xFFFFFFFF, cacheSize: 1, w: w}
}

func (e *rangeEncoder) writeByte(b byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write([]byte{b})
}

func (e *rangeEncoder) shiftLow() {
	if uint32(e.low) < 0xFF000000 || (e.low>>32) != 0 {
		temp := e.cache
		for {
			e.writeByte(temp + byte(e.low>>32))
			temp = 0xFF
			e.cacheSize--
			if e.cacheSize == 0 {
				break
			}
		}
		e.cache = byte(uint32(e.low) >> 24)
	}
	e.cacheSize++
	e.low = uint64(uint32(e.low) << 8)
}

func (e *rangeEncoder) flush() error {
	for i := 0; i < 5; i++ {
		e.shiftLow()
	}
	return e.err
}

type rangeDecoder struct {
	rng  uint32
	code uint32
	r    io.Reader
	err  error
}

func newRangeDecoder(r io.Reader) *rangeDecoder {
	d := &rangeDecoder{rng: 0xFFFFFFFF, r: r}
	for i := 0; i < 5; i++ {
		d.code = (d.code << 8) | uint32(d.readByte())
	}
	return d
}

func (d *rangeDecoder) readByte() byte {
	if d.err != nil {
		return 0
	}
	var b [1]byte
	_, err := io.ReadFull(d.r, b[:])
	if err != nil {
		d.err = err
	}
	return b[0]
}

// bitModel is one adaptive binary probability, updated toward whichever
// symbol it just observed (kNumMoveBits-wide exponential smoothing).
type bitModel struct {
	prob uint32
}

func newBitModel() bitModel { return bitModel{prob: bitModelTotal / 2} }

func (m *bitModel) update(symbol uint32) {
	if symbol == 0 {
		m.prob += (bitModelTotal - m.prob) >> numMoveBits
	} else {
		m.prob -= m.prob >> numMoveBits
	}
}

func (e *rangeEncoder) encodeBit(m *bitModel, symbol uint32) {
	newBound := (e.rng >> numBitModelTotalBits) * m.prob
	if symbol == 0 {
		e.rng = newBound
	} else {
		e.low += uint64(newBound)
		e.rng -= newBound
	}
	m.update(symbol)
	if e.rng < topValue {
		e.rng <<= 8
		e.shiftLow()
	}
}

func (d *rangeDecoder) decodeBit(m *bitModel) uint32 {
	newBound := (d.rng >> numBitModelTotalBits) * m.prob
	var r uint32
	if d.code < newBound {
		d.rng = newBound
		r = 0
	} else {
		d.rng -= newBound
		d.code -= newBound
		r = 1
	}
	m.update(r)
	if d.rng < topValue {
		d.code = (d.code << 8) | uint32(d.readByte())
		d.rng <<= 8
	}
	return r
}

// bitTreeEncoder/bitTreeDecoder encode a fixed-width unsigned integer as a
// sequence of adaptively-modeled bits, most significant first, one model
// per tree node (2^numBits - 1 models).
type bitTreeEncoder struct {
	numBits int
	models  []bitModel
}

func newBitTreeEncoder(numBits int) *bitTreeEncoder {
	models := make([]bitModel, 1<<uint(numBits))
	for i := range models {
		models[i] = newBitModel()
	}
	return &bitTreeEncoder{numBits: numBits, models: models}
}

func (t *bitTreeEncoder) encode(e *rangeEncoder, symbol uint32) {
	modelIndex := uint32(1)
	for bitIndex := t.numBits; bitIndex != 0; {
		bitIndex--
		bit := (symbol >> uint(bitIndex)) & 1
		e.encodeBit(&t.models[modelIndex], bit)
		modelIndex = (modelIndex << 1) | bit
	}
}

type bitTreeDecoder struct {
	numBits int
	models  []bitModel
}

func newBitTreeDecoder(numBits int) *bitTreeDecoder {
	models := make([]bitModel, 1<<uint(numBits))
	for i := range models {
		models[i] = newBitModel()
	}
	return &bitTreeDecoder{numBits: numBits, models: models}
}

func (t *bitTreeDecoder) decode(d *rangeDecoder) uint32 {
	modelIndex := uint32(1)
	for i := 0; i < t.numBits; i++ {
		modelIndex = (modelIndex << 1) + d.decodeBit(&t.models[modelIndex])
	}
	return modelIndex - (1 << uint(t.numBits))
}
