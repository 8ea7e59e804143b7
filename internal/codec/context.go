package codec

// bitContext is a rolling window of the last numBits observed 0/1 symbols,
// used as a context selector (the "zero" and "block" contexts).
type bitContext struct {
	numBits uint
	ctx     uint32
}

func newBitContext(numBits uint) bitContext { return bitContext{numBits: numBits} }

func (c *bitContext) reset() { c.ctx = 0 }

func (c *bitContext) update(x uint32) {
	c.ctx = ((c.ctx << 1) | (x & 1)) & ((1 << c.numBits) - 1)
}

func (c bitContext) value() uint32 { return c.ctx }

// optimalContext tracks the previously-encoded symbol's magnitude bucket,
// used to select the optimalEncoder/optimalDecoder instance per value
// (more context for small, frequent residuals).
type optimalContext struct {
	ctx uint32
}

func (c *optimalContext) reset() {
	// Least likely bucket, matching original_source's Context::Reset.
	c.ctx = (0xffffffff & (optimalContextSize - 1)) - 1
}

func getOptimalContext(symbol uint32) uint32 {
	v := symbol - 1
	if v > optimalContextSize-1 {
		v = optimalContextSize - 1
	}
	return v
}

// zigzagEncode32/zigzagDecode32 map signed residuals onto unsigned symbols
// so small magnitudes of either sign stay small.
func zigzagEncode32(n int32) uint32 {
	return uint32((n << 1) ^ (n >> 31))
}

func zigzagDecode32(n uint32) int32 {
	return int32(n>>1) ^ -int32(n&1)
}

// predict is a Paeth-style predictor: it returns whichever of the "north"
// value n and the "west" value w lies closer to the gradient estimate
// n + w - nw. That is n when w is closer to the "northwest" value nw than n
// is, and w otherwise (original_source's Predict).
func predict(n, w, nw int32) int32 {
	dw := w - nw
	if dw < 0 {
		dw = -dw
	}
	dn := n - nw
	if dn < 0 {
		dn = -dn
	}
	if dw < dn {
		return n
	}
	return w
}
