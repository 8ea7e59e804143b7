package codec

// largeEncoder/largeDecoder are the two-stage escape used once a symbol's
// magnitude exceeds optimalSize: a 17-bit tree carries the low 16 bits
// plus an overflow flag, and a 16-bit tree carries the high bits only
// when that flag is set (original_source's EJLargeEncoder/EJLargeDecoder).
type largeEncoder struct {
	low  *bitTreeEncoder
	high *bitTreeEncoder
}

func newLargeEncoder() *largeEncoder {
	return &largeEncoder{low: newBitTreeEncoder(17), high: newBitTreeEncoder(16)}
}

func (e *largeEncoder) encode(enc *rangeEncoder, symbol uint32) {
	low := symbol & 0xffff
	if symbol > 0xffff {
		low |= 0x10000
	}
	e.low.encode(enc, low)
	if symbol > 0xffff {
		e.high.encode(enc, symbol>>16)
	}
}

type largeDecoder struct {
	low  *bitTreeDecoder
	high *bitTreeDecoder
}

func newLargeDecoder() *largeDecoder {
	return &largeDecoder{low: newBitTreeDecoder(17), high: newBitTreeDecoder(16)}
}

func (d *largeDecoder) decode(dec *rangeDecoder) uint32 {
	symbol := d.low.decode(dec)
	if symbol > 0xffff {
		symbol &= 0xffff
		symbol |= d.high.decode(dec) << 16
	}
	return symbol
}
