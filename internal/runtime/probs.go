package runtime

import (
	"encoding/binary"
	"math"

	"github.com/lox/cfrsolve/internal/cfrerr"
	"github.com/lox/cfrsolve/internal/tree"
	"github.com/lox/cfrsolve/internal/values"
)

// Probs returns the (possibly one-hot) strategy at n's holding h: read raw
// values, sum them, and return value/sum if the sum is positive, else a
// one-hot at dsi. For CFR_BITS ("pure") strategies, it returns a one-hot at
// the encoded best succ. The result always sums to 1.0 within float
// tolerance.
func (vf *ValuesFile) Probs(n *tree.Node, h, dsi int) ([]float64, error) {
	numSuccs := int(n.NumSuccs)
	if numSuccs <= 1 {
		return nil, cfrerr.Valuef("probs", "node id %d has %d succs, no strategy to read", n.ID, numSuccs)
	}
	p := int(n.PlayerActing)
	st := n.Street()
	s, ok := vf.streams[streamKey{p, st}]
	if !ok {
		return nil, cfrerr.Valuef("probs", "no stream open for player %d street %d", p, st)
	}
	off, ok := vf.offsets[offsetKey{p, st, n.ID}]
	if !ok {
		return nil, cfrerr.Valuef("probs", "no offset recorded for node id %d (player %d street %d)", n.ID, p, st)
	}
	if h < 0 {
		return nil, cfrerr.Valuef("probs", "holding %d negative", h)
	}

	switch s.kind {
	case kindChar:
		if s.method == methodPure {
			return readPureChar(s, off, h, numSuccs)
		}
		return readRegretMatchingChar(s, off, h, numSuccs, dsi)
	case kindHalfByte:
		return readRegretMatchingHalfByte(s, off, h, numSuccs, dsi)
	case kindBits:
		return readPureBits(s, off, h, numSuccs)
	case kindInt:
		return readRegretMatchingInt(s, off, h, numSuccs, dsi)
	case kindDouble:
		return readRegretMatchingDouble(s, off, h, numSuccs, dsi)
	default:
		return nil, cfrerr.Valuef("probs", "unknown stream kind %d", s.kind)
	}
}

func oneHot(numSuccs, dsi int) []float64 {
	probs := make([]float64, numSuccs)
	probs[dsi] = 1.0
	return probs
}

func normalizeOrDefault(raw []float64, dsi int) []float64 {
	sum := 0.0
	for _, v := range raw {
		sum += v
	}
	if sum <= 0 {
		return oneHot(len(raw), dsi)
	}
	probs := make([]float64, len(raw))
	for i, v := range raw {
		probs[i] = v / sum
	}
	return probs
}

func readRegretMatchingChar(s *stream, off int64, h, numSuccs, dsi int) ([]float64, error) {
	buf := make([]byte, numSuccs)
	if err := s.readAt(buf, off+int64(h*numSuccs)); err != nil {
		return nil, cfrerr.IoErrorf("probs", "read char row: %w", err)
	}
	raw := make([]float64, numSuccs)
	for i, b := range buf {
		raw[i] = float64(b)
	}
	return normalizeOrDefault(raw, dsi), nil
}

func readPureChar(s *stream, off int64, h, numSuccs int) ([]float64, error) {
	buf := make([]byte, numSuccs)
	if err := s.readAt(buf, off+int64(h*numSuccs)); err != nil {
		return nil, cfrerr.IoErrorf("probs", "read char row: %w", err)
	}
	for i, b := range buf {
		if b == 0 {
			return oneHot(numSuccs, i), nil
		}
	}
	return nil, cfrerr.Valuef("probs", "pure char row at holding %d has no zero byte", h)
}

func readRegretMatchingHalfByte(s *stream, off int64, h, numSuccs, dsi int) ([]float64, error) {
	base := h * numSuccs
	raw := make([]float64, numSuccs)
	for i := 0; i < numSuccs; i++ {
		idx := base + i
		byteOff := off + int64(idx/2)
		high := idx%2 == 0
		var buf [1]byte
		if err := s.readAt(buf[:], byteOff); err != nil {
			return nil, cfrerr.IoErrorf("probs", "read half-byte: %w", err)
		}
		if high {
			raw[i] = float64(buf[0] >> 4)
		} else {
			raw[i] = float64(buf[0] & 0x0f)
		}
	}
	return normalizeOrDefault(raw, dsi), nil
}

// readPureBits decodes the 2-bit best-succ code for holding h out of a
// 4-buckets-per-byte packed stream, shift = 6 - 2*(h%4), matching
// original_source's CFR_BITS Probs() branch.
func readPureBits(s *stream, off int64, h, numSuccs int) ([]float64, error) {
	byteOff := off + int64(h/4)
	var buf [1]byte
	if err := s.readAt(buf[:], byteOff); err != nil {
		return nil, cfrerr.IoErrorf("probs", "read bits byte: %w", err)
	}
	shift := uint(6 - 2*(h%4))
	best := int((buf[0] >> shift) & 0x3)
	if best >= numSuccs {
		return nil, cfrerr.Valuef("probs", "decoded best succ %d out of range for %d succs at holding %d", best, numSuccs, h)
	}
	return oneHot(numSuccs, best), nil
}

func readRegretMatchingInt(s *stream, off int64, h, numSuccs, dsi int) ([]float64, error) {
	buf := make([]byte, numSuccs*4)
	if err := s.readAt(buf, off+int64(h*numSuccs)*4); err != nil {
		return nil, cfrerr.IoErrorf("probs", "read int row: %w", err)
	}
	raw := make([]float64, numSuccs)
	for i := 0; i < numSuccs; i++ {
		raw[i] = float64(int32(binary.BigEndian.Uint32(buf[i*4:])))
	}
	return normalizeOrDefault(raw, dsi), nil
}

func readRegretMatchingDouble(s *stream, off int64, h, numSuccs, dsi int) ([]float64, error) {
	buf := make([]byte, numSuccs*8)
	if err := s.readAt(buf, off+int64(h*numSuccs)*8); err != nil {
		return nil, cfrerr.IoErrorf("probs", "read double row: %w", err)
	}
	raw := make([]float64, numSuccs)
	for i := 0; i < numSuccs; i++ {
		raw[i] = math.Float64frombits(binary.BigEndian.Uint64(buf[i*8:]))
	}
	return normalizeOrDefault(raw, dsi), nil
}

// ReadPureSubtree decodes a 2-bit-packed CFR_BITS stream covering whole
// (the node this ValuesFile was opened against) into a fresh one-hot char
// regrets store scoped to subtree, a descendant of whole reached by some
// action prefix. Grounded on cfr_values_file.cpp's public ReadPureSubtree
// overload: allocate subtree's char regrets first, then walk whole and
// subtree in lockstep so the bit cursor stays aligned with whole's stream
// even though only subtree's nodes are materialized.
func (vf *ValuesFile) ReadPureSubtree(whole, subtree *tree.Node, regrets *values.CFRValues) error {
	regrets.AllocateAndClear(subtree, -1)
	return vf.readPureSubtree(whole, subtree, regrets)
}

func (vf *ValuesFile) readPureSubtree(whole, subtree *tree.Node, regrets *values.CFRValues) error {
	if whole.Terminal() || subtree.Terminal() {
		return nil
	}
	numSuccs := int(whole.NumSuccs)
	if numSuccs != int(subtree.NumSuccs) {
		return cfrerr.Valuef("read_pure_subtree", "succ count mismatch: whole node %d has %d, subtree node %d has %d", whole.ID, numSuccs, subtree.ID, subtree.NumSuccs)
	}
	if numSuccs > 1 {
		p := int(whole.PlayerActing)
		st := whole.Street()
		s, ok := vf.streams[streamKey{p, st}]
		if !ok || s.kind != kindBits {
			return cfrerr.Valuef("read_pure_subtree", "no CFR_BITS stream open for player %d street %d", p, st)
		}
		off, ok := vf.offsets[offsetKey{p, st, whole.ID}]
		if !ok {
			return cfrerr.Valuef("read_pure_subtree", "no offset recorded for node id %d", whole.ID)
		}
		numHold := vf.geometry.NumHoldings(whole)
		holdingValues := make([][]float64, numHold)
		for h := 0; h < numHold; h++ {
			byteOff := off + int64(h/4)
			var buf [1]byte
			if err := s.readAt(buf[:], byteOff); err != nil {
				return cfrerr.IoErrorf("read_pure_subtree", "read bits byte: %w", err)
			}
			shift := uint(6 - 2*(h%4))
			best := int((buf[0] >> shift) & 0x3)
			row := make([]float64, numSuccs)
			if best < numSuccs {
				row[best] = 1.0
			}
			holdingValues[h] = row
		}
		if err := regrets.SetValues(subtree, holdingValues); err != nil {
			return err
		}
	}
	for i := 0; i < numSuccs; i++ {
		if err := vf.readPureSubtree(whole.IthSucc(i), subtree.IthSucc(i), regrets); err != nil {
			return err
		}
	}
	return nil
}
