package tcfr

import (
	"encoding/binary"

	"github.com/lox/cfrsolve/internal/buckets"
	"github.com/lox/cfrsolve/internal/cfrerr"
	"github.com/lox/cfrsolve/internal/tree"
)

// Node tags used by the arena's compact on-disk-style memory layout.
const (
	tagShowdown byte = 0
	tagP1Folded byte = 1
	tagP0Folded byte = 2
	tagP1Acts   byte = 3
	tagP0Acts   byte = 4

	noFoldSucc byte = 0xFF
)

// Arena is the contiguous byte buffer holding every reachable node, laid
// out once by Build and then mutated in place, lock-free, by every worker
// for the life of a solve.
type Arena struct {
	buf        []byte
	rootOffset uint64
	cfg        *Config
}

func nodeTag(n *tree.Node) byte {
	switch {
	case n.Showdown():
		return tagShowdown
	case n.Fold():
		if n.PlayerActing == 0 {
			// The remaining (non-folded) player is P0, so P1 folded.
			return tagP1Folded
		}
		return tagP0Folded
	case n.PlayerActing == 1:
		return tagP1Acts
	default:
		return tagP0Acts
	}
}

func align8(x uint64) uint64 { return (x + 7) &^ 7 }

func (c *Config) recordSize(n *tree.Node) uint64 {
	if n.Terminal() {
		return 8
	}
	st := n.Street()
	numSuccs := uint64(n.NumSuccs)
	size := 4 + numSuccs*8
	nb := uint64(c.numBucketsAt(st))
	size += nb * numSuccs * uint64(c.regretWidth(st))
	if c.sumprobStreet(st) {
		size += nb * numSuccs * 4
	}
	return align8(size)
}

// Measure walks root once, reentrancy-aware, assigning every distinct node
// an absolute arena offset, and returns the total arena size. Exceeding
// cfg.MaxArenaBytes is a ResourceError.
func Measure(root *tree.Node, cfg *Config) (map[*tree.Node]uint64, uint64, error) {
	offsets := make(map[*tree.Node]uint64)
	var cur uint64
	var walk func(n *tree.Node) error
	walk = func(n *tree.Node) error {
		if _, ok := offsets[n]; ok {
			return nil
		}
		sz := cfg.recordSize(n)
		if cfg.MaxArenaBytes > 0 && cur+sz > uint64(cfg.MaxArenaBytes) {
			return cfrerr.Resourcef("tcfr_arena", "arena size would exceed cap of %d bytes", cfg.MaxArenaBytes)
		}
		offsets[n] = cur
		cur += sz
		for _, s := range n.Succs {
			if err := walk(s); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, 0, err
	}
	return offsets, cur, nil
}

// Build measures and then serializes root into a fresh Arena. Bucket and
// sumprob slabs start zeroed; regrets therefore start at zero (every
// successor tied), matching CFRValues.AllocateAndClear's semantics.
func Build(root *tree.Node, cfg *Config) (*Arena, error) {
	offsets, total, err := Measure(root, cfg)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, total)
	written := make(map[*tree.Node]bool)
	var walk func(n *tree.Node) error
	walk = func(n *tree.Node) error {
		if written[n] {
			return nil
		}
		written[n] = true
		off := offsets[n]
		if n.Terminal() {
			buf[off] = nodeTag(n)
			buf[off+1] = byte(n.Street())
			binary.BigEndian.PutUint32(buf[off+4:off+8], uint32(int32(n.LastBetTo)))
			return nil
		}
		numSuccs := int(n.NumSuccs)
		buf[off] = nodeTag(n)
		buf[off+1] = byte(n.Street())
		buf[off+2] = byte(numSuccs)
		if fi := n.FoldSuccIndex(); fi < 0 {
			buf[off+3] = noFoldSucc
		} else {
			buf[off+3] = byte(fi)
		}
		for s, succ := range n.Succs {
			if err := walk(succ); err != nil {
				return err
			}
			binary.BigEndian.PutUint64(buf[off+4+uint64(s)*8:], offsets[succ])
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return &Arena{buf: buf, rootOffset: offsets[root], cfg: cfg}, nil
}

func (a *Arena) tag(off uint64) byte       { return a.buf[off] }
func (a *Arena) street(off uint64) int     { return int(a.buf[off+1]) }
func (a *Arena) numSuccs(off uint64) int   { return int(a.buf[off+2]) }
func (a *Arena) halfPot(off uint64) int32  { return int32(binary.BigEndian.Uint32(a.buf[off+4 : off+8])) }
func (a *Arena) foldSuccIndex(off uint64) int {
	v := a.buf[off+3]
	if v == noFoldSucc {
		return -1
	}
	return int(v)
}

func (a *Arena) succOffset(off uint64, s, numSuccs int) uint64 {
	base := off + 4 + uint64(s)*8
	_ = numSuccs
	return binary.BigEndian.Uint64(a.buf[base : base+8])
}

func (a *Arena) bucketDataOffset(off uint64, numSuccs int) uint64 {
	return off + 4 + uint64(numSuccs)*8
}

func (a *Arena) sumprobBase(off uint64, numSuccs, st int) uint64 {
	base := a.bucketDataOffset(off, numSuccs)
	nb := uint64(a.cfg.numBucketsAt(st))
	w := uint64(a.cfg.regretWidth(st))
	return base + nb*uint64(numSuccs)*w
}

// regret decodes one (bucket, succ) regret on street st, uncompressing
// through the byte or short quantization table as configured.
func (a *Arena) regret(off uint64, numSuccs, st, bucket, s int) int32 {
	base := a.bucketDataOffset(off, numSuccs)
	w := a.cfg.regretWidth(st)
	idx := base + uint64(bucket*numSuccs+s)*uint64(w)
	switch w {
	case 1:
		return uncompressByteTable[a.buf[idx]]
	case 2:
		raw := binary.BigEndian.Uint16(a.buf[idx : idx+2])
		return uncompressShortTable[raw]
	default:
		return int32(binary.BigEndian.Uint32(a.buf[idx : idx+4]))
	}
}

// setRegret encodes v back into the arena, dithering the quantization
// choice via rng when the street is (short-)quantized.
func (a *Arena) setRegret(off uint64, numSuccs, st, bucket, s int, v int32, rng buckets.Source) {
	base := a.bucketDataOffset(off, numSuccs)
	w := a.cfg.regretWidth(st)
	idx := base + uint64(bucket*numSuccs+s)*uint64(w)
	switch w {
	case 1:
		a.buf[idx] = byte(compressIndex(v, uncompressByteTable, rng))
	case 2:
		binary.BigEndian.PutUint16(a.buf[idx:idx+2], uint16(compressIndex(v, uncompressShortTable, rng)))
	default:
		binary.BigEndian.PutUint32(a.buf[idx:idx+4], uint32(v))
	}
}

func (a *Arena) sumprob(off uint64, numSuccs, st, bucket, s int) uint32 {
	idx := a.sumprobBase(off, numSuccs, st) + uint64(bucket*numSuccs+s)*4
	return binary.BigEndian.Uint32(a.buf[idx : idx+4])
}

func (a *Arena) setSumprob(off uint64, numSuccs, st, bucket, s int, v uint32) {
	idx := a.sumprobBase(off, numSuccs, st) + uint64(bucket*numSuccs+s)*4
	binary.BigEndian.PutUint32(a.buf[idx:idx+4], v)
}
