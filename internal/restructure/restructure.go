// Package restructure implements the offline runtime-preparation pass:
// quantizing trunk sumprobs down to a byte (or half-byte on the turn for
// heads-up) and purifying subgame-street regrets down to a 2-bit
// best-successor code. Grounded on
// original_source/src/restructure.cpp's Restructurer class; adapted from
// its raw Reader/Writer byte-stream walk to operate directly on
// internal/values.CFRValues, since that's how values already live in this
// module rather than as files to be re-opened.
package restructure

import (
	"github.com/lox/cfrsolve/internal/cfrerr"
	"github.com/lox/cfrsolve/internal/tree"
	"github.com/lox/cfrsolve/internal/values"
)

// StreamKey identifies one (player, street) output stream.
type StreamKey struct {
	Player int
	Street int
}

// Config mirrors the constructor arguments of original_source's
// Restructurer that affect encoding choices (the file-path/value-type
// auto-detection logic it also does is handled upstream by values.Read's
// own auto-detection before Go is called).
type Config struct {
	// SubgameStreet is the first street purified to a 2-bit best-succ code
	// instead of byte-quantized: the street handed to endgame resolving.
	SubgameStreet int
	// TurnHalfByte requests half-byte (16-level) quantization on street 2
	// instead of the default full byte, used for the heads-up turn.
	TurnHalfByte bool
}

// Result holds one restructuring pass's output streams.
type Result struct {
	// SumprobBytes holds trunk-street byte-quantized sumprobs, one slice
	// per (player,street), each holding*num_succs bytes (or packed
	// half-bytes on the turn when TurnHalfByte).
	SumprobBytes map[StreamKey][]byte
	// PureRegretBits holds subgame-street 2-bit-per-bucket best-succ codes,
	// MSB-first-packed, one slice per (player,street).
	PureRegretBits map[StreamKey][]byte
}

// Go runs the full pass over root: trunk streets are read from sumprobs,
// subgame streets (>= cfg.SubgameStreet) from regrets.
func Go(root *tree.Node, cfg Config, sumprobs, regrets *values.CFRValues) (*Result, error) {
	res := &Result{
		SumprobBytes:   make(map[StreamKey][]byte),
		PureRegretBits: make(map[StreamKey][]byte),
	}
	seen := make(map[*tree.Node]bool)
	var walk func(n *tree.Node) error
	walk = func(n *tree.Node) error {
		if n.Terminal() || seen[n] {
			return nil
		}
		seen[n] = true
		if n.Street() >= cfg.SubgameStreet {
			return walkSubgame(n, regrets, res, seen)
		}
		if err := walkTrunkNode(n, cfg, sumprobs, res); err != nil {
			return err
		}
		for _, c := range n.Succs {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return res, nil
}

// walkSubgame recurses through n and every descendant (all streets from
// here on are >= cfg.SubgameStreet, since street only ever increases),
// purifying each multi-succ node's per-bucket regrets to a 2-bit best-succ
// code.
func walkSubgame(n *tree.Node, regrets *values.CFRValues, res *Result, seen map[*tree.Node]bool) error {
	if n.Terminal() {
		return nil
	}
	numSuccs := int(n.NumSuccs)
	if numSuccs > 1 {
		if numSuccs > 4 {
			return cfrerr.Valuef("restructure", "node id %d has %d succs, expected at most 4 for 2-bit purification", n.ID, numSuccs)
		}
		st := n.Street()
		sk := StreamKey{int(n.PlayerActing), st}
		numBuckets := regrets.NumHoldings(n)
		if numBuckets == 0 {
			return cfrerr.Valuef("restructure", "zero buckets on subgame street %d", st)
		}
		bw := newBitWriter()
		for b := 0; b < numBuckets; b++ {
			best := -1
			for s := 0; s < numSuccs; s++ {
				v, err := regrets.Get(n, b, s)
				if err != nil {
					return err
				}
				if v == 0 && best == -1 {
					best = s
				}
			}
			if best == -1 {
				return cfrerr.Valuef("restructure", "no zero-regret succ at st %d nt %d bucket %d", st, n.ID, b)
			}
			if err := recordBestSucc4(best, bw); err != nil {
				return err
			}
		}
		res.PureRegretBits[sk] = append(res.PureRegretBits[sk], bw.flush()...)
	}
	for _, c := range n.Succs {
		if seen[c] {
			continue
		}
		seen[c] = true
		if err := walkSubgame(c, regrets, res, seen); err != nil {
			return err
		}
	}
	return nil
}

// nqFor returns the quantization level count for street st: 16 on the
// heads-up turn when cfg.TurnHalfByte, else 256 everywhere else in the
// trunk.
func nqFor(st int, cfg Config) int {
	if st == 2 && cfg.TurnHalfByte {
		return 16
	}
	return 256
}

// walkTrunkNode quantizes one trunk node's sumprob row per holding,
// packing to one byte (or two codes per byte on the half-byte turn).
func walkTrunkNode(n *tree.Node, cfg Config, sumprobs *values.CFRValues, res *Result) error {
	numSuccs := int(n.NumSuccs)
	if numSuccs <= 1 {
		return nil
	}
	st := n.Street()
	sk := StreamKey{int(n.PlayerActing), st}
	nq := nqFor(st, cfg)
	dsi := n.DefaultSuccIndex()
	numHoldings := sumprobs.NumHoldings(n)

	halfByte := st == 2 && cfg.TurnHalfByte
	var out []byte
	var pendingNibble int
	havePending := false

	row := make([]float64, numSuccs)
	for h := 0; h < numHoldings; h++ {
		for s := 0; s < numSuccs; s++ {
			v, err := sumprobs.Get(n, h, s)
			if err != nil {
				return err
			}
			row[s] = v
		}
		codes := quantizeRow(row, nq, dsi)
		for _, c := range codes {
			if !halfByte {
				out = append(out, byte(c))
				continue
			}
			if !havePending {
				pendingNibble = c
				havePending = true
			} else {
				out = append(out, byte(pendingNibble<<4)|byte(c))
				havePending = false
			}
		}
	}
	if halfByte && havePending {
		out = append(out, byte(pendingNibble<<4))
	}
	res.SumprobBytes[sk] = append(res.SumprobBytes[sk], out...)
	return nil
}

// quantizeRow converts one holding's raw sumprob counts into nq-1-summing
// integer codes, per original_source's WalkTrunk: proportional quantization
// followed by sum-correction (add the shortfall to the largest code, or
// repeatedly decrement the smallest nonzero code to shed the excess).
func quantizeRow(vals []float64, nq, defaultSucc int) []int {
	n := len(vals)
	codes := make([]int, n)
	sum := 0.0
	for _, v := range vals {
		if v > 0 {
			sum += v
		}
	}
	target := nq - 1
	if sum == 0 {
		codes[defaultSucc] = target
		return codes
	}
	for s, v := range vals {
		if v <= 0 {
			continue
		}
		prob := v / sum
		qp := int(prob * float64(nq))
		if qp >= nq {
			qp = nq - 1
		}
		codes[s] = qp
	}
	qsum := 0
	for _, c := range codes {
		qsum += c
	}
	if qsum < target {
		delta := target - qsum
		maxS := 0
		for s := 1; s < n; s++ {
			if codes[s] > codes[maxS] {
				maxS = s
			}
		}
		codes[maxS] += delta
		return codes
	}
	for qsum > target {
		minS, minQP := -1, nq
		for s := 0; s < n; s++ {
			if codes[s] > 0 && codes[s] < minQP {
				minQP = codes[s]
				minS = s
			}
		}
		if minS == -1 {
			break
		}
		codes[minS]--
		qsum--
	}
	return codes
}

// bitWriter packs bits MSB-first into bytes, matching AddBit's convention
// (original_source/restructure.cpp): the first bit written lands in bit 7
// of the current byte. Always construct via newBitWriter, never the zero
// value, since currentBit must start at 7 rather than Go's int zero value.
type bitWriter struct {
	buf         []byte
	currentByte byte
	currentBit  int
}

func newBitWriter() *bitWriter { return &bitWriter{currentBit: 7} }

func (w *bitWriter) writeBit(bit int) {
	if bit != 0 {
		w.currentByte |= 1 << uint(w.currentBit)
	}
	if w.currentBit == 0 {
		w.buf = append(w.buf, w.currentByte)
		w.currentByte = 0
		w.currentBit = 7
	} else {
		w.currentBit--
	}
}

func (w *bitWriter) flush() []byte {
	if w.currentBit != 7 {
		w.buf = append(w.buf, w.currentByte)
		w.currentByte = 0
		w.currentBit = 7
	}
	return w.buf
}

// recordBestSucc4 encodes best (0-3) as two MSB-first bits, matching
// RecordBestSucc4's literal case table.
func recordBestSucc4(best int, w *bitWriter) error {
	if best < 0 || best > 3 {
		return cfrerr.Valuef("restructure", "best succ %d out of bounds for 2-bit encoding", best)
	}
	w.writeBit((best >> 1) & 1)
	w.writeBit(best & 1)
	return nil
}
