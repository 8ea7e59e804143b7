package tcfr

import (
	"math"

	"github.com/lox/cfrsolve/internal/buckets"
	"github.com/lox/cfrsolve/internal/cfrerr"
)

// fatalPanic carries a library error up through the unsynchronized
// recursion so a single recover() at the worker goroutine's top can convert
// it back into a returned error (a panic, never an os.Exit, since this is
// still library code).
type fatalPanic struct{ err error }

func fatal(err error) { panic(fatalPanic{err}) }

// maxStackDepth and maxSuccsPerNode bound the recursion depth and the
// per-node successor count process() will ever see, mirroring
// original_source/src/tcfr.cpp's kStackDepth/kMaxSuccs. Both are used to
// size worker's scratch stacks once per worker rather than allocating
// inside the recursion.
const (
	maxStackDepth   = 50
	maxSuccsPerNode = 50
)

// worker holds one goroutine's per-iteration state: its view of the shared
// arena and config, its own RNG and dither pool, and the currently dealt
// hand. valueStack and iregretStack are recursion-depth-indexed scratch
// buffers for processOurs's full-evaluation pass, preallocated once so
// Process() never allocates on the hot path (mirroring tcfr.cpp's
// succ_value_stack_/succ_iregret_stack_, one [kMaxSuccs] row per stack
// frame).
type worker struct {
	arena     *Arena
	cfg       *Config
	rng       *PCG32
	pool      *FloatPool
	traverser int
	deal      buckets.Deal
	seq       uint64

	depth        int
	valueStack   [maxStackDepth][maxSuccsPerNode]int32
	iregretStack [maxStackDepth][maxSuccsPerNode]int32
}

// recurse wraps a single step into a child node's Process(), tracking
// recursion depth against the preallocated scratch stacks' fixed capacity.
func (w *worker) recurse(off uint64, full bool) int32 {
	if w.depth+1 >= maxStackDepth {
		fatal(cfrerr.Valuef("tcfr_process", "recursion depth exceeds %d", maxStackDepth))
	}
	w.depth++
	val := w.process(off, full)
	w.depth--
	return val
}

// dither is the Source Process()'s quantized-regret writes draw from.
func (w *worker) dither() buckets.Source { return w.pool }

func (w *worker) iterationIsFull() bool {
	if w.cfg.ActiveMod <= 0 {
		return true
	}
	m := int(w.seq % uint64(w.cfg.ActiveMod))
	for _, r := range w.cfg.ActiveRems {
		if r == m {
			return true
		}
	}
	return false
}

func (w *worker) bucketFor(p, st int) int {
	var b int
	if p == 0 {
		if st >= len(w.deal.P0Buckets) {
			fatal(cfrerr.Valuef("tcfr_process", "street %d out of range for P0 deal", st))
		}
		b = w.deal.P0Buckets[st]
	} else {
		if st >= len(w.deal.P1Buckets) {
			fatal(cfrerr.Valuef("tcfr_process", "street %d out of range for P1 deal", st))
		}
		b = w.deal.P1Buckets[st]
	}
	if b < 0 || b >= w.cfg.numBucketsAt(st) {
		fatal(cfrerr.Valuef("tcfr_process", "bucket %d out of range [0,%d) at street %d", b, w.cfg.numBucketsAt(st), st))
	}
	return b
}

// process is the pure recursion returning the traverser's counterfactual
// value of the subtree rooted at off. baseFull is this iteration's global
// full/min-regret-only decision; individual our-to-act nodes may
// additionally force full evaluation via the close-threshold rule.
func (w *worker) process(off uint64, baseFull bool) int32 {
	tag := w.arena.tag(off)
	switch tag {
	case tagShowdown:
		mult := int32(w.deal.ShowdownMult)
		if w.traverser == 1 {
			mult = -mult
		}
		return mult * int32(w.deal.BoardCount) * w.arena.halfPot(off)
	case tagP1Folded, tagP0Folded:
		val := int32(w.deal.BoardCount) * w.arena.halfPot(off)
		remaining := 1
		if tag == tagP1Folded {
			remaining = 0
		}
		if remaining == w.traverser {
			return val
		}
		return -val
	}

	st := w.arena.street(off)
	numSuccs := w.arena.numSuccs(off)
	pa := 0
	if tag == tagP1Acts {
		pa = 1
	}
	bucket := w.bucketFor(pa, st)

	if pa != w.traverser {
		return w.processOpponent(off, st, numSuccs, bucket, baseFull)
	}
	return w.processOurs(off, st, numSuccs, bucket, baseFull)
}

func (w *worker) regretAt(off uint64, st, numSuccs, bucket, s int) int32 {
	return w.arena.regret(off, numSuccs, st, bucket, s)
}

// minRegretSucc finds the successor with minimum regret, tie-broken by
// lowest index: this is the "taken" action under pure CFR.
func (w *worker) minRegretSucc(off uint64, st, numSuccs, bucket int) (idx int, val int32) {
	val = w.regretAt(off, st, numSuccs, bucket, 0)
	idx = 0
	for s := 1; s < numSuccs; s++ {
		r := w.regretAt(off, st, numSuccs, bucket, s)
		if r < val {
			val = r
			idx = s
		}
	}
	return
}

// processOpponent implements the "Opponent-to-act node" rules: sample one
// successor (min-regret, or uniform under exploration), bump its sumprob,
// and recurse only into it.
func (w *worker) processOpponent(off uint64, st, numSuccs, bucket int, baseFull bool) int32 {
	chosen, _ := w.minRegretSucc(off, st, numSuccs, bucket)
	if w.pool.Next() < w.cfg.Explore {
		chosen = int(w.rng.Uint32() % uint32(numSuccs))
	}
	if baseFull && w.cfg.sumprobStreet(st) {
		w.bumpSumprob(off, st, numSuccs, bucket, chosen)
	}
	return w.recurse(w.arena.succOffset(off, chosen, numSuccs), baseFull)
}

func (w *worker) bumpSumprob(off uint64, st, numSuccs, bucket, chosen int) {
	v := w.arena.sumprob(off, numSuccs, st, bucket, chosen) + 1
	if v > w.cfg.SumprobCeiling {
		for s := 0; s < numSuccs; s++ {
			cur := w.arena.sumprob(off, numSuccs, st, bucket, s)
			w.arena.setSumprob(off, numSuccs, st, bucket, s, cur/2)
		}
		v = w.arena.sumprob(off, numSuccs, st, bucket, chosen) + 1
	}
	w.arena.setSumprob(off, numSuccs, st, bucket, chosen, v)
}

// scaleIncr applies the 0.05 scale-down on scaled streets with
// probabilistic rounding: integer truncation with a fractional chance of
// rounding up.
func (w *worker) scaleIncr(incr int32) int32 {
	scaled := float64(incr) * 0.05
	floor := math.Floor(scaled)
	frac := scaled - floor
	if w.pool.Next() < frac {
		floor++
	}
	return int32(floor)
}

// processOurs implements the "Our-to-act node" rules: decide full vs
// min-regret-only evaluation, prune where configured, update regrets from
// the resulting successor values, normalize to a non-negative minimum, and
// cap against 32-bit overflow.
func (w *worker) processOurs(off uint64, st, numSuccs, bucket int, baseFull bool) int32 {
	if numSuccs > maxSuccsPerNode {
		fatal(cfrerr.Valuef("tcfr_process", "num_succs %d exceeds %d", numSuccs, maxSuccsPerNode))
	}

	minIdx, minR := w.minRegretSucc(off, st, numSuccs, bucket)
	minR2 := int32(math.MaxInt32)
	for s := 0; s < numSuccs; s++ {
		if s == minIdx {
			continue
		}
		if r := w.regretAt(off, st, numSuccs, bucket, s); r < minR2 {
			minR2 = r
		}
	}
	full := baseFull
	if numSuccs > 1 && minR2-minR < w.cfg.CloseThreshold {
		full = true
	}

	minVal := w.recurse(w.arena.succOffset(off, minIdx, numSuccs), full)
	if !full {
		return minVal
	}

	foldIdx := w.arena.foldSuccIndex(off)
	pruneThresh := w.cfg.pruningThreshold(st)

	// values and iregrets are this node's frame of the depth-indexed
	// scratch stacks: reused across every Process() call at this
	// recursion depth rather than allocated per visit.
	values := w.valueStack[w.depth][:numSuccs]
	values[minIdx] = minVal
	for s := 0; s < numSuccs; s++ {
		if s == minIdx {
			continue
		}
		r := w.regretAt(off, st, numSuccs, bucket, s)
		if s != foldIdx && r >= pruneThresh {
			continue
		}
		values[s] = w.recurse(w.arena.succOffset(off, s, numSuccs), full)
	}

	iregrets := w.iregretStack[w.depth][:numSuccs]
	minNew := int32(math.MaxInt32)
	for s := 0; s < numSuccs; s++ {
		r := w.regretAt(off, st, numSuccs, bucket, s)
		if s != foldIdx && r >= pruneThresh {
			iregrets[s] = r
		} else {
			incr := values[s] - minVal
			if w.cfg.scaledStreet(st) {
				incr = w.scaleIncr(incr)
			}
			iregrets[s] = r - incr
		}
		if iregrets[s] < minNew {
			minNew = iregrets[s]
		}
	}
	for s := 0; s < numSuccs; s++ {
		nr := iregrets[s] - minNew
		if nr > w.cfg.RegretCap {
			nr = w.cfg.RegretCap
		}
		if nr < 0 {
			nr = 0
		}
		w.arena.setRegret(off, numSuccs, st, bucket, s, nr, w.dither())
	}
	return minVal
}
