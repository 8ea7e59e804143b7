package ecfr

import (
	"math/rand/v2"

	"github.com/lox/cfrsolve/internal/buckets"
	"github.com/lox/cfrsolve/internal/tree"
)

// worker is one goroutine's full-evaluation recursion state.
type worker struct {
	arrays    *Arrays
	cfg       *Config
	traverser int
	rng       *rand.Rand
	deal      buckets.Deal
}

func (w *worker) bucketFor(p, st int) int {
	if p == 0 {
		return w.deal.P0Buckets[st]
	}
	return w.deal.P1Buckets[st]
}

// regretMatchedProbs turns a bucket's regret row into a strategy: positive
// regrets normalized to sum to one, or the node's default successor when
// every regret is non-positive.
func regretMatchedProbs(regretRow []float64, numSuccs int, defaultSucc int) []float64 {
	probs := make([]float64, numSuccs)
	sum := 0.0
	for s := 0; s < numSuccs; s++ {
		if r := regretRow[s]; r > 0 {
			sum += r
		}
	}
	if sum == 0 {
		probs[defaultSucc] = 1
		return probs
	}
	for s := 0; s < numSuccs; s++ {
		if r := regretRow[s]; r > 0 {
			probs[s] = r / sum
		}
	}
	return probs
}

// process is ECFR's full-evaluation recursion: every successor is always
// visited (no sampling on the traverser's own turn), and the traverser's
// regrets update by the standard CFR regret-matching delta. At an
// opponent node only one successor is sampled according to current
// strategy, but the opponent's cumulative strategy (sumprobs) still
// accumulates current_probs across every successor, matching
// ECFRThread::Process.
func (w *worker) process(n *tree.Node, adjust bool) float64 {
	if n.Terminal() {
		if n.Showdown() {
			mult := float64(w.deal.ShowdownMult)
			if w.traverser == 1 {
				mult = -mult
			}
			return mult * float64(n.LastBetTo)
		}
		if int(n.PlayerActing) == w.traverser {
			return float64(n.LastBetTo)
		}
		return -float64(n.LastBetTo)
	}

	st := n.Street()
	pa := int(n.PlayerActing)
	nt := int(n.ID)
	numSuccs := w.arrays.succCount(st, pa, nt)
	bucket := w.bucketFor(pa, st)
	regretRow := w.arrays.regretRow(st, pa, nt)
	bRegrets := regretRow[bucket*numSuccs : bucket*numSuccs+numSuccs]
	probs := regretMatchedProbs(bRegrets, numSuccs, n.DefaultSuccIndex())

	if pa == w.traverser {
		succValues := make([]float64, numSuccs)
		for s := 0; s < numSuccs; s++ {
			succValues[s] = w.process(n.IthSucc(s), adjust)
		}
		v := 0.0
		for s := 0; s < numSuccs; s++ {
			v += probs[s] * succValues[s]
		}
		for s := 0; s < numSuccs; s++ {
			bRegrets[s] += succValues[s] - v
		}
		return v
	}

	sumprobRow := w.arrays.sumprobRow(st, pa, nt)
	bSumprobs := sumprobRow[bucket*numSuccs : bucket*numSuccs+numSuccs]
	var actionRow []float64
	if w.cfg.Boost {
		actionRow = w.arrays.actionRow(st, pa, nt)
	}
	for s := 0; s < numSuccs; s++ {
		bSumprobs[s] += probs[s]
		if w.cfg.Boost {
			actionRow[s] += probs[s]
		}
	}

	if adjust && w.cfg.Boost {
		w.boostUnderexploredActions(st, pa, nt, numSuccs, actionRow)
	}

	r := w.rng.Float64()
	chosen := numSuccs - 1
	cum := 0.0
	for s := 0; s < numSuccs-1; s++ {
		cum += probs[s]
		if r < cum {
			chosen = s
			break
		}
	}
	return w.process(n.IthSucc(chosen), adjust)
}

// boostUnderexploredActions implements the 1%-cumulative-share rule: any
// action whose running action-level sumprob is under 1% of the node's
// total gets BoostAmount added to its regret across every bucket, nudging
// regret-matching to explore it.
func (w *worker) boostUnderexploredActions(st, pa, nt, numSuccs int, actionRow []float64) {
	sum := 0.0
	for s := 0; s < numSuccs; s++ {
		sum += actionRow[s]
	}
	if sum == 0 {
		return
	}
	regretRow := w.arrays.regretRow(st, pa, nt)
	nb := w.cfg.numBucketsAt(st)
	for s := 0; s < numSuccs; s++ {
		if actionRow[s] >= 0.01*sum {
			continue
		}
		for b := 0; b < nb; b++ {
			regretRow[b*numSuccs+s] += w.cfg.BoostAmount
		}
	}
}
