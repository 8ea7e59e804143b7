package ecfr

import (
	"github.com/lox/cfrsolve/internal/nonterminalids"
	"github.com/lox/cfrsolve/internal/tree"
)

// Arrays is ECFR's full double-precision store, shaped
// [street][player][nonterminal][bucket*num_succs+s], exactly the
// regrets_/sumprobs_/action_sumprobs_ layout of original_source's
// ECFRThread. Unlike tcfr's Arena this is not a single contiguous buffer:
// every nonterminal's row is its own slice, since num_succs varies per
// node and ECFR never quantizes.
type Arrays struct {
	cfg      *Config
	regrets  [][][][]float64
	sumprobs [][][][]float64
	// actionSumprobs is nil unless cfg.Boost: one running per-action total
	// (bucket-independent) used by the boost rule.
	actionSumprobs [][][][]float64
	numSuccs       [][][]int
}

// Build allocates zeroed arrays for every nonterminal reachable from root,
// assigning dense per-(player,street) nonterminal IDs along the way via
// internal/nonterminalids.
func Build(root *tree.Node, cfg *Config, numPlayers, maxStreet int) *Arrays {
	counts := nonterminalids.Assign(root, numPlayers, maxStreet)

	a := &Arrays{cfg: cfg}
	a.regrets = make([][][][]float64, maxStreet+1)
	a.sumprobs = make([][][][]float64, maxStreet+1)
	a.numSuccs = make([][][]int, maxStreet+1)
	if cfg.Boost {
		a.actionSumprobs = make([][][][]float64, maxStreet+1)
	}
	for st := 0; st <= maxStreet; st++ {
		a.regrets[st] = make([][][]float64, numPlayers)
		a.sumprobs[st] = make([][][]float64, numPlayers)
		a.numSuccs[st] = make([][]int, numPlayers)
		if cfg.Boost {
			a.actionSumprobs[st] = make([][][]float64, numPlayers)
		}
		for p := 0; p < numPlayers; p++ {
			n := counts[p][st]
			a.regrets[st][p] = make([][]float64, n)
			a.sumprobs[st][p] = make([][]float64, n)
			a.numSuccs[st][p] = make([]int, n)
			if cfg.Boost {
				a.actionSumprobs[st][p] = make([][]float64, n)
			}
		}
	}

	seen := make(map[*tree.Node]bool)
	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		if n.Terminal() || seen[n] {
			return
		}
		seen[n] = true
		st := n.Street()
		p := int(n.PlayerActing)
		nt := int(n.ID)
		numSuccs := int(n.NumSuccs)
		nb := cfg.numBucketsAt(st)
		a.numSuccs[st][p][nt] = numSuccs
		a.regrets[st][p][nt] = make([]float64, nb*numSuccs)
		a.sumprobs[st][p][nt] = make([]float64, nb*numSuccs)
		if cfg.Boost {
			a.actionSumprobs[st][p][nt] = make([]float64, numSuccs)
		}
		for _, s := range n.Succs {
			walk(s)
		}
	}
	walk(root)
	return a
}

func (a *Arrays) regretRow(st, p, nt int) []float64   { return a.regrets[st][p][nt] }
func (a *Arrays) sumprobRow(st, p, nt int) []float64   { return a.sumprobs[st][p][nt] }
func (a *Arrays) actionRow(st, p, nt int) []float64     { return a.actionSumprobs[st][p][nt] }
func (a *Arrays) succCount(st, p, nt int) int          { return a.numSuccs[st][p][nt] }
