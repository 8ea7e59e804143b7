// Package demodealer provides a uniform-random buckets.Dealer so
// cmd/tcfrtrain and cmd/ecfrtrain can run end to end without a real card
// abstraction: the core only ever consumes bucketing as a pure lookup
// service, and building one is out of scope here. It has no bearing on
// solver correctness beyond giving the CLIs something concrete to point
// at; production use requires a real Dealer wired to an actual
// bucketing/hand-evaluation implementation.
package demodealer

import "github.com/lox/cfrsolve/internal/buckets"

// Dealer samples uniformly random buckets per street and a coin-flip
// showdown outcome (ties at the configured TieProb).
type Dealer struct {
	NumBuckets []int // per street
	TieProb    float64
}

// New returns a Dealer with numBuckets buckets per street and a small
// fixed tie probability.
func New(numBuckets []int) Dealer {
	return Dealer{NumBuckets: numBuckets, TieProb: 0.05}
}

func (d Dealer) Deal(rng buckets.Source) buckets.Deal {
	p0 := make([]int, len(d.NumBuckets))
	p1 := make([]int, len(d.NumBuckets))
	for st, nb := range d.NumBuckets {
		if nb <= 0 {
			continue
		}
		p0[st] = int(rng.Float64() * float64(nb))
		p1[st] = int(rng.Float64() * float64(nb))
		if p0[st] >= nb {
			p0[st] = nb - 1
		}
		if p1[st] >= nb {
			p1[st] = nb - 1
		}
	}

	roll := rng.Float64()
	mult := 1
	switch {
	case roll < d.TieProb:
		mult = 0
	case roll < d.TieProb+(1-d.TieProb)/2:
		mult = 1
	default:
		mult = -1
	}

	return buckets.Deal{BoardCount: 1, P0Buckets: p0, P1Buckets: p1, ShowdownMult: mult}
}
