// Package ecfr implements external-sampling CFR: a full-evaluation
// recursion over double-precision regret and sumprob arrays, simpler than
// tcfr's quantized arena but costlier per iteration. Grounded on
// original_source/src/ecfr.cpp for the algorithm, with the worker-pool and
// config shape following an idiomatic Go solver package layout.
package ecfr

import "github.com/lox/cfrsolve/internal/cfrerr"

// Config is ECFR's tuning surface.
type Config struct {
	NumBuckets []int

	// Boost, when true, accumulates a second running sumprob-per-action
	// total per nonterminal (independent of bucket) and, once Adjust is
	// requested for a batch, injects a flat regret bump into every bucket
	// for any action taken less than 1% of the time.
	Boost bool
	// BoostAmount is the flat regret bump Process applies to an
	// under-explored action's regret across every bucket.
	BoostAmount float64

	NumThreads int
	BatchSize  uint64
}

func (c *Config) numBucketsAt(st int) int {
	if st >= 0 && st < len(c.NumBuckets) {
		return c.NumBuckets[st]
	}
	return 0
}

// Validate checks the invariants Build/Process rely on.
func (c *Config) Validate() error {
	if c.NumThreads <= 0 {
		return cfrerr.Configf("ecfr_config", "num_threads must be positive")
	}
	if c.BatchSize == 0 {
		return cfrerr.Configf("ecfr_config", "batch_size must be positive")
	}
	for _, nb := range c.NumBuckets {
		if nb < 0 {
			return cfrerr.Configf("ecfr_config", "num_buckets entries must be non-negative")
		}
	}
	if c.Boost && c.BoostAmount <= 0 {
		return cfrerr.Configf("ecfr_config", "boost_amount must be positive when boost is enabled")
	}
	return nil
}
