// Package tcfr implements the targeted-CFR solver: a contiguous byte arena
// walked by a sampled self-play recursion, shared race-tolerantly by a
// pool of worker goroutines. Grounded on original_source/src/tcfr.cpp for
// the algorithm, with the PCG32 RNG, atomic-write checkpointing, and
// progress telemetry following an idiomatic Go shape.
package tcfr

import "github.com/lox/cfrsolve/internal/cfrerr"

// Config is TCFR's per-run tuning surface: everything configurable about
// the Process() recursion, independent of the tree or the card
// abstraction being solved.
type Config struct {
	// NumBuckets[st] is the bucket count TCFR indexes regrets/sumprobs by
	// on street st. TCFR only ever operates in bucket space (never
	// board-indexed) even on unabstracted streets; that translation, if
	// any, is the card-abstraction collaborator's job.
	NumBuckets []int

	// QuantizedStreets[st]: regrets on st occupy one byte, looked up
	// through a 256-entry uncompress table.
	QuantizedStreets []bool
	// ShortQuantizedStreets[st]: the 16-bit variant of the above.
	ShortQuantizedStreets []bool
	// SumprobStreets[st]: nodes on st carry a trailing
	// num_buckets*num_succs*4-byte sumprob slab after their regrets.
	SumprobStreets []bool
	// ScaledStreets[st]: regret increments on st are scaled by 0.05 with
	// probabilistic rounding before being applied.
	ScaledStreets []bool

	// PruningThresholds[st]: a non-fold successor whose regret is at or
	// above this value is skipped during full evaluation.
	PruningThresholds []int32

	// ActiveMod and ActiveRems gate which iterations are "full" (every
	// successor visited) versus min-regret-only: iteration sequence number
	// mod ActiveMod must land in ActiveRems. ActiveMod <= 0 means every
	// iteration is full.
	ActiveMod  int
	ActiveRems []int
	// CloseThreshold additionally forces full evaluation whenever the gap
	// between the smallest and second-smallest regret is under it.
	CloseThreshold int32

	// Explore is the opponent-node exploration probability: with this
	// probability the opponent's "taken" action is resampled uniformly
	// instead of following the min-regret successor.
	Explore float64

	// RegretCap bounds a regret immediately after a single update step.
	RegretCap int32
	// SumprobCeiling is the per-(bucket) sumprob value that triggers a
	// halving pass across that bucket's successors.
	SumprobCeiling uint32

	// MaxArenaBytes is the fatal allocation cap; zero means unbounded.
	MaxArenaBytes int64

	// BatchSize is iterations per worker per RunBatch call.
	BatchSize uint64
	// NumThreads is the worker pool size.
	NumThreads int
	// PoolSize is the pre-generated RNG float pool length per worker
	// (10 M floats by default). Zero uses DefaultPoolSize.
	PoolSize int
}

// DefaultPoolSize is the pre-generated RNG float pool length used when a
// worker's pool size is not overridden: 10 million floats.
const DefaultPoolSize = 10_000_000

func (c *Config) poolSize() int {
	if c.PoolSize > 0 {
		return c.PoolSize
	}
	return DefaultPoolSize
}

func (c *Config) numBucketsAt(st int) int {
	if st >= 0 && st < len(c.NumBuckets) {
		return c.NumBuckets[st]
	}
	return 0
}

// regretWidth returns the on-arena byte width of one regret at street st:
// 1 for quantized, 2 for short-quantized, 4 for raw.
func (c *Config) regretWidth(st int) int {
	if st >= 0 && st < len(c.QuantizedStreets) && c.QuantizedStreets[st] {
		return 1
	}
	if st >= 0 && st < len(c.ShortQuantizedStreets) && c.ShortQuantizedStreets[st] {
		return 2
	}
	return 4
}

func (c *Config) sumprobStreet(st int) bool {
	return st >= 0 && st < len(c.SumprobStreets) && c.SumprobStreets[st]
}

func (c *Config) scaledStreet(st int) bool {
	return st >= 0 && st < len(c.ScaledStreets) && c.ScaledStreets[st]
}

func (c *Config) pruningThreshold(st int) int32 {
	if st >= 0 && st < len(c.PruningThresholds) {
		return c.PruningThresholds[st]
	}
	return 0
}

// Validate checks the invariants the arena builder and Process() recursion
// rely on, returning a ConfigError describing the first violation.
func (c *Config) Validate() error {
	if c.NumThreads <= 0 {
		return cfrerr.Configf("tcfr_config", "num_threads must be positive")
	}
	if c.BatchSize == 0 {
		return cfrerr.Configf("tcfr_config", "batch_size must be positive")
	}
	if c.RegretCap <= 0 {
		return cfrerr.Configf("tcfr_config", "regret_cap must be positive")
	}
	for _, nb := range c.NumBuckets {
		if nb < 0 {
			return cfrerr.Configf("tcfr_config", "num_buckets entries must be non-negative")
		}
	}
	if c.Explore < 0 || c.Explore > 1 {
		return cfrerr.Configf("tcfr_config", "explore must be in [0,1]")
	}
	return nil
}
