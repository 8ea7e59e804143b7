package tcfr

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/cfrsolve/internal/buckets"
	"github.com/lox/cfrsolve/internal/cfrerr"
	"github.com/lox/cfrsolve/internal/tree"
	"github.com/lox/cfrsolve/internal/values"
)

// Solver owns one tree's Arena and drives batches of self-play iterations
// across a worker pool, using the same errgroup-based fan-out as
// sdk/solver but over TCFR's lock-free arena rather than a mutex-guarded
// value store.
type Solver struct {
	Root   *tree.Node
	Arena  *Arena
	Cfg    *Config
	Dealer buckets.Dealer
	Log    zerolog.Logger

	iterCount atomic.Uint64
}

// NewSolver validates cfg and builds a fresh Arena for root.
func NewSolver(root *tree.Node, cfg *Config, dealer buckets.Dealer, log zerolog.Logger) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	arena, err := Build(root, cfg)
	if err != nil {
		return nil, err
	}
	return &Solver{Root: root, Arena: arena, Cfg: cfg, Dealer: dealer, Log: log}, nil
}

// RunBatch runs Cfg.NumThreads goroutines, each performing Cfg.BatchSize
// self-play iterations for the given traverser, returning only once every
// worker has finished or one has hit a fatal condition. A panic tagged
// fatalPanic recovered from a worker is converted into the returned error
// rather than crashing the process — the library never aborts the caller's
// process on its own.
func (s *Solver) RunBatch(ctx context.Context, seed int64, traverser int) error {
	g, ctx := errgroup.WithContext(ctx)
	for t := 0; t < s.Cfg.NumThreads; t++ {
		t := t
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					if fp, ok := r.(fatalPanic); ok {
						err = fp.err
						return
					}
					panic(r)
				}
			}()
			pool := NewFloatPool(seed+int64(t)*2, s.Cfg.poolSize())
			rng := NewPCG32(seed + int64(t)*2 + 1)
			w := &worker{arena: s.Arena, cfg: s.Cfg, rng: rng, pool: pool, traverser: traverser}
			for i := uint64(0); i < s.Cfg.BatchSize; i++ {
				if i%256 == 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
				}
				w.seq = s.iterCount.Load()
				w.deal = s.Dealer.Deal(rng)
				w.process(s.Arena.rootOffset, w.iterationIsFull())
				if t == 0 {
					s.iterCount.Add(1)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.Log.Error().Err(err).Msg("tcfr batch failed")
		return err
	}
	return nil
}

// Iterations returns the number of completed full-width (thread 0) loop
// passes, used only for progress telemetry; throughput is
// Cfg.NumThreads times this.
func (s *Solver) Iterations() uint64 { return s.iterCount.Load() }

// WriteValues serializes the arena's current regrets and sumprobs to the
// §6 on-disk layout by recomputing the same deterministic node ordering
// Build used, copying each node's slab out of the arena into a
// values.CFRValues, and delegating to its Write (same file-naming and
// atomic-write guarantees as the full CFRValues workflow).
func (s *Solver) WriteValues(dir string, it int, actionSeq string, rootBdSt, rootBd int, log zerolog.Logger) error {
	offsets, _, err := Measure(s.Root, s.Cfg)
	if err != nil {
		return err
	}

	streets := make([]bool, len(s.Cfg.NumBuckets))
	for i := range streets {
		streets[i] = true
	}

	// TCFR never indexes by board: every street is treated as bucketed by
	// pinning BucketThresholds above any possible last_bet_to value, so
	// values.numHoldings always takes the NumBuckets branch.
	bucketThresholds := make([]int, len(streets))
	for i := range bucketThresholds {
		bucketThresholds[i] = 1 << 30
	}

	regretVals := values.New([]bool{true, true}, streets, false)
	regretVals.RootBdSt, regretVals.RootBd = rootBdSt, rootBd
	regretVals.BucketThresholds = bucketThresholds
	regretVals.NumBuckets = s.Cfg.NumBuckets
	sumprobVals := values.New([]bool{true, true}, streets, true)
	sumprobVals.RootBdSt, sumprobVals.RootBd = rootBdSt, rootBd
	sumprobVals.BucketThresholds = bucketThresholds
	sumprobVals.NumBuckets = s.Cfg.NumBuckets

	seen := make(map[*tree.Node]bool)
	var walk func(n *tree.Node) error
	walk = func(n *tree.Node) error {
		if n.Terminal() || seen[n] {
			return nil
		}
		seen[n] = true
		off, ok := offsets[n]
		if !ok {
			return cfrerr.Valuef("write_values", "node id %d has no arena offset", n.ID)
		}
		st := n.Street()
		numSuccs := int(n.NumSuccs)
		nb := s.Cfg.numBucketsAt(st)
		p := int(n.PlayerActing)

		regretRows := make([][]float64, nb)
		for b := 0; b < nb; b++ {
			row := make([]float64, numSuccs)
			for succ := 0; succ < numSuccs; succ++ {
				row[succ] = float64(s.Arena.regret(off, numSuccs, st, b, succ))
			}
			regretRows[b] = row
		}
		regretVals.AllocateAndClear(n, p)
		if err := regretVals.SetValues(n, regretRows); err != nil {
			return err
		}

		if s.Cfg.sumprobStreet(st) {
			rows := make([][]float64, nb)
			for b := 0; b < nb; b++ {
				row := make([]float64, numSuccs)
				for succ := 0; succ < numSuccs; succ++ {
					row[succ] = float64(s.Arena.sumprob(off, numSuccs, st, b, succ))
				}
				rows[b] = row
			}
			sumprobVals.AllocateAndClear(n, p)
			if err := sumprobVals.SetValues(n, rows); err != nil {
				return err
			}
		}
		for _, c := range n.Succs {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(s.Root); err != nil {
		return err
	}

	if err := regretVals.Write(dir, it, s.Root, actionSeq, -1, values.TypeInt, log); err != nil {
		return err
	}
	return sumprobVals.Write(dir, it, s.Root, actionSeq, -1, values.TypeInt, log)
}
