package ecfr

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/cfrsolve/internal/buckets"
	"github.com/lox/cfrsolve/internal/cfrerr"
	"github.com/lox/cfrsolve/internal/fileutil"
	"github.com/lox/cfrsolve/internal/randutil"
	"github.com/lox/cfrsolve/internal/tree"
)

// Solver drives ECFR's worker pool over one tree's Arrays.
type Solver struct {
	Root      *tree.Node
	Arrays    *Arrays
	Cfg       *Config
	Dealer    buckets.Dealer
	NumStreet int
	Log       zerolog.Logger

	iterCount atomic.Uint64
}

// NewSolver validates cfg and allocates a fresh Arrays for root.
func NewSolver(root *tree.Node, cfg *Config, dealer buckets.Dealer, numPlayers, maxStreet int, log zerolog.Logger) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	arrays := Build(root, cfg, numPlayers, maxStreet)
	return &Solver{Root: root, Arrays: arrays, Cfg: cfg, Dealer: dealer, NumStreet: maxStreet, Log: log}, nil
}

// RunBatch runs Cfg.NumThreads goroutines of Cfg.BatchSize full-evaluation
// iterations each for the given traverser. adjust requests the boost pass
// at opponent nodes this batch, applied periodically rather than every
// iteration since scanning every bucket's action sumprob is not free.
func (s *Solver) RunBatch(ctx context.Context, seed int64, traverser int, adjust bool) error {
	g, ctx := errgroup.WithContext(ctx)
	for t := 0; t < s.Cfg.NumThreads; t++ {
		t := t
		g.Go(func() error {
			rng := randutil.New(seed + int64(t))
			dealRng := randutil.New(seed + int64(t)*7919 + 1)
			w := &worker{arrays: s.Arrays, cfg: s.Cfg, traverser: traverser, rng: rng}
			for i := uint64(0); i < s.Cfg.BatchSize; i++ {
				if i%256 == 0 {
					select {
					case <-ctx.Done():
						return ctx.Err()
					default:
					}
				}
				w.deal = s.Dealer.Deal(dealRng)
				w.process(s.Root, adjust)
				if t == 0 {
					s.iterCount.Add(1)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.Log.Error().Err(err).Msg("ecfr batch failed")
		return err
	}
	return nil
}

// Iterations returns the number of completed thread-0 iterations.
func (s *Solver) Iterations() uint64 { return s.iterCount.Load() }

// WriteValues serializes regrets and sumprobs as raw double-precision
// streams, one file per (player, street), in the same preorder-with-dedup
// ordering values.CFRValues.Write uses, under the same filename naming
// convention.
func (s *Solver) WriteValues(dir string, it int, actionSeq string, rootBdSt, rootBd int) error {
	seen := make(map[*tree.Node]bool)
	type streamKey struct{ player, street int }
	regretBuf := make(map[streamKey][]byte)
	sumprobBuf := make(map[streamKey][]byte)

	var walk func(n *tree.Node) error
	walk = func(n *tree.Node) error {
		if n.Terminal() || seen[n] {
			return nil
		}
		seen[n] = true
		st := n.Street()
		p := int(n.PlayerActing)
		nt := int(n.ID)
		sk := streamKey{p, st}
		regretBuf[sk] = appendDoubles(regretBuf[sk], s.Arrays.regretRow(st, p, nt))
		sumprobBuf[sk] = appendDoubles(sumprobBuf[sk], s.Arrays.sumprobRow(st, p, nt))
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

	for sk, buf := range regretBuf {
		path := filepath.Join(dir, ecfrFilename("regrets", actionSeq, rootBdSt, rootBd, sk.street, it, sk.player))
		if err := fileutil.WriteFileAtomic(path, buf, 0o644); err != nil {
			return cfrerr.IoErrorf("write", "%s: %w", path, err)
		}
	}
	for sk, buf := range sumprobBuf {
		path := filepath.Join(dir, ecfrFilename("sumprobs", actionSeq, rootBdSt, rootBd, sk.street, it, sk.player))
		if err := fileutil.WriteFileAtomic(path, buf, 0o644); err != nil {
			return cfrerr.IoErrorf("write", "%s: %w", path, err)
		}
	}
	return nil
}

// ecfrFilename matches values.CFRValues.filename's §6 naming convention:
// {kind}.<action_seq>.<root_bd_st>.<root_bd>.<st>.<it>.p<p>.d (ECFR values
// are always raw doubles, never quantized).
func ecfrFilename(kind, actionSeq string, rootBdSt, rootBd, st, it, p int) string {
	return fmt.Sprintf("%s.%s.%d.%d.%d.%d.p%d.d", kind, actionSeq, rootBdSt, rootBd, st, it, p)
}

func appendDoubles(buf []byte, vals []float64) []byte {
	for _, f := range vals {
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(f))
		buf = append(buf, b[:]...)
	}
	return buf
}
