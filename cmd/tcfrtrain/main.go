// Command tcfrtrain runs TCFR self-play batches against a betting tree and
// periodically writes out regret/sumprob value files, following
// cmd/solver/main.go's kong+zerolog CLI conventions.
package main

import (
	"context"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lox/cfrsolve/internal/demodealer"
	"github.com/lox/cfrsolve/internal/tcfr"
	"github.com/lox/cfrsolve/internal/tree"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Tree       string  `help:"path to a betting tree wire file" required:""`
	Out        string  `help:"directory to write value files to" required:""`
	ActionSeq  string  `help:"action sequence label for output filenames" default:"r"`
	Buckets    []int   `help:"bucket count per street" required:""`
	Iterations uint64  `help:"total iterations to run" default:"1000000"`
	BatchSize  uint64  `help:"iterations per worker per batch" default:"10000"`
	NumThreads int     `help:"worker pool size" default:"1"`
	Seed       int64   `help:"random seed" default:"42"`
	RegretCap  int32   `help:"regret cap per update step" default:"2000000000"`
	Explore    float64 `help:"opponent exploration probability" default:"0"`
}

func main() {
	kong.Parse(&cli, kong.Name("tcfrtrain"), kong.Description("run TCFR self-play"), kong.UsageOnError())
	setupLogger(cli.Debug)

	bt, err := tree.Read(cli.Tree)
	if err != nil {
		log.Fatal().Err(err).Str("path", cli.Tree).Msg("read tree")
	}

	cfg := &tcfr.Config{
		NumBuckets:     cli.Buckets,
		RegretCap:      cli.RegretCap,
		SumprobCeiling: 1 << 24,
		Explore:        cli.Explore,
		BatchSize:      cli.BatchSize,
		NumThreads:     cli.NumThreads,
	}

	dealer := demodealer.New(cli.Buckets)
	solver, err := tcfr.NewSolver(bt.Root, cfg, dealer, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("build solver")
	}

	ctx := context.Background()
	start := time.Now()
	traverser := 0
	for solver.Iterations() < cli.Iterations {
		if err := solver.RunBatch(ctx, cli.Seed, traverser); err != nil {
			log.Fatal().Err(err).Msg("run batch")
		}
		traverser = 1 - traverser
		log.Info().Uint64("iterations", solver.Iterations()).Dur("elapsed", time.Since(start)).Msg("progress")
	}

	if err := solver.WriteValues(cli.Out, int(solver.Iterations()), cli.ActionSeq, 0, 0, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("write values")
	}
	log.Info().Str("dir", cli.Out).Msg("values written")
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}
