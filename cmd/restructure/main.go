// Command restructure quantizes trained int/double sumprob and regret
// files down to the byte/half-byte/2-bit encodings internal/runtime's
// play-time reader expects, following cmd/solver/main.go's kong+zerolog
// CLI conventions.
package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lox/cfrsolve/internal/restructure"
	"github.com/lox/cfrsolve/internal/tree"
	"github.com/lox/cfrsolve/internal/values"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Tree          string `help:"path to a betting tree wire file" required:""`
	In            string `help:"directory holding trained int/double value files" required:""`
	Out           string `help:"directory to write restructured files to" required:""`
	ActionSeq     string `help:"action sequence label shared by input and output filenames" default:"r"`
	Iteration     int    `help:"iteration number the input files were written at" required:""`
	Buckets       []int  `help:"bucket count per street" required:""`
	SubgameStreet int    `help:"first street purified to a 2-bit best-succ code" default:"2"`
	TurnHalfByte  bool   `help:"quantize the turn (street 2) to half-byte instead of byte"`
}

func main() {
	kong.Parse(&cli, kong.Name("restructure"), kong.Description("quantize trained CFR values for play-time serving"), kong.UsageOnError())
	setupLogger(cli.Debug)

	bt, err := tree.Read(cli.Tree)
	if err != nil {
		log.Fatal().Err(err).Str("path", cli.Tree).Msg("read tree")
	}

	streets := make([]bool, len(cli.Buckets))
	for i := range streets {
		streets[i] = true
	}

	sumprobs := values.New([]bool{true, true}, streets, true)
	sumprobs.BucketThresholds = make([]int, len(cli.Buckets))
	for i := range sumprobs.BucketThresholds {
		sumprobs.BucketThresholds[i] = 1 << 30
	}
	sumprobs.NumBuckets = cli.Buckets
	sumprobs.AllocateAndClear(bt.Root, -1)
	if err := sumprobs.Read(cli.In, cli.Iteration, bt.Root, cli.ActionSeq, -1, values.TypeInt, false); err != nil {
		log.Fatal().Err(err).Msg("read sumprobs")
	}

	regrets := values.New([]bool{true, true}, streets, false)
	regrets.BucketThresholds = sumprobs.BucketThresholds
	regrets.NumBuckets = cli.Buckets
	regrets.AllocateAndClear(bt.Root, -1)
	if err := regrets.Read(cli.In, cli.Iteration, bt.Root, cli.ActionSeq, -1, values.TypeInt, false); err != nil {
		log.Fatal().Err(err).Msg("read regrets")
	}

	cfg := restructure.Config{SubgameStreet: cli.SubgameStreet, TurnHalfByte: cli.TurnHalfByte}
	res, err := restructure.Go(bt.Root, cfg, sumprobs, regrets)
	if err != nil {
		log.Fatal().Err(err).Msg("restructure")
	}

	if err := res.WriteFiles(cli.Out, cli.ActionSeq, 0, 0, cli.Iteration, cfg); err != nil {
		log.Fatal().Err(err).Msg("write restructured files")
	}
	log.Info().Int("sumprob_streams", len(res.SumprobBytes)).Int("regret_streams", len(res.PureRegretBits)).Msg("restructure complete")
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}
