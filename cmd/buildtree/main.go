// Command buildtree constructs a betting tree from an HCL abstraction file
// and writes it to disk in the wire format internal/tree.Write defines,
// following cmd/solver/main.go's kong+zerolog CLI conventions.
package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lox/cfrsolve/internal/abstraction"
	"github.com/lox/cfrsolve/internal/tree"
	"github.com/lox/cfrsolve/internal/treebuilder"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Abstraction string `help:"path to an HCL betting abstraction file" required:""`
	Out         string `help:"path to write the betting tree wire file" required:""`
	Streets     int    `help:"number of betting streets" default:"4"`
	Players     int    `help:"number of players" default:"2"`
	SmallBlind  int    `help:"small blind size" default:"1"`
	BigBlind    int    `help:"big blind size" default:"2"`
	Stack       int    `help:"starting stack size" default:"200"`
}

func main() {
	kong.Parse(&cli, kong.Name("buildtree"), kong.Description("construct a betting tree from an abstraction"), kong.UsageOnError())
	setupLogger(cli.Debug)

	game := abstraction.StaticGame{Streets: cli.Streets, Players: cli.Players, SB: cli.SmallBlind, BB: cli.BigBlind, Stack: cli.Stack}

	ba, err := abstraction.LoadFile(cli.Abstraction, game)
	if err != nil {
		log.Fatal().Err(err).Str("path", cli.Abstraction).Msg("load abstraction")
	}

	bt, err := treebuilder.Build(ba, game)
	if err != nil {
		log.Fatal().Err(err).Msg("build tree")
	}

	terminals, nonterminals := tree.CountReachable(bt.Root)
	log.Info().Int("terminals", terminals).Int("nonterminals", nonterminals).Msg("tree built")

	if err := tree.Write(bt, cli.Out); err != nil {
		log.Fatal().Err(err).Str("path", cli.Out).Msg("write tree")
	}
	log.Info().Str("path", cli.Out).Msg("tree written")
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}
