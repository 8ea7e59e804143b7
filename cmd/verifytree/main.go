// Command verifytree reads a betting tree wire file and checks it against
// the structural invariants internal/treebuilder.VerifyTree enforces,
// following original_source/src/verify_tree.cpp's standalone checker.
package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lox/cfrsolve/internal/tree"
	"github.com/lox/cfrsolve/internal/treebuilder"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Tree      string `help:"path to a betting tree wire file" required:""`
	Players   int    `help:"number of players" default:"2"`
	MaxStreet int    `help:"highest street index (streets - 1)" default:"3"`
}

func main() {
	kong.Parse(&cli, kong.Name("verifytree"), kong.Description("verify a betting tree's structural invariants"), kong.UsageOnError())
	setupLogger(cli.Debug)

	bt, err := tree.Read(cli.Tree)
	if err != nil {
		log.Fatal().Err(err).Str("path", cli.Tree).Msg("read tree")
	}

	if err := treebuilder.VerifyTree(bt.Root, cli.Players, cli.MaxStreet); err != nil {
		log.Fatal().Err(err).Msg("tree verification failed")
	}

	terminals, nonterminals := tree.CountReachable(bt.Root)
	log.Info().Int("terminals", terminals).Int("nonterminals", nonterminals).Msg("tree verified")
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}
