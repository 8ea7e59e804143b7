// Command showtree prints a single node and its immediate successors from
// a betting tree wire file, given (street, player_acting, nonterminal_id),
// following original_source/src/show_node.cpp's "<st> <pa> <nt>" lookup.
package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lox/cfrsolve/internal/tree"
)

var cli struct {
	Debug bool `help:"enable debug logging"`

	Tree   string `help:"path to a betting tree wire file" required:""`
	Street int    `help:"street of the node to show" arg:""`
	Player int    `help:"acting player of the node to show" arg:""`
	NT     int    `help:"nonterminal ID of the node to show" arg:""`
}

func main() {
	kong.Parse(&cli, kong.Name("showtree"), kong.Description("print one node and its successors from a betting tree"), kong.UsageOnError())
	setupLogger(cli.Debug)

	bt, err := tree.Read(cli.Tree)
	if err != nil {
		log.Fatal().Err(err).Str("path", cli.Tree).Msg("read tree")
	}

	n := tree.FindNode(bt.Root, cli.Player, cli.Street, uint32(cli.NT))
	if n == nil {
		log.Fatal().Int("street", cli.Street).Int("player", cli.Player).Int("nt", cli.NT).Msg("node not found")
	}
	if err := tree.Fprint(os.Stdout, n); err != nil {
		log.Fatal().Err(err).Msg("print node")
	}
}

func setupLogger(debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
}
