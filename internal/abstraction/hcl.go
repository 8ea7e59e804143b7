package abstraction

import (
	"os"
	"strconv"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/cfrsolve/internal/cfrerr"
)

// hclDoc is the flat, HCL-tagged form of a BettingAbstraction file. The only
// asymmetric fields it reads are the optional our_max_bets/opp_max_bets
// attributes beside max_bets; per-role bet sizing, always_min_bet, the bet
// thresholds, min_reentrant_bets and allowable_bet_tos have no HCL form here.
type hclDoc struct {
	Limit           bool    `hcl:"limit,optional"`
	NoLimitTreeType int     `hcl:"no_limit_tree_type,optional"`
	Asymmetric      bool    `hcl:"asymmetric,optional"`
	TargetPlayer    int     `hcl:"target_player,optional"`

	MaxBets    []int `hcl:"max_bets,optional"`
	OurMaxBets []int `hcl:"our_max_bets,optional"`
	OppMaxBets []int `hcl:"opp_max_bets,optional"`

	AlwaysAllIn           bool      `hcl:"always_all_in,optional"`
	NoOpenLimp            bool      `hcl:"no_open_limp,optional"`
	CloseToAllInFrac      float64   `hcl:"close_to_all_in_frac,optional"`
	BetSizeMultiplier     float64   `hcl:"bet_size_multiplier,optional"`
	GeometricType         int       `hcl:"geometric_type,optional"`
	MinReentrantPot       int       `hcl:"min_reentrant_pot,optional"`
	MergeRules            bool      `hcl:"merge_rules,optional"`
	ReentrantStreets      []bool    `hcl:"reentrant_streets,optional"`
	AllBetSizeStreets     []bool    `hcl:"all_bet_size_streets,optional"`
	AllEvenBetSizeStreets []bool    `hcl:"all_even_bet_size_streets,optional"`

	// Flattened street/fraction list: one "bet_sizing" block per
	// (street, num_prior_bets) label pair, each listing the pot fractions
	// offered at that street and bet count.
	BetSizing []hclStreetFractions `hcl:"bet_sizing,block"`
}

type hclStreetFractions struct {
	Street    string    `hcl:"street,label"`
	NumBets   string    `hcl:"num_prior_bets,label"`
	Fractions []float64 `hcl:"fractions"`
}

// LoadFile parses an HCL BettingAbstraction configuration file, fills in
// defaults, and validates it against g.
func LoadFile(path string, g Game) (*BettingAbstraction, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, cfrerr.Configf(path, "parse: %s", diags.Error())
	}

	var doc hclDoc
	if diags := gohcl.DecodeBody(f.Body, nil, &doc); diags.HasErrors() {
		return nil, cfrerr.Configf(path, "decode: %s", diags.Error())
	}

	ba := fromDoc(&doc, g)
	if err := ba.Validate(g); err != nil {
		return nil, err
	}
	return ba, nil
}

func fromDoc(doc *hclDoc, g Game) *BettingAbstraction {
	maxStreet := g.MaxStreet()

	betSizing := make(BetSizingTable, maxStreet+1)
	for _, row := range doc.BetSizing {
		st, errSt := strconv.Atoi(row.Street)
		nb, errNb := strconv.Atoi(row.NumBets)
		if errSt != nil || errNb != nil || st < 0 || st > maxStreet || nb < 0 {
			continue
		}
		for len(betSizing[st]) <= nb {
			betSizing[st] = append(betSizing[st], nil)
		}
		betSizing[st][nb] = row.Fractions
	}

	ba := &BettingAbstraction{
		Limit:                 doc.Limit,
		NoLimitTreeType:       NoLimitTreeType(doc.NoLimitTreeType),
		Asymmetric:            doc.Asymmetric,
		TargetPlayer:          doc.TargetPlayer,
		MaxBets:               doc.MaxBets,
		OurMaxBets:            doc.OurMaxBets,
		OppMaxBets:            doc.OppMaxBets,
		BetSizing:             betSizing,
		AllBetSizeStreets:     doc.AllBetSizeStreets,
		AllEvenBetSizeStreets: doc.AllEvenBetSizeStreets,
		AlwaysAllIn:           doc.AlwaysAllIn,
		NoOpenLimp:            doc.NoOpenLimp,
		GeometricType:         GeometricType(doc.GeometricType),
		CloseToAllInFrac:      doc.CloseToAllInFrac,
		BetSizeMultiplier:     doc.BetSizeMultiplier,
		ReentrantStreets:      doc.ReentrantStreets,
		MinReentrantPot:       doc.MinReentrantPot,
		MergeRules:            doc.MergeRules,
	}
	if ba.CloseToAllInFrac == 0 {
		ba.CloseToAllInFrac = 0.9
	}
	return ba
}

// SaveExample writes a minimal, valid example configuration to path; used by
// tests and as a starting point for operators hand-writing abstractions.
func SaveExample(path string) error {
	const example = `limit = false
no_limit_tree_type = 0
always_all_in = true
close_to_all_in_frac = 0.9

max_bets = [3, 3, 3, 3]

bet_sizing "0" "0" {
  fractions = [0.5, 1.0]
}
bet_sizing "1" "0" {
  fractions = [0.5, 1.0]
}
`
	return os.WriteFile(path, []byte(example), 0o644)
}
