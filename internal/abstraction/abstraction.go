// Package abstraction holds BettingAbstraction, the pure-data configuration
// object consumed by internal/treebuilder. It carries no behaviour beyond
// validation and per-role (asymmetric) field selection.
package abstraction

import (
	"fmt"

	"github.com/lox/cfrsolve/internal/cfrerr"
)

// GeometricType selects which geometric bet-sizing rule applies near the
// all-in threshold.
type GeometricType int

const (
	GeometricNone GeometricType = iota
	GeometricSingle
	GeometricWithPotAndHalfPot
)

// NoLimitTreeType selects one of the four no-limit builder algorithms;
// ignored when Limit is true.
type NoLimitTreeType int

const (
	NoLimitTree1 NoLimitTreeType = iota
	NoLimitTree2
	NoLimitTree3
	NoLimitTree4
)

// PerStreetInt is a fixed-size (by MaxStreet+1) per-street integer table,
// with independent our/opp variants used when Asymmetric is true.
type PerStreetInt []int

// BetSizingTable holds, for each street and number of prior bets on that
// street, the list of pot-fraction candidates considered when enumerating
// bet successors.
type BetSizingTable [][][]float64

// BettingAbstraction is the pure-data configuration object driving tree
// construction. All "our_*"/"opp_*" pairs are represented as Our*/Opp*
// sibling fields; BettingTreeBuilder dereferences through RoleMaxBets /
// RoleBetSizing etc. so callers never need to branch on Asymmetric
// themselves.
type BettingAbstraction struct {
	Limit            bool
	NoLimitTreeType  NoLimitTreeType
	Asymmetric       bool
	TargetPlayer     int

	MaxBets    PerStreetInt
	OurMaxBets PerStreetInt
	OppMaxBets PerStreetInt

	BetSizing    BetSizingTable
	OurBetSizing BetSizingTable
	OppBetSizing BetSizingTable

	AllBetSizeStreets     []bool
	AllEvenBetSizeStreets []bool

	AlwaysAllIn            bool
	AlwaysMinBet           [][]bool // [street][numPriorBets]
	NoOpenLimp             bool
	NoRegularBetThreshold  []int // per street; 0 disables
	OnlyPotThreshold       []int // per street; 0 disables
	GeometricType          GeometricType
	CloseToAllInFrac       float64
	BetSizeMultiplier      float64

	ReentrantStreets   []bool
	MinReentrantPot    int
	MinReentrantBets   [][]int // [street][numRemaining]
	BettingKeyStreets  []bool
	LastAggressorKey   bool

	AllowableBetTos map[int][]int // street -> sorted allowed bet-to values
	MergeRules      bool
}

// RoleMaxBets returns the per-street max-bets table that applies when the
// acting player is actingPlayer, given the abstraction's TargetPlayer.
func (b *BettingAbstraction) RoleMaxBets(actingPlayer int) PerStreetInt {
	if !b.Asymmetric {
		return b.MaxBets
	}
	if actingPlayer == b.TargetPlayer {
		return b.OurMaxBets
	}
	return b.OppMaxBets
}

// RoleBetSizing returns the per-street/prior-bets bet sizing table for the
// acting player's role.
func (b *BettingAbstraction) RoleBetSizing(actingPlayer int) BetSizingTable {
	if !b.Asymmetric {
		return b.BetSizing
	}
	if actingPlayer == b.TargetPlayer {
		return b.OurBetSizing
	}
	return b.OppBetSizing
}

// AtStreet returns the max-bets count for a street, clamping to the
// last configured entry when the table is shorter (streets beyond the
// configured range inherit the last street's limit).
func (t PerStreetInt) AtStreet(st int) int {
	if len(t) == 0 {
		return 0
	}
	if st >= len(t) {
		st = len(t) - 1
	}
	return t[st]
}

func boolAt(xs []bool, st int) bool {
	if st < 0 || st >= len(xs) {
		return false
	}
	return xs[st]
}

func (b *BettingAbstraction) IsAllBetSizeStreet(st int) bool {
	return boolAt(b.AllBetSizeStreets, st)
}

func (b *BettingAbstraction) IsAllEvenBetSizeStreet(st int) bool {
	return boolAt(b.AllEvenBetSizeStreets, st)
}

func (b *BettingAbstraction) IsReentrantStreet(st int) bool {
	return boolAt(b.ReentrantStreets, st)
}

func (b *BettingAbstraction) MinReentrantBetsFor(st, numRemaining int) int {
	if st < 0 || st >= len(b.MinReentrantBets) {
		return 0
	}
	row := b.MinReentrantBets[st]
	if numRemaining < 0 || numRemaining >= len(row) {
		return 0
	}
	return row[numRemaining]
}

func (b *BettingAbstraction) AlwaysMinBetAt(st, numPriorBets int) bool {
	if st < 0 || st >= len(b.AlwaysMinBet) {
		return false
	}
	row := b.AlwaysMinBet[st]
	if numPriorBets < 0 || numPriorBets >= len(row) {
		return false
	}
	return row[numPriorBets]
}

func intAt(xs []int, st int) int {
	if st < 0 || st >= len(xs) {
		return 0
	}
	return xs[st]
}

func (b *BettingAbstraction) NoRegularBetThresholdAt(st int) int {
	return intAt(b.NoRegularBetThreshold, st)
}

func (b *BettingAbstraction) OnlyPotThresholdAt(st int) int {
	return intAt(b.OnlyPotThreshold, st)
}

func (t BetSizingTable) At(st, numPriorBets int) []float64 {
	if st < 0 || st >= len(t) {
		return nil
	}
	row := t[st]
	if numPriorBets < 0 {
		return nil
	}
	if numPriorBets >= len(row) {
		if len(row) == 0 {
			return nil
		}
		numPriorBets = len(row) - 1
	}
	return row[numPriorBets]
}

// Validate checks every configuration invariant and returns a
// cfrerr.ConfigError describing the first violation found.
func (b *BettingAbstraction) Validate(g Game) error {
	maxStreet := g.MaxStreet()
	if maxStreet < 0 {
		return cfrerr.Configf("game", "max street must be >= 0")
	}

	if b.Asymmetric {
		if b.TargetPlayer < 0 || b.TargetPlayer >= g.NumPlayers() {
			return cfrerr.Configf("target_player", "out of range [0,%d)", g.NumPlayers())
		}
		if err := validateMaxBets(b.OurMaxBets, maxStreet, "our_max_bets"); err != nil {
			return err
		}
		if err := validateMaxBets(b.OppMaxBets, maxStreet, "opp_max_bets"); err != nil {
			return err
		}
	} else {
		if err := validateMaxBets(b.MaxBets, maxStreet, "max_bets"); err != nil {
			return err
		}
	}

	if !b.Limit {
		if err := validateBetSizing(b.RoleBetSizing(0), maxStreet); err != nil {
			return err
		}
		if b.Asymmetric {
			if err := validateBetSizing(b.RoleBetSizing(1), maxStreet); err != nil {
				return err
			}
		}
	}

	if b.CloseToAllInFrac < 0 || b.CloseToAllInFrac > 1 {
		return cfrerr.Configf("close_to_all_in_frac", "must be within [0,1], got %v", b.CloseToAllInFrac)
	}
	if b.BetSizeMultiplier < 0 {
		return cfrerr.Configf("bet_size_multiplier", "must be >= 0")
	}
	for st, allowed := range b.AllowableBetTos {
		if st < 0 || st > maxStreet {
			return cfrerr.Configf("allowable_bet_tos", "street %d out of range", st)
		}
		for i := 1; i < len(allowed); i++ {
			if allowed[i] <= allowed[i-1] {
				return cfrerr.Configf("allowable_bet_tos", "street %d not strictly increasing", st)
			}
		}
	}
	if b.MinReentrantPot < 0 {
		return cfrerr.Configf("min_reentrant_pot", "must be >= 0")
	}
	return nil
}

func validateMaxBets(t PerStreetInt, maxStreet int, field string) error {
	if len(t) == 0 {
		return cfrerr.Configf(field, "must have at least one street configured")
	}
	for i, v := range t {
		if v < 0 {
			return cfrerr.Configf(field, "street %d negative", i)
		}
	}
	_ = maxStreet
	return nil
}

func validateBetSizing(t BetSizingTable, maxStreet int) error {
	for st, rows := range t {
		for nsb, fracs := range rows {
			last := 0.0
			for i, f := range fracs {
				if f <= 0 {
					return cfrerr.Configf("bet_sizing", fmt.Sprintf("street %d bets %d entry %d must be > 0", st, nsb, i))
				}
				if f <= last {
					return cfrerr.Configf("bet_sizing", fmt.Sprintf("street %d bets %d entry %d not strictly increasing", st, nsb, i))
				}
				last = f
			}
		}
	}
	_ = maxStreet
	return nil
}
