package treebuilder

import (
	"math"
	"sort"

	"github.com/lox/cfrsolve/internal/abstraction"
)

// potSize returns the total chips in the pot given per-seat contributions.
func potSize(contributions []int) int {
	total := 0
	for _, c := range contributions {
		total += c
	}
	return total
}

// candidateBetTos enumerates the set of legal new bet-to values for the
// acting player, applying every rule the betting abstraction lists:
// all-(even-)chip streets, the pot-fraction table, always_all_in /
// always_min_bet forced inclusion, the geometric ladder,
// only_pot_threshold / no_regular_bet_threshold gating, and finally
// allowable_bet_tos snapping. Each candidate must satisfy
// min-bet/min-raise-or-all-in; violators are dropped, never rounded.
func candidateBetTos(ba *abstraction.BettingAbstraction, g abstraction.Game, s state) []int {
	st := s.street
	pot := potSize(s.contributions)
	stack := g.StackSize()
	allIn := s.contributions[s.actingPlayer] + (stack - s.contributions[s.actingPlayer])
	maxTotal := allIn // both players share the same stack size in this model

	minRaise := s.lastBetSize
	if minRaise <= 0 {
		minRaise = g.BigBlind()
	}
	minBetTo := s.betTo + minRaise

	set := make(map[int]bool)

	add := func(betTo int) {
		if betTo <= s.betTo {
			return
		}
		if betTo > maxTotal {
			betTo = maxTotal
		}
		if betTo < minBetTo && betTo != maxTotal {
			return // dropped, not rounded
		}
		set[betTo] = true
	}

	if ba.IsAllBetSizeStreet(st) {
		for bt := minBetTo; bt <= maxTotal; bt++ {
			add(bt)
		}
	} else if ba.IsAllEvenBetSizeStreet(st) {
		for bt := minBetTo; bt <= maxTotal; bt += 2 {
			add(bt)
		}
	} else {
		threshold := ba.NoRegularBetThresholdAt(st)
		onlyPotThreshold := ba.OnlyPotThresholdAt(st)
		if threshold == 0 || pot <= threshold {
			if onlyPotThreshold == 0 || pot > onlyPotThreshold {
				usedGeometric := false
				if ba.GeometricType != abstraction.GeometricNone {
					usedGeometric = addGeometricNearAllIn(ba, s, maxTotal, pot, add)
				}
				if !usedGeometric {
					fracs := ba.RoleBetSizing(s.actingPlayer).At(st, s.numStreetBets)
					for _, frac := range fracs {
						raise := int(math.Round(float64(pot) * frac))
						betTo := s.betTo + raise
						if closeToAllIn(betTo, maxTotal, ba.CloseToAllInFrac) {
							betTo = maxTotal
						}
						add(betTo)
					}
				}
			}
		}

		if ba.BetSizeMultiplier > 0 {
			for _, betTo := range geometricLadder(s.betTo, minBetTo, maxTotal, ba.BetSizeMultiplier) {
				add(betTo)
			}
		}
	}

	if ba.AlwaysAllIn {
		add(maxTotal)
	}
	if ba.AlwaysMinBetAt(st, s.numStreetBets) {
		add(minBetTo)
	}

	result := make([]int, 0, len(set))
	for bt := range set {
		result = append(result, bt)
	}
	sort.Ints(result)

	if allowed, ok := ba.AllowableBetTos[st]; ok {
		result = snapToAllowable(result, allowed, s.betTo, minRaise, maxTotal)
	}
	return result
}

func closeToAllIn(betTo, maxTotal int, frac float64) bool {
	if frac <= 0 || maxTotal <= 0 {
		return false
	}
	return float64(betTo) >= float64(maxTotal)*frac
}

// geometricLadder returns a ladder of bet-tos starting from the minimum
// raise and multiplying the increment by multiplier at each step, stopping
// once the all-in amount is reached. Active only when bet_size_multiplier
// is configured above zero.
func geometricLadder(betTo, minBetTo, maxTotal int, multiplier float64) []int {
	var out []int
	increment := float64(minBetTo - betTo)
	if increment <= 0 {
		return out
	}
	cur := float64(betTo)
	for {
		cur += increment
		bt := int(math.Round(cur))
		if bt >= maxTotal {
			out = append(out, maxTotal)
			break
		}
		out = append(out, bt)
		increment *= multiplier
		if increment <= 0 {
			break
		}
	}
	return out
}

// geometricAllInFrac and geometricMinFrac are the pot/all-in ratio
// thresholds no_limit_tree.cpp's AddGeometric1Bet/AddGeometric2Bet gate on:
// above geometricAllInFrac only an all-in remains; below geometricMinFrac
// geometric sizing is inactive and the regular pot-fraction table applies.
const (
	geometricAllInFrac = 0.33333
	geometricMinFrac   = 0.2
)

// addGeometricNearAllIn implements the §4.3 geometric_type rule, ported
// from no_limit_tree.cpp's AddGeometric1Bet (GeometricSingle) and
// AddGeometric2Bet (GeometricWithPotAndHalfPot). allInTotal and pot are
// both-players' total chip counts (2*StackSize at all-in, matching the
// original's symmetric-stack pot accounting); maxTotal is the acting
// player's own all-in bet-to. Returns whether geometric sizing fired for
// this node; when it does, the caller must not also run the regular
// pot-fraction loop (used_geometric in the original).
func addGeometricNearAllIn(ba *abstraction.BettingAbstraction, s state, maxTotal, pot int, add func(int)) bool {
	if pot <= 0 {
		return false
	}
	allInTotal := 2 * maxTotal
	switch ba.GeometricType {
	case abstraction.GeometricSingle:
		return addGeometric1Bet(s, maxTotal, allInTotal, pot, add)
	case abstraction.GeometricWithPotAndHalfPot:
		return addGeometric2Bet(s, maxTotal, allInTotal, pot, add)
	default:
		return false
	}
}

// geometricBetFrac is the single-side bet size, as a fraction of pot, that
// if called leaves the pot at the geometric mean of its current size and
// all-in: bet_frac = (sqrt(all_in/pot) - 1) / 2.
func geometricBetFrac(pot, allInTotal int) float64 {
	ratio := float64(allInTotal) / float64(pot)
	return (math.Sqrt(ratio) - 1.0) / 2.0
}

// addPotFracBet inserts the bet-to reached by a single-side bet of
// pot*frac, clamped to all-in once the resulting total pot would exceed it.
// Returns false without inserting anything if the rounded bet size is zero.
func addPotFracBet(s state, maxTotal, allInTotal, pot int, frac float64, add func(int)) bool {
	betSize := int(float64(pot)*frac + 0.5)
	if betSize <= 0 {
		return false
	}
	if newPotTotal := pot + 2*betSize; newPotTotal > allInTotal {
		add(maxTotal)
	} else {
		add(s.betTo + betSize)
	}
	return true
}

func addGeometric1Bet(s state, maxTotal, allInTotal, pot int, add func(int)) bool {
	f := float64(pot) / float64(allInTotal)
	switch {
	case f > geometricAllInFrac:
		add(maxTotal)
		return true
	case f >= geometricMinFrac:
		return addPotFracBet(s, maxTotal, allInTotal, pot, geometricBetFrac(pot, allInTotal), add)
	default:
		return false
	}
}

// addGeometric2Bet is a superset of addGeometric1Bet (half-pot and full-pot
// bets alongside the geometric one), used for asymmetric evaluations where
// the opponent's tree needs more successors than the target player's.
func addGeometric2Bet(s state, maxTotal, allInTotal, pot int, add func(int)) bool {
	f := float64(pot) / float64(allInTotal)
	switch {
	case f >= geometricAllInFrac:
		add(maxTotal)
		return true
	case f >= geometricMinFrac:
		addPotFracBet(s, maxTotal, allInTotal, pot, 0.5, add)
		addPotFracBet(s, maxTotal, allInTotal, pot, 1.0, add)
		addPotFracBet(s, maxTotal, allInTotal, pot, geometricBetFrac(pot, allInTotal), add)
		return true
	default:
		return false
	}
}

// snapToAllowable replaces every candidate not present in allowed with the
// nearest allowed bet-to that still forms a legal raise
// (NearestAllowableBetTo): prefer the closest allowed value not below a
// min-raise.
func snapToAllowable(candidates, allowed []int, betTo, minRaise, maxTotal int) []int {
	minBetTo := betTo + minRaise
	set := make(map[int]bool)
	for _, c := range candidates {
		if contains(allowed, c) {
			set[c] = true
			continue
		}
		snapped := nearestAllowableBetTo(allowed, c, minBetTo, maxTotal)
		if snapped > betTo {
			set[snapped] = true
		}
	}
	out := make([]int, 0, len(set))
	for bt := range set {
		out = append(out, bt)
	}
	sort.Ints(out)
	return out
}

func nearestAllowableBetTo(allowed []int, target, minBetTo, maxTotal int) int {
	best := -1
	bestDist := math.MaxInt64
	for _, a := range allowed {
		if a < minBetTo && a != maxTotal {
			continue
		}
		d := a - target
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			bestDist = d
			best = a
		}
	}
	return best
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
