// Package buckets declares the card-abstraction collaborators TCFR and
// ECFR consume but never implement: hole-card bucketing, board-level
// multiplicity, and the optional precomputed hand-value/bucket table used
// at the max street. Callers supply concrete implementations; this package
// only fixes the interfaces.
package buckets

// HoleBucketer maps a player's private holding at a street to a bucket
// index for a given public board. Implementations are expected to be
// read-only after construction and safe for concurrent use by multiple
// solver worker goroutines.
type HoleBucketer interface {
	// NumBuckets returns the bucket count for street st.
	NumBuckets(st int) int
	// Bucket returns the bucket index for holeCards at street st given
	// the board index bd.
	Bucket(st, bd, holeCards int) int
}

// BoardBucketer enumerates canonical boards and their raw multiplicity
// (how many physical card combinations map to that canonical board),
// used by TCFR's board sampling when dealing a hand.
type BoardBucketer interface {
	NumBoards(st int) int
	// NumRawBoards is the total weighted count of physical boards at the
	// max street (len(BoardTable)).
	NumRawBoards() int
	// BoardTable maps a uniformly sampled raw index to its canonical
	// board index, so that sampling board_table[idx] directly yields a
	// multiplicity-weighted canonical board.
	BoardTable() []int
}

// HVBEntry is one precomputed (bucket, hand value) pair for a single
// max-street hand, used to skip live hand evaluation during TCFR dealing.
type HVBEntry struct {
	Bucket    uint32
	HandValue uint32
}

// HVBTable is the optional precomputed per-max-street-hand lookup:
// num_max_street_hands records of (bucket, hand_value) in canonical
// (board, hole-card-pair) order.
type HVBTable interface {
	// Lookup returns the bucket and showdown hand value for holding hcp
	// on canonical board bd, without touching a live hand-value tree.
	Lookup(bd, hcp int) HVBEntry
}

// Source is the minimal random source a Dealer needs to sample a hand: a
// uniform float in [0,1). TCFR's PCG32-backed worker RNG implements this
// directly, so dealing never needs its own RNG type.
type Source interface {
	Float64() float64
}

// Deal is one fully-sampled hand for both players across every street, as
// produced by an external Dealer collaborator. The core never touches raw
// cards or board/hole-card-pair indices directly; it only consumes the
// bucket sequence and the resulting showdown outcome, a pure lookup
// service built around the card abstraction.
type Deal struct {
	// BoardCount is the sampled max-street board's raw multiplicity,
	// needed so that sampling a canonical board weighted by its
	// multiplicity produces an unbiased value estimator.
	BoardCount int
	// P0Buckets, P1Buckets hold one bucket index per street, in street
	// order, for each player's sampled holding.
	P0Buckets []int
	P1Buckets []int
	// ShowdownMult is +1 if P0 wins at showdown, -1 if P1 wins, 0 on a tie.
	ShowdownMult int
}

// Dealer samples a complete hand for one TCFR/ECFR iteration: a max-street
// board weighted by raw multiplicity, two non-overlapping hole-card
// holdings rejection-sampled from the remaining deck, bucketed per street,
// and the showdown outcome between them. Whether an implementation
// consults a precomputed HVB table or a live hand-value tree is an
// implementation detail invisible to the caller. Implementations must be
// safe for concurrent use by multiple solver workers: board-count and
// bucket services stay read-only after initialization.
type Dealer interface {
	Deal(rng Source) Deal
}
