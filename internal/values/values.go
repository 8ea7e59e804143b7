// Package values implements CFRValues: a lazily-allocated, per-(player,
// street, nonterminal) store of [holding][succ] regret or
// sumprob arrays, over four numeric element types. Grounded on
// cfr_values.h/.cpp (original_source) for the allocation/merge semantics,
// and on internal/fileutil.WriteFileAtomic for on-disk durability (no
// reader ever observes a partially written file).
package values

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/lox/cfrsolve/internal/cfrerr"
	"github.com/lox/cfrsolve/internal/codec"
	"github.com/lox/cfrsolve/internal/fileutil"
	"github.com/lox/cfrsolve/internal/tree"
)

// ValueType is the on-disk numeric width a slab is stored as.
type ValueType int

const (
	TypeChar   ValueType = iota // u8
	TypeShort                   // u16
	TypeInt                     // i32
	TypeDouble                  // f64
)

func (t ValueType) suffix() string {
	switch t {
	case TypeDouble:
		return "d"
	case TypeInt:
		return "i"
	case TypeChar:
		return "c"
	case TypeShort:
		return "s"
	default:
		return "?"
	}
}

func (t ValueType) elemSize() int {
	switch t {
	case TypeDouble:
		return 8
	case TypeInt:
		return 4
	case TypeShort:
		return 2
	case TypeChar:
		return 1
	default:
		return 0
	}
}

// candidateTypesByPreference is the auto-detection order Read uses when a
// caller doesn't pin a type: double, then int, then char, then short.
var candidateTypesByPreference = []ValueType{TypeDouble, TypeInt, TypeChar, TypeShort}

// slab is one nonterminal's [holding][succ] array, stored flat and
// row-major (holding-major, succ-minor).
type slab struct {
	numSuccs int
	numHold  int
	data     []float64 // canonical in-memory representation regardless of on-disk width
}

func newSlab(numHold, numSuccs int) *slab {
	return &slab{numSuccs: numSuccs, numHold: numHold, data: make([]float64, numHold*numSuccs)}
}

func (s *slab) at(h, succ int) float64 { return s.data[h*s.numSuccs+succ] }
func (s *slab) set(h, succ int, v float64) { s.data[h*s.numSuccs+succ] = v }

type key struct {
	player, street int
	nonterminal    uint32
}

// CFRValues is the sparse per-(player,street,nonterminal) store of regret
// or sumprob arrays.
type CFRValues struct {
	Players  []bool
	Streets  []bool
	Sumprobs bool

	RootBd   int
	RootBdSt int

	// BucketThresholds[st]: a node at street st with last_bet_to below
	// this is bucketed (NumBuckets[st] holdings); otherwise unabstracted
	// (NumLocalBoards[st] * NumHoleCardPairs holdings).
	BucketThresholds []int
	NumBuckets       []int
	NumLocalBoards   []int
	NumHoleCardPairs int

	// CompressedStreets[st]: when true, integer regret slabs on that
	// street are written/read through internal/codec instead of raw.
	CompressedStreets []bool

	slabs map[key]*slab
}

// New constructs an empty CFRValues ready for AllocateAndClear.
func New(players, streets []bool, sumprobs bool) *CFRValues {
	return &CFRValues{
		Players:  players,
		Streets:  streets,
		Sumprobs: sumprobs,
		slabs:    make(map[key]*slab),
	}
}

func (v *CFRValues) numHoldings(st int, lastBetTo int) int {
	if st < len(v.BucketThresholds) && lastBetTo < v.BucketThresholds[st] {
		if st < len(v.NumBuckets) {
			return v.NumBuckets[st]
		}
		return 0
	}
	localBoards := 1
	if st < len(v.NumLocalBoards) {
		localBoards = v.NumLocalBoards[st]
	}
	return localBoards * v.NumHoleCardPairs
}

// AllocateAndClear recursively allocates (and zeros) storage for every
// nonterminal reachable from root that belongs to a covered player and
// street, skipping nodes already allocated (reentrancy).
func (v *CFRValues) AllocateAndClear(root *tree.Node, onlyP int) {
	seen := make(map[*tree.Node]bool)
	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		if n.Terminal() || seen[n] {
			return
		}
		seen[n] = true
		p := int(n.PlayerActing)
		st := n.Street()
		if v.covers(p, st, onlyP) {
			k := key{p, st, n.ID}
			if _, ok := v.slabs[k]; !ok {
				v.slabs[k] = newSlab(v.numHoldings(st, int(n.LastBetTo)), int(n.NumSuccs))
			}
		}
		for _, s := range n.Succs {
			walk(s)
		}
	}
	walk(root)
}

func (v *CFRValues) covers(p, st, onlyP int) bool {
	if onlyP >= 0 && p != onlyP {
		return false
	}
	if p < 0 || p >= len(v.Players) || !v.Players[p] {
		return false
	}
	if st < 0 || st >= len(v.Streets) || !v.Streets[st] {
		return false
	}
	return true
}

// NumHoldings returns the holding-row count n's slab uses: NumBuckets[st]
// when n is bucketed, or NumLocalBoards[st]*NumHoleCardPairs when n sits on
// an unabstracted street, the same rule AllocateAndClear applies. Exposed
// for collaborators (e.g. internal/restructure) that need to iterate a
// node's holding range without reaching into CFRValues internals.
func (v *CFRValues) NumHoldings(n *tree.Node) int {
	return v.numHoldings(n.Street(), int(n.LastBetTo))
}

// SetValues overwrites a single node's slab wholesale.
func (v *CFRValues) SetValues(n *tree.Node, holdingValues [][]float64) error {
	k := key{int(n.PlayerActing), n.Street(), n.ID}
	s, ok := v.slabs[k]
	if !ok {
		return cfrerr.Valuef("set_values", "no slab allocated for node id %d", n.ID)
	}
	if len(holdingValues) != s.numHold {
		return cfrerr.Valuef("set_values", "holding count mismatch: got %d want %d", len(holdingValues), s.numHold)
	}
	for h, row := range holdingValues {
		if len(row) != s.numSuccs {
			return cfrerr.Valuef("set_values", "succ count mismatch at holding %d: got %d want %d", h, len(row), s.numSuccs)
		}
		copy(s.data[h*s.numSuccs:(h+1)*s.numSuccs], row)
	}
	return nil
}

// Get returns the value at (n, holding, succ), or an error if unallocated.
func (v *CFRValues) Get(n *tree.Node, holding, succ int) (float64, error) {
	k := key{int(n.PlayerActing), n.Street(), n.ID}
	s, ok := v.slabs[k]
	if !ok {
		return 0, cfrerr.Valuef("get", "no slab allocated for node id %d", n.ID)
	}
	if holding < 0 || holding >= s.numHold {
		return 0, cfrerr.Valuef("get", "holding %d out of range [0,%d)", holding, s.numHold)
	}
	if succ < 0 || succ >= s.numSuccs {
		return 0, cfrerr.Valuef("get", "succ %d out of range [0,%d)", succ, s.numSuccs)
	}
	return s.at(holding, succ), nil
}

// filename builds the §6 on-disk name:
// {sumprobs|regrets}.<action_seq>.<root_bd_st>.<root_bd>.<st>.<it>.p<p>.<suffix>
func (v *CFRValues) filename(actionSeq string, st, it, p int, vt ValueType) string {
	kind := "regrets"
	if v.Sumprobs {
		kind = "sumprobs"
	}
	return fmt.Sprintf("%s.%s.%d.%d.%d.%d.p%d.%s", kind, actionSeq, v.RootBdSt, v.RootBd, st, it, p, vt.suffix())
}

// Write serializes every allocated slab reachable from root, one file per
// (player, street), preorder, deduplicating reentrant subtrees with a seen
// set so a shared subtree is emitted exactly once.
func (v *CFRValues) Write(dir string, it int, root *tree.Node, actionSeq string, onlyP int, vt ValueType, log zerolog.Logger) error {
	byStream := make(map[key2][]record)

	seen := make(map[*tree.Node]bool)
	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		if n.Terminal() || seen[n] {
			return
		}
		seen[n] = true
		p := int(n.PlayerActing)
		st := n.Street()
		if v.covers(p, st, onlyP) {
			k := key{p, st, n.ID}
			if s, ok := v.slabs[k]; ok {
				sk := key2{p, st}
				byStream[sk] = append(byStream[sk], record{id: n.ID, s: s})
			}
		}
		for _, c := range n.Succs {
			walk(c)
		}
	}
	walk(root)

	for sk, recs := range byStream {
		path := filepath.Join(dir, v.filename(actionSeq, sk.street, it, sk.player, vt))
		var buf []byte
		var err error
		if v.compressed(sk.street, vt) {
			buf, err = v.encodeRecordsCompressed(recs)
		} else {
			buf, err = encodeRecords(recs, vt)
		}
		if err != nil {
			return err
		}
		if err := fileutil.WriteFileAtomic(path, buf, 0o644); err != nil {
			return cfrerr.IoErrorf("write", "%s: %w", path, err)
		}
		log.Debug().Str("path", path).Int("nodes", len(recs)).Msg("wrote cfr values file")
	}
	return nil
}

type key2 struct{ player, street int }

type record struct {
	id uint32
	s  *slab
}

// compressed reports whether slabs on street st should go through
// internal/codec rather than raw encoding. Only integer regrets are ever
// compressed; sumprob streams and the other three numeric widths always
// stay raw.
func (v *CFRValues) compressed(st int, vt ValueType) bool {
	return vt == TypeInt && !v.Sumprobs && st >= 0 && st < len(v.CompressedStreets) && v.CompressedStreets[st]
}

// boardRowLen returns (row length, local board count) for a slab on a
// compressed stream: the slab's holdings split into num_local_boards rows
// of num_hole_card_pairs*num_succs elements each, so every row's compression
// chain can reference the previous board's same-node row as "north"
// (original_source's cfr_values.cpp WriteNode compressed branch).
func (v *CFRValues) boardRowLen(s *slab) (rowLen, numLocalBoards int) {
	nhcp := v.NumHoleCardPairs
	if nhcp <= 0 {
		nhcp = 1
	}
	rowLen = nhcp * s.numSuccs
	numLocalBoards = s.numHold / nhcp
	if numLocalBoards <= 0 {
		numLocalBoards = 1
	}
	return rowLen, numLocalBoards
}

// encodeRecordsCompressed range-codes an entire (player,street) stream as a
// single continuous Compressor session threaded across every node in
// preorder. Each node restarts its own north chain at local board 0
// (north==nil), exactly as WriteNode does per nonterminal.
func (v *CFRValues) encodeRecordsCompressed(recs []record) ([]byte, error) {
	var out bytes.Buffer
	c, err := codec.NewCompressor(&out, codec.DefaultDistribution)
	if err != nil {
		return nil, err
	}
	for _, r := range recs {
		rowLen, numLocalBoards := v.boardRowLen(r.s)
		var north []int32
		for lbd := 0; lbd < numLocalBoards; lbd++ {
			start := lbd * rowLen
			cur := make([]int32, rowLen)
			for i := 0; i < rowLen; i++ {
				cur[i] = int32(r.s.data[start+i])
			}
			c.CompressResiduals(cur, north, r.s.numSuccs)
			north = cur
		}
	}
	if err := c.Flush(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func encodeRecords(recs []record, vt ValueType) ([]byte, error) {
	var buf []byte
	for _, r := range recs {
		for _, f := range r.s.data {
			switch vt {
			case TypeDouble:
				var b [8]byte
				binary.BigEndian.PutUint64(b[:], math.Float64bits(f))
				buf = append(buf, b[:]...)
			case TypeInt:
				var b [4]byte
				binary.BigEndian.PutUint32(b[:], uint32(int32(f)))
				buf = append(buf, b[:]...)
			case TypeShort:
				var b [2]byte
				v := f
				if v < 0 {
					v = 0
				}
				if v > 65535 {
					v = 65535
				}
				binary.BigEndian.PutUint16(b[:], uint16(v))
				buf = append(buf, b[:]...)
			case TypeChar:
				v := f
				if v < 0 {
					v = 0
				}
				if v > 255 {
					v = 255
				}
				buf = append(buf, byte(v))
			default:
				return nil, cfrerr.Valuef("encode", "unknown value type %v", vt)
			}
		}
	}
	return buf, nil
}

// Read reconstructs slabs reachable from root from a file, auto-detecting
// the on-disk type by trying each candidate filename in preference order
// (double, int, char, short) unless pinType is set, which pins want as the
// exact type and fails with IoError if that specific file is absent.
func (v *CFRValues) Read(dir string, it int, root *tree.Node, actionSeq string, onlyP int, want ValueType, pinType bool) error {
	// Determine, per (player,street) stream present in root, which file
	// and type to read.
	streams := make(map[key2]bool)
	seen := make(map[*tree.Node]bool)
	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		if n.Terminal() || seen[n] {
			return
		}
		seen[n] = true
		p := int(n.PlayerActing)
		st := n.Street()
		if v.covers(p, st, onlyP) {
			streams[key2{p, st}] = true
		}
		for _, c := range n.Succs {
			walk(c)
		}
	}
	walk(root)

	for sk := range streams {
		var path string
		var vt ValueType
		found := false
		if pinType {
			path = filepath.Join(dir, v.filename(actionSeq, sk.street, it, sk.player, want))
			if _, err := os.Stat(path); err == nil {
				vt = want
				found = true
			}
		} else {
			for _, cand := range candidateTypesByPreference {
				p := filepath.Join(dir, v.filename(actionSeq, sk.street, it, sk.player, cand))
				if _, err := os.Stat(p); err == nil {
					path, vt, found = p, cand, true
					break
				}
			}
		}
		if !found {
			return cfrerr.IoErrorf("read", "no value file found for player=%d street=%d", sk.player, sk.street)
		}

		f, err := os.Open(path)
		if err != nil {
			return cfrerr.IoErrorf("read", "%s: %w", path, err)
		}
		if v.compressed(sk.street, vt) {
			err = v.readStreamCompressed(f, root, sk.player, sk.street, onlyP)
		} else {
			err = v.readStream(f, root, sk.player, sk.street, onlyP, vt)
		}
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// readStreamCompressed mirrors readStream but decodes through a single
// Decompressor session spanning the whole (player,street) file, rebuilding
// each node's slab one local board at a time with the previous board's row
// as the decode-side "north" predictor (original_source's ReadNode
// compressed branch).
func (v *CFRValues) readStreamCompressed(r io.Reader, root *tree.Node, player, street, onlyP int) error {
	d, err := codec.NewDecompressor(r)
	if err != nil {
		return err
	}
	seen := make(map[*tree.Node]bool)
	var walk func(n *tree.Node) error
	walk = func(n *tree.Node) error {
		if n.Terminal() || seen[n] {
			return nil
		}
		seen[n] = true
		if int(n.PlayerActing) == player && n.Street() == street && v.covers(player, street, onlyP) {
			k := key{player, street, n.ID}
			s, ok := v.slabs[k]
			if !ok {
				s = newSlab(v.numHoldings(street, int(n.LastBetTo)), int(n.NumSuccs))
				v.slabs[k] = s
			}
			rowLen, numLocalBoards := v.boardRowLen(s)
			var north []int32
			for lbd := 0; lbd < numLocalBoards; lbd++ {
				cur := make([]int32, rowLen)
				d.DecompressResiduals(cur, north, s.numSuccs)
				for i := 0; i < rowLen; i++ {
					s.data[lbd*rowLen+i] = float64(cur[i])
				}
				north = cur
			}
		}
		for _, c := range n.Succs {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}

func (v *CFRValues) readStream(r io.Reader, root *tree.Node, player, street, onlyP int, vt ValueType) error {
	seen := make(map[*tree.Node]bool)
	var walk func(n *tree.Node) error
	walk = func(n *tree.Node) error {
		if n.Terminal() || seen[n] {
			return nil
		}
		seen[n] = true
		if int(n.PlayerActing) == player && n.Street() == street && v.covers(player, street, onlyP) {
			k := key{player, street, n.ID}
			s, ok := v.slabs[k]
			if !ok {
				s = newSlab(v.numHoldings(street, int(n.LastBetTo)), int(n.NumSuccs))
				v.slabs[k] = s
			}
			buf := make([]byte, vt.elemSize())
			for i := range s.data {
				if _, err := io.ReadFull(r, buf); err != nil {
					return cfrerr.IoErrorf("read_stream", "node %d elem %d: %w", n.ID, i, err)
				}
				s.data[i] = decodeElem(buf, vt)
			}
		}
		for _, c := range n.Succs {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return err
	}
	// confirm EOF
	var b [1]byte
	if n, _ := r.Read(b[:]); n != 0 {
		return cfrerr.IoErrorf("read_stream", "trailing data after full read")
	}
	return nil
}

func decodeElem(b []byte, vt ValueType) float64 {
	switch vt {
	case TypeDouble:
		return math.Float64frombits(binary.BigEndian.Uint64(b))
	case TypeInt:
		return float64(int32(binary.BigEndian.Uint32(b)))
	case TypeShort:
		return float64(binary.BigEndian.Uint16(b))
	case TypeChar:
		return float64(b[0])
	}
	return 0
}

// ReadSubtreeFromFull streams the whole-tree file but allocates storage
// only for nodes inside the designated subtree (identified by the set of
// nodes reachable from subtreeRoot), dropping values for every other
// node encountered in the stream. Used by endgame resolving.
func (v *CFRValues) ReadSubtreeFromFull(dir string, it int, fullRoot, subtreeRoot *tree.Node, actionSeq string, onlyP int, vt ValueType) error {
	keep := make(map[*tree.Node]bool)
	var mark func(n *tree.Node)
	mark = func(n *tree.Node) {
		if n.Terminal() || keep[n] {
			return
		}
		keep[n] = true
		for _, c := range n.Succs {
			mark(c)
		}
	}
	mark(subtreeRoot)

	streams := make(map[key2]bool)
	seen := make(map[*tree.Node]bool)
	var collectStreams func(n *tree.Node)
	collectStreams = func(n *tree.Node) {
		if n.Terminal() || seen[n] {
			return
		}
		seen[n] = true
		p := int(n.PlayerActing)
		st := n.Street()
		if v.covers(p, st, onlyP) {
			streams[key2{p, st}] = true
		}
		for _, c := range n.Succs {
			collectStreams(c)
		}
	}
	collectStreams(fullRoot)

	for sk := range streams {
		path := filepath.Join(dir, v.filename(actionSeq, sk.street, it, sk.player, vt))
		f, err := os.Open(path)
		if err != nil {
			return cfrerr.IoErrorf("read_subtree", "%s: %w", path, err)
		}
		if v.compressed(sk.street, vt) {
			err = v.readStreamFilteredCompressed(f, fullRoot, sk.player, sk.street, onlyP, keep)
		} else {
			err = v.readStreamFiltered(f, fullRoot, sk.player, sk.street, onlyP, vt, keep)
		}
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func (v *CFRValues) readStreamFiltered(r io.Reader, root *tree.Node, player, street, onlyP int, vt ValueType, keep map[*tree.Node]bool) error {
	seen := make(map[*tree.Node]bool)
	var walk func(n *tree.Node) error
	walk = func(n *tree.Node) error {
		if n.Terminal() || seen[n] {
			return nil
		}
		seen[n] = true
		if int(n.PlayerActing) == player && n.Street() == street && v.covers(player, street, onlyP) {
			numHold := v.numHoldings(street, int(n.LastBetTo))
			elemSize := vt.elemSize()
			total := numHold * int(n.NumSuccs)
			if keep[n] {
				s := newSlab(numHold, int(n.NumSuccs))
				buf := make([]byte, elemSize)
				for i := 0; i < total; i++ {
					if _, err := io.ReadFull(r, buf); err != nil {
						return cfrerr.IoErrorf("read_subtree_stream", "node %d elem %d: %w", n.ID, i, err)
					}
					s.data[i] = decodeElem(buf, vt)
				}
				v.slabs[key{player, street, n.ID}] = s
			} else {
				if _, err := io.CopyN(io.Discard, r, int64(total*elemSize)); err != nil {
					return cfrerr.IoErrorf("read_subtree_stream", "node %d: %w", n.ID, err)
				}
			}
		}
		for _, c := range n.Succs {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}

// readStreamFilteredCompressed is readStreamFiltered's compressed-stream
// counterpart: the Decompressor must still walk every node in the file's
// original preorder (a single range-coder session, no random access), but
// only nodes inside keep get a slab allocated for their decoded values.
func (v *CFRValues) readStreamFilteredCompressed(r io.Reader, root *tree.Node, player, street, onlyP int, keep map[*tree.Node]bool) error {
	d, err := codec.NewDecompressor(r)
	if err != nil {
		return err
	}
	seen := make(map[*tree.Node]bool)
	var walk func(n *tree.Node) error
	walk = func(n *tree.Node) error {
		if n.Terminal() || seen[n] {
			return nil
		}
		seen[n] = true
		if int(n.PlayerActing) == player && n.Street() == street && v.covers(player, street, onlyP) {
			numHold := v.numHoldings(street, int(n.LastBetTo))
			numSuccs := int(n.NumSuccs)
			s := &slab{numHold: numHold, numSuccs: numSuccs, data: make([]float64, numHold*numSuccs)}
			rowLen, numLocalBoards := v.boardRowLen(s)
			var north []int32
			for lbd := 0; lbd < numLocalBoards; lbd++ {
				cur := make([]int32, rowLen)
				d.DecompressResiduals(cur, north, numSuccs)
				if keep[n] {
					for i := 0; i < rowLen; i++ {
						s.data[lbd*rowLen+i] = float64(cur[i])
					}
				}
				north = cur
			}
			if keep[n] {
				v.slabs[key{player, street, n.ID}] = s
			}
		}
		for _, c := range n.Succs {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}

// MergeInto merges a freshly solved subgame's values into a full-tree
// store. On a bucketed street, values simply accumulate per (holding,
// succ). On an unabstracted street, the subgame is indexed by local
// boards and must be translated back to the full store's global board
// indexing via localToGlobalBoard.
func (v *CFRValues) MergeInto(full *CFRValues, subgameRoot, fullRoot *tree.Node, localToGlobalBoard map[int]int, finalSt int) error {
	seenSub := make(map[*tree.Node]bool)
	var walk func(sub, fullN *tree.Node) error
	walk = func(sub, fullN *tree.Node) error {
		if sub.Terminal() || seenSub[sub] {
			return nil
		}
		seenSub[sub] = true
		p := int(sub.PlayerActing)
		st := sub.Street()
		sk := key{p, st, sub.ID}
		s, ok := v.slabs[sk]
		if ok {
			fk := key{p, st, fullN.ID}
			fs, fok := full.slabs[fk]
			if !fok {
				fs = newSlab(full.numHoldings(st, int(fullN.LastBetTo)), int(fullN.NumSuccs))
				full.slabs[fk] = fs
			}
			bucketed := st != finalSt || (st < len(v.BucketThresholds) && int(sub.LastBetTo) < v.BucketThresholds[st])
			if err := v.mergeSlab(s, fs, bucketed, localToGlobalBoard); err != nil {
				return err
			}
		}
		for i, c := range sub.Succs {
			if err := walk(c, fullN.Succs[i]); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(subgameRoot, fullRoot)
}

func (v *CFRValues) mergeSlab(sub, full *slab, bucketed bool, localToGlobalBoard map[int]int) error {
	if bucketed {
		if sub.numHold != full.numHold || sub.numSuccs != full.numSuccs {
			return cfrerr.Valuef("merge_into", "shape mismatch on bucketed street")
		}
		for i := range sub.data {
			full.data[i] += sub.data[i]
		}
		return nil
	}
	// Unabstracted regime: translate local board index to global.
	ns := sub.numSuccs
	nhcp := v.NumHoleCardPairs
	for localBd, globalBd := range localToGlobalBoard {
		for hcp := 0; hcp < nhcp; hcp++ {
			localIdx := localBd*nhcp + hcp
			globalIdx := globalBd*nhcp + hcp
			for s := 0; s < ns; s++ {
				full.data[globalIdx*ns+s] += sub.data[localIdx*ns+s]
			}
		}
	}
	return nil
}
