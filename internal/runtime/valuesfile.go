// Package runtime implements CFRValuesFile: a play-time, random-access
// reader over the files internal/values and internal/restructure produce.
// Grounded on original_source/src/cfr_values_file.h/.cpp: per-(player,street)
// file auto-detection in decreasing-precision order, a precomputed
// byte-offset table keyed by (player, street, nonterminal), and
// Probs()/pure-subtree lookup. Unlike the original, which memory-maps and
// aborts the process on any inconsistency, every failure here returns an
// error instead.
package runtime

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lox/cfrsolve/internal/cfrerr"
	"github.com/lox/cfrsolve/internal/tree"
	"github.com/lox/cfrsolve/internal/values"
)

// quantKind is the on-disk element width/packing of one stream.
type quantKind int

const (
	kindDouble   quantKind = iota // 8 bytes, regret-matching
	kindInt                      // 4 bytes, regret-matching
	kindHalfByte                 // 2 codes/byte, regret-matching, street 2 only
	kindChar                     // 1 byte, regret-matching or pure
	kindBits                     // 2 bits/bucket, always pure
)

// probMethod selects how Probs decodes raw bytes into a strategy.
type probMethod int

const (
	methodRegretMatching probMethod = iota
	methodPure
)

// streamKey identifies one (player, street) on-disk stream.
type streamKey struct {
	player, street int
}

type stream struct {
	kind   quantKind
	method probMethod
	file   *os.File
	size   int64
}

func (s *stream) readAt(buf []byte, off int64) error {
	if off < 0 || off+int64(len(buf)) > s.size {
		return cfrerr.Valuef("probs", "offset %d+%d out of range for stream of size %d", off, len(buf), s.size)
	}
	_, err := s.file.ReadAt(buf, off)
	return err
}

// offsetKey identifies one nonterminal's byte offset within its stream.
type offsetKey struct {
	player, street int
	nt             uint32
}

// ValuesFile is a read-only, offset-indexed view over a trained (or
// restructured) strategy, opened once and queried many times during play.
type ValuesFile struct {
	// geometry supplies NumHoldings(n); it is never allocated or written to,
	// only used for its numHoldings arithmetic (shared verbatim with
	// internal/values.CFRValues).
	geometry *values.CFRValues

	streams map[streamKey]*stream
	offsets map[offsetKey]int64
}

// candidate is one auto-detection candidate: which kind of file to look
// for and under what filename-building parameters.
type candidate struct {
	sumprobs bool
	kind     quantKind
	method   probMethod
	suffix   string
	// streetGated restricts this candidate to street == 2 (half-byte turn
	// quantization only ever applies there).
	streetGated bool
}

// candidatesByPreference is the order cfr_values_file.cpp's constructor
// probes in: highest-precision sumprobs first, falling back to purified
// (2-bit) and then one-hot char regrets.
var candidatesByPreference = []candidate{
	{sumprobs: true, kind: kindDouble, method: methodRegretMatching, suffix: "d"},
	{sumprobs: true, kind: kindInt, method: methodRegretMatching, suffix: "i"},
	{sumprobs: true, kind: kindHalfByte, method: methodRegretMatching, suffix: "h", streetGated: true},
	{sumprobs: true, kind: kindChar, method: methodRegretMatching, suffix: "c"},
	{sumprobs: false, kind: kindBits, method: methodPure, suffix: "b"},
	{sumprobs: false, kind: kindChar, method: methodPure, suffix: "c"},
}

func filename(sumprobs bool, actionSeq string, rootBdSt, rootBd, st, it, p int, suffix string) string {
	kind := "regrets"
	if sumprobs {
		kind = "sumprobs"
	}
	return fmt.Sprintf("%s.%s.%d.%d.%d.%d.p%d.%s", kind, actionSeq, rootBdSt, rootBd, st, it, p, suffix)
}

// Open probes dir for every (player, street) covered by players/streets,
// picking the highest-precision file that exists for each, then builds the
// full offset table in one reentrancy-tolerant walk of root. geometry must
// describe the same BucketThresholds/NumBuckets/NumLocalBoards the training
// and restructuring passes used; it is queried only for NumHoldings.
func Open(dir, actionSeq string, rootBdSt, rootBd, it int, players, streets []bool, geometry *values.CFRValues, root *tree.Node) (*ValuesFile, error) {
	vf := &ValuesFile{
		geometry: geometry,
		streams:  make(map[streamKey]*stream),
		offsets:  make(map[offsetKey]int64),
	}
	for p, covered := range players {
		if !covered {
			continue
		}
		for st, onStreet := range streets {
			if !onStreet {
				continue
			}
			s, err := openStream(dir, actionSeq, rootBdSt, rootBd, st, it, p)
			if err != nil {
				return nil, err
			}
			vf.streams[streamKey{p, st}] = s
		}
	}
	if err := vf.computeOffsets(root); err != nil {
		vf.Close()
		return nil, err
	}
	return vf, nil
}

func openStream(dir, actionSeq string, rootBdSt, rootBd, st, it, p int) (*stream, error) {
	for _, c := range candidatesByPreference {
		if c.streetGated && st != 2 {
			continue
		}
		path := filepath.Join(dir, filename(c.sumprobs, actionSeq, rootBdSt, rootBd, st, it, p, c.suffix))
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, cfrerr.IoErrorf(path, "open: %w", err)
		}
		return &stream{kind: c.kind, method: c.method, file: f, size: info.Size()}, nil
	}
	return nil, cfrerr.IoErrorf(dir, "no candidate value file found for player %d street %d (action_seq=%s it=%d)", p, st, actionSeq, it)
}

// Close releases every open file handle.
func (vf *ValuesFile) Close() error {
	var first error
	for _, s := range vf.streams {
		if s.file == nil {
			continue
		}
		if err := s.file.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// advance returns the byte length a stream of kind k occupies for one
// node's numHoldings x numSuccs slab.
func advance(k quantKind, numHoldings, numSuccs int) int64 {
	switch k {
	case kindChar:
		return int64(numHoldings * numSuccs)
	case kindHalfByte:
		return int64((numHoldings*numSuccs + 1) / 2)
	case kindBits:
		return int64((numHoldings + 3) / 4)
	case kindInt:
		return int64(numHoldings*numSuccs) * 4
	case kindDouble:
		return int64(numHoldings*numSuccs) * 8
	default:
		return 0
	}
}

// computeOffsets walks root once, preorder, assigning each covered
// nonterminal its current stream offset before advancing that stream's
// running counter. Reentrant subtrees are visited once (the node pointer
// identity set doubles as the seen bitset). Only nodes with NumSuccs > 1
// occupy a slab, matching internal/restructure's writer;
// internal/values.CFRValues.Write also emits single-successor nodes, so its
// files line up with these offsets only for trees that have none.
func (vf *ValuesFile) computeOffsets(root *tree.Node) error {
	running := make(map[streamKey]int64)
	seen := make(map[*tree.Node]bool)

	var walk func(n *tree.Node) error
	walk = func(n *tree.Node) error {
		if n.Terminal() || seen[n] {
			return nil
		}
		seen[n] = true
		p := int(n.PlayerActing)
		st := n.Street()
		sk := streamKey{p, st}
		if s, ok := vf.streams[sk]; ok && int(n.NumSuccs) > 1 {
			off := running[sk]
			vf.offsets[offsetKey{p, st, n.ID}] = off
			numHold := vf.geometry.NumHoldings(n)
			running[sk] = off + advance(s.kind, numHold, int(n.NumSuccs))
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

	for sk, s := range vf.streams {
		if s.size != running[sk] {
			return cfrerr.Valuef("offsets", "stream (p=%d,st=%d) size %d does not match accumulated offsets %d", sk.player, sk.street, s.size, running[sk])
		}
	}
	return nil
}
