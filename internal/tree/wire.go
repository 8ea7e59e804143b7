package tree

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/lox/cfrsolve/internal/cfrerr"
	"github.com/lox/cfrsolve/internal/fileutil"
)

// Write serializes tree to path using the §6 wire format: for each node, in
// preorder, u32 id, u16 last_bet_to, u16 num_succs, u16 flags, u8
// player_acting, u8 num_remaining, followed by num_succs child records.
// Terminals carry num_succs == 0 and no children. Reentrant subtrees are
// written once; a "seen" set of already-written nodes lets the full DAG
// round-trip without duplicating shared subtrees on disk (a second
// occurrence writes only the bare record, terminal num_succs == 0, with a
// shared marker in bit 15 of flags and the first occurrence's preorder
// index in the id field, so the reader can relink instead of
// reconstructing).
func Write(t *BettingTree, path string) error {
	buf := make([]byte, 0, 4096)
	w := &wireWriter{seen: make(map[*Node]uint32), buf: &buf}
	w.writeNode(t.Root)
	return fileutil.WriteFileAtomic(path, *w.buf, 0o644)
}

const sharedRefFlag uint16 = 1 << 15

type wireWriter struct {
	seen map[*Node]uint32
	next uint32
	buf  *[]byte
}

func (w *wireWriter) writeNode(n *Node) {
	if ref, ok := w.seen[n]; ok {
		// Shared subtree: write a back-reference record instead of
		// recursing again. flags bit 15 marks this as a reference whose
		// id field is the index of the first occurrence (preorder index),
		// not the node's own id.
		w.appendRecord(ref, n.LastBetTo, 0, n.Flags|sharedRefFlag, n.PlayerActing, n.NumRemaining)
		return
	}
	idx := w.next
	w.seen[n] = idx
	w.next++
	w.appendRecord(n.ID, n.LastBetTo, n.NumSuccs, n.Flags, n.PlayerActing, n.NumRemaining)
	for _, s := range n.Succs {
		w.writeNode(s)
	}
}

func (w *wireWriter) appendRecord(id uint32, lastBetTo, numSuccs, flags uint16, pa, numRemaining uint8) {
	var rec [12]byte
	binary.BigEndian.PutUint32(rec[0:4], id)
	binary.BigEndian.PutUint16(rec[4:6], lastBetTo)
	binary.BigEndian.PutUint16(rec[6:8], numSuccs)
	binary.BigEndian.PutUint16(rec[8:10], flags)
	rec[10] = pa
	rec[11] = numRemaining
	*w.buf = append(*w.buf, rec[:]...)
}

// Read reads a tree written by Write, reconstructing shared subtrees from
// their back-references and re-deriving NumTerminals and Terminals by
// recursive descent. NumNonterminals is left nil (callers typically re-run
// internal/nonterminalids.Assign, which returns those counts; Read
// preserves whatever IDs were serialized so a pristine round-trip is
// structurally identical).
func Read(path string) (*BettingTree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cfrerr.IoErrorf(path, "open: %w", err)
	}
	defer f.Close()
	r := &wireReader{r: bufio.NewReader(f), byIndex: make(map[uint32]*Node)}
	root, err := r.readNode()
	if err != nil {
		return nil, err
	}
	// Confirm EOF: any trailing bytes are a size-mismatch IoError.
	if _, err := r.r.ReadByte(); err != io.EOF {
		if err == nil {
			return nil, cfrerr.IoErrorf(path, "trailing data after tree")
		}
		return nil, cfrerr.IoErrorf(path, "unexpected error confirming EOF: %w", err)
	}

	terminals, nonterminals := CountReachable(root)
	_ = nonterminals
	t := &BettingTree{
		Root:          root,
		InitialStreet: root.Street(),
	}
	t.NumTerminalsVal = terminals
	t.Terminals = make([]*Node, terminals)
	for n := range allNodes(root) {
		if n.Terminal() {
			t.Terminals[n.ID] = n
		}
	}
	return t, nil
}

type wireReader struct {
	r       *bufio.Reader
	byIndex map[uint32]*Node
	next    uint32
}

func (r *wireReader) readNode() (*Node, error) {
	var rec [12]byte
	if _, err := io.ReadFull(r.r, rec[:]); err != nil {
		return nil, cfrerr.IoErrorf("", "read node record: %w", err)
	}
	id := binary.BigEndian.Uint32(rec[0:4])
	lastBetTo := binary.BigEndian.Uint16(rec[4:6])
	numSuccs := binary.BigEndian.Uint16(rec[6:8])
	flags := binary.BigEndian.Uint16(rec[8:10])
	pa := rec[10]
	numRemaining := rec[11]

	if flags&sharedRefFlag != 0 {
		ref, ok := r.byIndex[id]
		if !ok {
			return nil, cfrerr.IoErrorf("", "shared reference to unknown preorder index %d", id)
		}
		return ref, nil
	}

	n := &Node{
		ID:           id,
		LastBetTo:    lastBetTo,
		NumSuccs:     numSuccs,
		Flags:        flags,
		PlayerActing: pa,
		NumRemaining: numRemaining,
	}
	idx := r.next
	r.next++
	r.byIndex[idx] = n

	if numSuccs > 0 {
		n.Succs = make([]*Node, numSuccs)
		for i := range n.Succs {
			s, err := r.readNode()
			if err != nil {
				return nil, err
			}
			n.Succs[i] = s
		}
	}
	return n, nil
}

func allNodes(root *Node) func(func(*Node) bool) {
	return func(yield func(*Node) bool) {
		seen := make(map[*Node]bool)
		var walk func(n *Node) bool
		walk = func(n *Node) bool {
			if seen[n] {
				return true
			}
			seen[n] = true
			if !yield(n) {
				return false
			}
			for _, s := range n.Succs {
				if !walk(s) {
					return false
				}
			}
			return true
		}
		walk(root)
	}
}
