package runtime

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/lox/cfrsolve/internal/tree"
	"github.com/lox/cfrsolve/internal/values"
)

// Key identifies one on-disk strategy snapshot: a (action_seq, root board
// street, root board, iteration) tuple, the same fields the §6 filename
// convention encodes.
type Key struct {
	ActionSeq string
	RootBdSt  int
	RootBd    int
	It        int
}

// Registry caches opened ValuesFiles by Key and collapses concurrent
// cold-opens of the same key to a single Open call, using
// golang.org/x/sync/singleflight to dedup concurrent cache misses against
// a shared backing store.
type Registry struct {
	dir      string
	players  []bool
	streets  []bool
	geometry *values.CFRValues
	root     *tree.Node

	group singleflight.Group

	mu    sync.RWMutex
	files map[Key]*ValuesFile
}

// NewRegistry builds a Registry that opens files under dir for the given
// player/street coverage, sharing one geometry descriptor and tree across
// every Key it serves.
func NewRegistry(dir string, players, streets []bool, geometry *values.CFRValues, root *tree.Node) *Registry {
	return &Registry{
		dir:      dir,
		players:  players,
		streets:  streets,
		geometry: geometry,
		root:     root,
		files:    make(map[Key]*ValuesFile),
	}
}

// Get returns the ValuesFile for k, opening it on first request and
// reusing the same instance for every subsequent caller (including callers
// racing in from other goroutines during the first open).
func (r *Registry) Get(k Key) (*ValuesFile, error) {
	r.mu.RLock()
	vf, ok := r.files[k]
	r.mu.RUnlock()
	if ok {
		return vf, nil
	}

	groupKey := fmt.Sprintf("%s\x00%d\x00%d\x00%d", k.ActionSeq, k.RootBdSt, k.RootBd, k.It)
	v, err, _ := r.group.Do(groupKey, func() (any, error) {
		r.mu.RLock()
		if vf, ok := r.files[k]; ok {
			r.mu.RUnlock()
			return vf, nil
		}
		r.mu.RUnlock()

		vf, err := Open(r.dir, k.ActionSeq, k.RootBdSt, k.RootBd, k.It, r.players, r.streets, r.geometry, r.root)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.files[k] = vf
		r.mu.Unlock()
		return vf, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ValuesFile), nil
}

// Close releases every ValuesFile the registry has opened.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for k, vf := range r.files {
		if err := vf.Close(); err != nil && first == nil {
			first = err
		}
		delete(r.files, k)
	}
	return first
}
