package runtime

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryGetReusesOpenedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regrets.r.0.0.0.1.p0.b")
	require.NoError(t, os.WriteFile(path, []byte{0x34}, 0o644))

	root := fourSuccTree()
	geometry := testGeometry()
	reg := NewRegistry(dir, []bool{true}, []bool{true}, geometry, root)
	defer reg.Close()

	k := Key{ActionSeq: "r", RootBdSt: 0, RootBd: 0, It: 1}

	var wg sync.WaitGroup
	results := make([]*ValuesFile, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vf, err := reg.Get(k)
			require.NoError(t, err)
			results[i] = vf
		}(i)
	}
	wg.Wait()

	for _, vf := range results {
		require.Same(t, results[0], vf)
	}
}
