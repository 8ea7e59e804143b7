package restructure

import (
	"fmt"
	"path/filepath"

	"github.com/lox/cfrsolve/internal/cfrerr"
	"github.com/lox/cfrsolve/internal/fileutil"
)

// WriteFiles atomically writes every stream in res under dir, using the
// §6 naming convention with the quantization-width suffix original_source
// assigns per stream kind: ".b" for 2-bit subgame codes, ".h" for
// half-byte turn sumprobs, ".c" for byte sumprobs elsewhere.
func (res *Result) WriteFiles(dir, actionSeq string, rootBdSt, rootBd, it int, cfg Config) error {
	for sk, data := range res.SumprobBytes {
		suffix := "c"
		if sk.Street == 2 && cfg.TurnHalfByte {
			suffix = "h"
		}
		path := filepath.Join(dir, restructureFilename("sumprobs", actionSeq, rootBdSt, rootBd, sk.Street, it, sk.Player, suffix))
		if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
			return cfrerr.IoErrorf("write", "%s: %w", path, err)
		}
	}
	for sk, data := range res.PureRegretBits {
		path := filepath.Join(dir, restructureFilename("regrets", actionSeq, rootBdSt, rootBd, sk.Street, it, sk.Player, "b"))
		if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
			return cfrerr.IoErrorf("write", "%s: %w", path, err)
		}
	}
	return nil
}

func restructureFilename(kind, actionSeq string, rootBdSt, rootBd, st, it, p int, suffix string) string {
	return fmt.Sprintf("%s.%s.%d.%d.%d.%d.p%d.%s", kind, actionSeq, rootBdSt, rootBd, st, it, p, suffix)
}
