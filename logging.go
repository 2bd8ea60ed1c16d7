package mrbt

import "fmt"

// This file is the ambient logging layer: structured, leveled logging
// via github.com/rs/zerolog rather than the teacher's own
// "if m.debug { fmt.Printf(...) }" pattern (lib.go). zerolog is grounded
// on dedis-dela's logging choice elsewhere in the example pack; its
// chained, no-alloc-when-disabled API is a closer fit for a library
// that wants mutation-path tracing without a caller opting into debug
// builds.

func (t *Tree) logInsert(k Key) {
	t.logger.Debug().Str("op", "insert").Str("key", fmt.Sprint(k)).Int("size", t.size).Msg("mrbt mutation")
}

func (t *Tree) logDelete(k Key) {
	t.logger.Debug().Str("op", "delete").Str("key", fmt.Sprint(k)).Int("size", t.size).Msg("mrbt mutation")
}

func (t *Tree) logRotate(dir string, pivot, promoted *node) {
	t.logger.Trace().
		Str("op", "rotate").
		Str("dir", dir).
		Str("pivot", fmt.Sprint(pivot.key)).
		Str("promoted", fmt.Sprint(promoted.key)).
		Msg("mrbt rebalance")
}
