package txn

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// log is the package-level structured logger, built once. Nothing on
// the hot path (begin/read/write/commit/rollback) ever logs; log is
// reserved for the invariant violations below, which are never supposed
// to happen and therefore never need to be cheap.
var log = zap.NewNop()

// SetLogger replaces the package-level logger. The root stm package
// calls this once, at package init, with a real *zap.Logger; tests and
// other embedders that don't care about invariant-violation logging can
// leave the default no-op logger in place.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	log = l
}

// fatalInvariant reports a violation of one of the engine's own
// bookkeeping invariants (e.g. a descriptor's lock/read-set state no
// longer matches what an orec actually holds) — never a transaction
// conflict, which is ordinary control flow handled by Rollback. Reaching
// here means the engine itself is broken, so it logs at Fatal (which
// exits the process after flushing) rather than returning an error a
// caller could choose to ignore.
func fatalInvariant(msg string, kv ...zap.Field) {
	err := errors.Errorf("txn: invariant violated: %s", msg)
	fields := append([]zap.Field{zap.Error(err)}, kv...)
	log.Fatal(msg, fields...)
}
