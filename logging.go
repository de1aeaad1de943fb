package stm

import (
	"go.uber.org/zap"

	"github.com/rochester-stm/orec/internal/txn"
)

// logger is this package's structured logger, built once at package
// init the same way talent-plan-tinykv builds a package-level logger.
// It is wired into internal/txn so that engine-level invariant
// violations (never ordinary conflicts — those stay a panic value) are
// reported the same way the rest of this package logs.
var logger = newLogger()

func newLogger() *zap.Logger {
	l, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails if its own default config is
		// unbuildable, which never happens with the stock config this
		// package uses; falling back to a no-op logger rather than
		// panicking out of a package init keeps this path harmless even
		// if it somehow did.
		return zap.NewNop()
	}
	return l
}

func init() {
	txn.SetLogger(logger)
}
