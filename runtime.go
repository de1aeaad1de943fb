package stm

import (
	"os"
	"strings"

	"github.com/rochester-stm/orec/internal/contention"
	"github.com/rochester-stm/orec/internal/orec"
	"github.com/rochester-stm/orec/internal/txn"
)

// engine is the single, process-wide OrecEager engine every Var and
// transaction in this package shares. Its orec table and clock are
// created once, at package init.
//
// The contention-manager type parameter is fixed at HyperAggressive
// regardless of STM_CM: HyperAggressive's begin/commit/abort hooks are
// no-ops either way, and a stateful policy (Backoff) cannot be a type
// parameter here because Engine uses M's zero value at every call site
// (see internal/txn.Engine doc). STM_CM instead selects whether
// Atomically's own retry loop sleeps between attempts; see cmVariant
// below.
var engine = txn.New[contention.HyperAggressive](orec.DefaultBits)

// cmVariant records the contention-manager variant named by the STM_CM
// environment variable, read once at package init.
var cmVariant = resolveCMVariant()

func resolveCMVariant() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("STM_CM"))) {
	case "backoff":
		return "backoff"
	default:
		return "hyper"
	}
}
