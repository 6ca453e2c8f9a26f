package transform

import (
	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
)

// expandChainUnit appends u to sink, recursively unwrapping it first if
// it is a *dag.ChainUnit produced by smart_fuse_two_units or
// split_def_use_dom_use_deps (including one wrapping another chain unit,
// e.g. from repeated fusion), so the caller always sees original units.
func expandChainUnit(u dag.Unit, sink chain.Sink) {
	if cu, ok := u.(*dag.ChainUnit); ok {
		for _, m := range cu.Members() {
			expandChainUnit(m, sink)
		}
		return
	}
	sink.Append(u)
}
