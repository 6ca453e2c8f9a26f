package transform

import (
	"github.com/schedcore/rpsched/pkg/chain"
	"github.com/schedcore/rpsched/pkg/dag"
	"github.com/schedcore/rpsched/pkg/scheduler"
)

// SmartFuseTwoUnits merges a unit with its sole data predecessor or sole
// data successor whenever doing so strictly cannot raise register
// pressure: the unit must destroy at least as many registers as it
// creates, and its own internal register pressure must not exceed that
// destroy count. Runs two passes - first admitting only fusions whose
// exact contribution to IRP is computable, then a second pass permitting
// dag.Fuse's safe-upper-bound approximation - mirroring the design's
// "exact IRP only, then approximate if permitted" ordering: a fusion
// whose true effect is unknown should only be taken once the cheaper
// exact fusions have already run out.
func SmartFuseTwoUnits() Transformation {
	return &Func{FuncName: "smart_fuse_two_units", Fn: smartFuseTwoUnits}
}

func smartFuseTwoUnits(d *dag.DAG, inner scheduler.Scheduler, sink chain.Sink, status *Status) error {
	modified := fusePass(d, true)
	if fusePass(d, false) {
		modified = true
	}
	if modified {
		status.SetModified()
	}

	tmp := chain.New()
	if err := inner.Schedule(d, tmp); err != nil {
		return err
	}
	for i := 0; i < tmp.Len(); i++ {
		expandChainUnit(tmp.At(i), sink)
	}
	return nil
}

// fusePass repeatedly scans for an eligible unit and fuses it with its
// sole data predecessor or successor until no further fusion applies.
// exactOnly is passed straight through as dag.Fuse's simulateIfApprox:
// true admits only mutually-sole (exactly computable) pairs, false also
// allows the upper-bound approximation.
func fusePass(d *dag.DAG, exactOnly bool) bool {
	progressedAny := false
	for {
		progressed := false
		for _, u := range d.Units() {
			if !d.Has(u) {
				continue // consumed by an earlier fuse this pass
			}
			create := dag.RegCreate(d, u)
			destroy := dag.RegDestroyExact(d, u)
			if len(destroy) < len(create) {
				continue
			}
			if int(u.InternalRegisterPressure()) > len(destroy) {
				continue
			}

			if p, ok := soleDataPred(d, u); ok {
				if _, fused := dag.Fuse(d, p, u, exactOnly); fused {
					progressed = true
					continue
				}
			}
			if s, ok := soleDataSucc(d, u); ok {
				if _, fused := dag.Fuse(d, u, s, exactOnly); fused {
					progressed = true
				}
			}
		}
		if !progressed {
			break
		}
		progressedAny = true
	}
	return progressedAny
}

func soleDataPred(d *dag.DAG, u dag.Unit) (dag.Unit, bool) {
	var found dag.Unit
	for _, e := range d.Preds(u) {
		if e.Kind != dag.Data {
			continue
		}
		if found != nil && found != e.From {
			return nil, false
		}
		found = e.From
	}
	return found, found != nil
}

func soleDataSucc(d *dag.DAG, u dag.Unit) (dag.Unit, bool) {
	var found dag.Unit
	for _, e := range d.Succs(u) {
		if e.Kind != dag.Data {
			continue
		}
		if found != nil && found != e.To {
			return nil, false
		}
		found = e.To
	}
	return found, found != nil
}
