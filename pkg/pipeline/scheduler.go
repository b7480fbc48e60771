package pipeline

import (
	"github.com/latticedb/lattice/pkg/plan"
	"github.com/latticedb/lattice/pkg/session"
)

// RemoteTarget pairs a remote executor address with the sub-plan it should
// run, produced by a PlanScheduler reschedule at a Stage boundary.
type RemoteTarget struct {
	Executor string
	SubPlan  plan.Node
}

// PlanScheduler decides, at a Stage boundary, whether and how to reshard a
// sub-plan across remote executors. An empty result means local execution
// continues.
type PlanScheduler interface {
	Reschedule(ctx session.Context, subPlan plan.Node) ([]RemoteTarget, error)
}

// LocalScheduler never delegates work remotely; every Stage is a no-op.
// Useful for single-node execution and as the default in tests.
type LocalScheduler struct{}

func (LocalScheduler) Reschedule(session.Context, plan.Node) ([]RemoteTarget, error) {
	return nil, nil
}
