package pipeline

import (
	"github.com/latticedb/lattice/internal/xerrors"
	"github.com/latticedb/lattice/pkg/plan"
	"github.com/latticedb/lattice/pkg/session"
)

// BuildState threads the preorder scan's hints through the postorder walk
// explicitly (Design Note §9), rather than via a captured closure variable.
type BuildState struct {
	// Limit is the outermost Limit's row count, if any was found during the
	// preorder scan. Sort transforms receive it as a top-k truncation hint.
	Limit *uint64
}

// Builder implements PB: Build(ctx, plan) -> Pipeline | Error.
type Builder struct {
	Scheduler PlanScheduler
}

// NewBuilder returns a Builder. A nil scheduler defaults to LocalScheduler.
func NewBuilder(scheduler PlanScheduler) *Builder {
	if scheduler == nil {
		scheduler = LocalScheduler{}
	}
	return &Builder{Scheduler: scheduler}
}

// Build walks root and produces the assembled Pipeline.
func (b *Builder) Build(ctx session.Context, root plan.Node) (*Pipeline, error) {
	state := &BuildState{Limit: findOutermostLimit(root)}
	p := &Pipeline{}
	v := &visitor{ctx: ctx, pipeline: p, state: state, scheduler: b.Scheduler}
	if err := v.visit(root); err != nil {
		return nil, err
	}
	return p, nil
}

// findOutermostLimit performs the preorder scan of spec §4.5 step 1. Since
// every node in this plan set is unary (or a ReadSource leaf), the plan
// tree is a chain, so the first Limit encountered walking from the root is
// the outermost one.
func findOutermostLimit(n plan.Node) *uint64 {
	for n != nil {
		if lim, ok := n.(*plan.Limit); ok {
			v := lim.N
			return &v
		}
		n = n.Input()
	}
	return nil
}

// visitor carries the mutable build state through the postorder walk.
type visitor struct {
	ctx       session.Context
	pipeline  *Pipeline
	state     *BuildState
	scheduler PlanScheduler
}

func (v *visitor) visit(n plan.Node) error {
	if n == nil {
		return nil
	}

	switch node := n.(type) {
	case *plan.Select:
		return v.visit(node.In)

	case *plan.Stage:
		return v.visitStage(node)

	case *plan.Projection:
		if err := v.visit(node.In); err != nil {
			return err
		}
		v.pipeline.AppendLane(func(int) Processor {
			return &ProjectionTransform{Schema: node.Schema, Exprs: node.Exprs}
		})
		return nil

	case *plan.Filter:
		if err := v.visit(node.In); err != nil {
			return err
		}
		v.pipeline.AppendLane(func(int) Processor {
			return &FilterTransform{Predicate: node.Predicate}
		})
		return nil

	case *plan.AggregatorPartial:
		if err := v.visit(node.In); err != nil {
			return err
		}
		grouped := len(node.GroupExpr) > 0
		v.pipeline.AppendLane(func(int) Processor {
			if grouped {
				return &GroupByPartialTransform{GroupExpr: node.GroupExpr, AggExprs: node.AggExprs}
			}
			return &AggregatorPartialTransform{AggExprs: node.AggExprs}
		})
		return nil

	case *plan.AggregatorFinal:
		if err := v.visit(node.In); err != nil {
			return err
		}
		v.pipeline.AppendMerge()
		grouped := len(node.GroupExpr) > 0
		v.pipeline.AppendLane(func(int) Processor {
			if grouped {
				return &GroupByFinalTransform{GroupExpr: node.GroupExpr, AggExprs: node.AggExprs}
			}
			return &AggregatorFinalTransform{AggExprs: node.AggExprs}
		})
		return nil

	case *plan.Sort:
		if err := v.visit(node.In); err != nil {
			return err
		}
		v.pipeline.AppendLane(func(int) Processor {
			return &SortPartialTransform{OrderBy: node.OrderBy, Limit: v.state.Limit}
		})
		v.pipeline.AppendLane(func(int) Processor {
			return &SortMergeTransform{OrderBy: node.OrderBy, Limit: v.state.Limit}
		})
		if v.pipeline.Width() > 1 {
			v.pipeline.AppendMerge()
			v.pipeline.AppendLane(func(int) Processor {
				return &SortMergeTransform{OrderBy: node.OrderBy, Limit: v.state.Limit}
			})
		}
		return nil

	case *plan.Limit:
		if err := v.visit(node.In); err != nil {
			return err
		}
		v.pipeline.AppendMerge()
		v.pipeline.AppendLane(func(int) Processor {
			return &LimitTransform{N: node.N}
		})
		return nil

	case *plan.ReadSource:
		return v.visitReadSource(node)

	default:
		return xerrors.ErrUnknownPlan(string(n.Kind()))
	}
}

// visitStage consults the scheduler on the sub-plan rooted at node.In. A
// non-empty result delegates that sub-plan to remote executors: the prior
// pipeline is discarded (its work is now delegated), the context is reset,
// and one RemoteTransform source is installed per executor. An empty
// result means local execution continues, so the sub-plan is built
// normally by descending into it.
func (v *visitor) visitStage(node *plan.Stage) error {
	targets, err := v.scheduler.Reschedule(v.ctx, node.In)
	if err != nil {
		return xerrors.ErrScheduler(string(node.Kind()), err)
	}

	if len(targets) == 0 {
		return v.visit(node.In)
	}

	v.pipeline.Reset()
	v.ctx.Reset()

	procs := make([]Processor, len(targets))
	for i, t := range targets {
		procs[i] = &RemoteTransform{Executor: t.Executor, SubPlan: t.SubPlan}
	}
	v.pipeline.AddSourcePipe(procs)
	return nil
}

// visitReadSource binds the scanned partitions to the context and installs
// one SourceTransform per worker, clamped between 1 and the partition
// count.
func (v *visitor) visitReadSource(node *plan.ReadSource) error {
	if err := v.ctx.TrySetPartitions(node.Partitions); err != nil {
		return err
	}

	workers := clamp(v.ctx.MaxThreads(), 1, uint64(len(node.Partitions)))
	procs := make([]Processor, workers)
	for i := range procs {
		part := node.Partitions[i%len(node.Partitions)]
		procs[i] = &SourceTransform{Partition: part}
	}
	v.pipeline.AddSourcePipe(procs)
	return nil
}

// clamp bounds v to [lo, hi], treating v == 0 as lo (0 max_threads means 1).
func clamp(v, lo, hi uint64) uint64 {
	if v == 0 {
		v = lo
	}
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}
