package pipeline

import "github.com/latticedb/lattice/pkg/plan"

// ProjectionTransform is a simple (1:1, stateless) row projection.
type ProjectionTransform struct {
	Schema *plan.Schema
	Exprs  []plan.Expr
}

func (*ProjectionTransform) Kind() string { return "Projection" }

// FilterTransform keeps rows matching Predicate.
type FilterTransform struct {
	Predicate plan.Expr
}

func (*FilterTransform) Kind() string { return "Filter" }

// AggregatorPartialTransform computes ungrouped partial aggregates.
// Stateless at the pipeline level; the transform itself is stateful.
type AggregatorPartialTransform struct {
	AggExprs []plan.Expr
}

func (*AggregatorPartialTransform) Kind() string { return "AggregatorPartial" }

// GroupByPartialTransform computes grouped partial aggregates.
type GroupByPartialTransform struct {
	GroupExpr []plan.Expr
	AggExprs  []plan.Expr
}

func (*GroupByPartialTransform) Kind() string { return "GroupByPartial" }

// AggregatorFinalTransform merges ungrouped partial aggregates.
type AggregatorFinalTransform struct {
	AggExprs []plan.Expr
}

func (*AggregatorFinalTransform) Kind() string { return "AggregatorFinal" }

// GroupByFinalTransform merges grouped partial aggregates.
type GroupByFinalTransform struct {
	GroupExpr []plan.Expr
	AggExprs  []plan.Expr
}

func (*GroupByFinalTransform) Kind() string { return "GroupByFinal" }

// SortPartialTransform partially sorts its lane, optionally truncating to
// the top Limit rows when a Limit hint was captured by the preorder scan.
type SortPartialTransform struct {
	OrderBy []plan.SortKey
	Limit   *uint64
}

func (*SortPartialTransform) Kind() string { return "SortPartial" }

// SortMergeTransform merges sorted runs, optionally truncating to Limit.
type SortMergeTransform struct {
	OrderBy []plan.SortKey
	Limit   *uint64
}

func (*SortMergeTransform) Kind() string { return "SortMerge" }

// LimitTransform truncates its single input stream to N rows.
type LimitTransform struct {
	N uint64
}

func (*LimitTransform) Kind() string { return "Limit" }

// SourceTransform scans one Partition.
type SourceTransform struct {
	Partition plan.Partition
}

func (*SourceTransform) Kind() string { return "Source" }

// RemoteTransform is a source that receives rows computed by SubPlan on
// Executor, installed after a Stage boundary reschedules work remotely.
type RemoteTransform struct {
	Executor string
	SubPlan  plan.Node
}

func (*RemoteTransform) Kind() string { return "Remote" }

// MergeTransform collapses N input streams into one, preserving arrival
// order but not sorting.
type MergeTransform struct{}

func (*MergeTransform) Kind() string { return "Merge" }
