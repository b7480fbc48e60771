package pipeline_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/internal/xerrors"
	"github.com/latticedb/lattice/pkg/pipeline"
	"github.com/latticedb/lattice/pkg/plan"
	"github.com/latticedb/lattice/pkg/session"
)

func widths(p *pipeline.Pipeline) []int {
	ws := make([]int, len(p.Pipes))
	for i, pipe := range p.Pipes {
		ws[i] = len(pipe)
	}
	return ws
}

func kinds(pipe pipeline.Pipe) []string {
	ks := make([]string, len(pipe))
	for i, p := range pipe {
		ks[i] = p.Kind()
	}
	return ks
}

func partitions(n int) []plan.Partition {
	parts := make([]plan.Partition, n)
	for i := range parts {
		parts[i] = plan.Partition{ID: string(rune('a' + i))}
	}
	return parts
}

// Scenario 5: Select -> Projection -> Filter -> ReadSource.
func TestBuildProjectionFilterSource(t *testing.T) {
	root := &plan.Select{In: &plan.Projection{
		Exprs: []plan.Expr{{Text: "a"}},
		In: &plan.Filter{
			Predicate: plan.Expr{Text: "a > 1"},
			In:        &plan.ReadSource{Partitions: partitions(2)},
		},
	}}

	ctx := session.New("q1", 4)
	b := pipeline.NewBuilder(nil)
	p, err := b.Build(ctx, root)
	require.NoError(t, err)

	require.Equal(t, []int{2, 2, 2}, widths(p))
	require.Equal(t, []string{"Source", "Source"}, kinds(p.Pipes[0]))
	require.Equal(t, []string{"Filter", "Filter"}, kinds(p.Pipes[1]))
	require.Equal(t, []string{"Projection", "Projection"}, kinds(p.Pipes[2]))
}

// Scenario 6: Select -> Limit(10) -> Sort -> AggregatorFinal ->
// AggregatorPartial -> ReadSource.
func TestBuildSortAggregateLimit(t *testing.T) {
	root := &plan.Select{In: &plan.Limit{
		N: 10,
		In: &plan.Sort{
			OrderBy: []plan.SortKey{{Expr: plan.Expr{Text: "a"}}},
			In: &plan.AggregatorFinal{
				AggExprs: []plan.Expr{{Text: "sum(a)"}},
				In: &plan.AggregatorPartial{
					AggExprs: []plan.Expr{{Text: "sum(a)"}},
					In:       &plan.ReadSource{Partitions: partitions(3)},
				},
			},
		},
	}}

	ctx := session.New("q2", 3)
	b := pipeline.NewBuilder(nil)
	p, err := b.Build(ctx, root)
	require.NoError(t, err)

	// sources(3), partial-agg(3), merge(1), final-agg(1), sort-partial(1), sort-merge(1), limit(1)
	// the Limit's own merge_processor() is a no-op here since width is
	// already 1 after the Sort phase, matching "no second merge needed".
	require.Equal(t, []int{3, 3, 1, 1, 1, 1, 1}, widths(p))
	require.Equal(t, "Source", p.Pipes[0][0].Kind())
	require.Equal(t, "AggregatorPartial", p.Pipes[1][0].Kind())
	require.Equal(t, "Merge", p.Pipes[2][0].Kind())
	require.Equal(t, "AggregatorFinal", p.Pipes[3][0].Kind())
	require.Equal(t, "SortPartial", p.Pipes[4][0].Kind())
	require.Equal(t, "SortMerge", p.Pipes[5][0].Kind())
	require.Equal(t, "Limit", p.Pipes[6][0].Kind())

	sp := p.Pipes[4][0].(*pipeline.SortPartialTransform)
	require.NotNil(t, sp.Limit)
	require.Equal(t, uint64(10), *sp.Limit)

	sm := p.Pipes[5][0].(*pipeline.SortMergeTransform)
	require.NotNil(t, sm.Limit)
	require.Equal(t, uint64(10), *sm.Limit)
}

func TestBuildGroupedAggregates(t *testing.T) {
	root := &plan.AggregatorFinal{
		GroupExpr: []plan.Expr{{Text: "k"}},
		In: &plan.AggregatorPartial{
			GroupExpr: []plan.Expr{{Text: "k"}},
			In:        &plan.ReadSource{Partitions: partitions(2)},
		},
	}
	ctx := session.New("q3", 2)
	b := pipeline.NewBuilder(nil)
	p, err := b.Build(ctx, root)
	require.NoError(t, err)

	require.Equal(t, "GroupByPartial", p.Pipes[1][0].Kind())
	require.Equal(t, "GroupByFinal", p.Pipes[3][0].Kind())
}

// bogusNode is a plan.Node outside the node set the builder recognizes.
type bogusNode struct{}

func (bogusNode) Kind() plan.NodeKind { return "Explain" }
func (bogusNode) Input() plan.Node    { return nil }
func (bogusNode) SchemaOf() *plan.Schema { return nil }

func TestUnknownPlanNode(t *testing.T) {
	ctx := session.New("q9", 1)
	_, err := pipeline.NewBuilder(nil).Build(ctx, bogusNode{})
	require.Error(t, err)
	require.True(t, xerrors.Is(err, xerrors.UnknownPlan))
}

func TestBuildDeterministic(t *testing.T) {
	root := &plan.Filter{
		Predicate: plan.Expr{Text: "x"},
		In:        &plan.ReadSource{Partitions: partitions(2)},
	}

	ctx1 := session.New("q4", 2)
	p1, err := pipeline.NewBuilder(nil).Build(ctx1, root)
	require.NoError(t, err)

	ctx2 := session.New("q4", 2)
	p2, err := pipeline.NewBuilder(nil).Build(ctx2, root)
	require.NoError(t, err)

	require.Equal(t, widths(p1), widths(p2))
	for i := range p1.Pipes {
		if diff := cmp.Diff(kinds(p1.Pipes[i]), kinds(p2.Pipes[i])); diff != "" {
			t.Fatalf("pipe %d kinds differ: %s", i, diff)
		}
	}
}

func TestReadSourceWorkersClampToPartitionCount(t *testing.T) {
	root := &plan.ReadSource{Partitions: partitions(2)}

	ctx := session.New("q5", 10)
	p, err := pipeline.NewBuilder(nil).Build(ctx, root)
	require.NoError(t, err)
	require.Equal(t, 2, p.Width())
}

func TestReadSourceZeroMaxThreadsMeansOne(t *testing.T) {
	root := &plan.ReadSource{Partitions: partitions(3)}

	ctx := session.New("q6", 0)
	p, err := pipeline.NewBuilder(nil).Build(ctx, root)
	require.NoError(t, err)
	require.Equal(t, 1, p.Width())
}

// stageScheduler always reschedules onto two remote executors.
type stageScheduler struct{ called *plan.Node }

func (s stageScheduler) Reschedule(_ session.Context, sub plan.Node) ([]pipeline.RemoteTarget, error) {
	*s.called = sub
	return []pipeline.RemoteTarget{
		{Executor: "node-1", SubPlan: sub},
		{Executor: "node-2", SubPlan: sub},
	}, nil
}

func TestBuildStageReschedulesAndResetsPipeline(t *testing.T) {
	var captured plan.Node
	root := &plan.Limit{
		N: 5,
		In: &plan.Stage{
			In: &plan.Filter{
				Predicate: plan.Expr{Text: "x"},
				In:        &plan.ReadSource{Partitions: partitions(4)},
			},
		},
	}

	ctx := session.New("q7", 4)
	b := pipeline.NewBuilder(stageScheduler{called: &captured})
	p, err := b.Build(ctx, root)
	require.NoError(t, err)

	require.NotNil(t, captured)
	// The delegated sub-plan (Filter/ReadSource) is not built locally; the
	// pipeline starts fresh with one RemoteTransform source per executor,
	// then the Limit's merge_processor collapses to width 1 before Limit.
	require.Equal(t, []int{2, 1, 1}, widths(p))
	require.Equal(t, []string{"Remote", "Remote"}, kinds(p.Pipes[0]))
	require.Equal(t, "Merge", p.Pipes[1][0].Kind())
	require.Equal(t, "Limit", p.Pipes[2][0].Kind())
}

type emptyScheduler struct{}

func (emptyScheduler) Reschedule(session.Context, plan.Node) ([]pipeline.RemoteTarget, error) {
	return nil, nil
}

func TestBuildStageLocalWhenSchedulerDeclines(t *testing.T) {
	root := &plan.Stage{
		In: &plan.Filter{
			Predicate: plan.Expr{Text: "x"},
			In:        &plan.ReadSource{Partitions: partitions(2)},
		},
	}

	ctx := session.New("q8", 2)
	b := pipeline.NewBuilder(emptyScheduler{})
	p, err := b.Build(ctx, root)
	require.NoError(t, err)

	require.Equal(t, []int{2, 2}, widths(p))
	require.Equal(t, []string{"Source", "Source"}, kinds(p.Pipes[0]))
	require.Equal(t, []string{"Filter", "Filter"}, kinds(p.Pipes[1]))
}
